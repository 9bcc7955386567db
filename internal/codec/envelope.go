// Package codec serializes the trip collection to the versioned snapshot
// envelope and validates incoming envelopes before they are trusted.
package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/TianyiLi/trip-schedule/internal/domain"
)

// SchemaVersion is the current snapshot schema version.
const SchemaVersion = "1.0"

// Envelope is the wire format for a trip collection snapshot.
type Envelope struct {
	Trips        []domain.Trip `json:"trips"`
	LastModified time.Time     `json:"lastModified"`
	Version      string        `json:"version"`
}

// Encode wraps trips in a snapshot envelope stamped with now and serializes
// it to JSON. All date fields are emitted as RFC 3339 strings.
func Encode(trips []domain.Trip, now time.Time) ([]byte, error) {
	env := Envelope{
		Trips:        domain.CloneTrips(trips),
		LastModified: now.UTC(),
		Version:      SchemaVersion,
	}
	if env.Trips == nil {
		env.Trips = []domain.Trip{}
	}
	// A nil itinerary must serialize as [], not null, or the snapshot
	// would fail its own schema on the next download.
	for i := range env.Trips {
		if env.Trips[i].Locations == nil {
			env.Trips[i].Locations = []domain.Location{}
		}
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses and validates a snapshot envelope.
// The envelope is validated structurally before its trips are trusted; on
// any violation a *ValidationError listing every failed field path is
// returned and the entire envelope must be treated as unusable.
func Decode(data []byte) (*Envelope, error) {
	violations := validateSnapshot(data)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		// validateSnapshot accepted the document, so this only fires on
		// date strings json.Unmarshal is stricter about.
		return nil, &ValidationError{Violations: []Violation{{Path: "root", Message: err.Error()}}}
	}
	return &env, nil
}
