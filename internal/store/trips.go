// Package store holds the canonical in-memory trip collection and persists
// it to a blob store as a single serialized document.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/TianyiLi/trip-schedule/internal/domain"
	"github.com/TianyiLi/trip-schedule/internal/repository"
)

// StorageKey is the logical key the trip collection is persisted under.
const StorageKey = "travelPlannerTrips"

// ErrTripNotFound is returned when the requested trip is not in the store.
var ErrTripNotFound = errors.New("trip not found")

// TripStore owns the canonical trip collection. Every mutation refreshes
// the trip's UpdatedAt and rewrites the whole persisted blob; there is no
// incremental persistence.
type TripStore struct {
	mu    sync.RWMutex
	trips []domain.Trip
	blobs repository.BlobStore
	now   func() time.Time
}

// NewTripStore creates a TripStore backed by the given blob store.
func NewTripStore(blobs repository.BlobStore) *TripStore {
	return &TripStore{blobs: blobs, now: time.Now}
}

// Load reads the persisted collection into memory. An absent or malformed
// blob yields an empty collection, not an error: local data favors
// availability over strictness.
func (s *TripStore) Load(ctx context.Context) error {
	data, err := s.blobs.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.mu.Lock()
			s.trips = nil
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to load trips: %w", err)
	}

	var trips []domain.Trip
	if err := json.Unmarshal(data, &trips); err != nil {
		log.Printf("discarding malformed local trip data: %v", err)
		trips = nil
	}

	s.mu.Lock()
	s.trips = trips
	s.mu.Unlock()
	return nil
}

// List returns the collection in itinerary order.
func (s *TripStore) List(ctx context.Context) []domain.Trip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneTrips(s.trips)
}

// Get returns the trip with the given ID.
func (s *TripStore) Get(ctx context.Context, id string) (domain.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.trips {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return domain.Trip{}, ErrTripNotFound
}

// Add appends a new trip, stamping CreatedAt and UpdatedAt. The in-memory
// collection changes only if the write succeeds; a persist failure leaves
// memory and blob consistent.
func (s *TripStore) Add(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	prev := s.trips
	s.trips = append(s.trips, trip.Clone())
	if err := s.persistLocked(ctx); err != nil {
		s.trips = prev
		return domain.Trip{}, err
	}
	return trip, nil
}

// Update replaces the stored trip with the same ID, refreshing UpdatedAt.
// CreatedAt is immutable and preserved from the stored record.
func (s *TripStore) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.trips {
		if t.ID == trip.ID {
			trip.CreatedAt = t.CreatedAt
			trip.UpdatedAt = s.now()

			prev := s.trips[i]
			s.trips[i] = trip.Clone()
			if err := s.persistLocked(ctx); err != nil {
				s.trips[i] = prev
				return domain.Trip{}, err
			}
			return trip, nil
		}
	}
	return domain.Trip{}, ErrTripNotFound
}

// Delete removes a trip. Deletion is hard: no tombstone is kept, so a trip
// deleted here can be resurrected by a later sync with a device that still
// holds an edited copy.
func (s *TripStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.trips {
		if t.ID == id {
			prev := s.trips
			// Full slice expression forces a copy so prev's backing
			// array survives for rollback.
			s.trips = append(s.trips[:i:i], s.trips[i+1:]...)
			if err := s.persistLocked(ctx); err != nil {
				s.trips = prev
				return err
			}
			return nil
		}
	}
	return ErrTripNotFound
}

// SetCompleted flags a trip as completed or not, refreshing UpdatedAt.
func (s *TripStore) SetCompleted(ctx context.Context, id string, completed bool) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.trips {
		if s.trips[i].ID == id {
			prev := s.trips[i]
			s.trips[i].IsCompleted = completed
			s.trips[i].UpdatedAt = s.now()
			if err := s.persistLocked(ctx); err != nil {
				s.trips[i] = prev
				return domain.Trip{}, err
			}
			return s.trips[i].Clone(), nil
		}
	}
	return domain.Trip{}, ErrTripNotFound
}

// ReorderLocations replaces a trip's itinerary with the given ordering,
// refreshing UpdatedAt.
func (s *TripStore) ReorderLocations(ctx context.Context, id string, locations []domain.Location) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.trips {
		if s.trips[i].ID == id {
			cloned := make([]domain.Location, len(locations))
			for j, l := range locations {
				cloned[j] = l.Clone()
			}

			prev := s.trips[i]
			s.trips[i].Locations = cloned
			s.trips[i].UpdatedAt = s.now()
			if err := s.persistLocked(ctx); err != nil {
				s.trips[i] = prev
				return domain.Trip{}, err
			}
			return s.trips[i].Clone(), nil
		}
	}
	return domain.Trip{}, ErrTripNotFound
}

// ReplaceAll swaps in a whole new collection and persists it. Used by merge
// completion and by restore-from-file.
func (s *TripStore) ReplaceAll(ctx context.Context, trips []domain.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trips = domain.CloneTrips(trips)
	return s.persistLocked(ctx)
}

// persistLocked serializes the collection and overwrites the blob.
// Callers must hold s.mu.
func (s *TripStore) persistLocked(ctx context.Context) error {
	trips := s.trips
	if trips == nil {
		trips = []domain.Trip{}
	}

	data, err := json.Marshal(trips)
	if err != nil {
		return fmt.Errorf("failed to serialize trips: %w", err)
	}
	if err := s.blobs.Put(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to persist trips: %w", err)
	}
	return nil
}
