package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/TianyiLi/trip-schedule/internal/codec"
	"github.com/TianyiLi/trip-schedule/internal/domain"
	"github.com/TianyiLi/trip-schedule/internal/store"
)

// CSVTarget selects the row granularity of a CSV export.
type CSVTarget string

const (
	// CSVByTrip emits one row per trip.
	CSVByTrip CSVTarget = "trip"
	// CSVByLocation emits one row per location, with trip fields repeated.
	CSVByLocation CSVTarget = "location"
)

// ErrInvalidCSVTarget is returned for an unrecognized CSV export target.
var ErrInvalidCSVTarget = fmt.Errorf("invalid csv export target")

// ExportService produces one-way JSON and CSV dumps of the trip
// collection for download by the user.
type ExportService struct {
	trips *store.TripStore
	now   func() time.Time
}

// NewExportService creates a new ExportService.
func NewExportService(trips *store.TripStore) *ExportService {
	return &ExportService{trips: trips, now: time.Now}
}

// ExportJSON returns the full snapshot envelope for the current
// collection, in the same format the cloud sync uploads.
func (s *ExportService) ExportJSON(ctx context.Context) ([]byte, error) {
	return codec.Encode(s.trips.List(ctx), s.now())
}

// ExportCSV renders the collection as CSV at the requested granularity.
func (s *ExportService) ExportCSV(ctx context.Context, target CSVTarget) ([]byte, error) {
	trips := s.trips.List(ctx)

	switch target {
	case CSVByTrip:
		return tripsCSV(trips)
	case CSVByLocation:
		return locationsCSV(trips)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCSVTarget, target)
	}
}

func tripsCSV(trips []domain.Trip) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"id", "title", "description", "start_date", "end_date", "locations", "completed", "created_at", "updated_at"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, t := range trips {
		row := []string{
			t.ID,
			t.Title,
			t.Description,
			t.StartDate.Format(time.RFC3339),
			t.EndDate.Format(time.RFC3339),
			strconv.Itoa(len(t.Locations)),
			strconv.FormatBool(t.IsCompleted),
			t.CreatedAt.Format(time.RFC3339),
			t.UpdatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func locationsCSV(trips []domain.Trip) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"trip_id", "trip_title", "position", "location_id", "name", "address", "lat", "lng", "estimated_duration_min", "visit_time", "notes"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, t := range trips {
		for i, loc := range t.Locations {
			row := []string{
				t.ID,
				t.Title,
				strconv.Itoa(i + 1),
				loc.ID,
				loc.Name,
				loc.Address,
				strconv.FormatFloat(loc.Coordinates.Lat, 'f', -1, 64),
				strconv.FormatFloat(loc.Coordinates.Lng, 'f', -1, 64),
				strconv.Itoa(loc.EstimatedDuration),
				loc.VisitTime,
				loc.Notes,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
