package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/TianyiLi/trip-schedule/internal/domain"
	"github.com/TianyiLi/trip-schedule/internal/store"
)

// TripService handles trip CRUD operations. Date-range and location rules
// are enforced here, at edit time; the store persists whatever it is given.
type TripService struct {
	trips *store.TripStore
}

// NewTripService creates a new TripService.
func NewTripService(trips *store.TripStore) *TripService {
	return &TripService{trips: trips}
}

// CreateTripRequest contains the parameters for creating a trip.
type CreateTripRequest struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Locations   []domain.Location
}

// Create validates and persists a new trip. The trip and any locations
// missing an ID are assigned generated IDs.
func (s *TripService) Create(ctx context.Context, req CreateTripRequest) (domain.Trip, error) {
	if req.Title == "" {
		return domain.Trip{}, ErrInvalidTitle
	}
	if req.StartDate.After(req.EndDate) {
		return domain.Trip{}, ErrInvalidDateRange
	}
	locations, err := prepareLocations(req.Locations)
	if err != nil {
		return domain.Trip{}, err
	}

	trip := domain.Trip{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Locations:   locations,
	}
	return s.trips.Add(ctx, trip)
}

// Get returns a single trip by ID.
func (s *TripService) Get(ctx context.Context, id string) (domain.Trip, error) {
	if id == "" {
		return domain.Trip{}, ErrInvalidTripID
	}
	return s.trips.Get(ctx, id)
}

// List returns all trips in collection order.
func (s *TripService) List(ctx context.Context) []domain.Trip {
	return s.trips.List(ctx)
}

// Update validates and replaces an existing trip's mutable fields.
func (s *TripService) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if trip.ID == "" {
		return domain.Trip{}, ErrInvalidTripID
	}
	if trip.Title == "" {
		return domain.Trip{}, ErrInvalidTitle
	}
	if trip.StartDate.After(trip.EndDate) {
		return domain.Trip{}, ErrInvalidDateRange
	}
	locations, err := prepareLocations(trip.Locations)
	if err != nil {
		return domain.Trip{}, err
	}
	trip.Locations = locations

	return s.trips.Update(ctx, trip)
}

// Delete removes a trip permanently. No tombstone is kept.
func (s *TripService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidTripID
	}
	return s.trips.Delete(ctx, id)
}

// Complete marks a trip as completed.
func (s *TripService) Complete(ctx context.Context, id string) (domain.Trip, error) {
	if id == "" {
		return domain.Trip{}, ErrInvalidTripID
	}
	return s.trips.SetCompleted(ctx, id, true)
}

// Uncomplete moves a completed trip back to active.
func (s *TripService) Uncomplete(ctx context.Context, id string) (domain.Trip, error) {
	if id == "" {
		return domain.Trip{}, ErrInvalidTripID
	}
	return s.trips.SetCompleted(ctx, id, false)
}

// ReorderLocations replaces a trip's itinerary with the given ordering.
func (s *TripService) ReorderLocations(ctx context.Context, tripID string, locations []domain.Location) (domain.Trip, error) {
	if tripID == "" {
		return domain.Trip{}, ErrInvalidTripID
	}
	prepared, err := prepareLocations(locations)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.trips.ReorderLocations(ctx, tripID, prepared)
}

// prepareLocations validates locations and assigns IDs where missing.
func prepareLocations(locations []domain.Location) ([]domain.Location, error) {
	out := make([]domain.Location, len(locations))
	for i, loc := range locations {
		if loc.Name == "" {
			return nil, ErrInvalidLocationName
		}
		if loc.EstimatedDuration < 0 {
			return nil, ErrInvalidDuration
		}
		if loc.ID == "" {
			loc.ID = uuid.New().String()
		}
		out[i] = loc
	}
	return out, nil
}
