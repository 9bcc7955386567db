package domain

import "time"

// Trip represents a planned trip with an ordered itinerary of locations.
// The order of Locations is meaningful: it is the sequence in which the
// stops are visited.
type Trip struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	Locations   []Location `json:"locations"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"` // refreshed on every mutation; conflict key for merge
}

// Clone returns a deep copy of the trip. Stores hand out clones so callers
// cannot mutate the canonical collection behind the store's back.
func (t Trip) Clone() Trip {
	c := t
	if t.Locations != nil {
		c.Locations = make([]Location, len(t.Locations))
		for i, loc := range t.Locations {
			c.Locations[i] = loc.Clone()
		}
	}
	return c
}

// CloneTrips deep-copies a trip collection, preserving order.
func CloneTrips(trips []Trip) []Trip {
	if trips == nil {
		return nil
	}
	out := make([]Trip, len(trips))
	for i, t := range trips {
		out[i] = t.Clone()
	}
	return out
}
