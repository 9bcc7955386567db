package domain

// Coordinates is a latitude/longitude pair. Both fields are required.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is a single point of interest within a trip's itinerary.
// BusinessHours maps a day label to a free-text hours string.
// EstimatedDuration is the planned visit length in minutes.
type Location struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Address           string            `json:"address"`
	Coordinates       Coordinates       `json:"coordinates"`
	BusinessHours     map[string]string `json:"businessHours,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	EstimatedDuration int               `json:"estimatedDuration,omitempty"`
	VisitTime         string            `json:"visitTime,omitempty"`
}

// Clone returns a deep copy of the location.
func (l Location) Clone() Location {
	c := l
	if l.BusinessHours != nil {
		c.BusinessHours = make(map[string]string, len(l.BusinessHours))
		for k, v := range l.BusinessHours {
			c.BusinessHours[k] = v
		}
	}
	return c
}
