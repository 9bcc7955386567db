package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Violation is a single schema violation at a JSON instance path.
type Violation struct {
	Path    string
	Message string
}

// ValidationError reports every schema violation found in a snapshot.
// A snapshot with any violation is unusable as a whole; there is no
// partial acceptance.
type ValidationError struct {
	Violations []Violation
}

// Error formats all violations as "path: message" joined with commas.
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		path := v.Path
		if path == "" {
			path = "root"
		}
		msgs[i] = fmt.Sprintf("%s: %s", path, v.Message)
	}
	return "invalid trip data: " + strings.Join(msgs, ", ")
}

// validateSnapshot checks a raw snapshot document against the closed trip
// schema. Every object rejects unknown properties, with one exception:
// Location.businessHours accepts arbitrary string-valued keys.
func validateSnapshot(data []byte) []Violation {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []Violation{{Path: "root", Message: "invalid JSON: " + err.Error()}}
	}

	v := &validator{}
	root, ok := doc.(map[string]any)
	if !ok {
		return []Violation{{Path: "root", Message: "must be an object"}}
	}

	v.requireKeys(root, "", []string{"trips", "lastModified", "version"})
	v.rejectUnknown(root, "", []string{"trips", "lastModified", "version"})

	if raw, ok := root["trips"]; ok {
		if trips, ok := raw.([]any); ok {
			for i, t := range trips {
				v.validateTrip(t, fmt.Sprintf("/trips/%d", i))
			}
		} else {
			v.add("/trips", "must be an array")
		}
	}
	v.checkDateTime(root, "", "lastModified")
	v.checkString(root, "", "version")

	return v.violations
}

type validator struct {
	violations []Violation
}

func (v *validator) add(path, message string) {
	v.violations = append(v.violations, Violation{Path: path, Message: message})
}

func (v *validator) validateTrip(raw any, path string) {
	trip, ok := raw.(map[string]any)
	if !ok {
		v.add(path, "must be an object")
		return
	}

	required := []string{"id", "title", "description", "startDate", "endDate", "locations", "isCompleted", "createdAt", "updatedAt"}
	v.requireKeys(trip, path, required)
	v.rejectUnknown(trip, path, required)

	v.checkString(trip, path, "id")
	v.checkString(trip, path, "title")
	v.checkString(trip, path, "description")
	v.checkDateTime(trip, path, "startDate")
	v.checkDateTime(trip, path, "endDate")
	v.checkDateTime(trip, path, "createdAt")
	v.checkDateTime(trip, path, "updatedAt")

	if raw, ok := trip["isCompleted"]; ok {
		if _, ok := raw.(bool); !ok {
			v.add(path+"/isCompleted", "must be a boolean")
		}
	}

	if raw, ok := trip["locations"]; ok {
		if locs, ok := raw.([]any); ok {
			for i, l := range locs {
				v.validateLocation(l, fmt.Sprintf("%s/locations/%d", path, i))
			}
		} else {
			v.add(path+"/locations", "must be an array")
		}
	}
}

func (v *validator) validateLocation(raw any, path string) {
	loc, ok := raw.(map[string]any)
	if !ok {
		v.add(path, "must be an object")
		return
	}

	v.requireKeys(loc, path, []string{"id", "name", "address", "coordinates"})
	v.rejectUnknown(loc, path, []string{"id", "name", "address", "coordinates", "businessHours", "notes", "estimatedDuration", "visitTime"})

	v.checkString(loc, path, "id")
	v.checkString(loc, path, "name")
	v.checkString(loc, path, "address")

	if raw, ok := loc["coordinates"]; ok {
		v.validateCoordinates(raw, path+"/coordinates")
	}

	if raw, ok := loc["businessHours"]; ok {
		hours, ok := raw.(map[string]any)
		if !ok {
			v.add(path+"/businessHours", "must be an object")
		} else {
			// Open string map: any key is allowed, all values must be strings.
			for k, val := range hours {
				if _, ok := val.(string); !ok {
					v.add(path+"/businessHours/"+k, "must be a string")
				}
			}
		}
	}

	if raw, ok := loc["notes"]; ok {
		if _, ok := raw.(string); !ok {
			v.add(path+"/notes", "must be a string")
		}
	}

	if raw, ok := loc["estimatedDuration"]; ok {
		n, isNum := raw.(float64)
		if !isNum {
			v.add(path+"/estimatedDuration", "must be a number")
		} else if n < 0 {
			v.add(path+"/estimatedDuration", "must be >= 0")
		}
	}

	if raw, ok := loc["visitTime"]; ok {
		if _, ok := raw.(string); !ok {
			v.add(path+"/visitTime", "must be a string")
		}
	}
}

func (v *validator) validateCoordinates(raw any, path string) {
	coords, ok := raw.(map[string]any)
	if !ok {
		v.add(path, "must be an object")
		return
	}

	v.requireKeys(coords, path, []string{"lat", "lng"})
	v.rejectUnknown(coords, path, []string{"lat", "lng"})

	for _, key := range []string{"lat", "lng"} {
		if raw, ok := coords[key]; ok {
			if _, ok := raw.(float64); !ok {
				v.add(path+"/"+key, "must be a number")
			}
		}
	}
}

func (v *validator) requireKeys(obj map[string]any, path string, keys []string) {
	for _, key := range keys {
		if _, ok := obj[key]; !ok {
			v.add(path, fmt.Sprintf("missing required property %q", key))
		}
	}
}

func (v *validator) rejectUnknown(obj map[string]any, path string, allowed []string) {
	for key := range obj {
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			v.add(path+"/"+key, "unknown property")
		}
	}
}

func (v *validator) checkString(obj map[string]any, path, key string) {
	if raw, ok := obj[key]; ok {
		if _, ok := raw.(string); !ok {
			v.add(path+"/"+key, "must be a string")
		}
	}
}

func (v *validator) checkDateTime(obj map[string]any, path, key string) {
	raw, ok := obj[key]
	if !ok {
		return
	}
	s, isStr := raw.(string)
	if !isStr {
		v.add(path+"/"+key, "must be a date-time string")
		return
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		v.add(path+"/"+key, "must be a valid RFC 3339 date-time")
	}
}
