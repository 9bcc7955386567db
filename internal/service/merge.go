package service

import "github.com/TianyiLi/trip-schedule/internal/domain"

// MergeTrips reconciles a local and a remote trip collection using
// last-writer-wins per trip, keyed on UpdatedAt.
//
// The result starts from local. Each remote trip either:
//   - replaces the local entry in place when its UpdatedAt is strictly
//     later (ties keep the local version), or
//   - is appended when no local entry shares its ID.
//
// Conflict resolution is per whole trip: when both sides edited different
// locations of the same trip, the losing side's edits are discarded. There
// are no tombstones, so a trip deleted locally reappears if a remote copy
// still carries it.
//
// The function is pure; neither input is mutated.
func MergeTrips(local, remote []domain.Trip) []domain.Trip {
	merged := domain.CloneTrips(local)
	if merged == nil {
		merged = []domain.Trip{}
	}

	for _, remoteTrip := range remote {
		idx := -1
		for i, t := range merged {
			if t.ID == remoteTrip.ID {
				idx = i
				break
			}
		}

		if idx < 0 {
			merged = append(merged, remoteTrip.Clone())
			continue
		}

		if remoteTrip.UpdatedAt.After(merged[idx].UpdatedAt) {
			merged[idx] = remoteTrip.Clone()
		}
	}

	return merged
}
