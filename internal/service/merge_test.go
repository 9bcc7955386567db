package service

import (
	"testing"
	"time"

	"github.com/TianyiLi/trip-schedule/internal/domain"
)

func mergeTrip(id, title string, updatedAt time.Time) domain.Trip {
	return domain.Trip{
		ID:        id,
		Title:     title,
		UpdatedAt: updatedAt,
	}
}

func TestMergeTrips_EmptySides(t *testing.T) {
	t.Parallel()

	now := time.Now()
	trip := mergeTrip("trip-1", "Tokyo", now)

	if got := MergeTrips(nil, nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
	if got := MergeTrips([]domain.Trip{trip}, nil); len(got) != 1 {
		t.Errorf("expected local trip kept, got %v", got)
	}
	if got := MergeTrips(nil, []domain.Trip{trip}); len(got) != 1 {
		t.Errorf("expected remote trip appended, got %v", got)
	}
}

func TestMergeTrips_RemoteNewerReplacesInPlace(t *testing.T) {
	t.Parallel()

	base := time.Now()
	local := []domain.Trip{
		mergeTrip("trip-1", "first", base),
		mergeTrip("trip-2", "second (stale)", base),
		mergeTrip("trip-3", "third", base),
	}
	remote := []domain.Trip{mergeTrip("trip-2", "second (fresh)", base.Add(time.Minute))}

	got := MergeTrips(local, remote)
	if len(got) != 3 {
		t.Fatalf("expected 3 trips, got %d", len(got))
	}
	// Replacement happens in place: position is preserved.
	if got[1].ID != "trip-2" || got[1].Title != "second (fresh)" {
		t.Errorf("expected trip-2 replaced in place, got %v", got[1])
	}
}

func TestMergeTrips_LocalNewerKept(t *testing.T) {
	t.Parallel()

	base := time.Now()
	local := []domain.Trip{mergeTrip("trip-1", "local", base.Add(time.Minute))}
	remote := []domain.Trip{mergeTrip("trip-1", "remote", base)}

	got := MergeTrips(local, remote)
	if got[0].Title != "local" {
		t.Errorf("expected local version kept, got %q", got[0].Title)
	}
}

func TestMergeTrips_TieKeepsLocal(t *testing.T) {
	t.Parallel()

	base := time.Now()
	local := []domain.Trip{mergeTrip("trip-1", "local", base)}
	remote := []domain.Trip{mergeTrip("trip-1", "remote", base)}

	got := MergeTrips(local, remote)
	if got[0].Title != "local" {
		t.Errorf("expected tie to keep local, got %q", got[0].Title)
	}
}

func TestMergeTrips_RemoteOnlyAppendedInOrder(t *testing.T) {
	t.Parallel()

	base := time.Now()
	local := []domain.Trip{mergeTrip("trip-1", "a", base)}
	remote := []domain.Trip{
		mergeTrip("trip-2", "b", base),
		mergeTrip("trip-3", "c", base),
	}

	got := MergeTrips(local, remote)
	if len(got) != 3 {
		t.Fatalf("expected 3 trips, got %d", len(got))
	}
	if got[0].ID != "trip-1" || got[1].ID != "trip-2" || got[2].ID != "trip-3" {
		t.Errorf("expected [trip-1 trip-2 trip-3], got %v", got)
	}
}

func TestMergeTrips_Idempotent(t *testing.T) {
	t.Parallel()

	base := time.Now()
	local := []domain.Trip{mergeTrip("trip-1", "local", base.Add(time.Minute))}
	remote := []domain.Trip{
		mergeTrip("trip-1", "remote", base),
		mergeTrip("trip-2", "other", base),
	}

	once := MergeTrips(local, remote)
	twice := MergeTrips(once, remote)

	if len(once) != len(twice) {
		t.Fatalf("expected stable length, got %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID || once[i].Title != twice[i].Title {
			t.Errorf("merge not idempotent at %d: %v vs %v", i, once[i], twice[i])
		}
	}
}

func TestMergeTrips_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	base := time.Now()
	local := []domain.Trip{
		{
			ID:        "trip-1",
			Title:     "local",
			UpdatedAt: base,
			Locations: []domain.Location{{ID: "loc-1", Name: "Shibuya"}},
		},
	}
	remote := []domain.Trip{
		{
			ID:        "trip-1",
			Title:     "remote",
			UpdatedAt: base.Add(time.Minute),
			Locations: []domain.Location{{ID: "loc-2", Name: "Gion"}},
		},
	}

	got := MergeTrips(local, remote)
	got[0].Title = "mutated"
	got[0].Locations[0].Name = "mutated"

	if local[0].Title != "local" || local[0].Locations[0].Name != "Shibuya" {
		t.Error("local input was mutated")
	}
	if remote[0].Title != "remote" || remote[0].Locations[0].Name != "Gion" {
		t.Error("remote input was mutated")
	}
}
