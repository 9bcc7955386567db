package service

import "errors"

var (
	// ErrNotAuthenticated is returned when a cloud operation is invoked
	// without an access token.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSyncInProgress is returned when a sync is requested while one is
	// already running.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrRestoreNotConfirmed is returned when a restore is requested
	// without explicit confirmation to discard local state.
	ErrRestoreNotConfirmed = errors.New("restore requires confirmation")

	// ErrInvalidTripID is returned when a trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidTitle is returned when a trip title is empty.
	ErrInvalidTitle = errors.New("trip title is required")

	// ErrInvalidDateRange is returned when a trip's start date is after
	// its end date.
	ErrInvalidDateRange = errors.New("start date must not be after end date")

	// ErrInvalidLocationName is returned when a location name is empty.
	ErrInvalidLocationName = errors.New("location name is required")

	// ErrInvalidFileName is returned when a backup file name is empty.
	ErrInvalidFileName = errors.New("invalid file name")

	// ErrInvalidDuration is returned when an estimated duration is negative.
	ErrInvalidDuration = errors.New("estimated duration must not be negative")
)
