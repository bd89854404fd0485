package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")

	// Rainfall pipeline errors
	ErrNoSlotsForHour           = errors.New("no rainfall slots found for the requested hour")
	ErrIntensitySettingsMissing = errors.New("rainfall intensity settings not configured")
	ErrEmptyReadingBatch        = errors.New("rainfall reading batch is empty")
	ErrIngestionLockHeld        = errors.New("another ingestion run holds the day lock")
	ErrBadProviderTimestamp     = errors.New("provider reading timestamp is not parseable")
)
