package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates a missing authority address.
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates an unknown storage driver or a
	// durable driver without a path.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidEditorConfigs indicates a deferred window shorter than the
	// standard debounce window.
	ErrInvalidEditorConfigs = errors.New("invalid editor configuration")
	// ErrInvalidServerConfigs indicates a missing listen address.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
)
