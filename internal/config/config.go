// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// Defaults applied after merging when a source left the value unset.
const (
	DefaultDebounceWindow = 3 * time.Second
	DefaultRetryInterval  = 30 * time.Second
	DefaultRequestTimeout = 15 * time.Second
	DefaultStorageDriver  = "sqlite"
)

// StructuredConfig is the top-level configuration container. It aggregates
// all sub-configurations and is populated by merging values from environment
// variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Editor holds the debounce policy of the editing engine.
	Editor Editor `envPrefix:"EDITOR_"`

	// Storage holds the device-local persistence medium settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter holds the address and timeout of the remote authority.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Server holds the listen settings of the reference authority.
	Server Server `envPrefix:"SERVER_"`

	// Workers holds background worker settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// Log holds logging destinations.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Editor holds the debounce policy of the dirty-field tracker.
type Editor struct {
	// DebounceWindow delays propagation of standard-priority fields.
	// Env: EDITOR_DEBOUNCE_WINDOW
	DebounceWindow time.Duration `env:"DEBOUNCE_WINDOW"`

	// DeferredWindow delays propagation of deferred-priority fields.
	// Defaults to twice DebounceWindow.
	// Env: EDITOR_DEFERRED_WINDOW
	DeferredWindow time.Duration `env:"DEFERRED_WINDOW"`

	// NoFlushOnSwitch disables syncing the outgoing session when another
	// document is opened. Its edits are still persisted.
	// Env: EDITOR_NO_FLUSH_ON_SWITCH
	NoFlushOnSwitch bool `env:"NO_FLUSH_ON_SWITCH"`
}

// Storage holds the device-local persistence medium settings.
type Storage struct {
	// Driver selects the medium: sqlite, badger, file or memory.
	// Env: STORAGE_DRIVER
	Driver string `env:"DRIVER"`

	// Path is the sqlite file, badger directory or JSON file.
	// Env: STORAGE_PATH
	Path string `env:"PATH"`
}

// Adapter holds settings of the outbound transport to the authority.
type Adapter struct {
	// HTTPAddress is the base address of the authority (e.g. "localhost:8080").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Server holds network settings of the reference authority.
type Server struct {
	// HTTPAddress is the TCP address the authority listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration of a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// RetryInterval is how often a failed sync is retried automatically.
	// Env: WORKERS_RETRY_INTERVAL
	RetryInterval time.Duration `env:"RETRY_INTERVAL"`
}

// Log holds logging destinations.
type Log struct {
	// Path is the client log file.
	// Env: LOG_PATH
	Path string `env:"PATH"`
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources. args are the command-line arguments without the
// program name.
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withJSON().
		build()
}

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Editor.DebounceWindow <= 0 {
		cfg.Editor.DebounceWindow = DefaultDebounceWindow
	}
	if cfg.Editor.DeferredWindow <= 0 {
		cfg.Editor.DeferredWindow = 2 * cfg.Editor.DebounceWindow
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DefaultStorageDriver
	}
	if cfg.Adapter.RequestTimeout <= 0 {
		cfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Workers.RetryInterval <= 0 {
		cfg.Workers.RetryInterval = DefaultRetryInterval
	}
}
