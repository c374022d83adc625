// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "slices"

var storageDrivers = []string{"sqlite", "badger", "file", "memory"}

// validate checks invariants shared by every configuration view.
func (cfg *StructuredConfig) validate() error {
	if cfg.Editor.DeferredWindow < cfg.Editor.DebounceWindow {
		return ErrInvalidEditorConfigs
	}
	if !slices.Contains(storageDrivers, cfg.Storage.Driver) {
		return ErrInvalidStorageConfigs
	}
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.Driver != "memory" && cfg.Storage.Path == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" {
		return ErrInvalidAdapterConfigs
	}

	return nil
}

func (cfg *AuthorityConfig) validate() error {
	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}
	return nil
}
