package config

import (
	"fmt"
)

// ClientConfig is the configuration view of the interactive editor.
type ClientConfig struct {
	Editor  Editor
	Storage Storage
	Adapter Adapter
	Workers Workers
	Log     Log
}

// AuthorityConfig is the configuration view of the reference authority.
type AuthorityConfig struct {
	Server Server
}

// GetClientConfig builds and validates the editor client configuration.
func GetClientConfig(args []string) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Editor:  cfg.Editor,
		Storage: cfg.Storage,
		Adapter: cfg.Adapter,
		Workers: cfg.Workers,
		Log:     cfg.Log,
	}

	return clientCfg, clientCfg.validate()
}

// GetAuthorityConfig builds and validates the reference authority configuration.
func GetAuthorityConfig(args []string) (*AuthorityConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	authorityCfg := &AuthorityConfig{Server: cfg.Server}
	return authorityCfg, authorityCfg.validate()
}
