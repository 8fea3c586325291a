/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"fmt"
	"sync"

	"nl2sql-agent/internal/logging"
)

// ReloadableConfig wraps a Config with thread-safe access and reload capability
type ReloadableConfig struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	cliFlags CLIFlags
	onReload []func(*Config)
}

// NewReloadableConfig creates a new reloadable configuration
func NewReloadableConfig(config *Config, path string, cliFlags CLIFlags) *ReloadableConfig {
	return &ReloadableConfig{
		config:   config,
		path:     path,
		cliFlags: cliFlags,
		onReload: make([]func(*Config), 0),
	}
}

// Get returns the current configuration (read-only access)
func (rc *ReloadableConfig) Get() *Config {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.config
}

// Reload reloads the configuration from the file
// Returns an error if the reload fails, but keeps the old config
func (rc *ReloadableConfig) Reload() error {
	rc.mu.Lock()

	if rc.path == "" {
		rc.mu.Unlock()
		return fmt.Errorf("no configuration file path set")
	}

	// LoadConfig applies CLI flags and validates
	newConfig, err := LoadConfig(rc.path, rc.cliFlags)
	if err != nil {
		rc.mu.Unlock()
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	rc.logRestartRequiredSettings(newConfig)

	oldConfig := rc.config
	rc.config = newConfig
	callbacks := append([]func(*Config){}, rc.onReload...)
	rc.mu.Unlock()

	// Callbacks run without the lock so they may call Get
	for _, callback := range callbacks {
		callback(newConfig)
	}

	logging.Info("config_reloaded",
		"path", rc.path,
		"databases", len(newConfig.Databases),
		"previous_databases", len(oldConfig.Databases),
	)

	return nil
}

// logRestartRequiredSettings logs settings that changed but require a restart
func (rc *ReloadableConfig) logRestartRequiredSettings(newConfig *Config) {
	old := rc.config

	restart := func(setting string) {
		logging.Warn("config_change_requires_restart", "setting", setting)
	}

	if old.HTTP.Address != newConfig.HTTP.Address {
		restart("http.address")
	}
	if old.HTTP.TLS != newConfig.HTTP.TLS {
		restart("http.tls")
	}
	if old.LLM.Provider != newConfig.LLM.Provider || old.LLM.Model != newConfig.LLM.Model {
		restart("llm")
	}
	if old.Embedding.Provider != newConfig.Embedding.Provider || old.Embedding.Model != newConfig.Embedding.Model {
		restart("embedding")
	}
	if old.VectorStore != newConfig.VectorStore {
		restart("vector_store")
	}
}

// OnReload registers a callback to be called when configuration is reloaded
// The callback receives the new configuration
func (rc *ReloadableConfig) OnReload(fn func(*Config)) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.onReload = append(rc.onReload, fn)
}

// GetPath returns the configuration file path
func (rc *ReloadableConfig) GetPath() string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.path
}
