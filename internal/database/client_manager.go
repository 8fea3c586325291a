/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"nl2sql-agent/internal/config"
	"nl2sql-agent/internal/logging"
)

// Opener creates a Client for a database configuration
type Opener func(cfg *config.DatabaseConfig) (*Client, error)

// ClientManager is the registry of named databases. Clients are opened
// lazily on first use and shared by all requests.
type ClientManager struct {
	mu            sync.RWMutex
	clients       map[string]*Client                // dbName -> client
	dbConfigs     map[string]*config.DatabaseConfig // dbName -> config
	defaultDBName string                            // name of default database (first configured)
	open          Opener
}

// NewClientManager creates a new client manager with database configurations
func NewClientManager(databases []config.DatabaseConfig) *ClientManager {
	return NewClientManagerWithOpener(databases, Open)
}

// NewClientManagerWithOpener creates a client manager that opens clients
// with open
func NewClientManagerWithOpener(databases []config.DatabaseConfig, open Opener) *ClientManager {
	cm := &ClientManager{
		clients:   make(map[string]*Client),
		dbConfigs: make(map[string]*config.DatabaseConfig),
		open:      open,
	}
	cm.setConfigs(databases)
	return cm
}

func (cm *ClientManager) setConfigs(databases []config.DatabaseConfig) {
	cm.dbConfigs = make(map[string]*config.DatabaseConfig, len(databases))
	cm.defaultDBName = ""
	for i := range databases {
		db := databases[i]
		cm.dbConfigs[db.Name] = &db
		if cm.defaultDBName == "" {
			cm.defaultDBName = db.Name
		}
	}
}

// GetClient returns the client for dbName, opening it if needed. An
// empty name selects the default database.
func (cm *ClientManager) GetClient(dbName string) (*Client, error) {
	cm.mu.RLock()
	if dbName == "" {
		dbName = cm.defaultDBName
	}
	if client, exists := cm.clients[dbName]; exists {
		cm.mu.RUnlock()
		return client, nil
	}
	dbConfig := cm.dbConfigs[dbName]
	cm.mu.RUnlock()

	if dbConfig == nil {
		return nil, &ExecutionError{
			Database: dbName,
			Code:     CodeUnknownDatabase,
			Message:  fmt.Sprintf("database '%s' not configured", dbName),
		}
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	// Double-check after acquiring write lock
	if client, exists := cm.clients[dbName]; exists {
		return client, nil
	}
	// The config may have been replaced while unlocked
	if cm.dbConfigs[dbName] != dbConfig {
		dbConfig = cm.dbConfigs[dbName]
		if dbConfig == nil {
			return nil, &ExecutionError{
				Database: dbName,
				Code:     CodeUnknownDatabase,
				Message:  fmt.Sprintf("database '%s' not configured", dbName),
			}
		}
	}

	client, err := cm.open(dbConfig)
	if err != nil {
		return nil, &ExecutionError{
			Database: dbName,
			Code:     CodeConnection,
			Message:  fmt.Sprintf("failed to connect to database '%s': %v", dbName, err),
			Err:      err,
		}
	}
	cm.clients[dbName] = client

	return client, nil
}

// Execute runs stmt against the named database. A client replaced by a
// config reload stays open until the statements running on it finish.
func (cm *ClientManager) Execute(ctx context.Context, dbName, stmt string) (*ExecutionResult, error) {
	for {
		client, err := cm.GetClient(dbName)
		if err != nil {
			return nil, err
		}
		// A retired client is already out of the map; look it up again
		if !client.acquire() {
			continue
		}
		defer client.release()
		return client.Execute(ctx, stmt)
	}
}

// GetDefaultDatabaseName returns the name of the default database
func (cm *ClientManager) GetDefaultDatabaseName() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.defaultDBName
}

// HasDatabase reports whether dbName is configured
func (cm *ClientManager) HasDatabase(dbName string) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	_, ok := cm.dbConfigs[dbName]
	return ok
}

// ListDatabaseNames returns the names of all configured databases, sorted
func (cm *ClientManager) ListDatabaseNames() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	names := make([]string, 0, len(cm.dbConfigs))
	for name := range cm.dbConfigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UpdateDatabaseConfigs replaces the configured databases. Clients of
// removed databases, and of databases whose settings changed, are retired
// and closed once their running statements finish. The rest are reused.
func (cm *ClientManager) UpdateDatabaseConfigs(databases []config.DatabaseConfig) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	old := cm.dbConfigs
	cm.setConfigs(databases)

	for name, client := range cm.clients {
		newCfg, exists := cm.dbConfigs[name]
		if exists && reflect.DeepEqual(old[name], newCfg) {
			// Keep the client; point the map at the new config value
			continue
		}
		delete(cm.clients, name)
		client.retire()
		if exists {
			logging.Info("database_config_changed", "database", name)
		} else {
			logging.Info("database_removed", "database", name)
		}
	}

	logging.Info("databases_updated", "count", len(databases), "default", cm.defaultDBName)
}

// CloseAll closes all managed database clients
// This should be called on server shutdown
func (cm *ClientManager) CloseAll() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	var firstErr error
	for name, client := range cm.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s: %w", name, err)
		}
	}
	cm.clients = make(map[string]*Client)

	return firstErr
}

// GetClientCount returns the number of open clients
func (cm *ClientManager) GetClientCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}
