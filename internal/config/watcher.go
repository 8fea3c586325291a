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
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"nl2sql-agent/internal/logging"
)

// DefaultDebounce is the quiet period before a change triggers a reload
const DefaultDebounce = 100 * time.Millisecond

// FileWatcher watches a file for changes and triggers a reload callback
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	reloadFn func() error
	debounce time.Duration
	done     chan struct{}
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(filePath string, reloadFn func() error) (*FileWatcher, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", filePath, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Editors often replace the file on save, so watch its directory
	dir := filepath.Dir(absPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	return &FileWatcher{
		watcher:  watcher,
		filePath: absPath,
		reloadFn: reloadFn,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// WatchConfig reloads rc whenever its file changes
func WatchConfig(rc *ReloadableConfig) (*FileWatcher, error) {
	path := rc.GetPath()
	if path == "" {
		return nil, fmt.Errorf("no configuration file path set")
	}
	fw, err := NewFileWatcher(path, rc.Reload)
	if err != nil {
		return nil, err
	}
	fw.Start()
	return fw, nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start() {
	go fw.watch()
}

// Stop stops watching for file changes
func (fw *FileWatcher) Stop() {
	close(fw.done)
	fw.watcher.Close()
}

// watch monitors file events and triggers reloads
func (fw *FileWatcher) watch() {
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != fw.filePath {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(fw.debounce, func() {
					if err := fw.reloadFn(); err != nil {
						logging.Error("config_reload_failed", "path", fw.filePath, "error", err)
					}
				})
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("config_watcher_error", "path", fw.filePath, "error", err)

		case <-fw.done:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}
