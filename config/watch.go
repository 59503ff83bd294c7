package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events an editor save produces
const reloadDebounce = 200 * time.Millisecond

// Watch reloads chatui.yaml whenever it changes and hands the new config to
// onChange. A file that fails to load is logged and the previous config stays
// in effect. Watch blocks until ctx is done.
func Watch(ctx context.Context, configDir string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, editors replace the file on save
	if err := watcher.Add(configDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", configDir, err)
	}

	target := filepath.Clean(Path(configDir))
	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := LoadConfig(configDir)
			if err != nil {
				log.Printf("[Config] Reload failed, keeping previous config: %v", err)
				continue
			}
			log.Printf("[Config] Reloaded %s", FileName)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Config] Watcher error: %v", err)
		}
	}
}
