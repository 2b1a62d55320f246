package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vk/opgraph/internal/buildfile"
	"github.com/vk/opgraph/internal/ctxlog"
)

// watch calls regenerate once build file changes have settled for the
// configured debounce window. It returns when ctx is cancelled.
func (a *App) watch(ctx context.Context, regenerate func(context.Context)) error {
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(a.config.BuildPaths)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	logger.Info("Watching build files for changes.", "dirs", len(dirs), "debounce", a.config.Debounce)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Watch stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logger.Warn("Failed to watch new directory.", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if !isBuildFileChange(event) {
				continue
			}
			logger.Debug("Build file changed.", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(a.config.Debounce)
			} else {
				timer.Reset(a.config.Debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)

		case <-fire:
			fire = nil
			logger.Info("Build files changed, regenerating graph.")
			regenerate(ctx)
		}
	}
}

func isBuildFileChange(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, buildfile.Extension) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// watchDirs lists every directory to subscribe to: directory arguments
// with all their subdirectories, and the parent of file arguments.
func watchDirs(paths []string) ([]string, error) {
	var dirs []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			dirs = append(dirs, filepath.Dir(path))
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				dirs = append(dirs, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error searching %s: %w", path, err)
		}
	}
	slices.Sort(dirs)
	return slices.Compact(dirs), nil
}
