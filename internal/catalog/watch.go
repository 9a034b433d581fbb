package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch refreshes the catalog whenever a CUE or JSON file below dir changes.
// dir is the operating system directory the catalog's file system reads
// from. Changes are collected for debounce before one refresh runs. Watch
// blocks until ctx is cancelled.
func (c *Catalog) Watch(ctx context.Context, dir string, debounce time.Duration) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := c.addWatchesRecursive(fsw, dir); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	c.logger.Info("ruleset watcher started", "dir", dir, "debounce", debounce)
	pending := false
	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					c.addWatch(fsw, evt.Name)
					pending = true
					continue
				}
			}
			if isRulesetSource(evt.Name) && !evt.Has(fsnotify.Chmod) {
				c.logger.Debug("ruleset change detected", "path", evt.Name, "op", evt.Op.String())
				pending = true
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			if !pending {
				continue
			}
			pending = false
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warn("refresh finished with errors", "error", err)
			}
		}
	}
}

func (c *Catalog) addWatchesRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if base := d.Name(); strings.HasPrefix(base, ".") && path != root {
			return filepath.SkipDir
		}
		c.addWatch(fsw, path)
		return nil
	})
}

func (c *Catalog) addWatch(fsw *fsnotify.Watcher, dir string) {
	if err := fsw.Add(dir); err != nil {
		c.logger.Warn("failed to watch directory", "path", dir, "error", err)
		return
	}
	c.logger.Debug("watching directory", "path", dir)
}
