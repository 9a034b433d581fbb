// Package catalog discovers ruleset files, keeps the loaded documents in
// service and reloads them when their files change.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matthewbaird/rulesetview/internal/event"
	"github.com/matthewbaird/rulesetview/internal/metrics"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
	"github.com/matthewbaird/rulesetview/internal/view"
)

// ErrNotFound is returned for a ruleset name the catalog does not serve.
var ErrNotFound = errors.New("ruleset not found")

// Entry is one served ruleset.
type Entry struct {
	Name       string
	Path       string
	Document   *ruleset.Document
	Management *view.Management
	LoadedAt   time.Time
}

// Catalog holds the rulesets matching a glob below a file system root.
// Documents are replaced as a whole; readers never see a partial one.
type Catalog struct {
	fsys     fs.FS
	glob     string
	loader   *ruleset.Loader
	logger   *slog.Logger
	recorder event.Recorder
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	entries map[string]*Entry
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger for load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// WithRecorder records load, reload and removal events.
func WithRecorder(r event.Recorder) Option {
	return func(c *Catalog) { c.recorder = r }
}

// WithMetrics counts loads and served rulesets.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// New creates an empty catalog. Call Refresh to load.
func New(fsys fs.FS, glob string, opts ...Option) *Catalog {
	c := &Catalog{
		fsys:     fsys,
		glob:     glob,
		logger:   slog.Default(),
		recorder: event.Discard,
		entries:  make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.loader = ruleset.NewLoader(fsys, c.logger)
	return c
}

// NameOf derives the served name of a ruleset file: its slash path without
// the ".cue" or ".json" extension and a ".ruleset" suffix.
func NameOf(file string) string {
	name := file
	for _, ext := range []string{".cue", ".json"} {
		if trimmed, ok := strings.CutSuffix(name, ext); ok {
			name = trimmed
			break
		}
	}
	return strings.TrimSuffix(name, ".ruleset")
}

// Refresh loads every file matching the glob. A file that fails to load
// keeps its previously loaded document in service. Rulesets whose files
// are gone are dropped. The returned error joins all load failures.
func (c *Catalog) Refresh(ctx context.Context) error {
	files, err := doublestar.Glob(c.fsys, c.glob, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("glob %q: %w", c.glob, err)
	}
	sort.Strings(files)

	seen := make(map[string]bool, len(files))
	var errs []error
	for _, file := range files {
		name := NameOf(file)
		seen[name] = true
		if err := c.load(ctx, name, file); err != nil {
			errs = append(errs, err)
		}
	}

	c.mu.Lock()
	var removed []*Entry
	for name, e := range c.entries {
		if !seen[name] {
			removed = append(removed, e)
			delete(c.entries, name)
		}
	}
	served := len(c.entries)
	c.mu.Unlock()

	for _, e := range removed {
		c.logger.Info("ruleset removed", "ruleset", e.Name, "path", e.Path)
		c.record(ctx, event.NewRulesetRemoved(event.RulesetRemovedPayload{Ruleset: e.Name, Path: e.Path}))
	}
	c.metrics.SetRulesets(served)
	return errors.Join(errs...)
}

func (c *Catalog) load(ctx context.Context, name, file string) error {
	doc, err := c.loader.Load(file)
	c.metrics.ObserveLoad(err)

	c.mu.Lock()
	_, reload := c.entries[name]
	if err == nil {
		c.entries[name] = &Entry{
			Name:       name,
			Path:       file,
			Document:   doc,
			Management: view.NewManagement(doc),
			LoadedAt:   time.Now(),
		}
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("ruleset failed to load", "ruleset", name, "path", file, "kept_previous", reload, "error", err)
		c.record(ctx, event.NewRulesetLoadFailed(event.RulesetLoadFailedPayload{
			Ruleset: name, Path: file, Error: err.Error(), Kept: reload,
		}))
		return fmt.Errorf("ruleset %s: %w", name, err)
	}
	c.logger.Debug("ruleset loaded", "ruleset", name, "path", file, "reload", reload)
	c.record(ctx, event.NewRulesetLoaded(event.RulesetLoadedPayload{
		Ruleset: name, Path: file, Keys: len(doc.Keys), Divisions: len(doc.Divisions), Reload: reload,
	}))
	return nil
}

func (c *Catalog) record(ctx context.Context, evt event.DomainEvent) {
	if err := c.recorder.Record(ctx, evt); err != nil {
		c.logger.Warn("event recording failed", "type", evt.EventType, "error", err)
	}
}

// Get returns the served ruleset called name.
func (c *Catalog) Get(name string) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e, nil
}

// Names lists the served rulesets in order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

// isRulesetSource reports whether a change to file may affect a ruleset:
// rulesets, includes and namespace files are all CUE or JSON.
func isRulesetSource(file string) bool {
	switch path.Ext(file) {
	case ".cue", ".json":
		return true
	}
	return false
}
