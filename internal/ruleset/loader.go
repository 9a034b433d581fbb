package ruleset

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource string

var errIncludeCycle = errors.New("include cycle")

// namespaceFile extracts the last path segment of a namespace URI, which
// names the vocabulary file for that namespace.
var namespaceFile = regexp.MustCompile(`^.*?/([^/]*?)[#/]?$`)

// LoadError reports a ruleset document that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load ruleset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader reads ruleset documents from a file system.
type Loader struct {
	fsys   fs.FS
	logger *slog.Logger
}

// NewLoader creates a loader reading from fsys.
func NewLoader(fsys fs.FS, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fsys: fsys, logger: logger}
}

// Load reads the document at name together with its includes and namespace
// vocabularies. Includes are applied first; the document itself is laid
// over them.
func (l *Loader) Load(name string) (*Document, error) {
	ctx := cuecontext.New()
	schemas := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schemas.Err(); err != nil {
		return nil, fmt.Errorf("compile ruleset schema: %w", err)
	}

	doc, err := l.load(ctx, schemas.LookupPath(cue.ParsePath("#Ruleset")), name, map[string]bool{})
	if err != nil {
		return nil, err
	}
	doc.defineMetsDivKeys()
	l.initializeNamespaces(ctx, schemas.LookupPath(cue.ParsePath("#Namespace")), doc.Keys, path.Dir(name))
	return doc, nil
}

func (l *Loader) load(ctx *cue.Context, schema cue.Value, name string, open map[string]bool) (*Document, error) {
	if open[name] {
		return nil, &LoadError{Path: name, Err: errIncludeCycle}
	}
	open[name] = true
	defer delete(open, name)

	var own Document
	if err := l.decode(ctx, schema, name, &own); err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}

	merged := &Document{}
	for _, include := range own.Includes {
		included, err := l.load(ctx, schema, path.Join(path.Dir(name), include), open)
		if err != nil {
			return nil, err
		}
		merged.addAll(included)
	}
	merged.addAll(&own)
	merged.Includes = own.Includes
	return merged, nil
}

// decode compiles a CUE or JSON file, checks it against schema and fills v.
func (l *Loader) decode(ctx *cue.Context, schema cue.Value, name string, v any) error {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return err
	}
	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return err
	}
	value = schema.Unify(value)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return value.Decode(v)
}

type namespace struct {
	About   string   `json:"about"`
	Options []Option `json:"options,omitempty"`
}

// initializeNamespaces replaces the options of keys bound to a namespace with
// the vocabulary file found next to the ruleset. Missing, unparsable or
// mismatching files leave the key as declared.
func (l *Loader) initializeNamespaces(ctx *cue.Context, schema cue.Value, keys []Key, home string) {
	for i := range keys {
		key := &keys[i]
		if key.Namespace != "" {
			l.applyNamespace(ctx, schema, key, home)
		}
		l.initializeNamespaces(ctx, schema, key.Keys, home)
	}
}

func (l *Loader) applyNamespace(ctx *cue.Context, schema cue.Value, key *Key, home string) {
	match := namespaceFile.FindStringSubmatch(key.Namespace)
	if match == nil || match[1] == "" {
		l.logger.Debug("namespace has no file name segment",
			slog.String("key", key.ID), slog.String("namespace", key.Namespace))
		return
	}
	file := path.Join(home, match[1]+".cue")

	var ns namespace
	if err := l.decode(ctx, schema, file, &ns); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("namespace file not found",
				slog.String("file", file), slog.String("namespace", key.Namespace))
		} else {
			l.logger.Warn("namespace file cannot be parsed",
				slog.String("file", file), slog.String("namespace", key.Namespace), slog.String("error", err.Error()))
		}
		return
	}
	if ns.About != key.Namespace {
		l.logger.Warn("namespace file declares another namespace",
			slog.String("file", file), slog.String("namespace", key.Namespace), slog.String("about", ns.About))
		return
	}
	key.Options = ns.Options
}
