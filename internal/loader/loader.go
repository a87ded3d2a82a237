// Package loader reads data files into generic JSON values.
package loader

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"

	"github.com/agentic-research/jqenum/internal/diag"
)

// Document is a loaded data file.
type Document struct {
	// Path is the canonical absolute path.
	Path string
	// Value is the decoded document: nil, bool, int, float64, string,
	// []any or map[string]any.
	Value any
	// Digest is the HighwayHash of the raw file bytes.
	Digest uint64
}

// Loader reads and decodes data files. Documents are cached by canonical
// path, so several enums sharing one file decode it once. The cache lives
// as long as the Loader; build one per run. A Loader is safe
// for concurrent use; the returned Value must not be mutated.
type Loader struct {
	fs        billy.Filesystem
	canonical func(string) (string, error)

	mu    sync.Mutex
	cache map[string]*Document
}

// NewOS returns a Loader over the host filesystem. Paths are made absolute
// and symlinks resolved.
func NewOS() *Loader {
	return &Loader{
		fs:        osfs.New("/"),
		canonical: canonicalOS,
		cache:     make(map[string]*Document),
	}
}

// New returns a Loader over fs, treating every path as rooted at "/".
// A nil fs gets a fresh in-memory filesystem.
func New(fs billy.Filesystem) *Loader {
	if fs == nil {
		fs = memfs.New()
	}
	return &Loader{
		fs:        fs,
		canonical: canonicalRooted,
		cache:     make(map[string]*Document),
	}
}

func canonicalOS(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func canonicalRooted(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join("/", path)
	}
	return filepath.Clean(path), nil
}

// Canonical returns the canonical form of path used for cache keys and
// Document.Path.
func (l *Loader) Canonical(path string) (string, error) {
	return l.canonical(path)
}

// Load reads and decodes the file at path. JSON is the default format;
// .yaml and .yml files are decoded as YAML.
func (l *Loader) Load(path string) (*Document, error) {
	canonical, err := l.canonical(path)
	if err != nil {
		e := diag.New(diag.KindIO, fmt.Errorf("canonicalize: %w", err))
		e.File = path
		return nil, e
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if doc, ok := l.cache[canonical]; ok {
		return doc, nil
	}

	raw, err := util.ReadFile(l.fs, canonical)
	if err != nil {
		e := diag.New(diag.KindIO, err)
		e.File = canonical
		return nil, e
	}
	value, err := Decode(canonical, raw)
	if err != nil {
		e := diag.New(diag.KindDecode, err)
		e.File = canonical
		return nil, e
	}
	digest, err := Hash(raw)
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", canonical, err)
	}

	doc := &Document{Path: canonical, Value: value, Digest: digest}
	l.cache[canonical] = doc
	return doc, nil
}

// Decode parses raw according to the extension of name.
func Decode(name string, raw []byte) (any, error) {
	var (
		v   any
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &v)
	default:
		v, err = oj.Parse(raw)
	}
	if err != nil {
		return nil, err
	}
	return normalize(v)
}

// normalize converts decoder-specific values into the plain JSON data
// model both query engines accept.
func normalize(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, string, float64, int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", v, err)
		}
		return f, nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value of type %T", v)
}
