// Package chartspec loads externally produced chart descriptions and hands
// them to a renderer untouched. Nothing here looks inside data, layout or
// config beyond checking that each is well-formed JSON.
package chartspec

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("chartspec: spec not found")

// Spec is one {data, layout, config} triple.
type Spec struct {
	Name   string          `json:"-"`
	Data   json.RawMessage `json:"data"`
	Layout json.RawMessage `json:"layout"`
	Config json.RawMessage `json:"config"`
}

// Parse decodes a spec document. Missing parts stay nil.
func Parse(name string, b []byte) (*Spec, error) {
	s := &Spec{Name: name}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("chartspec: %s: %w", name, err)
	}
	return s, nil
}

// Load reads one spec file; its name is the file name without extension.
func Load(path string) (*Spec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(NameOf(path), b)
}

// NameOf is the spec name for a file path.
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// List returns the *.json files in dir sorted by name.
func List(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadDir loads every spec in dir. The first malformed file aborts the load.
func LoadDir(dir string) ([]*Spec, error) {
	paths, err := List(dir)
	if err != nil {
		return nil, err
	}
	out := make([]*Spec, 0, len(paths))
	for _, p := range paths {
		s, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Find loads the spec called name from dir.
func Find(dir, name string) (*Spec, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s, err := Load(filepath.Join(dir, name+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s, err
}
