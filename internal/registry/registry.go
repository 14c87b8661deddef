// Package registry loads the template directory index at startup and exposes
// a read-only mapping from template name to descriptor.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"template-api/internal/models"
)

const (
	indexFile  = "templates.json"
	configFile = "template.json"
)

// Info is the index entry for one template, as served by the listing
// endpoint.
type Info struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Descriptor is the fully-loaded definition of one template.
type Descriptor struct {
	Name        string
	Dir         string // absolute template directory
	Title       string
	Description string
	// Prompts maps prompt key to its declared default, reserved keys
	// excluded.
	Prompts map[string]any
	// CopyPatterns are path.Match globs whose file contents are copied
	// verbatim instead of rendered (from _render_options.copy_without_render).
	CopyPatterns []string
}

// Registry is immutable after New and safe for concurrent reads.
type Registry struct {
	base        string
	descriptors map[string]*Descriptor
	names       []string
}

type index struct {
	Templates map[string]Info `json:"templates"`
}

// New scans basePath once: reads the index, then each template's declared
// configuration. Any malformed entry fails startup.
func New(basePath string) (*Registry, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolving template base path: %w", err)
	}

	raw, err := os.ReadFile(filepath.Join(abs, indexFile))
	if err != nil {
		return nil, fmt.Errorf("reading template index: %w", err)
	}
	var idx index
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("parsing template index: %w", err)
	}
	if len(idx.Templates) == 0 {
		return nil, fmt.Errorf("template index %s declares no templates", indexFile)
	}

	r := &Registry{
		base:        abs,
		descriptors: make(map[string]*Descriptor, len(idx.Templates)),
	}
	for name, info := range idx.Templates {
		dir := filepath.Join(abs, filepath.FromSlash(info.Path))
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			return nil, fmt.Errorf("template %q: directory not found: %s", name, dir)
		}
		prompts, copyPatterns, err := loadPrompts(dir)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}
		r.descriptors[name] = &Descriptor{
			Name:         name,
			Dir:          dir,
			Title:        info.Title,
			Description:  info.Description,
			Prompts:      prompts,
			CopyPatterns: copyPatterns,
		}
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

func loadPrompts(dir string) (map[string]any, []string, error) {
	raw, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", configFile, err)
	}
	var cfg map[string]any
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", configFile, err)
	}

	var copyPatterns []string
	if opts, ok := cfg["_render_options"].(map[string]any); ok {
		if raw, ok := opts["copy_without_render"].([]any); ok {
			for _, p := range raw {
				if s, ok := p.(string); ok {
					copyPatterns = append(copyPatterns, s)
				}
			}
		}
	}

	for k := range models.ReservedKeys {
		delete(cfg, k)
	}
	return cfg, copyPatterns, nil
}

// List returns the index entries keyed by template name.
func (r *Registry) List() map[string]Info {
	out := make(map[string]Info, len(r.descriptors))
	for name, d := range r.descriptors {
		rel, err := filepath.Rel(r.base, d.Dir)
		if err != nil {
			rel = d.Dir
		}
		out[name] = Info{
			Path:        filepath.ToSlash(rel),
			Title:       d.Title,
			Description: d.Description,
		}
	}
	return out
}

// Names returns all template names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Get returns the descriptor for name.
func (r *Registry) Get(name string) (*Descriptor, error) {
	d, ok := r.descriptors[name]
	if !ok {
		return nil, models.NotFoundf("template %q not found", name)
	}
	return d, nil
}
