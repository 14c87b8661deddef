// Package generator renders a template's file tree with resolved parameters
// into a scoped temporary directory and packages the result as a zip archive.
package generator

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"template-api/internal/models"
	"template-api/internal/registry"
)

// Archive is a packaged project, ready to stream.
type Archive struct {
	Filename string
	Content  []byte
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// Generate renders desc with params and packages the rendered project. The
// temporary working area is removed on every exit path.
func Generate(desc *registry.Descriptor, params map[string]any) (*Archive, error) {
	projectDir, cleanup, err := Render(desc, params)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	buf, err := Package(projectDir)
	if err != nil {
		return nil, err
	}

	slug, _ := params["project_slug"].(string)
	if slug == "" {
		slug = "project"
	}
	return &Archive{Filename: slug + ".zip", Content: buf.Bytes()}, nil
}

// Render renders the template tree into a fresh temporary directory and
// returns the rendered project root. The caller must invoke cleanup.
func Render(desc *registry.Descriptor, params map[string]any) (string, func(), error) {
	rootName, err := projectRootName(desc.Dir)
	if err != nil {
		return "", nil, err
	}

	tmp, err := os.MkdirTemp("", "template-render-")
	if err != nil {
		return "", nil, models.Internalf("creating working directory: %v", err)
	}
	cleanup := func() { os.RemoveAll(tmp) }

	srcRoot := filepath.Join(desc.Dir, rootName)
	err = filepath.WalkDir(srcRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return models.Internalf("walking template tree: %v", walkErr)
		}
		rel, err := filepath.Rel(desc.Dir, p)
		if err != nil {
			return models.Internalf("computing template path: %v", err)
		}
		renderedRel, err := renderString(filepath.ToSlash(rel), params)
		if err != nil {
			return err
		}
		dest := filepath.Join(tmp, filepath.FromSlash(renderedRel))

		info, err := d.Info()
		if err != nil {
			return models.Internalf("reading template entry %s: %v", rel, err)
		}

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return models.Internalf("reading symlink %s: %v", rel, err)
			}
			renderedTarget, err := renderString(target, params)
			if err != nil {
				return err
			}
			if err := os.Symlink(renderedTarget, dest); err != nil {
				return models.Internalf("creating symlink %s: %v", renderedRel, err)
			}
		case d.IsDir():
			if err := os.MkdirAll(dest, info.Mode().Perm()); err != nil {
				return models.Internalf("creating directory %s: %v", renderedRel, err)
			}
		default:
			content, err := os.ReadFile(p)
			if err != nil {
				return models.Internalf("reading template file %s: %v", rel, err)
			}
			if !copyVerbatim(desc.CopyPatterns, filepath.ToSlash(rel)) {
				rendered, err := renderString(string(content), params)
				if err != nil {
					return fmt.Errorf("rendering %s: %w", rel, err)
				}
				content = []byte(rendered)
			}
			if err := os.WriteFile(dest, content, info.Mode().Perm()); err != nil {
				return models.Internalf("writing %s: %v", renderedRel, err)
			}
		}
		return nil
	})
	if err != nil {
		cleanup()
		return "", nil, err
	}

	renderedRoot, err := renderString(rootName, params)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return filepath.Join(tmp, renderedRoot), cleanup, nil
}

// projectRootName locates the single project directory inside a template.
func projectRootName(templateDir string) (string, error) {
	entries, err := os.ReadDir(templateDir)
	if err != nil {
		return "", models.Internalf("reading template directory: %v", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	if len(dirs) != 1 {
		return "", models.Internalf("template must contain exactly one project directory, found %d", len(dirs))
	}
	return dirs[0], nil
}

func renderString(s string, params map[string]any) (string, error) {
	tmpl, err := template.New("t").Option("missingkey=error").Funcs(funcs).Parse(s)
	if err != nil {
		return "", models.Internalf("parsing template expression: %v", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", models.Internalf("rendering template expression: %v", err)
	}
	return buf.String(), nil
}

func copyVerbatim(patterns []string, rel string) bool {
	base := path.Base(rel)
	for _, pat := range patterns {
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
		if ok, _ := path.Match(pat, base); ok {
			return true
		}
	}
	return false
}
