// Package params merges caller-supplied parameters with a template's
// declared defaults and computes derived fields. It is a pure data
// transformation with no side effects.
package params

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"template-api/internal/models"
	"template-api/internal/registry"
)

// LaTeX preamble package lists selected by latex_mode. Stated as data so the
// resolver stays branch-light.
var (
	// latexRPackages is chosen for latex_mode=auto when R usage is enabled.
	latexRPackages = []string{
		"amsmath", "booktabs", "graphicx", "hyperref", "listings", "xcolor",
	}
	// latexPlainPackages is chosen for latex_mode=auto without R.
	latexPlainPackages = []string{
		"amsmath", "booktabs", "graphicx", "hyperref",
	}
	latexFullPackages = []string{
		"amsmath", "amssymb", "amsthm", "booktabs", "caption", "enumitem",
		"fancyhdr", "geometry", "graphicx", "hyperref", "listings",
		"microtype", "natbib", "siunitx", "xcolor",
	}
	latexCuratedPackages = []string{
		"amsmath", "booktabs", "geometry", "graphicx", "hyperref", "natbib",
		"siunitx",
	}
)

// LatexPackages returns the package list for a mode. useR only matters for
// mode "auto".
func LatexPackages(mode string, useR bool) ([]string, error) {
	switch mode {
	case models.LatexAuto:
		if useR {
			return latexRPackages, nil
		}
		return latexPlainPackages, nil
	case models.LatexFull:
		return latexFullPackages, nil
	case models.LatexCurated:
		return latexCuratedPackages, nil
	}
	return nil, models.ValidLatexMode(mode)
}

// Resolve produces the final, template-ready parameter map: declared
// defaults, overlaid with the request's overrides, plus derived fields.
func Resolve(desc *registry.Descriptor, req *models.GenerationRequest) (map[string]any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resolved := make(map[string]any, len(desc.Prompts)+4)
	for k, def := range desc.Prompts {
		resolved[k] = collapseDefault(def)
	}

	for k, v := range req.Overrides() {
		def, declared := resolved[k]
		if !declared {
			resolved[k] = v
			continue
		}
		coerced, err := coerce(k, def, v)
		if err != nil {
			return nil, err
		}
		resolved[k] = coerced
	}

	name, _ := resolved["project_name"].(string)
	if name == "" {
		name = "project"
		resolved["project_name"] = name
	}
	resolved["project_slug"] = Slugify(name)

	if mode, ok := resolved["latex_mode"]; ok {
		modeStr, ok := mode.(string)
		if !ok {
			return nil, models.Validationf("latex_mode must be a string, got %T", mode)
		}
		useR := false
		if v, ok := resolved["use_r"]; ok {
			b, err := coerceBool("use_r", v)
			if err != nil {
				return nil, err
			}
			useR = b
			resolved["use_r"] = b
		}
		packages, err := LatexPackages(modeStr, useR)
		if err != nil {
			return nil, err
		}
		resolved["latex_packages"] = packages
	}

	return resolved, nil
}

// collapseDefault turns a declarative default into a concrete value: a list
// default means "first choice wins", a map default means "first key wins".
func collapseDefault(def any) any {
	switch d := def.(type) {
	case []any:
		if len(d) > 0 {
			return d[0]
		}
		return ""
	case map[string]any:
		if len(d) == 0 {
			return ""
		}
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys[0]
	default:
		return def
	}
}

// coerce checks an override against the declared default's type, converting
// query-string values where the conversion is unambiguous.
func coerce(key string, def, val any) (any, error) {
	switch def.(type) {
	case bool:
		return coerceBool(key, val)
	case string:
		if s, ok := val.(string); ok {
			return s, nil
		}
	case float64:
		switch v := val.(type) {
		case float64:
			return v, nil
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err == nil {
				return f, nil
			}
		}
	default:
		if reflect.TypeOf(def) == reflect.TypeOf(val) {
			return val, nil
		}
	}
	return nil, models.Validationf("type mismatch for template parameter %q: expected %s, got %s",
		key, typeName(def), typeName(val))
}

func coerceBool(key string, val any) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b, nil
		}
	}
	return false, models.Validationf("type mismatch for template parameter %q: expected bool, got %s",
		key, typeName(val))
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case bool:
		return "bool"
	case string:
		return "string"
	case float64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
