package models

import (
	"strconv"
)

// ReservedKeys are prompt-schema entries that are metadata, not parameters.
// They are never merged into a render context and never accepted as overrides.
var ReservedKeys = map[string]struct{}{
	"__prompts__":     {},
	"_render_options": {},
}

// GenerationRequest carries the caller-supplied parameters for one render.
// The named fields are the recognized parameters; Extra holds any additional
// prompt keys declared by the template.
type GenerationRequest struct {
	TemplateName string
	ProjectName  string
	UseR         *bool
	RVersion     string
	LatexMode    string
	FirstName    string
	LastName     string
	Email        string
	Institution  string
	Extra        map[string]any
}

func (r *GenerationRequest) Validate() error {
	if r.TemplateName == "" {
		return &Error{Kind: KindValidation, Message: "template_name is required", Status: 400}
	}
	return nil
}

// Overrides flattens the request back into a parameter map containing only
// the fields the caller actually supplied.
func (r *GenerationRequest) Overrides() map[string]any {
	out := make(map[string]any, len(r.Extra)+8)
	for k, v := range r.Extra {
		if _, reserved := ReservedKeys[k]; reserved {
			continue
		}
		out[k] = v
	}
	if r.ProjectName != "" {
		out["project_name"] = r.ProjectName
	}
	if r.UseR != nil {
		out["use_r"] = *r.UseR
	}
	if r.RVersion != "" {
		out["r_version"] = r.RVersion
	}
	if r.LatexMode != "" {
		out["latex_mode"] = r.LatexMode
	}
	if r.FirstName != "" {
		out["first_name"] = r.FirstName
	}
	if r.LastName != "" {
		out["last_name"] = r.LastName
	}
	if r.Email != "" {
		out["email"] = r.Email
	}
	if r.Institution != "" {
		out["institution"] = r.Institution
	}
	return out
}

// GenerationRequestFromParams builds a request from a decoded JSON object or
// a query-string map. Recognized fields are popped from the map; everything
// else stays as a free-form override.
func GenerationRequestFromParams(params map[string]any) (*GenerationRequest, error) {
	req := &GenerationRequest{Extra: make(map[string]any)}
	for k, v := range params {
		switch k {
		case "template_name":
			s, err := asString(k, v)
			if err != nil {
				return nil, err
			}
			req.TemplateName = s
		case "project_name":
			s, err := asString(k, v)
			if err != nil {
				return nil, err
			}
			req.ProjectName = s
		case "use_r":
			b, err := asBool(k, v)
			if err != nil {
				return nil, err
			}
			req.UseR = &b
		case "r_version":
			s, err := asString(k, v)
			if err != nil {
				return nil, err
			}
			req.RVersion = s
		case "latex_mode":
			s, err := asString(k, v)
			if err != nil {
				return nil, err
			}
			req.LatexMode = s
		case "first_name":
			s, err := asString(k, v)
			if err != nil {
				return nil, err
			}
			req.FirstName = s
		case "last_name":
			s, err := asString(k, v)
			if err != nil {
				return nil, err
			}
			req.LastName = s
		case "email":
			s, err := asString(k, v)
			if err != nil {
				return nil, err
			}
			req.Email = s
		case "institution":
			s, err := asString(k, v)
			if err != nil {
				return nil, err
			}
			req.Institution = s
		default:
			req.Extra[k] = v
		}
	}
	return req, nil
}

func asString(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", Validationf("parameter %q must be a string, got %T", key, v)
	}
	return s, nil
}

func asBool(key string, v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, Validationf("parameter %q must be a boolean, got %q", key, t)
		}
		return b, nil
	default:
		return false, Validationf("parameter %q must be a boolean, got %T", key, v)
	}
}

// LatexMode values accepted by the resolver.
const (
	LatexAuto    = "auto"
	LatexFull    = "full"
	LatexCurated = "curated"
)

func ValidLatexMode(mode string) error {
	switch mode {
	case LatexAuto, LatexFull, LatexCurated:
		return nil
	}
	return Validationf("latex_mode must be one of %q, %q, %q, got %q",
		LatexAuto, LatexFull, LatexCurated, mode)
}
