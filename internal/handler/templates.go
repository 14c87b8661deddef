package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"template-api/internal/generator"
	"template-api/internal/models"
	"template-api/internal/params"
)

// ListTemplates serves the template index.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"templates": h.registry.List(),
	})
}

// TemplateConfig serves the prompt schema for one template.
func (h *Handler) TemplateConfig(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	desc, err := h.registry.Get(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"template": name,
		"config":   desc.Prompts,
	})
}

// GenerateQuery renders a template from query-string parameters.
func (h *Handler) GenerateQuery(w http.ResponseWriter, r *http.Request) {
	raw := make(map[string]any)
	for k, vals := range r.URL.Query() {
		if len(vals) > 0 {
			raw[k] = vals[0]
		}
	}
	h.generate(w, raw)
}

// GenerateJSON renders a template from a JSON body.
func (h *Handler) GenerateJSON(w http.ResponseWriter, r *http.Request) {
	raw := make(map[string]any)
	if err := readJSON(w, r, &raw); err != nil {
		writeError(w, err)
		return
	}
	h.generate(w, raw)
}

func (h *Handler) generate(w http.ResponseWriter, raw map[string]any) {
	req, err := models.GenerationRequestFromParams(raw)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	desc, err := h.registry.Get(req.TemplateName)
	if err != nil {
		// The name came from a parameter, not the path.
		writeError(w, asBadRequest(err))
		return
	}

	resolved, err := params.Resolve(desc, req)
	if err != nil {
		writeError(w, err)
		return
	}

	archive, err := generator.Generate(desc, resolved)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(archive.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(archive.Content)
}
