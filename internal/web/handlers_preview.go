package web

import (
	"net/http"

	"github.com/JonMunkholm/feedmap/internal/core"
	"github.com/JonMunkholm/feedmap/internal/mapping"
	"github.com/JonMunkholm/feedmap/internal/web/templates"
)

type inspectQuery struct {
	Format string `schema:"format"`
}

// handleInspect describes the shape of a document posted as the raw body.
// The optional format query parameter is the user's current choice and only
// drives the mismatch hint.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	var q inspectQuery
	if err := decodeQuery(r, &q); err != nil {
		s.respondError(w, r, err)
		return
	}
	var chosen mapping.Format
	if q.Format != "" {
		f, err := mapping.ParseFormat(q.Format)
		if err != nil {
			s.respondErrorStatus(w, r, err, http.StatusBadRequest)
			return
		}
		chosen = f
	}

	data, err := s.readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	doc, err := mapping.Decode(data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, core.Inspect(doc, chosen))
}

type inspectSourceRequest struct {
	Source  core.Source `json:"source"`
	Refresh bool        `json:"refresh"`
}

// handleInspectSource fetches a sample from a source and describes it.
func (s *Server) handleInspectSource(w http.ResponseWriter, r *http.Request) {
	var req inspectSourceRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	in, err := s.backend.InspectSource(r.Context(), req.Source, req.Refresh)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, in)
}

// handlePreview evaluates a mapping configuration without saving it.
// HTMX requests get the rendered table instead of JSON.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req core.PreviewRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	resp, err := s.backend.Preview(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.PreviewTable(resp).Render(r.Context(), w); err != nil {
			s.respondErrorStatus(w, r, err, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, resp)
}

// handleMatchIntegrations ranks saved integrations against a posted document.
func (s *Server) handleMatchIntegrations(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	doc, err := mapping.Decode(data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	matches, err := s.backend.MatchIntegrations(r.Context(), doc)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if matches == nil {
		matches = []core.IntegrationMatch{}
	}
	writeJSON(w, matches)
}
