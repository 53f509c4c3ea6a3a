package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/feedmap/internal/core"
)

func (s *Server) handleListIntegrations(w http.ResponseWriter, r *http.Request) {
	var filter core.IntegrationFilter
	if err := decodeQuery(r, &filter); err != nil {
		s.respondError(w, r, err)
		return
	}

	list, err := s.backend.ListIntegrations(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, list)
}

func (s *Server) handleCreateIntegration(w http.ResponseWriter, r *http.Request) {
	var in core.Integration
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	created, err := s.backend.CreateIntegration(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/integrations/"+created.ID.String())
	writeJSONStatus(w, http.StatusCreated, created)
}

func (s *Server) handleGetIntegration(w http.ResponseWriter, r *http.Request) {
	in, err := s.backend.GetIntegration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, in)
}

func (s *Server) handleUpdateIntegration(w http.ResponseWriter, r *http.Request) {
	var in core.Integration
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	updated, err := s.backend.UpdateIntegration(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, updated)
}

func (s *Server) handleDeleteIntegration(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteIntegration(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRunSync runs one sync now. A failed run is still recorded, so it is
// returned alongside the error status.
func (s *Server) handleRunSync(w http.ResponseWriter, r *http.Request) {
	run, err := s.backend.RunSync(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if run == nil {
			s.respondError(w, r, err)
			return
		}
		msg := core.MapError(err)
		writeJSONStatus(w, statusFor(err), map[string]any{
			"run":   run,
			"error": ErrorResponse{Error: run.Error, Message: msg.Message, Action: msg.Action, Code: msg.Code},
		})
		return
	}
	writeJSON(w, map[string]any{"run": run})
}

type runsQuery struct {
	Limit int `schema:"limit"`
}

func (s *Server) handleListSyncRuns(w http.ResponseWriter, r *http.Request) {
	var q runsQuery
	if err := decodeQuery(r, &q); err != nil {
		s.respondError(w, r, err)
		return
	}

	runs, err := s.backend.ListSyncRuns(r.Context(), chi.URLParam(r, "id"), q.Limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if runs == nil {
		runs = []core.SyncRun{}
	}
	writeJSON(w, runs)
}
