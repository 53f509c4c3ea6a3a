package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/feedmap/internal/core"
)

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := s.backend.ListEntities(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entities == nil {
		entities = []core.Entity{}
	}
	writeJSON(w, entities)
}

// handleUpsertEntities adds or renames directory entries. Entries not in the
// request are left alone.
func (s *Server) handleUpsertEntities(w http.ResponseWriter, r *http.Request) {
	var entities []core.Entity
	if err := s.decodeJSON(w, r, &entities); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.backend.UpsertEntities(r.Context(), entities); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]int{"upserted": len(entities)})
}

func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteEntity(r.Context(), chi.URLParam(r, "key")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
