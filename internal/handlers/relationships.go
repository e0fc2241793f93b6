package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campaignsmith/internal/service"
)

// RelationshipHandler handles HTTP requests for character relationships.
type RelationshipHandler struct {
	relationships *service.RelationshipService
}

func NewRelationshipHandler(relationships *service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{relationships: relationships}
}

func (h *RelationshipHandler) List(w http.ResponseWriter, r *http.Request) {
	relationships, err := h.relationships.List(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, relationships)
}

func (h *RelationshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateRelationshipInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	rel, err := h.relationships.Create(r.Context(), chi.URLParam(r, "projectID"), input)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusCreated, rel)
}

func (h *RelationshipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.relationships.Delete(r.Context(),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "relationshipID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteByID handles the bare-id form, locating the owning project first.
func (h *RelationshipHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	if err := h.relationships.DeleteByID(r.Context(), chi.URLParam(r, "relationshipID")); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
