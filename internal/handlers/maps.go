package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/service"
)

// MapHandler handles HTTP requests for maps and their image files.
type MapHandler struct {
	maps   *service.MapService
	limits service.Limits
}

func NewMapHandler(maps *service.MapService, limits service.Limits) *MapHandler {
	return &MapHandler{maps: maps, limits: limits}
}

func (h *MapHandler) List(w http.ResponseWriter, r *http.Request) {
	maps, err := h.maps.List(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, maps)
}

// Create accepts a multipart form: the image under "file", plus "title" and
// an optional "parent_map_id".
func (h *MapHandler) Create(w http.ResponseWriter, r *http.Request) {
	upload, err := readUpload(w, r, "file", h.limits.MaxMapImageBytes)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	input := service.CreateMapInput{
		Title: r.FormValue("title"),
		File:  upload,
	}
	if parent := r.FormValue("parent_map_id"); parent != "" {
		input.ParentMapID = &parent
	}
	m, err := h.maps.Create(r.Context(), chi.URLParam(r, "projectID"), input)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MapHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.maps.Get(r.Context(), chi.URLParam(r, "mapID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Patch applies a partial update. The parent field is tri-state: absent
// leaves the hierarchy alone, null detaches to root, an id re-parents.
func (h *MapHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	var input service.PatchMapInput
	if field, ok := raw["title"]; ok {
		var title string
		if err := json.Unmarshal(field, &title); err != nil {
			writeError(w, r.Context(), apperr.Validation("INVALID_JSON", "title"))
			return
		}
		input.Title = &title
	}
	if field, ok := raw["parent_map_id"]; ok {
		input.SetParent = true
		if !bytes.Equal(field, []byte("null")) {
			var parent string
			if err := json.Unmarshal(field, &parent); err != nil {
				writeError(w, r.Context(), apperr.Validation("INVALID_JSON", "parent_map_id"))
				return
			}
			input.ParentMapID = &parent
		}
	}
	if field, ok := raw["version"]; ok {
		var version int64
		if err := json.Unmarshal(field, &version); err != nil {
			writeError(w, r.Context(), apperr.Validation("INVALID_JSON", "version"))
			return
		}
		input.Version = &version
	}

	m, err := h.maps.Patch(r.Context(), chi.URLParam(r, "mapID"), input)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.maps.Delete(r.Context(), chi.URLParam(r, "mapID")); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// File streams the map's image from disk.
func (h *MapHandler) File(w http.ResponseWriter, r *http.Request) {
	abs, err := h.maps.FilePath(r.Context(), chi.URLParam(r, "mapID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	http.ServeFile(w, r, abs)
}
