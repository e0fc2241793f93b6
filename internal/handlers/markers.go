package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/service"
	"campaignsmith/internal/storage"
)

// MarkerHandler handles HTTP requests for markers.
type MarkerHandler struct {
	markers *service.MarkerService
}

func NewMarkerHandler(markers *service.MarkerService) *MarkerHandler {
	return &MarkerHandler{markers: markers}
}

func (h *MarkerHandler) List(w http.ResponseWriter, r *http.Request) {
	markers, err := h.markers.List(r.Context(), chi.URLParam(r, "mapID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, markers)
}

func (h *MarkerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateMarkerInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	m, err := h.markers.Create(r.Context(), chi.URLParam(r, "mapID"), input)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Patch applies a partial update. Mentioning any of the three link fields,
// including with null, switches the patch into link-rewrite mode; the
// service then rebuilds and re-validates the whole link.
func (h *MarkerHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	patch, err := markerPatchFromJSON(raw)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	m, err := h.markers.Patch(r.Context(), chi.URLParam(r, "markerID"), patch)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MarkerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.markers.Delete(r.Context(), chi.URLParam(r, "markerID")); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func markerPatchFromJSON(raw map[string]json.RawMessage) (service.MarkerPatch, error) {
	var patch service.MarkerPatch

	str := func(key string, dst **string) error {
		field, ok := raw[key]
		if !ok {
			return nil
		}
		var v string
		if !bytes.Equal(field, []byte("null")) {
			if err := json.Unmarshal(field, &v); err != nil {
				return apperr.Validation("INVALID_JSON", key)
			}
		}
		*dst = &v
		return nil
	}
	num := func(key string, dst **float64) error {
		field, ok := raw[key]
		if !ok {
			return nil
		}
		var v float64
		if err := json.Unmarshal(field, &v); err != nil {
			return apperr.Validation("INVALID_JSON", key)
		}
		*dst = &v
		return nil
	}

	if err := str("title", &patch.Title); err != nil {
		return patch, err
	}
	if err := str("description", &patch.Description); err != nil {
		return patch, err
	}
	if err := num("x", &patch.X); err != nil {
		return patch, err
	}
	if err := num("y", &patch.Y); err != nil {
		return patch, err
	}
	if err := str("marker_type", &patch.MarkerType); err != nil {
		return patch, err
	}
	if err := str("color", &patch.Color); err != nil {
		return patch, err
	}
	if err := str("icon", &patch.Icon); err != nil {
		return patch, err
	}

	if field, ok := raw["points"]; ok {
		var points []storage.Point
		if !bytes.Equal(field, []byte("null")) {
			if err := json.Unmarshal(field, &points); err != nil {
				return patch, apperr.Validation("INVALID_JSON", "points")
			}
		}
		patch.Points = &points
	}
	if field, ok := raw["style"]; ok {
		style := json.RawMessage(field)
		if bytes.Equal(field, []byte("null")) {
			style = nil
		}
		patch.Style = &style
	}

	for _, key := range []string{"link_type", "link_note_id", "link_map_id"} {
		if _, ok := raw[key]; ok {
			patch.LinkSet = true
		}
	}
	if patch.LinkSet {
		if err := str("link_type", &patch.LinkType); err != nil {
			return patch, err
		}
		if err := str("link_note_id", &patch.LinkNoteID); err != nil {
			return patch, err
		}
		if err := str("link_map_id", &patch.LinkMapID); err != nil {
			return patch, err
		}
	}

	if field, ok := raw["version"]; ok {
		var version int64
		if err := json.Unmarshal(field, &version); err != nil {
			return patch, apperr.Validation("INVALID_JSON", "version")
		}
		patch.Version = &version
	}
	return patch, nil
}
