package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/service"
)

// CharacterHandler handles HTTP requests for characters and their photos.
type CharacterHandler struct {
	characters *service.CharacterService
	limits     service.Limits
}

func NewCharacterHandler(characters *service.CharacterService, limits service.Limits) *CharacterHandler {
	return &CharacterHandler{characters: characters, limits: limits}
}

func (h *CharacterHandler) List(w http.ResponseWriter, r *http.Request) {
	characters, err := h.characters.List(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, characters)
}

func (h *CharacterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateCharacterInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	c, err := h.characters.Create(r.Context(), chi.URLParam(r, "projectID"), input)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CharacterHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.characters.Get(r.Context(), chi.URLParam(r, "characterID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CharacterHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	var patch service.CharacterPatch
	fields := map[string]any{
		"name":    &patch.Name,
		"summary": &patch.Summary,
		"notes":   &patch.Notes,
		"tags":    &patch.Tags,
		"version": &patch.Version,
	}
	for key, dst := range fields {
		field, ok := raw[key]
		if !ok {
			continue
		}
		if err := unmarshalInto(field, dst); err != nil {
			writeError(w, r.Context(), apperr.Validation("INVALID_JSON", key))
			return
		}
	}

	c, err := h.characters.Patch(r.Context(), chi.URLParam(r, "characterID"), patch)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// unmarshalInto allocates the inner pointer and decodes the field into it,
// so only keys present in the payload become non-nil patch fields.
func unmarshalInto(field json.RawMessage, dst any) error {
	switch p := dst.(type) {
	case **string:
		var v string
		if err := json.Unmarshal(field, &v); err != nil {
			return err
		}
		*p = &v
	case **int64:
		var v int64
		if err := json.Unmarshal(field, &v); err != nil {
			return err
		}
		*p = &v
	case **[]string:
		var v []string
		if err := json.Unmarshal(field, &v); err != nil {
			return err
		}
		*p = &v
	}
	return nil
}

func (h *CharacterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.characters.Delete(r.Context(), chi.URLParam(r, "characterID")); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetPhoto accepts a multipart form with the image under "file".
func (h *CharacterHandler) SetPhoto(w http.ResponseWriter, r *http.Request) {
	upload, err := readUpload(w, r, "file", h.limits.MaxPhotoBytes)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	c, err := h.characters.SetPhoto(r.Context(), chi.URLParam(r, "characterID"), upload)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CharacterHandler) ClearPhoto(w http.ResponseWriter, r *http.Request) {
	c, err := h.characters.ClearPhoto(r.Context(), chi.URLParam(r, "characterID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Photo streams the character's photo from disk.
func (h *CharacterHandler) Photo(w http.ResponseWriter, r *http.Request) {
	abs, contentType, err := h.characters.PhotoPath(r.Context(), chi.URLParam(r, "characterID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	http.ServeFile(w, r, abs)
}
