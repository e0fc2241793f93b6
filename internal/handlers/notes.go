package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campaignsmith/internal/service"
	"campaignsmith/internal/storage"
)

// NoteHandler handles HTTP requests for notes and their bodies.
type NoteHandler struct {
	notes *service.NoteService
}

func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// NoteContentResponse carries a note's metadata together with its body.
type NoteContentResponse struct {
	Note    *storage.Note `json:"note"`
	Content string        `json:"content"`
}

// SaveNoteRequest is the payload for replacing a note's body. Version is
// optional; when present a stale value is rejected instead of overwritten.
type SaveNoteRequest struct {
	Content string `json:"content"`
	Version *int64 `json:"version"`
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.List(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateNoteInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	n, err := h.notes.Create(r.Context(), chi.URLParam(r, "projectID"), input)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, content, err := h.notes.Content(r.Context(), chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, NoteContentResponse{Note: n, Content: content})
}

func (h *NoteHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	n, err := h.notes.Save(r.Context(), chi.URLParam(r, "noteID"), req.Content, req.Version)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// HTML serves the rendered note body.
func (h *NoteHandler) HTML(w http.ResponseWriter, r *http.Request) {
	html, err := h.notes.Render(r.Context(), chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), chi.URLParam(r, "noteID")); err != nil {
		writeError(w, r.Context(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
