package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"campaignsmith/internal/apperr"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperr.NotFound("map"), http.StatusNotFound, "MAP_NOT_FOUND"},
		{"validation", apperr.Validation("INVALID_MAP_TITLE", "title"), http.StatusBadRequest, "INVALID_MAP_TITLE"},
		{"invalid reference", apperr.InvalidReference("LINK_MAP_NOT_FOUND", "missing"), http.StatusBadRequest, "LINK_MAP_NOT_FOUND"},
		{"unsafe path", apperr.UnsafePath("/etc/passwd"), http.StatusBadRequest, "UNSAFE_PATH"},
		{"too large", apperr.TooLarge("NOTE_TOO_LARGE", 1024), http.StatusRequestEntityTooLarge, "NOTE_TOO_LARGE"},
		{"conflict", apperr.Conflict("note"), http.StatusConflict, "NOTE_VERSION_CONFLICT"},
		{"storage", apperr.Storage(errors.New("disk gone"), "write failed"), http.StatusInternalServerError, "STORAGE_FAILURE"},
		{"untyped", errors.New("surprise"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, context.Background(), tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}
