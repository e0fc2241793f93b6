package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"campaignsmith/internal/service"
	"campaignsmith/internal/storage"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	root := t.TempDir()
	registry, err := storage.OpenRegistry(filepath.Join(root, storage.RegistryFilename))
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	t.Cleanup(func() { registry.Close() })

	locator := storage.NewScanLocator(registry)
	limits := service.Limits{
		MaxMapImageBytes: 40 << 20,
		MaxPhotoBytes:    10 << 20,
		MaxNoteBytes:     300 << 10,
	}
	return NewRouter(&Deps{
		Registry:      registry,
		Projects:      service.NewProjectService(registry, root),
		Maps:          service.NewMapService(registry, locator, limits),
		Markers:       service.NewMarkerService(locator, limits),
		Notes:         service.NewNoteService(registry, locator, limits),
		Characters:    service.NewCharacterService(registry, locator, limits),
		Relationships: service.NewRelationshipService(registry, locator),
		Limits:        limits,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, wantStatus int, out any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s = %d, want %d: %s", method, path, rec.Code, wantStatus, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func uploadImage(t *testing.T, router http.Handler, method, path string, fields map[string]string, wantStatus int, out any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="upload.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("not-a-real-png")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s = %d, want %d: %s", method, path, rec.Code, wantStatus, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

// End-to-end: a project with a map, a linked note, and the cleanup cascade
// when the note goes away.
func TestRouterProjectLifecycle(t *testing.T) {
	router := newTestRouter(t)

	var project storage.Project
	doJSON(t, router, http.MethodPost, "/api/projects",
		map[string]string{"name": "Homebrew"}, http.StatusCreated, &project)

	var m storage.Map
	uploadImage(t, router, http.MethodPost, "/api/projects/"+project.ID+"/maps",
		map[string]string{"title": "Overworld"}, http.StatusCreated, &m)

	var note storage.Note
	doJSON(t, router, http.MethodPost, "/api/projects/"+project.ID+"/notes",
		map[string]string{"title": "Boss Notes", "type": "md"}, http.StatusCreated, &note)

	var marker storage.Marker
	doJSON(t, router, http.MethodPost, "/api/maps/"+m.ID+"/markers", map[string]any{
		"title": "Lair", "x": 0.4, "y": 0.6,
		"link_type": "note", "link_note_id": note.ID,
	}, http.StatusCreated, &marker)

	// Serve the image back.
	req := httptest.NewRequest(http.MethodGet, "/api/maps/"+m.ID+"/file", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "not-a-real-png" {
		t.Fatalf("map file = %d %q", rec.Code, rec.Body.String())
	}

	doJSON(t, router, http.MethodDelete, "/api/notes/"+note.ID, nil, http.StatusNoContent, nil)

	var markers []storage.Marker
	doJSON(t, router, http.MethodGet, "/api/maps/"+m.ID+"/markers", nil, http.StatusOK, &markers)
	if len(markers) != 1 {
		t.Fatalf("markers = %+v, want one", markers)
	}
	if markers[0].LinkType != "" || markers[0].LinkNoteID != "" {
		t.Errorf("marker link survived note delete: %+v", markers[0])
	}

	doJSON(t, router, http.MethodDelete, "/api/projects/"+project.ID+"?files=true", nil, http.StatusNoContent, nil)
	doJSON(t, router, http.MethodGet, "/api/projects/"+project.ID, nil, http.StatusNotFound, nil)
}

func TestRouterErrorMapping(t *testing.T) {
	router := newTestRouter(t)

	var project storage.Project
	doJSON(t, router, http.MethodPost, "/api/projects",
		map[string]string{"name": "Errors"}, http.StatusCreated, &project)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"missing project", http.MethodGet, "/api/projects/nope", nil, http.StatusNotFound, "PROJECT_NOT_FOUND"},
		{"bad system", http.MethodPost, "/api/projects", map[string]string{"name": "x", "system": "gurps"}, http.StatusBadRequest, "INVALID_SYSTEM"},
		{"missing note", http.MethodGet, "/api/notes/nope", nil, http.StatusNotFound, "NOTE_NOT_FOUND"},
		{"bad note type", http.MethodPost, "/api/projects/" + project.ID + "/notes", map[string]string{"title": "x", "type": "rtf"}, http.StatusBadRequest, "INVALID_NOTE_TYPE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp struct {
				Code string `json:"code"`
			}
			doJSON(t, router, tt.method, tt.path, tt.body, tt.wantStatus, &errResp)
			if errResp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", errResp.Code, tt.wantCode)
			}
		})
	}
}

func TestRouterNoteContentCeiling(t *testing.T) {
	router := newTestRouter(t)

	var project storage.Project
	doJSON(t, router, http.MethodPost, "/api/projects",
		map[string]string{"name": "Limits"}, http.StatusCreated, &project)
	var note storage.Note
	doJSON(t, router, http.MethodPost, "/api/projects/"+project.ID+"/notes",
		map[string]string{"title": "Long"}, http.StatusCreated, &note)

	big := strings.Repeat("a", (300<<10)+1)
	doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/notes/%s/content", note.ID),
		map[string]string{"content": big}, http.StatusRequestEntityTooLarge, nil)

	doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/notes/%s/content", note.ID),
		map[string]string{"content": "# fine"}, http.StatusOK, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/notes/"+note.ID+"/html", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<h1") {
		t.Fatalf("html render = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouterHealth(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}
}
