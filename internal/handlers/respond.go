// Package handlers exposes the services over HTTP. Handlers decode and
// validate transport concerns only; every domain rule lives in the service
// layer, and service errors map onto status codes here.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"campaignsmith/internal/apperr"
	"campaignsmith/internal/contextutil"
	"campaignsmith/internal/service"
)

// ErrorResponse is the error payload shape for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps an application error onto an HTTP status and logs server
// faults. Client faults are logged at debug to keep noise down.
func writeError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		logger.ErrorContext(ctx, "unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "INTERNAL_ERROR"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInvalidReference, apperr.KindValidation, apperr.KindUnsafePath:
		status = http.StatusBadRequest
	case apperr.KindResourceTooLarge:
		status = http.StatusRequestEntityTooLarge
	case apperr.KindConflict:
		status = http.StatusConflict
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed", "code", appErr.Code, "error", err)
	} else {
		logger.DebugContext(ctx, "request rejected", "code", appErr.Code, "status", status)
	}
	writeJSON(w, status, ErrorResponse{Error: appErr.Message, Code: appErr.Code})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("INVALID_JSON", "body")
	}
	return nil
}

// readUpload pulls one file out of a multipart form. bodyLimit bounds the
// whole request body; the per-entity byte ceilings are enforced again in the
// service layer.
func readUpload(w http.ResponseWriter, r *http.Request, field string, bodyLimit int64) (service.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit+(1<<20))
	if err := r.ParseMultipartForm(bodyLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return service.Upload{}, apperr.TooLarge("REQUEST_TOO_LARGE", bodyLimit)
		}
		return service.Upload{}, apperr.Validation("INVALID_MULTIPART", "body")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return service.Upload{}, apperr.Validation("FILE_REQUIRED", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return service.Upload{}, apperr.Storage(err, "failed to read upload")
	}
	return service.Upload{
		Filename:    header.Filename,
		ContentType: uploadContentType(header),
		Data:        data,
	}, nil
}

func uploadContentType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ct
}
