package visualizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	slogcontext "github.com/veqryn/slog-context"

	"modelviz.dev/modelviz/odm"
)

// MessageModelNotFound is the error text of every unknown model response.
const MessageModelNotFound = "Model not found"

// Envelope is the uniform JSON body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Title   string `json:"title,omitempty"`
}

// Error is an API failure carrying the HTTP status it is reported with.
type Error struct {
	Err     error
	Status  int
	Message string
}

func NewError(err error, status int) *Error {
	return &Error{Err: err, Status: status}
}

// classify maps an error to the status it is reported with.
func classify(err error) *Error {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, odm.ErrModelNotFound):
		return &Error{Err: err, Status: http.StatusNotFound, Message: MessageModelNotFound}
	case errors.Is(err, odm.ErrInvalidFilter), errors.Is(err, odm.ErrInvalidSort):
		return NewError(err, http.StatusBadRequest)
	default:
		return NewError(err, http.StatusInternalServerError)
	}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Write(ctx context.Context, w http.ResponseWriter) {
	msg := e.Message
	if msg == "" {
		msg = e.Err.Error()
	}
	logger := slogcontext.FromCtx(ctx)
	if e.Status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed", slog.Int("status", e.Status), slog.String("error", e.Err.Error()))
	} else {
		logger.DebugContext(ctx, "request rejected", slog.Int("status", e.Status), slog.String("error", e.Err.Error()))
	}
	writeJSON(ctx, w, e.Status, Envelope{Success: false, Error: msg})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	classify(err).Write(ctx, w)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		slogcontext.FromCtx(ctx).ErrorContext(ctx, "failed to encode response", slog.String("error", err.Error()))
		status = http.StatusInternalServerError
		raw = []byte(`{"success":false,"error":"failed to encode response"}`)
	}
	writeRaw(ctx, w, status, raw)
}

func writeRaw(ctx context.Context, w http.ResponseWriter, status int, raw []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(raw); err != nil {
		slogcontext.FromCtx(ctx).DebugContext(ctx, "failed to write response", slog.String("error", err.Error()))
	}
}

func errMethodNotAllowed(method string) error {
	return fmt.Errorf("method %s is not allowed", method)
}

func errNoRoute(path string) error {
	return fmt.Errorf("no route for %s", path)
}
