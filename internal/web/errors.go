package web

// errors.go turns handler errors into responses.
//
// Every error goes through respondError, which logs the technical error
// with the request id and answers with the user-facing message from
// core.MapError: an HTML fragment for HTMX requests, JSON otherwise.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/useradmin/internal/core"
	"github.com/JonMunkholm/useradmin/internal/logging"
	"github.com/JonMunkholm/useradmin/internal/web/templates"
)

var (
	errRateLimited     = errors.New("rate limit exceeded")
	errNoFile          = errors.New("no file provided")
	errFileTooLarge    = errors.New("file too large")
	errInvalidBody     = errors.New("validation failed: request body is not valid JSON")
	errMissingDocInput = errors.New("validation failed: required field is empty")
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Action  string                `json:"action,omitempty"`
	Code    string                `json:"code"`
	Fields  core.ValidationErrors `json:"fields,omitempty"`
}

// respondError logs err and writes the mapped user message with status.
// A status of 0 selects one from the error (see statusFor).
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
		return
	}

	body := ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		body.Fields = verrs
	}
	writeJSON(w, status, body)
}

// statusFor picks the HTTP status for errors returned by the service.
func statusFor(err error) int {
	var verrs core.ValidationErrors
	var maxBytes *http.MaxBytesError

	switch {
	case errors.As(err, &verrs),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrNoChanges),
		errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, errInvalidBody),
		errors.Is(err, errMissingDocInput),
		errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrRoleNotFound),
		errors.Is(err, core.ErrInvitationNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUserExists),
		errors.Is(err, core.ErrRoleExists):
		return http.StatusConflict
	case errors.As(err, &maxBytes), errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports), errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
