package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with the request id and mapped through
// core.MapError. API clients get JSON, HTMX requests get the alert
// fragment, and form posts get the full dashboard with the alert on top.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/ShelfLife/internal/core"
	"github.com/JonMunkholm/ShelfLife/internal/logging"
	"github.com/JonMunkholm/ShelfLife/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the user message in the format the
// request expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondErrorWith(w, r, err, templates.DashboardData{})
}

// respondErrorWith is respondError with page data (such as form input to
// echo back) for the HTML case.
func (s *Server) respondErrorWith(w http.ResponseWriter, r *http.Request, err error, page templates.DashboardData) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Info("request rejected", attrs...)
	}

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w)
	case wantsJSON(r):
		writeJSON(w, status, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
	default:
		page.Error = &userMsg
		s.renderDashboard(w, r, status, page)
	}
}

// statusFor picks the HTTP status for an error.
func statusFor(err error) int {
	var (
		ie    *core.ImportError
		ve    *core.VerificationError
		se    *core.StorageError
		maxBE *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxBE):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &ie):
		switch ie.Kind {
		case core.ImportTooLarge:
			return http.StatusRequestEntityTooLarge
		case core.ImportUnsupportedFormat:
			return http.StatusUnsupportedMediaType
		default:
			return http.StatusUnprocessableEntity
		}
	case errors.As(err, &ve):
		switch ve.Kind {
		case core.VerifyNotFound:
			return http.StatusNotFound
		case core.VerifyNoData:
			return http.StatusConflict
		default:
			return http.StatusBadRequest
		}
	case errors.As(err, &se):
		return http.StatusInternalServerError
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("invalid request body")

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
