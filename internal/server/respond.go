package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/msttree/pkg/errors"
	"github.com/matzehuels/msttree/pkg/observability"
	"github.com/matzehuels/msttree/pkg/store"
)

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// respondError maps err to a status code and writes a JSON error body.
// Server errors are logged and reported; their details are not exposed.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		route := chi.RouteContext(r.Context()).RoutePattern()
		s.logger.Error("request failed", "method", r.Method, "route", route, "error", err)
		observability.HTTP().OnError(r.Context(), r.Method, route, err)
		msg = "internal error"
	}
	s.respondJSON(w, status, errorBody{
		Error:     errorDetail{Code: string(code), Message: msg},
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func statusFor(err error) (int, errors.Code) {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput
	case stderrors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, errors.ErrCodeNotFound
	}

	code := errors.GetCode(err)
	switch {
	case code == errors.ErrCodeInvalidGraph:
		return http.StatusUnprocessableEntity, code
	case errors.IsClientError(err):
		return http.StatusBadRequest, code
	}
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound, code
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented, code
	case "":
		return http.StatusInternalServerError, errors.ErrCodeInternal
	}
	return http.StatusInternalServerError, code
}
