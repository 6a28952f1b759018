package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return &study.ValidationError{Field: "body", Message: "must be valid JSON"}
	}
	return nil
}

// statusFor maps domain errors to an HTTP status and a client message.
// Unknown errors are 500s.
func statusFor(err error) (int, string) {
	var verr *study.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, study.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, study.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, study.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, study.ErrGoalNotFound):
		return http.StatusNotFound, "goal not found"
	case errors.Is(err, study.ErrTaskNotFound):
		return http.StatusNotFound, "task not found"
	case errors.Is(err, study.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, study.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, study.ErrNotConnected):
		return http.StatusConflict, "google account not connected; sign in again"
	case errors.Is(err, study.ErrNoPlan):
		return http.StatusUnprocessableEntity, "no study plan could be generated"
	case errors.Is(err, study.ErrGenerationFailed):
		return http.StatusBadGateway, "AI generation failed"
	}
	return http.StatusInternalServerError, "internal server error"
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// PageData holds data for template rendering.
type PageData struct {
	Title         string
	User          *study.User
	Error         string
	Notice        string
	SignInEnabled bool
	Data          any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	data.User = userFrom(r.Context())
	data.SignInEnabled = s.auth != nil && s.auth.Enabled()
	tmpl, ok := s.templates[name]
	if !ok {
		s.internalError(w, r, errors.New("unknown template "+name))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("template error", zap.String("template", name), zap.Error(err))
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.render(w, r, status, "error.html", PageData{Title: http.StatusText(status), Error: msg})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// pageError renders a domain error as an HTML page.
func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("page failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	s.renderError(w, r, status, msg)
}
