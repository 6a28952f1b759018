package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

const (
	sessionCookie  = "studyflow_session"
	stateCookie    = "studyflow_oauth_state"
	verifierCookie = "studyflow_oauth_verifier"

	// flowMaxAge bounds how long a sign-in may take, in seconds.
	flowMaxAge = 600
)

type contextKey struct{}

func withUser(ctx context.Context, u *study.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

func userFrom(ctx context.Context) *study.User {
	u, _ := ctx.Value(contextKey{}).(*study.User)
	return u
}

// withSession attaches the signed-in user, if any, to the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.lookupSession(r.Context(), cookie.Value)
		switch {
		case err == nil:
			r = r.WithContext(withUser(r.Context(), user))
		case errors.Is(err, study.ErrSessionNotFound), errors.Is(err, study.ErrUserNotFound):
			s.clearCookie(w, sessionCookie, "/")
		default:
			s.logger.Error("session lookup failed", zap.Error(err))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) lookupSession(ctx context.Context, token string) (*study.User, error) {
	session, err := s.sessions.GetSession(ctx, token, s.now())
	if err != nil {
		return nil, err
	}
	return s.sessions.GetUser(ctx, session.UserID)
}

// api wraps JSON endpoints that need a signed-in user.
func (s *Server) api(h func(http.ResponseWriter, *http.Request, *study.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r.Context())
		if user == nil {
			s.writeError(w, r, study.ErrUnauthenticated)
			return
		}
		h(w, r, user)
	}
}

// page wraps HTML pages that need a signed-in user.
func (s *Server) page(h func(http.ResponseWriter, *http.Request, *study.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r.Context())
		if user == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h(w, r, user)
	}
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil || !s.auth.Enabled() {
		s.renderError(w, r, http.StatusServiceUnavailable, "Google sign-in is not configured.")
		return
	}
	state := oauth2.GenerateVerifier()
	verifier := oauth2.GenerateVerifier()
	s.setCookie(w, stateCookie, state, "/auth", flowMaxAge)
	s.setCookie(w, verifierCookie, verifier, "/auth", flowMaxAge)
	http.Redirect(w, r, s.auth.AuthCodeURL(state, verifier), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		s.logger.Info("sign-in cancelled", zap.String("reason", reason))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	state, err := r.Cookie(stateCookie)
	if err != nil || subtle.ConstantTimeCompare([]byte(state.Value), []byte(q.Get("state"))) != 1 {
		s.renderError(w, r, http.StatusBadRequest, "Sign-in expired or was tampered with. Please try again.")
		return
	}
	verifier, err := r.Cookie(verifierCookie)
	if err != nil || q.Get("code") == "" {
		s.renderError(w, r, http.StatusBadRequest, "Sign-in expired. Please try again.")
		return
	}
	s.clearCookie(w, stateCookie, "/auth")
	s.clearCookie(w, verifierCookie, "/auth")

	identity, err := s.auth.Exchange(r.Context(), q.Get("code"), verifier.Value)
	if err != nil {
		s.logger.Warn("google sign-in failed", zap.Error(err))
		s.renderError(w, r, http.StatusBadGateway, "Google sign-in failed. Please try again.")
		return
	}

	user := &study.User{
		Email:         identity.Email,
		Name:          identity.Name,
		GoogleSubject: identity.Subject,
		Token:         identity.Token,
	}
	if err := s.sessions.UpsertUser(r.Context(), user); err != nil {
		s.internalError(w, r, err)
		return
	}
	session := &study.Session{UserID: user.ID, ExpiresAt: s.now().Add(s.opts.SessionTTL)}
	if err := s.sessions.CreateSession(r.Context(), session); err != nil {
		s.internalError(w, r, err)
		return
	}

	s.setCookie(w, sessionCookie, session.Token, "/", int(s.opts.SessionTTL.Seconds()))
	s.logger.Info("user signed in", zap.String("user_id", user.ID))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if err := s.sessions.DeleteSession(r.Context(), cookie.Value); err != nil {
			s.logger.Warn("failed to delete session", zap.Error(err))
		}
	}
	s.clearCookie(w, sessionCookie, "/")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) setCookie(w http.ResponseWriter, name, value, path string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(w http.ResponseWriter, name, path string) {
	s.setCookie(w, name, "", path, -1)
}
