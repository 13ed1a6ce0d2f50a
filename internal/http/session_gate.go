package http

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"finweb/internal/api"
	"finweb/internal/log"
	"finweb/internal/session"
)

// requireSession resolves the session cookie. Unauthenticated page loads are
// redirected to /login; htmx requests receive HX-Redirect instead.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.currentSession(r)
		if !ok {
			if r.Header.Get("HX-Request") == "true" {
				NewHTMXResponse().Status(http.StatusUnauthorized).Redirect("/login").Write(w)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := session.NewContext(r.Context(), sess)
		ctx = api.WithToken(ctx, sess.Token)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldSessionID, sess.ID))
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) currentSession(r *http.Request) (session.Session, bool) {
	c, err := r.Cookie(session.CookieName)
	if err != nil || c.Value == "" {
		return session.Session{}, false
	}
	sess, err := s.sessions.Resolve(r.Context(), c.Value)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			log.FromContext(r.Context()).WithComponent(log.ComponentSession).WarnContext(r.Context(), "Session cookie rejected",
				log.FieldError, err.Error())
		}
		return session.Session{}, false
	}
	return sess, sess.IsAuthenticated()
}

// sessionFrom returns the session placed in the request by requireSession.
func sessionFrom(r *http.Request) session.Session {
	sess, _ := session.FromContext(r.Context())
	return sess
}

func (s *Server) setSessionCookies(w http.ResponseWriter, r *http.Request, token string, sess session.Session) {
	maxAge := int(s.sessions.TTL() / time.Second)
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	// Non-authoritative mirror of the logged-in email for client scripts.
	http.SetCookie(w, &http.Cookie{
		Name:     session.EmailCookieName,
		Value:    url.QueryEscape(sess.User.Email),
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{session.CookieName, session.EmailCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
}
