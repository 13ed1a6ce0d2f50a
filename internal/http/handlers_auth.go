package http

import (
	"errors"
	"net/http"

	"finweb/internal/log"
	"finweb/internal/session"
)

type loginPage struct {
	Email string
	Error string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if _, ok := s.currentSession(r); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.render(w, r, http.StatusOK, "login_page", loginPage{})
	case http.MethodPost:
		s.handleLoginSubmit(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	p, fail := ParseBodyOrFail(r)
	if fail != nil {
		fail.Write(w)
		return
	}
	email := p.Get("email")

	sess, token, err := s.sessions.Login(r.Context(), email, p.Get("password"))
	if err != nil {
		if errors.Is(err, session.ErrEmptyCredentials) {
			s.render(w, r, http.StatusUnprocessableEntity, "login_page", loginPage{Email: email, Error: err.Error()})
			return
		}
		log.FromContext(r.Context()).WithComponent(log.ComponentSession).ErrorContext(r.Context(), "Login failed",
			log.FieldError, err.Error(), log.FieldOperation, log.OpLogin)
		s.render(w, r, http.StatusInternalServerError, "login_page", loginPage{Email: email, Error: "Login failed. Please try again."})
		return
	}

	s.setSessionCookies(w, r, token, sess)
	if r.Header.Get("HX-Request") == "true" {
		NewHTMXResponse().Redirect("/").Write(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if fail := RequirePOST(r); fail != nil {
		fail.Write(w)
		return
	}
	if sess, ok := s.currentSession(r); ok {
		if err := s.sessions.Logout(r.Context(), sess.ID); err != nil {
			log.FromContext(r.Context()).WithComponent(log.ComponentSession).ErrorContext(r.Context(), "Logout failed",
				log.FieldError, err.Error(), log.FieldOperation, log.OpLogout)
		}
	}
	clearSessionCookies(w)
	if r.Header.Get("HX-Request") == "true" {
		NewHTMXResponse().Redirect("/login").Write(w)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
