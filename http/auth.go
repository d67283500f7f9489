package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"fritter/auth"
	"fritter/errs"
)

func (s *Server) registerSessionRoutes(r *mux.Router) {
	r.HandleFunc("/api/session", s.requireNoAuth(s.handleLogin)).Methods("POST")
	r.HandleFunc("/api/session", s.requireAuth(s.handleLogout)).Methods("DELETE")
	r.HandleFunc("/api/session", s.requireAuth(s.handleWhoAmI)).Methods("GET")
}

// credentials is the json body of the register and login requests.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin opens a session for the user if the credentials check out.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	if strings.TrimSpace(creds.Username) == "" {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Username must be non-empty!"))
		return
	}
	if strings.TrimSpace(creds.Password) == "" {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Password must be non-empty!"))
		return
	}
	if _, err := s.us.UserByName(creds.Username); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "There is no account associated with this username!"))
		return
	}
	if !s.us.Authenticate(creds.Username, creds.Password) {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Your name or password is incorrect!"))
		return
	}

	s.signIn(w, creds.Username)
	json.NewEncoder(w).Encode(map[string]string{
		"message":  "Welcome, " + creds.Username + "!",
		"username": creds.Username,
	})
}

// handleLogout destroys the session of the signed-in user.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		s.sessions.Destroy(cookie.Value)
	}
	s.signOut(w)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Successfully signed out.",
	})
}

// handleWhoAmI returns the username of the current session.
func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"username": auth.GetUsername(r.Context()),
	})
}

// signIn opens a session for the user and sets the session cookie.
func (s *Server) signIn(w http.ResponseWriter, username string) {
	token := s.sessions.Create(username)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

// signOut expires the session cookie.
func (s *Server) signOut(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
}

// The authUser middleware resolves the session cookie to a username and
// puts it on the request context. A session whose user has since been
// deleted is destroyed on sight, so the request proceeds anonymously.
func (s *Server) authUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		username, ok := s.sessions.Username(cookie.Value)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if _, err := s.us.UserByName(username); err != nil {
			s.sessions.Destroy(cookie.Value)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.SetUsername(r.Context(), username)))
	})
}

// requireAuth rejects anonymous requests.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUsername(r.Context()) == "" {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You must be logged in to perform this action!"))
			return
		}
		next.ServeHTTP(w, r)
	}
}

// requireNoAuth rejects requests that already carry a session, like
// registering while signed in.
func (s *Server) requireNoAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUsername(r.Context()) != "" {
			errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "You are already signed in!"))
			return
		}
		next.ServeHTTP(w, r)
	}
}
