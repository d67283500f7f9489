package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"

	"fritter/auth"
	"fritter/crud"
	"fritter/domain"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "fritter_session"

// Server provides the http functionality of this app, namely routing,
// request handling, and middleware. It performs authentication and
// authorization before handing things over to the crud services; the
// services themselves are handed a plain username and never see a session.
type Server struct {
	router  *mux.Router
	handler http.Handler

	us domain.UserService
	fs domain.FreetService

	sessions *auth.SessionManager
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(isProd bool, csrfKey string, services *crud.Services, sessions *auth.SessionManager) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		us:       services.User,
		fs:       services.Freet,
		sessions: sessions,
	}

	// Register routes of the auth system.
	s.registerSessionRoutes(s.router)

	// Register routes of the crud system.
	s.registerFreetRoutes(s.router)
	s.registerUserRoutes(s.router)

	// Set up middleware that needs to run on every request.
	s.router.Use(setContentTypeJSON, s.authUser)

	s.handler = s.router
	if isProd {
		csrfMw := csrf.Protect([]byte(csrfKey), csrf.Path("/"))
		s.handler = csrfMw(s.router)
	}
	return s
}

// ServeHTTP makes the server usable as a plain http.Handler, which is also
// what the tests mount.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	log.Printf("[http] listening on :%d", port)
	log.Fatal(http.ListenAndServe(":"+strconv.Itoa(port), s.handler))
}
