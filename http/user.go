package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"fritter/auth"
	"fritter/errs"
)

// registerUserRoutes is a helper for registering all User routes.
func (s *Server) registerUserRoutes(r *mux.Router) {
	r.HandleFunc("/api/users", s.requireNoAuth(s.handleRegister)).Methods("POST")

	// Refreet routes live under /api/users because refreeting is a user
	// action on somebody else's freet, same as following.
	r.HandleFunc("/api/users/freets/{id:[0-9]+}/refreet", s.requireAuth(s.handleRefreet)).Methods("POST")
	r.HandleFunc("/api/users/freets/{id:[0-9]+}/refreet-quote", s.requireAuth(s.handleRefreetQuote)).Methods("POST")

	r.HandleFunc("/api/users/{username}/username", s.requireAuth(s.handleRename)).Methods("PUT")
	r.HandleFunc("/api/users/{username}/password", s.requireAuth(s.handleChangePassword)).Methods("PUT")
	r.HandleFunc("/api/users/{username}", s.requireAuth(s.handleDeleteUser)).Methods("DELETE")
	r.HandleFunc("/api/users/{username}/following", s.requireAuth(s.handleToggleFollow)).Methods("PATCH")
	r.HandleFunc("/api/users/{username}/following/freets", s.requireAuth(s.handleFeed)).Methods("GET")
	r.HandleFunc("/api/users/{username}/followers", s.requireAuth(s.handleFollowers)).Methods("GET")
	r.HandleFunc("/api/users/{username}/following", s.requireAuth(s.handleFollowing)).Methods("GET")
}

// handleRegister creates a new account and signs it in right away.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
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

	name, err := s.us.CreateUser(creds.Username, creds.Password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.signIn(w, name)
	json.NewEncoder(w).Encode(map[string]string{
		"message":  "User " + name + " has been created",
		"username": name,
	})
}

// handleRename gives the signed-in user a new username. Their freets
// follow along inside the same operation.
func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	username := auth.GetUsername(r.Context())
	if body.Username == username {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "This is your current username!"))
		return
	}

	newName, err := s.us.UpdateName(username, body.Username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.sessions.Rename(username, newName)

	json.NewEncoder(w).Encode(map[string]string{
		"message": "Your new user name is: " + newName,
	})
}

// handleChangePassword replaces the signed-in user's password. Reusing the
// current password is rejected.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	username := auth.GetUsername(r.Context())
	if s.us.Authenticate(username, body.Password) {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "This is your current password! Please choose a different password!"))
		return
	}

	if err := s.us.UpdatePassword(username, body.Password); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Your password has been changed.",
	})
}

// handleDeleteUser deletes the signed-in user's account, with everything
// that cascades from it, and signs them out everywhere.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username := auth.GetUsername(r.Context())
	if _, err := s.us.DeleteUser(username); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.sessions.DestroyUser(username)
	s.signOut(w)

	json.NewEncoder(w).Encode(map[string]string{
		"message": "Successfully deleted account. You have been signed out. Please make a new account to post Freets.",
	})
}

// handleToggleFollow follows the user in the url, or unfollows them if
// they are already followed.
func (s *Server) handleToggleFollow(w http.ResponseWriter, r *http.Request) {
	target := mux.Vars(r)["username"]
	username := auth.GetUsername(r.Context())

	if target == username {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "You can't follow yourself!"))
		return
	}
	if _, err := s.us.UserByName(target); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "There is no user associated with this username: %s", target))
		return
	}

	following, err := s.us.Following(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	message := "You are now following " + target + "!"
	toggle := s.us.Follow
	for _, name := range following {
		if name == target {
			message = "You are now un-following " + target + "!"
			toggle = s.us.Unfollow
			break
		}
	}

	user, err := toggle(username, target)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   message,
		"name":      user.Name,
		"following": user.Following,
	})
}

// handleFeed returns the freets of everyone the signed-in user follows.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	username := auth.GetUsername(r.Context())
	feed, err := s.us.Feed(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	views := s.fs.ProjectFreets(feed, true)
	if err := json.NewEncoder(w).Encode(views); err != nil {
		errs.LogError(r, err)
	}
}

// handleFollowers returns the follower names of the signed-in user.
func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	username := auth.GetUsername(r.Context())
	followers, err := s.us.Followers(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string][]string{
		"followers": followers,
	})
}

// handleFollowing returns the names the signed-in user follows.
func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	username := auth.GetUsername(r.Context())
	following, err := s.us.Following(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string][]string{
		"following": following,
	})
}

// handleRefreet toggles the signed-in user's bare refreet of a freet.
func (s *Server) handleRefreet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.fs.FreetByID(id); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "The Freet associated with ID %s does not exist.", id))
		return
	}

	username := auth.GetUsername(r.Context())
	result, err := s.us.Refreet(id, username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(result.Freet); err != nil {
		errs.LogError(r, err)
	}
}

// handleRefreetQuote creates a quote refreet of a freet with the
// signed-in user's commentary.
func (s *Server) handleRefreetQuote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.fs.FreetByID(id); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "The Freet associated with ID %s does not exist.", id))
		return
	}

	var body freetBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	username := auth.GetUsername(r.Context())
	view, err := s.us.RefreetQuote(id, username, body.Content)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(view); err != nil {
		errs.LogError(r, err)
	}
}
