package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"fritter/auth"
	"fritter/domain"
	"fritter/errs"
)

// registerFreetRoutes is a helper for registering all Freet routes.
func (s *Server) registerFreetRoutes(r *mux.Router) {
	r.HandleFunc("/api/freets", s.requireAuth(s.handleCreateFreet)).Methods("POST")
	r.HandleFunc("/api/freets", s.handleListFreets).Methods("GET")
	r.HandleFunc("/api/freets/{author}", s.handleFreetsByAuthor).Methods("GET")
	r.HandleFunc("/api/freets/{id:[0-9]+}", s.requireAuth(s.handleEditFreet)).Methods("PUT")
	r.HandleFunc("/api/freets/{id:[0-9]+}", s.requireAuth(s.handleDeleteFreet)).Methods("DELETE")
	r.HandleFunc("/api/freets/{id:[0-9]+}/likes", s.requireAuth(s.handleLikeFreet)).Methods("PATCH")
}

// freetBody is the json body of the create, edit and quote requests.
type freetBody struct {
	Content string `json:"content"`
}

// handleCreateFreet stores a new original freet authored by the signed-in
// user. Content validation lives in the service.
func (s *Server) handleCreateFreet(w http.ResponseWriter, r *http.Request) {
	var body freetBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	username := auth.GetUsername(r.Context())
	freet, err := s.fs.CreateFreet(body.Content, username, "")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	views := s.fs.ProjectFreets([]*domain.Freet{freet}, true)
	if err := json.NewEncoder(w).Encode(views); err != nil {
		errs.LogError(r, err)
	}
}

// handleListFreets returns every freet, newest first. Anonymous viewers
// get the shape without the liker and refreeter lists.
func (s *Server) handleListFreets(w http.ResponseWriter, r *http.Request) {
	freets := s.fs.AllFreets()
	reverseFreets(freets)

	signedIn := auth.GetUsername(r.Context()) != ""
	views := s.fs.ProjectFreets(freets, signedIn)
	if err := json.NewEncoder(w).Encode(views); err != nil {
		errs.LogError(r, err)
	}
}

// handleFreetsByAuthor returns one author's freets, newest first.
func (s *Server) handleFreetsByAuthor(w http.ResponseWriter, r *http.Request) {
	author := mux.Vars(r)["author"]
	if _, err := s.us.UserByName(author); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "Author with the name: %s does not exist!", author))
		return
	}

	freets := s.fs.FreetsByAuthor(author)
	reverseFreets(freets)

	signedIn := auth.GetUsername(r.Context()) != ""
	views := s.fs.ProjectFreets(freets, signedIn)
	if err := json.NewEncoder(w).Encode(views); err != nil {
		errs.LogError(r, err)
	}
}

// handleEditFreet replaces a freet's content, pushing the old content onto
// its edit history. Only the author may edit, and refreets can't be edited
// at all.
func (s *Server) handleEditFreet(w http.ResponseWriter, r *http.Request) {
	freet, ok := s.authoredFreet(w, r)
	if !ok {
		return
	}
	if freet.IsRefreet() {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are unable to edit a refreet!"))
		return
	}

	var body freetBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	edited, err := s.fs.EditFreet(freet.ID, body.Content)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	views := s.fs.ProjectFreets([]*domain.Freet{edited}, true)
	if err := json.NewEncoder(w).Encode(views[0]); err != nil {
		errs.LogError(r, err)
	}
}

// handleDeleteFreet deletes a freet and returns it as it stood at
// removal. Bare refreets can't be deleted directly; un-refreeting is the
// way to get rid of those.
func (s *Server) handleDeleteFreet(w http.ResponseWriter, r *http.Request) {
	freet, ok := s.authoredFreet(w, r)
	if !ok {
		return
	}
	if !freet.ContentBearing() {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "You can't delete a regular refreet! Please un-refreet your freet if you wish to delete your refreet."))
		return
	}

	deleted, err := s.fs.DeleteFreet(freet.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	views := s.fs.ProjectFreets([]*domain.Freet{deleted}, true)
	if err := json.NewEncoder(w).Encode(views[0]); err != nil {
		errs.LogError(r, err)
	}
}

// handleLikeFreet toggles the signed-in user's like on a freet.
func (s *Server) handleLikeFreet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.fs.FreetByID(id); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "The Freet associated with ID %s does not exist.", id))
		return
	}

	username := auth.GetUsername(r.Context())
	freet, err := s.us.LikeFreet(id, username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	views := s.fs.ProjectFreets([]*domain.Freet{freet}, true)
	if err := json.NewEncoder(w).Encode(views[0]); err != nil {
		errs.LogError(r, err)
	}
}

// authoredFreet loads the freet from the url and checks it belongs to the
// signed-in user. On failure it has already written the error response.
func (s *Server) authoredFreet(w http.ResponseWriter, r *http.Request) (*domain.Freet, bool) {
	id := mux.Vars(r)["id"]
	freet, err := s.fs.FreetByID(id)
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "The Freet associated with ID %s does not exist.", id))
		return nil, false
	}
	username := auth.GetUsername(r.Context())
	if freet.Author != username {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You do not have permissions to modify this freet associated with ID %s.", id))
		return nil, false
	}
	return freet, true
}

func reverseFreets(freets []*domain.Freet) {
	for i, j := 0, len(freets)-1; i < j; i, j = i+1, j-1 {
		freets[i], freets[j] = freets[j], freets[i]
	}
}
