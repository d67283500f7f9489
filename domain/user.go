package domain

// User is an account. The follow relation is kept as two mirrored
// adjacency lists of usernames: if A follows B then B appears in A's
// Following and A appears in B's Followers, always both or neither.
type User struct {
	Name string `json:"name"`

	// Password only carries an incoming plaintext through the validation
	// chain; it is hashed into PasswordHash and cleared before storage.
	Password     string `json:"-"`
	PasswordHash string `json:"-"`

	Followers []string `json:"followers"`
	Following []string `json:"following"`
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	c.Followers = append([]string(nil), u.Followers...)
	c.Following = append([]string(nil), u.Following...)
	return &c
}

// UserService is the user half of the core. It owns every User entity and
// the follow graph, and calls into the freet store for the operations that
// touch freets (delete, rename, like, refreet).
type UserService interface {
	// CreateUser stores a new user and returns its name. The name must not
	// be taken.
	CreateUser(name, password string) (string, error)

	// UserByName returns the user, or errs.NotFound.
	UserByName(name string) (*User, error)

	// Users returns every stored user in creation order.
	Users() []*User

	// UpdateName renames the user, rewriting every reference to the old
	// name in the same step: freet authorship, liker lists, and the
	// follower/following lists of every other user.
	UpdateName(oldName, newName string) (string, error)

	// UpdatePassword replaces the user's credential.
	UpdatePassword(name, newPassword string) error

	// DeleteUser removes the user and cascades: their likes are withdrawn,
	// their freets deleted (with the full freet cascade), and they are
	// unlinked from every other user's adjacency lists, in that order.
	DeleteUser(name string) (*User, error)

	// LikeFreet toggles the user's like on the content-bearing freet
	// behind the given ID (liking a bare refreet likes its parent).
	// Returns the affected freet.
	LikeFreet(freetID, name string) (*Freet, error)

	// Follow adds the mirrored follow edge from -> to. Unfollow removes
	// it. Both return the follower.
	Follow(from, to string) (*User, error)
	Unfollow(from, to string) (*User, error)

	// Feed returns the freets of everyone the user follows, sorted by ID
	// descending. IDs compare as strings, so once they reach two digits
	// the order diverges from numeric ("2" sorts after "10"). That is the
	// historical behavior and is kept deliberately.
	Feed(name string) ([]*Freet, error)

	// Followers and Following return snapshot copies of the adjacency
	// lists.
	Followers(name string) ([]string, error)
	Following(name string) ([]string, error)

	// Authenticate reports whether the credentials are valid. A missing
	// user is simply false, never an error.
	Authenticate(name, password string) bool

	// Refreet toggles the user's bare refreet of the content-bearing
	// freet behind the given ID. A user holds at most one bare refreet of
	// a given freet at a time.
	Refreet(freetID, name string) (*RefreetResult, error)

	// RefreetQuote creates a quote refreet of the content-bearing freet
	// behind the given ID and returns it combined with a snapshot of the
	// quoted freet.
	RefreetQuote(freetID, name, content string) (*ViewFreet, error)
}

// RefreetResult reports what a Refreet call did. Undone is true when the
// call removed an existing bare refreet instead of creating one.
type RefreetResult struct {
	Freet  ViewFreet
	Undone bool
}
