package domain

// MaxFreetLength is the maximum number of characters a freet may carry.
const MaxFreetLength = 140

// RefreetOfDeleted is the sentinel stored in a quote refreet's RefreetOf
// field once the freet it quoted has been deleted.
const RefreetOfDeleted = "deleted"

// FreetKind says which variant of a freet we're dealing with. A freet is
// either an original post, a bare refreet (a pure pointer to somebody
// else's freet, no text of its own), or a quote refreet (a refreet that
// carries its own commentary).
type FreetKind int

const (
	KindOriginal FreetKind = iota
	KindBareRefreet
	KindQuoteRefreet
)

// Freet is a single post. Relationships to other freets and to users are
// held by identifier only (author name, liker names, child freet IDs),
// never by embedded objects, so the graph stays cycle-free.
type Freet struct {
	ID     string    `json:"id"`
	Kind   FreetKind `json:"-"`
	Author string    `json:"author"`

	// Content is meaningless for a bare refreet (Kind == KindBareRefreet).
	Content string `json:"content"`

	// EditHistory holds prior contents, oldest first. Only original freets
	// accumulate entries; a quote refreet gets a copy of its parent's
	// history at creation time and never grows its own.
	EditHistory []string `json:"editHistory"`

	// LikedBy holds the names of users liking this freet, in the order
	// they first liked it. A name appears at most once.
	LikedBy []string `json:"usersLikingFreet"`

	// RefreetedBy holds the IDs of freets refreeting this freet.
	RefreetedBy []string `json:"freetsRefreetingThisFreet"`

	// RefreetOf is empty for an original freet. For a refreet it holds the
	// parent freet's ID, or RefreetOfDeleted once the parent is gone.
	RefreetOf string `json:"refreetOf,omitempty"`
}

// IsRefreet reports whether the freet points at (or pointed at) a parent.
func (f *Freet) IsRefreet() bool {
	return f.RefreetOf != ""
}

// ContentBearing reports whether the freet carries text of its own.
// Originals and quote refreets do, bare refreets don't.
func (f *Freet) ContentBearing() bool {
	return f.Kind != KindBareRefreet
}

// Clone returns a deep copy, so callers outside the store's lock can't
// alias live state.
func (f *Freet) Clone() *Freet {
	c := *f
	c.EditHistory = append([]string(nil), f.EditHistory...)
	c.LikedBy = append([]string(nil), f.LikedBy...)
	c.RefreetedBy = append([]string(nil), f.RefreetedBy...)
	return &c
}

// FreetService is the freet half of the core. It owns every Freet entity
// and the refreet chain between them. It never reaches into the user store.
type FreetService interface {
	// CreateFreet stores a new freet and assigns it a fresh ID. IDs are
	// monotonically increasing and never reused, even after deletion.
	// Pass refreetOf == "" for an original freet.
	CreateFreet(content, author, refreetOf string) (*Freet, error)

	// FreetByID returns the freet, or errs.NotFound.
	FreetByID(id string) (*Freet, error)

	// FreetsByAuthor returns the author's freets in creation order.
	FreetsByAuthor(author string) []*Freet

	// LikedFreetsByUser returns every freet the user currently likes.
	LikedFreetsByUser(name string) []*Freet

	// AllFreets returns every stored freet in creation order.
	AllFreets() []*Freet

	// EditFreet pushes the current content onto the edit history and
	// replaces it. On a bare refreet it is a no-op that returns the freet
	// unchanged.
	EditFreet(id, content string) (*Freet, error)

	// DeleteFreet removes the freet and cascades: bare refreets of it are
	// removed outright, quote refreets of it survive with their RefreetOf
	// set to RefreetOfDeleted and the deleted freet's edit history copied
	// onto them. Returns the freet as it stood at removal.
	DeleteFreet(id string) (*Freet, error)

	// UpdateFreetAuthor rewrites the author field in place. Used by the
	// user store's rename cascade.
	UpdateFreetAuthor(id, newName string) (*Freet, error)

	// Refreeters returns the names of the authors of every freet
	// refreeting the given freet.
	Refreeters(id string) []string

	// ProjectFreets shapes freets for a viewer. See ViewFreet.
	ProjectFreets(freets []*Freet, includePrivateLists bool) []ViewFreet
}
