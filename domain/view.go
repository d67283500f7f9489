package domain

// Placeholder strings the projection emits for refreets whose parent is
// gone or unedited. The exact wording is part of the wire format.
const (
	ParentUnavailable = "This Freet is unavailable."
	ParentNotEdited   = "The original freet has not been edited"
)

// ViewFreet is the viewer-facing shape of a freet. It references likers
// and child refreets by name/ID only, never as embedded objects, so it
// always serializes without cycles.
//
// The private lists (UsersLikingFreet, FreetsRefreetingThisFreet) are only
// populated for signed-in viewers. The Parent* fields are only populated
// when the freet is a refreet; ParentContent carries ParentUnavailable if
// the quoted freet has been deleted.
type ViewFreet struct {
	ID          string   `json:"id"`
	Author      string   `json:"author"`
	Content     *string  `json:"content"`
	EditHistory []string `json:"editHistory"`
	Likes       int      `json:"likes"`
	Refreets    int      `json:"numberOfRefreets"`

	UsersLikingFreet          []string `json:"usersLikingFreet,omitempty"`
	FreetsRefreetingThisFreet []string `json:"freetsRefreetingThisFreet,omitempty"`

	ParentContent       string `json:"parentFreetOriginalContent,omitempty"`
	ParentAuthor        string `json:"parentFreetAuthor,omitempty"`
	ParentLikes         *int   `json:"parentFreetLikes,omitempty"`
	ParentEditedContent string `json:"originalEditedContent,omitempty"`
}
