package crud

import (
	"fritter/domain"
)

// project turns freets into their viewer-facing shape. Likers and child
// refreets are emitted as names/IDs only; embedding the objects themselves
// would make the output cyclic.
//
// The private lists are withheld unless the viewer may see them. For
// refreets the parent is resolved one level: a deleted parent becomes a
// fixed placeholder, an original parent is shown with its pre-edit content
// (first history entry) plus the edited version, and a quote parent is
// shown as it currently stands without walking further up the chain.
//
// Assumes the caller holds the store lock; the input freets may be live or
// detached, parents are looked up live.
func (fg *freetStore) project(freets []*domain.Freet, includePrivateLists bool) []domain.ViewFreet {
	out := make([]domain.ViewFreet, 0, len(freets))
	for _, f := range freets {
		v := domain.ViewFreet{
			ID:          f.ID,
			Author:      f.Author,
			EditHistory: append([]string(nil), f.EditHistory...),
			Likes:       len(f.LikedBy),
			Refreets:    len(f.RefreetedBy),
		}
		if f.ContentBearing() {
			content := f.Content
			v.Content = &content
		}
		if includePrivateLists {
			v.UsersLikingFreet = append([]string(nil), f.LikedBy...)
			v.FreetsRefreetingThisFreet = append([]string(nil), f.RefreetedBy...)
		}
		if f.IsRefreet() {
			fg.projectParent(&v, f.RefreetOf)
		}
		out = append(out, v)
	}
	return out
}

func (fg *freetStore) projectParent(v *domain.ViewFreet, parentID string) {
	if parentID == domain.RefreetOfDeleted {
		v.ParentContent = domain.ParentUnavailable
		return
	}
	parent := fg.db.FreetByID(parentID)
	if parent == nil {
		// Unreachable under the cascade invariants, but a missing parent
		// reads better as unavailable than as a crash.
		v.ParentContent = domain.ParentUnavailable
		return
	}

	likes := len(parent.LikedBy)
	v.ParentAuthor = parent.Author
	v.ParentLikes = &likes

	if !parent.IsRefreet() {
		if len(parent.EditHistory) == 0 {
			v.ParentContent = parent.Content
			v.ParentEditedContent = domain.ParentNotEdited
		} else {
			v.ParentContent = parent.EditHistory[0]
			v.ParentEditedContent = parent.Content
		}
		return
	}

	// The parent is itself a quote refreet. Quotes never accumulate edits,
	// so its current content is its only content.
	v.ParentContent = parent.Content
}
