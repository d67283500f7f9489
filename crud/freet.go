package crud

import (
	"strings"
	"unicode/utf8"

	"fritter/domain"
	"fritter/errs"
	"fritter/storage"
)

// FreetService manages Freets.
// It implements the domain.FreetService interface.
//
// Its exported methods take the store lock for the whole operation, so
// each one is atomic with respect to every other service sharing the
// store, and return detached copies of entities.
type FreetService struct {
	freetValidator
}

// freetValidator runs validations on incoming Freet data.
// On success, it passes the data on to freetStore.
// Otherwise, it returns the error of the validation that has failed.
type freetValidator struct {
	freetStore
}

// freetStore runs the raw arena operations. It assumes that data has been
// validated and that the caller holds the store lock.
type freetStore struct {
	db *storage.Store
}

// NewFreetService returns an instance of FreetService.
func NewFreetService(db *storage.Store) *FreetService {
	return &FreetService{
		freetValidator{
			freetStore{
				db: db,
			},
		},
	}
}

// Ensure the FreetService struct properly implements the domain.FreetService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FreetService = &FreetService{}

// CreateFreet runs validations needed for storing a new Freet and stores it.
// An empty content together with a non-empty refreetOf means a bare refreet.
func (fs *FreetService) CreateFreet(content, author, refreetOf string) (*domain.Freet, error) {
	fs.db.Lock()
	defer fs.db.Unlock()
	f, err := fs.freetValidator.createFreet(content, author, refreetOf)
	if err != nil {
		return nil, err
	}
	return f.Clone(), nil
}

// FreetByID returns a copy of the freet, or errs.NotFound.
func (fs *FreetService) FreetByID(id string) (*domain.Freet, error) {
	fs.db.RLock()
	defer fs.db.RUnlock()
	f := fs.freetStore.byID(id)
	if f == nil {
		return nil, errs.NotFound
	}
	return f.Clone(), nil
}

// FreetsByAuthor returns copies of the author's freets in creation order.
func (fs *FreetService) FreetsByAuthor(author string) []*domain.Freet {
	fs.db.RLock()
	defer fs.db.RUnlock()
	return cloneFreets(fs.freetStore.byAuthor(author))
}

// LikedFreetsByUser returns copies of every freet the user likes.
func (fs *FreetService) LikedFreetsByUser(name string) []*domain.Freet {
	fs.db.RLock()
	defer fs.db.RUnlock()
	return cloneFreets(fs.freetStore.likedBy(name))
}

// AllFreets returns copies of every stored freet in creation order.
func (fs *FreetService) AllFreets() []*domain.Freet {
	fs.db.RLock()
	defer fs.db.RUnlock()
	return cloneFreets(fs.db.Freets())
}

// EditFreet runs validations on the new content and applies the edit.
// Editing a bare refreet is a no-op that returns the freet unchanged; that
// defensive check is load-bearing and must stay.
func (fs *FreetService) EditFreet(id, content string) (*domain.Freet, error) {
	fs.db.Lock()
	defer fs.db.Unlock()
	f, err := fs.freetValidator.editFreet(id, content)
	if err != nil {
		return nil, err
	}
	return f.Clone(), nil
}

// DeleteFreet removes the freet and runs the full refreet cascade. The
// returned entity is the freet as it stood at removal.
func (fs *FreetService) DeleteFreet(id string) (*domain.Freet, error) {
	fs.db.Lock()
	defer fs.db.Unlock()
	f, err := fs.freetStore.delete(id)
	if err != nil {
		return nil, err
	}
	return f.Clone(), nil
}

// UpdateFreetAuthor rewrites the author field in place.
func (fs *FreetService) UpdateFreetAuthor(id, newName string) (*domain.Freet, error) {
	fs.db.Lock()
	defer fs.db.Unlock()
	f := fs.freetStore.byID(id)
	if f == nil {
		return nil, errs.NotFound
	}
	f.Author = newName
	return f.Clone(), nil
}

// Refreeters returns the author names of every freet refreeting the given one.
func (fs *FreetService) Refreeters(id string) []string {
	fs.db.RLock()
	defer fs.db.RUnlock()
	return fs.freetStore.refreeters(id)
}

// ProjectFreets shapes freets for a viewer, resolving refreet parents.
func (fs *FreetService) ProjectFreets(freets []*domain.Freet, includePrivateLists bool) []domain.ViewFreet {
	fs.db.RLock()
	defer fs.db.RUnlock()
	return fs.freetStore.project(freets, includePrivateLists)
}

// createFreet runs validations needed for storing a new Freet.
func (fv *freetValidator) createFreet(content, author, refreetOf string) (*domain.Freet, error) {
	f := &domain.Freet{
		Kind:    domain.KindOriginal,
		Content: content,
		Author:  author,

		EditHistory: []string{},
		LikedBy:     []string{},
		RefreetedBy: []string{},
		RefreetOf:   refreetOf,
	}
	if refreetOf != "" {
		if content == "" {
			f.Kind = domain.KindBareRefreet
		} else {
			f.Kind = domain.KindQuoteRefreet
		}
	}
	err := runFreetValFns(f,
		fv.authorRequired,
		fv.contentValid,
		fv.refreetTargetValid)
	if err != nil {
		return nil, err
	}
	return fv.freetStore.add(f), nil
}

// editFreet runs validations on the replacement content and applies the
// edit. The bare-refreet check comes first: editing a bare refreet is a
// no-op whatever the content, so its content is never validated.
func (fv *freetValidator) editFreet(id, content string) (*domain.Freet, error) {
	f := fv.db.FreetByID(id)
	if f == nil {
		return nil, errs.NotFound
	}
	if !f.ContentBearing() {
		return f, nil
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}
	return fv.freetStore.edit(id, content)
}

// runFreetValFns runs any number of functions of type freetValFn on the passed in Freet object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runFreetValFns(freet *domain.Freet, fns ...freetValFn) error {
	for _, fn := range fns {
		if err := fn(freet); err != nil {
			return err
		}
	}
	return nil
}

// A freetValFn is any function that takes in a pointer to a domain.Freet object and returns an error.
type freetValFn = func(freet *domain.Freet) error

// authorRequired makes sure the freet has an author name attached.
func (fv *freetValidator) authorRequired(freet *domain.Freet) error {
	if freet.Author == "" {
		return errs.Errorf(errs.EINVALID, "Freet author must not be empty.")
	}
	return nil
}

// contentValid makes sure that the Freet's content is non-empty and within
// the length limit, unless it's a bare refreet, where empty content is
// expected.
func (fv *freetValidator) contentValid(freet *domain.Freet) error {
	if freet.Kind == domain.KindBareRefreet {
		return nil
	}
	return validateContent(freet.Content)
}

// refreetTargetValid makes sure a refreet points at an existing,
// content-bearing freet. Refreeting a bare refreet directly is rejected
// here, which is what keeps the refreet chain at depth one and lets the
// delete cascade resolve an ancestor in a single hop.
func (fv *freetValidator) refreetTargetValid(freet *domain.Freet) error {
	if !freet.IsRefreet() || freet.RefreetOf == domain.RefreetOfDeleted {
		return nil
	}
	target := fv.db.FreetByID(freet.RefreetOf)
	if target == nil {
		return errs.Errorf(errs.ENOTFOUND, "The refreeted freet does not exist.")
	}
	if !target.ContentBearing() {
		return errs.Errorf(errs.EINVALID, "You cannot refreet a regular refreet.")
	}
	return nil
}

// validateContent checks content emptiness and length the way the old
// request validators did.
func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errs.Errorf(errs.EINVALID, "You must specify a non-empty Freet message!")
	}
	if utf8.RuneCountInString(content) > domain.MaxFreetLength {
		return errs.Errorf(errs.EINVALID, "Your freet must be less than %d characters long.", domain.MaxFreetLength)
	}
	return nil
}

// add stores the freet and assigns its ID.
func (fg *freetStore) add(f *domain.Freet) *domain.Freet {
	fg.db.InsertFreet(f)
	return f
}

func (fg *freetStore) byID(id string) *domain.Freet {
	return fg.db.FreetByID(id)
}

func (fg *freetStore) byAuthor(author string) []*domain.Freet {
	var out []*domain.Freet
	for _, f := range fg.db.Freets() {
		if f.Author == author {
			out = append(out, f)
		}
	}
	return out
}

func (fg *freetStore) likedBy(name string) []*domain.Freet {
	var out []*domain.Freet
	for _, f := range fg.db.Freets() {
		if containsString(f.LikedBy, name) {
			out = append(out, f)
		}
	}
	return out
}

func (fg *freetStore) refreeters(id string) []string {
	var out []string
	for _, f := range fg.db.Freets() {
		if f.RefreetOf == id {
			out = append(out, f.Author)
		}
	}
	return out
}

// edit pushes the current content onto the edit history and replaces it.
// Bare refreets have no content to edit, so they pass through untouched.
func (fg *freetStore) edit(id, content string) (*domain.Freet, error) {
	f := fg.db.FreetByID(id)
	if f == nil {
		return nil, errs.NotFound
	}
	if f.ContentBearing() {
		f.EditHistory = append(f.EditHistory, f.Content)
		f.Content = content
	}
	return f, nil
}

// delete removes the freet and cascades through the refreet chain:
//
//  1. bare refreets of it vanish with it,
//  2. its ID is unlinked from the content-bearing ancestor's refreet list,
//  3. surviving quote refreets of it are repointed at the deleted sentinel
//     and inherit its edit history, so the original text trail stays
//     displayable after the original is gone,
//  4. the freet itself leaves the arena.
func (fg *freetStore) delete(id string) (*domain.Freet, error) {
	f := fg.db.FreetByID(id)
	if f == nil {
		return nil, errs.NotFound
	}

	var parent *domain.Freet
	if f.IsRefreet() && f.RefreetOf != domain.RefreetOfDeleted {
		parent = fg.db.FreetByID(f.RefreetOf)
	}

	fg.db.FilterFreets(func(c *domain.Freet) bool {
		if c.RefreetOf != id {
			return true
		}
		return c.ContentBearing()
	})

	if parent != nil {
		ancestor := parent
		if !ancestor.ContentBearing() {
			ancestor = fg.db.FreetByID(ancestor.RefreetOf)
		}
		if ancestor != nil {
			ancestor.RefreetedBy = removeString(ancestor.RefreetedBy, id)
		}
	}

	// Bare children are already gone from the arena at this point, so the
	// lookup skips them and only the quotes transition.
	for _, childID := range f.RefreetedBy {
		child := fg.db.FreetByID(childID)
		if child == nil || !child.ContentBearing() {
			continue
		}
		child.RefreetOf = domain.RefreetOfDeleted
		child.EditHistory = append([]string(nil), f.EditHistory...)
	}

	fg.db.RemoveFreet(id)
	return f, nil
}

// resolveContentBearing walks a bare refreet to the freet whose text it
// points at. Content-bearing freets resolve to themselves. The chain-depth
// invariant guarantees a single hop suffices.
func (fg *freetStore) resolveContentBearing(f *domain.Freet) *domain.Freet {
	if f.ContentBearing() {
		return f
	}
	return fg.db.FreetByID(f.RefreetOf)
}

func cloneFreets(freets []*domain.Freet) []*domain.Freet {
	out := make([]*domain.Freet, len(freets))
	for i, f := range freets {
		out[i] = f.Clone()
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func replaceString(list []string, from, to string) []string {
	for i, v := range list {
		if v == from {
			list[i] = to
		}
	}
	return list
}
