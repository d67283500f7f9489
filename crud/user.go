package crud

import (
	"sort"

	"golang.org/x/crypto/bcrypt"

	"fritter/domain"
	"fritter/errs"
	"fritter/storage"
)

// UserService manages Users and the follow graph.
// It implements the domain.UserService interface.
//
// It shares the storage.Store with the FreetService, and the operations
// that touch freets (delete, rename, like, refreet) reach into the freet
// arena through its own freetStore. The reverse never happens; the freet
// side knows nothing about users.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userStore.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	pepper string
	userStore
}

// userStore runs the raw arena operations. It assumes that data has been
// validated and that the caller holds the store lock.
type userStore struct {
	db     *storage.Store
	freets freetStore
}

// NewUserService returns an instance of UserService. The pepper is mixed
// into every password before hashing.
func NewUserService(db *storage.Store, pepper string) *UserService {
	return &UserService{
		userValidator{
			pepper: pepper,
			userStore: userStore{
				db:     db,
				freets: freetStore{db: db},
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// CreateUser runs validations needed for storing a new User and stores it.
func (us *UserService) CreateUser(name, password string) (string, error) {
	us.db.Lock()
	defer us.db.Unlock()
	user := &domain.User{
		Name:      name,
		Password:  password,
		Followers: []string{},
		Following: []string{},
	}
	if err := us.userValidator.createUser(user); err != nil {
		return "", err
	}
	return user.Name, nil
}

// UserByName returns a copy of the user, or errs.NotFound.
func (us *UserService) UserByName(name string) (*domain.User, error) {
	us.db.RLock()
	defer us.db.RUnlock()
	u := us.db.UserByName(name)
	if u == nil {
		return nil, errs.NotFound
	}
	return u.Clone(), nil
}

// Users returns copies of every stored user in creation order.
func (us *UserService) Users() []*domain.User {
	us.db.RLock()
	defer us.db.RUnlock()
	out := make([]*domain.User, 0, len(us.db.Users()))
	for _, u := range us.db.Users() {
		out = append(out, u.Clone())
	}
	return out
}

// UpdateName renames the user and rewrites every reference to the old
// name: freet authorship, liker lists, and the adjacency lists of every
// other user. All of it happens under one hold of the lock, so no reader
// can see a half-renamed graph.
func (us *UserService) UpdateName(oldName, newName string) (string, error) {
	us.db.Lock()
	defer us.db.Unlock()
	return us.userValidator.updateName(oldName, newName)
}

// UpdatePassword replaces the user's credential.
func (us *UserService) UpdatePassword(name, newPassword string) error {
	us.db.Lock()
	defer us.db.Unlock()
	return us.userValidator.updatePassword(name, newPassword)
}

// DeleteUser removes the user and everything hanging off them.
func (us *UserService) DeleteUser(name string) (*domain.User, error) {
	us.db.Lock()
	defer us.db.Unlock()
	return us.userStore.deleteUser(name)
}

// LikeFreet toggles the user's like on the content-bearing freet behind
// the given ID and returns a copy of the affected freet.
func (us *UserService) LikeFreet(freetID, name string) (*domain.Freet, error) {
	us.db.Lock()
	defer us.db.Unlock()
	f, err := us.userStore.likeFreet(freetID, name)
	if err != nil {
		return nil, err
	}
	return f.Clone(), nil
}

// Follow adds the mirrored follow edge from -> to and returns a copy of
// the follower. Following someone twice is a no-op, not an error.
func (us *UserService) Follow(from, to string) (*domain.User, error) {
	us.db.Lock()
	defer us.db.Unlock()
	u, err := us.userValidator.follow(from, to)
	if err != nil {
		return nil, err
	}
	return u.Clone(), nil
}

// Unfollow removes the mirrored follow edge from -> to and returns a copy
// of the follower.
func (us *UserService) Unfollow(from, to string) (*domain.User, error) {
	us.db.Lock()
	defer us.db.Unlock()
	u, err := us.userValidator.unfollow(from, to)
	if err != nil {
		return nil, err
	}
	return u.Clone(), nil
}

// Feed returns copies of the freets of everyone the user follows, newest
// ID first. The sort compares IDs as strings, which is the historical
// ordering and intentionally not a numeric sort.
func (us *UserService) Feed(name string) ([]*domain.Freet, error) {
	us.db.RLock()
	defer us.db.RUnlock()
	u := us.db.UserByName(name)
	if u == nil {
		return nil, errs.NotFound
	}
	var feed []*domain.Freet
	for _, followed := range u.Following {
		feed = append(feed, us.freets.byAuthor(followed)...)
	}
	sort.Slice(feed, func(i, j int) bool {
		return feed[i].ID > feed[j].ID
	})
	return cloneFreets(feed), nil
}

// Followers returns a snapshot copy of the user's follower names.
func (us *UserService) Followers(name string) ([]string, error) {
	us.db.RLock()
	defer us.db.RUnlock()
	u := us.db.UserByName(name)
	if u == nil {
		return nil, errs.NotFound
	}
	return append([]string{}, u.Followers...), nil
}

// Following returns a snapshot copy of the names the user follows.
func (us *UserService) Following(name string) ([]string, error) {
	us.db.RLock()
	defer us.db.RUnlock()
	u := us.db.UserByName(name)
	if u == nil {
		return nil, errs.NotFound
	}
	return append([]string{}, u.Following...), nil
}

// Authenticate reports whether the credentials are valid. A missing user
// is false, never an error.
func (us *UserService) Authenticate(name, password string) bool {
	us.db.RLock()
	defer us.db.RUnlock()
	u := us.db.UserByName(name)
	if u == nil {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password+us.pepper))
	return err == nil
}

// Refreet toggles the user's bare refreet of the content-bearing freet
// behind the given ID.
func (us *UserService) Refreet(freetID, name string) (*domain.RefreetResult, error) {
	us.db.Lock()
	defer us.db.Unlock()
	return us.userStore.refreet(freetID, name)
}

// RefreetQuote creates a quote refreet of the content-bearing freet behind
// the given ID.
func (us *UserService) RefreetQuote(freetID, name, content string) (*domain.ViewFreet, error) {
	us.db.Lock()
	defer us.db.Unlock()
	if err := validateContent(content); err != nil {
		return nil, err
	}
	return us.userStore.refreetQuote(freetID, name, content)
}

// createUser runs validations needed for storing a new User.
func (uv *userValidator) createUser(user *domain.User) error {
	err := runUserValFns(user,
		uv.nameRequired,
		uv.nameAvailable,
		uv.passwordRequired,
		uv.passwordBcrypt,
		uv.passwordHashRequired)
	if err != nil {
		return err
	}
	uv.userStore.addUser(user)
	return nil
}

// updateName validates the new name against the same rules as creation,
// then runs the rename cascade.
func (uv *userValidator) updateName(oldName, newName string) (string, error) {
	probe := &domain.User{Name: newName}
	if err := runUserValFns(probe, uv.nameRequired, uv.nameAvailable); err != nil {
		return "", err
	}
	return uv.userStore.renameUser(oldName, newName)
}

// updatePassword hashes the replacement password and stores it.
func (uv *userValidator) updatePassword(name, newPassword string) error {
	probe := &domain.User{Password: newPassword}
	if err := runUserValFns(probe, uv.passwordRequired, uv.passwordBcrypt); err != nil {
		return err
	}
	u := uv.db.UserByName(name)
	if u == nil {
		return errs.NotFound
	}
	u.PasswordHash = probe.PasswordHash
	return nil
}

// follow checks that both ends of the edge exist, then links them. The
// self-follow guard deliberately lives in the request layer, not here.
func (uv *userValidator) follow(from, to string) (*domain.User, error) {
	if uv.db.UserByName(to) == nil {
		return nil, errs.Errorf(errs.ENOTFOUND, "There is no user associated with this username: %s", to)
	}
	if uv.db.UserByName(from) == nil {
		return nil, errs.NotFound
	}
	return uv.userStore.follow(from, to), nil
}

func (uv *userValidator) unfollow(from, to string) (*domain.User, error) {
	if uv.db.UserByName(to) == nil || uv.db.UserByName(from) == nil {
		return nil, errs.NotFound
	}
	return uv.userStore.unfollow(from, to), nil
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runUserValFns(user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn = func(user *domain.User) error

func (uv *userValidator) nameRequired(user *domain.User) error {
	if user.Name == "" {
		return errs.UsernameRequired
	}
	return nil
}

func (uv *userValidator) nameAvailable(user *domain.User) error {
	if uv.db.UserByName(user.Name) != nil {
		return errs.UsernameTaken
	}
	return nil
}

func (uv *userValidator) passwordRequired(user *domain.User) error {
	if user.Password == "" {
		return errs.PasswordRequired
	}
	return nil
}

// passwordBcrypt hashes a user's password with the configured pepper and
// bcrypts it, if the Password field is not the empty string.
func (uv *userValidator) passwordBcrypt(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(user.Password+uv.pepper), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedBytes)
	user.Password = ""
	return nil
}

func (uv *userValidator) passwordHashRequired(user *domain.User) error {
	if user.PasswordHash == "" {
		return errs.PasswordRequired
	}
	return nil
}

func (ug *userStore) addUser(user *domain.User) {
	ug.db.InsertUser(user)
}

// renameUser rewrites every reference to oldName across both arenas, then
// reindexes the user entity under the new name. Freet authorship, liker
// lists and the adjacency lists of every other user all carry the name by
// value, so each one has to be touched; missing any of them would leave
// the follow graph asymmetric and make the old name dangle.
func (ug *userStore) renameUser(oldName, newName string) (string, error) {
	if ug.db.UserByName(oldName) == nil {
		return "", errs.NotFound
	}
	for _, f := range ug.freets.byAuthor(oldName) {
		f.Author = newName
	}
	for _, f := range ug.freets.likedBy(oldName) {
		f.LikedBy = replaceString(f.LikedBy, oldName, newName)
	}
	for _, u := range ug.db.Users() {
		u.Followers = replaceString(u.Followers, oldName, newName)
		u.Following = replaceString(u.Following, oldName, newName)
	}
	ug.db.RenameUser(oldName, newName)
	return newName, nil
}

// deleteUser removes the user and cascades, in this order: withdraw their
// likes, delete their freets (with the full freet cascade), unlink them
// from every follower's following list and every followee's followers
// list, then drop the entity. Likes and freets go first so no surviving
// freet keeps a reference to a user that no longer exists.
func (ug *userStore) deleteUser(name string) (*domain.User, error) {
	u := ug.db.UserByName(name)
	if u == nil {
		return nil, errs.NotFound
	}

	for _, f := range ug.freets.likedBy(name) {
		f.LikedBy = removeString(f.LikedBy, name)
	}

	// Snapshot the IDs first: deleting an original also removes any bare
	// refreet of it, which may itself be on this list.
	var ids []string
	for _, f := range ug.freets.byAuthor(name) {
		ids = append(ids, f.ID)
	}
	for _, id := range ids {
		if ug.db.FreetByID(id) == nil {
			continue
		}
		if _, err := ug.freets.delete(id); err != nil {
			return nil, err
		}
	}

	for _, followerName := range u.Followers {
		if follower := ug.db.UserByName(followerName); follower != nil {
			follower.Following = removeString(follower.Following, name)
		}
	}
	for _, followedName := range u.Following {
		if followed := ug.db.UserByName(followedName); followed != nil {
			followed.Followers = removeString(followed.Followers, name)
		}
	}

	ug.db.RemoveUser(name)
	return u, nil
}

// likeFreet toggles name on the liker list of the content-bearing freet
// behind freetID. Likes attach to the content, so liking a bare refreet
// likes the freet it points at.
func (ug *userStore) likeFreet(freetID, name string) (*domain.Freet, error) {
	f := ug.db.FreetByID(freetID)
	if f == nil {
		return nil, errs.NotFound
	}
	target := ug.freets.resolveContentBearing(f)
	if target == nil {
		return nil, errs.NotFound
	}
	if ug.db.UserByName(name) == nil {
		return nil, errs.NotFound
	}

	if containsString(target.LikedBy, name) {
		target.LikedBy = removeString(target.LikedBy, name)
	} else {
		target.LikedBy = append(target.LikedBy, name)
	}
	return target, nil
}

// follow links both adjacency lists in one step so they can never
// diverge. Re-following is a no-op.
func (ug *userStore) follow(from, to string) *domain.User {
	follower := ug.db.UserByName(from)
	followed := ug.db.UserByName(to)
	if !containsString(follower.Following, to) {
		follower.Following = append(follower.Following, to)
		followed.Followers = append(followed.Followers, from)
	}
	return follower
}

// unfollow unlinks both adjacency lists in one step.
func (ug *userStore) unfollow(from, to string) *domain.User {
	follower := ug.db.UserByName(from)
	followed := ug.db.UserByName(to)
	follower.Following = removeString(follower.Following, to)
	followed.Followers = removeString(followed.Followers, from)
	return follower
}

// refreet toggles name's bare refreet of the content-bearing freet behind
// freetID. A user holds at most one bare refreet per target; quote
// refreets are independent of this toggle.
func (ug *userStore) refreet(freetID, name string) (*domain.RefreetResult, error) {
	f := ug.db.FreetByID(freetID)
	if f == nil {
		return nil, errs.NotFound
	}
	target := ug.freets.resolveContentBearing(f)
	if target == nil {
		return nil, errs.NotFound
	}

	var existing *domain.Freet
	for _, af := range ug.freets.byAuthor(name) {
		if af.RefreetOf == target.ID && !af.ContentBearing() {
			existing = af
			break
		}
	}
	if existing != nil {
		target.RefreetedBy = removeString(target.RefreetedBy, existing.ID)
		deleted, err := ug.freets.delete(existing.ID)
		if err != nil {
			return nil, err
		}
		return &domain.RefreetResult{
			Freet:  ug.freets.project([]*domain.Freet{deleted}, true)[0],
			Undone: true,
		}, nil
	}

	bare := &domain.Freet{
		Kind:        domain.KindBareRefreet,
		Author:      name,
		EditHistory: append([]string{}, target.EditHistory...),
		LikedBy:     []string{},
		RefreetedBy: []string{},
		RefreetOf:   target.ID,
	}
	ug.db.InsertFreet(bare)
	target.RefreetedBy = append(target.RefreetedBy, bare.ID)

	return &domain.RefreetResult{
		Freet: ug.freets.project([]*domain.Freet{bare}, true)[0],
	}, nil
}

// refreetQuote creates a quote refreet of the content-bearing freet behind
// freetID. The quote inherits a copy of the target's edit history so the
// original text trail stays displayable even if the target is deleted
// later; the quote's own history never grows.
func (ug *userStore) refreetQuote(freetID, name, content string) (*domain.ViewFreet, error) {
	f := ug.db.FreetByID(freetID)
	if f == nil {
		return nil, errs.NotFound
	}
	target := ug.freets.resolveContentBearing(f)
	if target == nil {
		return nil, errs.NotFound
	}

	quote := &domain.Freet{
		Kind:        domain.KindQuoteRefreet,
		Content:     content,
		Author:      name,
		EditHistory: append([]string{}, target.EditHistory...),
		LikedBy:     []string{},
		RefreetedBy: []string{},
		RefreetOf:   target.ID,
	}
	ug.db.InsertFreet(quote)
	target.RefreetedBy = append(target.RefreetedBy, quote.ID)

	view := ug.freets.project([]*domain.Freet{quote}, true)[0]
	return &view, nil
}
