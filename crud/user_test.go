package crud

import (
	"strconv"
	"sync"
	"testing"

	"fritter/errs"
)

func TestCreateUserAndAuthenticate(t *testing.T) {
	s := newTestServices(t)

	name, err := s.User.CreateUser("alice", "correct-horse")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if name != "alice" {
		t.Fatalf("name = %q, want alice", name)
	}

	u, err := s.User.UserByName("alice")
	if err != nil {
		t.Fatalf("UserByName failed: %v", err)
	}
	if u.Password != "" {
		t.Errorf("plaintext password retained on stored user")
	}
	if u.PasswordHash == "" || u.PasswordHash == "correct-horse" {
		t.Errorf("password not hashed: %q", u.PasswordHash)
	}

	if !s.User.Authenticate("alice", "correct-horse") {
		t.Errorf("correct password rejected")
	}
	if s.User.Authenticate("alice", "wrong") {
		t.Errorf("wrong password accepted")
	}
	if s.User.Authenticate("nobody", "correct-horse") {
		t.Errorf("missing user authenticated")
	}
}

func TestCreateUserValidation(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")

	if _, err := s.User.CreateUser("", "pass"); err != errs.UsernameRequired {
		t.Errorf("empty name: expected UsernameRequired, got %v", err)
	}
	if _, err := s.User.CreateUser("alice", "pass"); err != errs.UsernameTaken {
		t.Errorf("duplicate name: expected UsernameTaken, got %v", err)
	}
	if _, err := s.User.CreateUser("bob", ""); err != errs.PasswordRequired {
		t.Errorf("empty password: expected PasswordRequired, got %v", err)
	}
}

func TestUpdateNameReassignsFreets(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	mustCreateFreet(t, s, "one", "alice")
	mustCreateFreet(t, s, "two", "alice")

	newName, err := s.User.UpdateName("alice", "alicia")
	if err != nil {
		t.Fatalf("UpdateName failed: %v", err)
	}
	if newName != "alicia" {
		t.Fatalf("new name = %q, want alicia", newName)
	}

	if _, err := s.User.UserByName("alice"); err != errs.NotFound {
		t.Errorf("old name still resolves: %v", err)
	}
	if _, err := s.User.UserByName("alicia"); err != nil {
		t.Errorf("new name does not resolve: %v", err)
	}
	if got := s.Freet.FreetsByAuthor("alicia"); len(got) != 2 {
		t.Errorf("alicia has %d freets, want 2", len(got))
	}
	if got := s.Freet.FreetsByAuthor("alice"); len(got) != 0 {
		t.Errorf("alice still has %d freets", len(got))
	}
	if !s.User.Authenticate("alicia", "hunter2pass") {
		t.Errorf("credentials lost across rename")
	}
}

func TestUpdateNamePropagatesReferences(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")
	mustCreateUser(t, s, "carol")

	if _, err := s.User.Follow("bob", "alice"); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	if _, err := s.User.Follow("alice", "carol"); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	mustCreateFreet(t, s, "by alice", "alice")
	bobFreet := mustCreateFreet(t, s, "by bob", "bob")
	if _, err := s.User.LikeFreet(bobFreet.ID, "alice"); err != nil {
		t.Fatalf("LikeFreet failed: %v", err)
	}

	if _, err := s.User.UpdateName("alice", "alicia"); err != nil {
		t.Fatalf("UpdateName failed: %v", err)
	}

	// Both sides of every follow edge carry the new name.
	following, _ := s.User.Following("bob")
	if len(following) != 1 || following[0] != "alicia" {
		t.Errorf("bob following = %v, want [alicia]", following)
	}
	followers, _ := s.User.Followers("alicia")
	if len(followers) != 1 || followers[0] != "bob" {
		t.Errorf("alicia followers = %v, want [bob]", followers)
	}
	followers, _ = s.User.Followers("carol")
	if len(followers) != 1 || followers[0] != "alicia" {
		t.Errorf("carol followers = %v, want [alicia]", followers)
	}

	// Likes carry over with the rename.
	if got := s.Freet.LikedFreetsByUser("alicia"); len(got) != 1 {
		t.Errorf("alicia likes %d freets, want 1", len(got))
	}
	if got := s.Freet.LikedFreetsByUser("alice"); len(got) != 0 {
		t.Errorf("old name still likes %d freets", len(got))
	}
	liked, _ := s.Freet.FreetByID(bobFreet.ID)
	if len(liked.LikedBy) != 1 || liked.LikedBy[0] != "alicia" {
		t.Errorf("LikedBy = %v, want [alicia]", liked.LikedBy)
	}

	// Bob's feed still sees the renamed account's freets.
	feed, err := s.User.Feed("bob")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(feed) != 1 || feed[0].Author != "alicia" {
		t.Errorf("feed = %v", feed)
	}

	// Deleting the renamed account finds and cleans every reference.
	if _, err := s.User.DeleteUser("alicia"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	liked, _ = s.Freet.FreetByID(bobFreet.ID)
	if len(liked.LikedBy) != 0 {
		t.Errorf("like survived account deletion: %v", liked.LikedBy)
	}
	following, _ = s.User.Following("bob")
	if len(following) != 0 {
		t.Errorf("bob still follows: %v", following)
	}
	followers, _ = s.User.Followers("carol")
	if len(followers) != 0 {
		t.Errorf("carol still followed by: %v", followers)
	}
}

func TestUpdateNameValidation(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")

	if _, err := s.User.UpdateName("alice", "bob"); err != errs.UsernameTaken {
		t.Errorf("rename onto taken name: expected UsernameTaken, got %v", err)
	}
	if _, err := s.User.UpdateName("alice", ""); err != errs.UsernameRequired {
		t.Errorf("rename to empty name: expected UsernameRequired, got %v", err)
	}
	if _, err := s.User.UpdateName("nobody", "carol"); err != errs.NotFound {
		t.Errorf("rename of missing user: expected NotFound, got %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")

	if err := s.User.UpdatePassword("alice", "new-secret"); err != nil {
		t.Fatalf("UpdatePassword failed: %v", err)
	}
	if s.User.Authenticate("alice", "hunter2pass") {
		t.Errorf("old password still accepted")
	}
	if !s.User.Authenticate("alice", "new-secret") {
		t.Errorf("new password rejected")
	}
	if err := s.User.UpdatePassword("alice", ""); err != errs.PasswordRequired {
		t.Errorf("empty password: expected PasswordRequired, got %v", err)
	}
}

func TestFollowSymmetry(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")

	if _, err := s.User.Follow("alice", "bob"); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	// Following twice must not duplicate the edge.
	if _, err := s.User.Follow("alice", "bob"); err != nil {
		t.Fatalf("second Follow failed: %v", err)
	}

	following, _ := s.User.Following("alice")
	followers, _ := s.User.Followers("bob")
	if len(following) != 1 || following[0] != "bob" {
		t.Errorf("alice following = %v, want [bob]", following)
	}
	if len(followers) != 1 || followers[0] != "alice" {
		t.Errorf("bob followers = %v, want [alice]", followers)
	}

	if _, err := s.User.Unfollow("alice", "bob"); err != nil {
		t.Fatalf("Unfollow failed: %v", err)
	}
	following, _ = s.User.Following("alice")
	followers, _ = s.User.Followers("bob")
	if len(following) != 0 || len(followers) != 0 {
		t.Errorf("edge not fully removed: following=%v followers=%v", following, followers)
	}

	if _, err := s.User.Follow("alice", "nobody"); errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Errorf("follow of missing user: expected ENOTFOUND, got %v", err)
	}
}

func TestLikeToggle(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")
	f := mustCreateFreet(t, s, "hello", "alice")

	liked, err := s.User.LikeFreet(f.ID, "bob")
	if err != nil {
		t.Fatalf("LikeFreet failed: %v", err)
	}
	if len(liked.LikedBy) != 1 || liked.LikedBy[0] != "bob" {
		t.Errorf("LikedBy = %v, want [bob]", liked.LikedBy)
	}
	if got := s.Freet.LikedFreetsByUser("bob"); len(got) != 1 {
		t.Errorf("bob likes %d freets, want 1", len(got))
	}

	liked, err = s.User.LikeFreet(f.ID, "bob")
	if err != nil {
		t.Fatalf("second LikeFreet failed: %v", err)
	}
	if len(liked.LikedBy) != 0 {
		t.Errorf("like not withdrawn: %v", liked.LikedBy)
	}
}

func TestLikeBareRefreetAttachesToParent(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")
	mustCreateUser(t, s, "carol")

	f := mustCreateFreet(t, s, "hello", "alice")
	bare, err := s.User.Refreet(f.ID, "bob")
	if err != nil {
		t.Fatalf("Refreet failed: %v", err)
	}

	// Liking the bare refreet lands on the freet it points at.
	liked, err := s.User.LikeFreet(bare.Freet.ID, "carol")
	if err != nil {
		t.Fatalf("LikeFreet failed: %v", err)
	}
	if liked.ID != f.ID {
		t.Errorf("like landed on %q, want %q", liked.ID, f.ID)
	}
	got, _ := s.Freet.FreetByID(bare.Freet.ID)
	if len(got.LikedBy) != 0 {
		t.Errorf("bare refreet accumulated likes: %v", got.LikedBy)
	}
}

func TestRefreetToggle(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")
	f := mustCreateFreet(t, s, "hello", "alice")

	res, err := s.User.Refreet(f.ID, "bob")
	if err != nil {
		t.Fatalf("Refreet failed: %v", err)
	}
	if res.Undone {
		t.Fatalf("first refreet reported as undone")
	}
	bareID := res.Freet.ID
	if res.Freet.Content != nil {
		t.Errorf("bare refreet carries content: %q", *res.Freet.Content)
	}

	target, _ := s.Freet.FreetByID(f.ID)
	if len(target.RefreetedBy) != 1 || target.RefreetedBy[0] != bareID {
		t.Errorf("target RefreetedBy = %v, want [%s]", target.RefreetedBy, bareID)
	}

	res, err = s.User.Refreet(f.ID, "bob")
	if err != nil {
		t.Fatalf("second Refreet failed: %v", err)
	}
	if !res.Undone {
		t.Fatalf("second refreet did not undo")
	}
	if _, err := s.Freet.FreetByID(bareID); err != errs.NotFound {
		t.Errorf("bare refreet still present after undo: %v", err)
	}
	target, _ = s.Freet.FreetByID(f.ID)
	if len(target.RefreetedBy) != 0 {
		t.Errorf("target RefreetedBy not cleared: %v", target.RefreetedBy)
	}

	// Toggling again creates a fresh bare refreet under a fresh ID.
	res, err = s.User.Refreet(f.ID, "bob")
	if err != nil {
		t.Fatalf("third Refreet failed: %v", err)
	}
	if res.Undone || res.Freet.ID == bareID {
		t.Errorf("third refreet reused state: undone=%v id=%q", res.Undone, res.Freet.ID)
	}
}

func TestRefreetOfBareRefreetResolvesToParent(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")
	mustCreateUser(t, s, "carol")

	f := mustCreateFreet(t, s, "hello", "alice")
	bobsBare, err := s.User.Refreet(f.ID, "bob")
	if err != nil {
		t.Fatalf("Refreet failed: %v", err)
	}

	// Refreeting bob's bare refreet refreets the freet behind it.
	res, err := s.User.Refreet(bobsBare.Freet.ID, "carol")
	if err != nil {
		t.Fatalf("Refreet via bare refreet failed: %v", err)
	}
	carols, err := s.Freet.FreetByID(res.Freet.ID)
	if err != nil {
		t.Fatalf("FreetByID failed: %v", err)
	}
	if carols.RefreetOf != f.ID {
		t.Errorf("carol's refreet points at %q, want %q", carols.RefreetOf, f.ID)
	}
}

func TestRefreetQuote(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")
	mustCreateUser(t, s, "carol")

	f := mustCreateFreet(t, s, "hello", "alice")
	if _, err := s.Freet.EditFreet(f.ID, "hello v2"); err != nil {
		t.Fatalf("EditFreet failed: %v", err)
	}
	if _, err := s.User.LikeFreet(f.ID, "bob"); err != nil {
		t.Fatalf("LikeFreet failed: %v", err)
	}

	view, err := s.User.RefreetQuote(f.ID, "carol", "hot take")
	if err != nil {
		t.Fatalf("RefreetQuote failed: %v", err)
	}
	if view.Content == nil || *view.Content != "hot take" {
		t.Errorf("quote content = %v, want hot take", view.Content)
	}
	if view.ParentAuthor != "alice" {
		t.Errorf("parent author = %q, want alice", view.ParentAuthor)
	}
	if view.ParentContent != "hello" || view.ParentEditedContent != "hello v2" {
		t.Errorf("parent content = %q / %q, want hello / hello v2", view.ParentContent, view.ParentEditedContent)
	}
	if view.ParentLikes == nil || *view.ParentLikes != 1 {
		t.Errorf("parent likes = %v, want 1", view.ParentLikes)
	}
	if len(view.EditHistory) != 1 || view.EditHistory[0] != "hello" {
		t.Errorf("quote edit history = %v, want [hello]", view.EditHistory)
	}

	target, _ := s.Freet.FreetByID(f.ID)
	if len(target.RefreetedBy) != 1 || target.RefreetedBy[0] != view.ID {
		t.Errorf("target RefreetedBy = %v, want [%s]", target.RefreetedBy, view.ID)
	}

	if _, err := s.User.RefreetQuote(f.ID, "carol", ""); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("empty quote content: expected EINVALID, got %v", err)
	}
}

func TestDeleteUserCascade(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")
	mustCreateUser(t, s, "carol")

	aliceFreet := mustCreateFreet(t, s, "by alice", "alice")
	bobFreet := mustCreateFreet(t, s, "by bob", "bob")

	if _, err := s.User.Follow("bob", "alice"); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	if _, err := s.User.Follow("alice", "carol"); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	if _, err := s.User.LikeFreet(bobFreet.ID, "alice"); err != nil {
		t.Fatalf("LikeFreet failed: %v", err)
	}
	bare, err := s.User.Refreet(aliceFreet.ID, "bob")
	if err != nil {
		t.Fatalf("Refreet failed: %v", err)
	}

	if _, err := s.User.DeleteUser("alice"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := s.User.UserByName("alice"); err != errs.NotFound {
		t.Errorf("alice still resolves: %v", err)
	}
	if _, err := s.Freet.FreetByID(aliceFreet.ID); err != errs.NotFound {
		t.Errorf("alice's freet survived: %v", err)
	}
	// Bob's bare refreet of it goes down with the freet it points at.
	if _, err := s.Freet.FreetByID(bare.Freet.ID); err != errs.NotFound {
		t.Errorf("bob's refreet of alice's freet survived: %v", err)
	}

	got, _ := s.Freet.FreetByID(bobFreet.ID)
	if len(got.LikedBy) != 0 {
		t.Errorf("alice's like survived: %v", got.LikedBy)
	}

	following, _ := s.User.Following("bob")
	if len(following) != 0 {
		t.Errorf("bob still follows: %v", following)
	}
	followers, _ := s.User.Followers("carol")
	if len(followers) != 0 {
		t.Errorf("carol still followed by: %v", followers)
	}
}

func TestDeleteUserWithOwnRefreet(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")

	f := mustCreateFreet(t, s, "hello", "alice")
	if _, err := s.User.Refreet(f.ID, "alice"); err != nil {
		t.Fatalf("Refreet failed: %v", err)
	}

	// Deleting the original takes the bare refreet with it; the user
	// cascade must cope with freets on its list that are already gone.
	if _, err := s.User.DeleteUser("alice"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if all := s.Freet.AllFreets(); len(all) != 0 {
		t.Errorf("%d freets survived", len(all))
	}
}

func TestFeed(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")
	mustCreateUser(t, s, "carol")

	mustCreateFreet(t, s, "from bob", "bob")
	mustCreateFreet(t, s, "from carol", "carol")
	mustCreateFreet(t, s, "not followed", "alice")

	if _, err := s.User.Follow("alice", "bob"); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	if _, err := s.User.Follow("alice", "carol"); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	feed, err := s.User.Feed("alice")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("feed has %d freets, want 2", len(feed))
	}
	if feed[0].Author != "carol" || feed[1].Author != "bob" {
		t.Errorf("feed order = [%s %s], want [carol bob]", feed[0].Author, feed[1].Author)
	}

	if _, err := s.User.Feed("nobody"); err != errs.NotFound {
		t.Errorf("feed of missing user: expected NotFound, got %v", err)
	}
}

func TestFeedOrdersByStringID(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")

	for i := 0; i < 11; i++ {
		mustCreateFreet(t, s, "freet "+strconv.Itoa(i), "bob")
	}
	if _, err := s.User.Follow("alice", "bob"); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	feed, err := s.User.Feed("alice")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(feed) != 11 {
		t.Fatalf("feed has %d freets, want 11", len(feed))
	}

	// The feed sorts IDs lexicographically, so "10" lands between "1" and
	// "2" instead of on top. That ordering is historical and kept as is.
	want := []string{"9", "8", "7", "6", "5", "4", "3", "2", "10", "1", "0"}
	for i, f := range feed {
		if f.ID != want[i] {
			t.Fatalf("feed[%d].ID = %q, want %q (full order %v)", i, f.ID, want[i], want)
		}
	}
}

func TestConcurrentLikeToggles(t *testing.T) {
	s := newTestServices(t)
	mustCreateUser(t, s, "alice")
	f := mustCreateFreet(t, s, "hello", "alice")

	const likers = 8
	names := make([]string, likers)
	for i := range names {
		names[i] = "liker" + strconv.Itoa(i)
		mustCreateUser(t, s, names[i])
	}

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			// An odd number of toggles leaves the like in place.
			for i := 0; i < 3; i++ {
				if _, err := s.User.LikeFreet(f.ID, name); err != nil {
					t.Errorf("LikeFreet(%s) failed: %v", name, err)
				}
			}
		}(name)
	}
	wg.Wait()

	got, err := s.Freet.FreetByID(f.ID)
	if err != nil {
		t.Fatalf("FreetByID failed: %v", err)
	}
	if len(got.LikedBy) != likers {
		t.Errorf("LikedBy has %d entries, want %d: %v", len(got.LikedBy), likers, got.LikedBy)
	}
}
