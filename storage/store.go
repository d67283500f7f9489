package storage

import (
	"strconv"
	"sync"

	"fritter/domain"
)

// Store is the single authoritative copy of all application state: the
// freet arena, the user arena, and the one lock that serializes access to
// both. The services in the crud package share one Store the way the
// previous iteration of this app shared one database handle.
//
// The arenas are an index map plus an insertion-order slice per entity.
// Entities reference each other by name/ID only, so removing one can never
// leave a dangling pointer, only a dangling identifier, and the cascade
// operations exist to clean those up.
//
// Every method except the lock methods assumes the caller already holds
// the lock. Compound operations (cascading delete, rename, toggles) take
// the write lock once at the service boundary and hold it until they are
// fully applied, which is what makes them atomic with respect to each
// other.
type Store struct {
	mu sync.RWMutex

	freets      []*domain.Freet
	freetIndex  map[string]*domain.Freet
	freetsAdded int

	users     []*domain.User
	userIndex map[string]*domain.User
}

// NewStore returns an empty Store. Tests construct their own isolated
// instance; there is no package-level singleton.
func NewStore() *Store {
	return &Store{
		freetIndex: make(map[string]*domain.Freet),
		userIndex:  make(map[string]*domain.User),
	}
}

func (s *Store) Lock()    { s.mu.Lock() }
func (s *Store) Unlock()  { s.mu.Unlock() }
func (s *Store) RLock()   { s.mu.RLock() }
func (s *Store) RUnlock() { s.mu.RUnlock() }

// InsertFreet assigns the next ID to the freet and stores it. IDs count up
// from "0" and are never reused, deletions included.
func (s *Store) InsertFreet(f *domain.Freet) {
	f.ID = strconv.Itoa(s.freetsAdded)
	s.freetsAdded++
	s.freets = append(s.freets, f)
	s.freetIndex[f.ID] = f
}

// FreetByID returns the live freet, or nil.
func (s *Store) FreetByID(id string) *domain.Freet {
	return s.freetIndex[id]
}

// Freets returns the live insertion-ordered slice. Callers must not hold
// onto it past the lock.
func (s *Store) Freets() []*domain.Freet {
	return s.freets
}

// RemoveFreet drops the freet from the arena. The ID stays burned.
func (s *Store) RemoveFreet(id string) {
	if _, ok := s.freetIndex[id]; !ok {
		return
	}
	delete(s.freetIndex, id)
	kept := s.freets[:0]
	for _, f := range s.freets {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	s.freets = kept
}

// FilterFreets drops every freet the predicate rejects.
func (s *Store) FilterFreets(keep func(*domain.Freet) bool) {
	kept := s.freets[:0]
	for _, f := range s.freets {
		if keep(f) {
			kept = append(kept, f)
		} else {
			delete(s.freetIndex, f.ID)
		}
	}
	s.freets = kept
}

// InsertUser stores the user under its name.
func (s *Store) InsertUser(u *domain.User) {
	s.users = append(s.users, u)
	s.userIndex[u.Name] = u
}

// UserByName returns the live user, or nil.
func (s *Store) UserByName(name string) *domain.User {
	return s.userIndex[name]
}

// Users returns the live insertion-ordered slice. Callers must not hold
// onto it past the lock.
func (s *Store) Users() []*domain.User {
	return s.users
}

// RemoveUser drops the user from the arena.
func (s *Store) RemoveUser(name string) {
	if _, ok := s.userIndex[name]; !ok {
		return
	}
	delete(s.userIndex, name)
	kept := s.users[:0]
	for _, u := range s.users {
		if u.Name != name {
			kept = append(kept, u)
		}
	}
	s.users = kept
}

// RenameUser reindexes the user under a new name and mutates the entity.
// The caller has already checked that newName is free.
func (s *Store) RenameUser(oldName, newName string) *domain.User {
	u := s.userIndex[oldName]
	if u == nil {
		return nil
	}
	delete(s.userIndex, oldName)
	u.Name = newName
	s.userIndex[newName] = u
	return u
}
