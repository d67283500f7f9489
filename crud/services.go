package crud

import "fritter/storage"

// A ServicesConfig is any function that takes in a pointer to a Services
// object and returns an error. It's basically just wrapping the constructor
// method of any given crud service. It exists to be able to easily create
// the crud services using functional options in main.go.
type ServicesConfig func(*Services) error

// Services is a container object holding pointers to all the crud services.
// The crud services all share the in-memory store provided by Services, and
// with it the one lock that serializes every operation.
type Services struct {
	db    *storage.Store
	User  *UserService
	Freet *FreetService
}

// NewServices returns a new Services object, containing any crud services
// it's told to create by one of the passed in ServicesConfig functions.
// It shares the passed in store with any crud service it creates.
func NewServices(db *storage.Store, cfgs ...ServicesConfig) (*Services, error) {
	s := Services{
		db: db,
	}
	for _, cfg := range cfgs {
		if err := cfg(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// WithUser wraps the constructor of UserService, NewUserService.
func WithUser(pepper string) ServicesConfig {
	return func(s *Services) error {
		s.User = NewUserService(s.db, pepper)
		return nil
	}
}

// WithFreet wraps the constructor of FreetService, NewFreetService.
func WithFreet() ServicesConfig {
	return func(s *Services) error {
		s.Freet = NewFreetService(s.db)
		return nil
	}
}
