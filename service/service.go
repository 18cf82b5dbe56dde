// Package service is the programmatic API to freedome. It checks who is
// calling, enforces roles and ownership, and keeps records that belong to a
// business consistent with the business itself.
package service

import (
	"context"
	"io"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/auth"
	"github.com/freedome/freedome/errors"
)

// Time mocks out time.Now for testing
type Time interface {
	Now() time.Time
}

// Service is a programmatic API to freedome. It manages access to the stores
// and checks permissions.
type Service struct {
	UserStore         UserStore
	OfferStore        OfferStore
	EventStore        EventStore
	ReviewStore       ReviewStore
	NotificationStore NotificationStore

	// Maps answers place lookups. Geocoder, when set, is used in its place for
	// geocoding so that lookups can be cached.
	Maps     Maps
	Geocoder Geocoder

	Storage  ObjectStorage
	Identity auth.Deleter
	Time     Time
}

// Geocoder turns a free-text address into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (freedome.Coordinates, error)
}

// Maps mocks out access to the maps provider.
type Maps interface {
	Geocoder
	Autocomplete(ctx context.Context, input string) ([]freedome.Place, error)
	PlaceDetails(ctx context.Context, placeID string, fields []string) (freedome.Place, error)
}

// ObjectStorage stores uploaded files and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) (url string, err error)
}

func (s *Service) now() time.Time {
	if s.Time != nil {
		return s.Time.Now()
	}
	return time.Now()
}

func (s *Service) geocoder() Geocoder {
	if s.Geocoder != nil {
		return s.Geocoder
	}
	if s.Maps != nil {
		return s.Maps
	}
	return nil
}

// caller returns the signed-in user's record. Users who haven't picked a role
// get an Incomplete error so the client can send them to the profile builder.
func (s *Service) caller(ctx context.Context, op errors.Op) (freedome.User, error) {
	info := auth.User(ctx)
	if info.ID == "" {
		return freedome.User{}, errors.E(op, errors.NotLoggedIn)
	}
	userID := freedome.UserID(info.ID)

	user, err := s.UserStore.Get(ctx, userID)
	if errors.Is(errors.NotExist, err) {
		return user, errors.E(op, errors.Incomplete, userID, "no user record")
	}
	if err != nil {
		return user, errors.E(op, userID, err)
	}
	if !user.Role.Valid() {
		return user, errors.E(op, errors.Incomplete, userID, "role not set")
	}

	return user, nil
}

// callerBusiness is like caller but also requires the business role.
func (s *Service) callerBusiness(ctx context.Context, op errors.Op) (freedome.User, error) {
	user, err := s.caller(ctx, op)
	if err != nil {
		return user, err
	}
	if !user.IsBusiness() {
		return user, errors.E(op, errors.Permission, user.ID, "business accounts only")
	}
	return user, nil
}

// optionalCaller returns the caller's record when there is one. Anonymous and
// unfinished users get a zero User and no error.
func (s *Service) optionalCaller(ctx context.Context) freedome.User {
	info := auth.User(ctx)
	if info.ID == "" {
		return freedome.User{}
	}
	user, err := s.UserStore.Get(ctx, freedome.UserID(info.ID))
	if err != nil {
		return freedome.User{}
	}
	return user
}

// business loads a business user by id. Ids that don't name a business are
// reported as NotExist.
func (s *Service) business(ctx context.Context, op errors.Op, id freedome.BusinessID) (freedome.User, error) {
	user, err := s.UserStore.Get(ctx, freedome.UserID(id))
	if err != nil {
		return user, errors.E(op, err)
	}
	if !user.IsBusiness() {
		return user, errors.E(op, errors.NotExist, "not a business")
	}
	return user, nil
}

// publicProfile strips the parts of a user record only its owner may see.
func publicProfile(u freedome.User) *freedome.User {
	u.Email = ""
	u.Favorites = nil
	u.Client = nil
	return &u
}
