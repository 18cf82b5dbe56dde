package firestore

import (
	"context"
	"strings"
	"time"

	fs "cloud.google.com/go/firestore"
	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
)

// userDoc is the users/{uid} document. Clients and businesses share the
// profile map; which fields apply depends on role.
type userDoc struct {
	Email       string      `firestore:"email"`
	DisplayName string      `firestore:"displayName"`
	PhotoURL    string      `firestore:"photoURL"`
	Role        string      `firestore:"role"`
	CreatedAt   time.Time   `firestore:"createdAt"`
	Profile     *profileDoc `firestore:"profile,omitempty"`

	// Older documents keep the business name at the top level.
	BusinessName string `firestore:"businessName,omitempty"`

	// Either an array of business ids or a map of id to annotations.
	Favorites interface{} `firestore:"favorites"`
}

type profileDoc struct {
	FirstName string     `firestore:"firstName,omitempty"`
	LastName  string     `firestore:"lastName,omitempty"`
	Birthday  *time.Time `firestore:"birthday,omitempty"`
	Gender    string     `firestore:"gender,omitempty"`

	Location string `firestore:"location,omitempty"`

	BusinessName string          `firestore:"businessName,omitempty"`
	LogoURL      string          `firestore:"logoURL,omitempty"`
	TaxID        string          `firestore:"taxID,omitempty"`
	BusinessType string          `firestore:"businessType,omitempty"`
	Category     string          `firestore:"category,omitempty"`
	Emails       string          `firestore:"emails,omitempty"`
	Phones       string          `firestore:"phones,omitempty"`
	Fax          string          `firestore:"fax,omitempty"`
	Keywords     string          `firestore:"keywords,omitempty"`
	Description  string          `firestore:"description,omitempty"`
	PlaceID      string          `firestore:"placeID,omitempty"`
	Coordinates  *coordinatesDoc `firestore:"coordinates,omitempty"`
}

type coordinatesDoc struct {
	Lat float64 `firestore:"lat"`
	Lng float64 `firestore:"lng"`
}

type favoriteDoc struct {
	Tags []string `firestore:"tags"`
	Note string   `firestore:"note"`
}

func decodeUser(snap *fs.DocumentSnapshot) (freedome.User, error) {
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return freedome.User{}, errors.E(errors.Internal, err)
	}

	user := freedome.User{
		ID:          freedome.UserID(snap.Ref.ID),
		Email:       doc.Email,
		DisplayName: doc.DisplayName,
		PhotoURL:    doc.PhotoURL,
		Role:        freedome.Role(doc.Role),
		CreatedAt:   doc.CreatedAt,
		Favorites:   freedome.DecodeFavorites(doc.Favorites),
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = snap.CreateTime
	}

	p := doc.Profile
	if p == nil {
		p = &profileDoc{}
	}

	switch user.Role {
	case freedome.RoleClient:
		c := &freedome.ClientProfile{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Gender:    p.Gender,
			Location:  p.Location,
		}
		if p.Birthday != nil {
			c.Birthday = *p.Birthday
		}
		user.Client = c

	case freedome.RoleBusiness:
		b := &freedome.BusinessProfile{
			BusinessName: p.BusinessName,
			LogoURL:      p.LogoURL,
			Location:     p.Location,
			TaxID:        p.TaxID,
			BusinessType: p.BusinessType,
			Category:     p.Category,
			Emails:       p.Emails,
			Phones:       p.Phones,
			Fax:          p.Fax,
			Keywords:     p.Keywords,
			Description:  p.Description,
			PlaceID:      p.PlaceID,
		}
		if strings.TrimSpace(b.BusinessName) == "" {
			b.BusinessName = doc.BusinessName
		}
		if c := p.Coordinates; c != nil {
			b.Coordinates = &freedome.Coordinates{Lat: c.Lat, Lng: c.Lng}
		}
		user.Business = b
	}

	return user, nil
}

func encodeUser(u freedome.User) userDoc {
	favs := make(map[string]favoriteDoc, len(u.Favorites))
	for id, f := range u.Favorites {
		tags := f.Tags
		if tags == nil {
			tags = []string{}
		}
		favs[string(id)] = favoriteDoc{Tags: tags, Note: f.Note}
	}

	doc := userDoc{
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
		Favorites:   favs,
	}

	switch {
	case u.Client != nil:
		c := u.Client
		doc.Profile = &profileDoc{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Gender:    c.Gender,
			Location:  c.Location,
		}
		if !c.Birthday.IsZero() {
			bd := c.Birthday
			doc.Profile.Birthday = &bd
		}

	case u.Business != nil:
		b := u.Business
		doc.Profile = &profileDoc{
			BusinessName: b.BusinessName,
			LogoURL:      b.LogoURL,
			Location:     b.Location,
			TaxID:        b.TaxID,
			BusinessType: b.BusinessType,
			Category:     b.Category,
			Emails:       b.Emails,
			Phones:       b.Phones,
			Fax:          b.Fax,
			Keywords:     b.Keywords,
			Description:  b.Description,
			PlaceID:      b.PlaceID,
		}
		if c := b.Coordinates; c != nil {
			doc.Profile.Coordinates = &coordinatesDoc{Lat: c.Lat, Lng: c.Lng}
		}
	}

	return doc
}

// UserStore stores users in the users collection, keyed by uid.
type UserStore struct {
	Client *fs.Client
}

func (s *UserStore) doc(id freedome.UserID) *fs.DocumentRef {
	return s.Client.Collection(Users).Doc(string(id))
}

// Get retrieves a User by ID.
func (s *UserStore) Get(ctx context.Context, id freedome.UserID) (freedome.User, error) {
	if id == "" {
		return freedome.User{}, errors.E(errors.NotExist)
	}
	snap, err := s.doc(id).Get(ctx)
	if err != nil {
		return freedome.User{}, fsErr(err)
	}
	return decodeUser(snap)
}

// Create inserts a new user.
func (s *UserStore) Create(ctx context.Context, user freedome.User) (freedome.User, error) {
	const op errors.Op = "UserStore.Create"

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if _, err := s.doc(user.ID).Create(ctx, encodeUser(user)); err != nil {
		return user, errors.E(op, fsErr(err))
	}
	return s.Get(ctx, user.ID)
}

// Update applies fn to the user in a transaction. Firestore may run fn more
// than once if the document changes underneath it.
func (s *UserStore) Update(ctx context.Context, id freedome.UserID, fn func(*freedome.User) error) (freedome.User, error) {
	var user freedome.User

	ref := s.doc(id)
	err := s.Client.RunTransaction(ctx, func(ctx context.Context, tx *fs.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return fsErr(err)
		}
		user, err = decodeUser(snap)
		if err != nil {
			return err
		}

		if err := fn(&user); err != nil {
			return err
		}
		user.ID = id

		return tx.Set(ref, encodeUser(user))
	})
	if err != nil {
		if _, ok := err.(*errors.Error); ok {
			return freedome.User{}, err
		}
		return freedome.User{}, fsErr(err)
	}

	return user, nil
}

// Delete removes a user document.
func (s *UserStore) Delete(ctx context.Context, id freedome.UserID) error {
	_, err := s.doc(id).Delete(ctx)
	return fsErr(err)
}

// ListBusinesses lists the business users, newest first. Sorting happens
// here so the query needs no composite index.
func (s *UserStore) ListBusinesses(ctx context.Context) ([]freedome.User, error) {
	snaps, err := docs(ctx, s.Client.Collection(Users).Where("role", "==", string(freedome.RoleBusiness)))
	if err != nil {
		return nil, err
	}

	users := make([]freedome.User, 0, len(snaps))
	for _, snap := range snaps {
		u, err := decodeUser(snap)
		if err != nil {
			// skip malformed documents
			continue
		}
		users = append(users, u)
	}
	newestFirst(users, func(u freedome.User) time.Time { return u.CreatedAt })

	return users, nil
}
