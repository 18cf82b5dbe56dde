// Package e2e contains end-to-end tests for the freedome packages. They test
// from the rest client all the way down to the database layer.
package e2e

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/auth"
	"github.com/freedome/freedome/pg"
	"github.com/freedome/freedome/pg/pgtest"
	"github.com/freedome/freedome/rest"
	"github.com/freedome/freedome/rest/client"
	"github.com/freedome/freedome/service"
)

var (
	stubNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	athens  = freedome.Coordinates{Lat: 37.9838, Lng: 23.7275}
)

// stubServer starts a new httptest.Server with a stubbed out freedome
// service mounted under /api, like cmd/freedome does. It's closed when the
// test ends.
func stubServer(t *testing.T) *httptest.Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	service := stubService(ctx, t)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", rest.New(service, stubAuth{})))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns a REST client for srv. Pass the user id as the token,
// or "" for an anonymous client. See stubAuth.
func newClient(srv *httptest.Server, token string) *client.Client {
	c := client.New(token)
	c.BaseURL = srv.URL + "/api"
	return c
}

// stubService returns a freedome Service where all the external dependencies
// have been stubbed out, and the database is backed by a pgtest temp db.
func stubService(ctx context.Context, t *testing.T) *service.Service {
	db, dbURL := pgtest.NewDBURL(t)
	if err := pg.Init(ctx, db); err != nil {
		t.Fatal(err)
	}

	return &service.Service{
		UserStore:         &pg.UserStore{DB: db},
		OfferStore:        &pg.OfferStore{DB: db},
		EventStore:        &pg.EventStore{DB: db},
		ReviewStore:       &pg.ReviewStore{DB: db},
		NotificationStore: &pg.NotificationStore{DB: db, URL: dbURL},

		Maps:     stubMaps{},
		Storage:  &stubStorage{objects: map[string][]byte{}},
		Identity: &stubIdentity{},
		Time:     stubTime(stubNow),
	}
}

// stubMaps knows a single address.
type stubMaps struct{}

func (stubMaps) Geocode(ctx context.Context, address string) (freedome.Coordinates, error) {
	if address != "Αθήνα" {
		return freedome.Coordinates{}, errors.New("no match")
	}
	return athens, nil
}

func (stubMaps) Autocomplete(ctx context.Context, input string) ([]freedome.Place, error) {
	return []freedome.Place{{PlaceID: "athens", Description: "Αθήνα, Ελλάδα"}}, nil
}

func (stubMaps) PlaceDetails(ctx context.Context, placeID string, fields []string) (freedome.Place, error) {
	return freedome.Place{PlaceID: placeID, Name: "Αθήνα", Coordinates: &athens}, nil
}

type stubStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *stubStorage) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[path] = data
	s.mu.Unlock()
	return "https://storage.example/" + path, nil
}

type stubIdentity struct {
	mu      sync.Mutex
	deleted []string
}

func (s *stubIdentity) DeleteIdentity(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, id)
	s.mu.Unlock()
	return nil
}

// StubTime mocks out the time with a fixed time.
type stubTime time.Time

func (s stubTime) Now() time.Time {
	return time.Time(s)
}

// StubAuth is a fake auth.Provider that takes the bearer token from the
// Authorization header and sets it as the current user's id. If the token
// equals "admin", it also sets the IsAdmin flag.
//
// Users signed in a minute before stubNow. Prefix the token with "stale-" to
// get a sign in that's too old for sensitive actions.
type stubAuth struct{}

func (s stubAuth) FromRequest(r *http.Request) (auth.Info, error) {
	var info auth.Info

	header := r.Header.Get("Authorization")
	if header == "" {
		return info, nil
	}

	authParts := strings.Split(header, " ")
	if len(authParts) != 2 {
		return info, errors.New("malformed Authorization header")
	}

	userID := authParts[1]
	authTime := stubNow.Add(-time.Minute)
	if strings.HasPrefix(userID, "stale-") {
		userID = strings.TrimPrefix(userID, "stale-")
		authTime = stubNow.Add(-time.Hour)
	}

	return auth.Info{
		ID:       userID,
		Email:    userID + "@example.gr",
		IsAdmin:  userID == "admin",
		AuthTime: authTime,
	}, nil
}

// signUpBusiness creates a business account through the API.
func signUpBusiness(t *testing.T, srv *httptest.Server, id, name, category, location string) *client.Client {
	t.Helper()

	c := newClient(srv, id)
	_, err := c.Users.Update(context.Background(), "me", freedome.ProfileUpdate{
		Role: freedome.RoleBusiness,
		Business: &freedome.BusinessProfile{
			BusinessName: name,
			Category:     category,
			Location:     location,
			Keywords:     "καφές, γλυκά",
		},
		Mask: "role,business",
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// signUpClient creates a client account through the API.
func signUpClient(t *testing.T, srv *httptest.Server, id string) *client.Client {
	t.Helper()

	c := newClient(srv, id)
	_, err := c.Users.Update(context.Background(), "me", freedome.ProfileUpdate{
		Role: freedome.RoleClient,
		Client: &freedome.ClientProfile{
			FirstName: "Ελένη",
			LastName:  "Γεωργίου",
			Location:  "Αθήνα",
		},
		Mask: "role,client",
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}
