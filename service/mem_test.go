package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
)

// memStore is an in-memory implementation of every store interface, used to
// test the service rules without a database.
type memStore struct {
	mu sync.Mutex

	seq           int
	users         map[freedome.UserID]freedome.User
	offers        []freedome.Offer
	events        []freedome.Event
	reviews       []freedome.Review
	notifications []freedome.Notification
}

func newMemStore() *memStore {
	return &memStore{users: map[freedome.UserID]freedome.User{}}
}

func (m *memStore) nextID() string {
	m.seq++
	return fmt.Sprintf("id%03d", m.seq)
}

type memUsers struct{ *memStore }

func (m memUsers) Get(ctx context.Context, id freedome.UserID) (freedome.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return u, errors.E(errors.NotExist)
	}
	return copyUser(u), nil
}

func (m memUsers) Create(ctx context.Context, u freedome.User) (freedome.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return u, errors.E(errors.Exist)
	}
	m.users[u.ID] = copyUser(u)
	return u, nil
}

func (m memUsers) Update(ctx context.Context, id freedome.UserID, fn func(*freedome.User) error) (freedome.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return u, errors.E(errors.NotExist)
	}
	u = copyUser(u)
	if err := fn(&u); err != nil {
		return freedome.User{}, err
	}
	m.users[id] = copyUser(u)
	return u, nil
}

func (m memUsers) Delete(ctx context.Context, id freedome.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m memUsers) ListBusinesses(ctx context.Context) ([]freedome.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []freedome.User
	for _, u := range m.users {
		if u.Role == freedome.RoleBusiness {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func copyUser(u freedome.User) freedome.User {
	if u.Business != nil {
		b := *u.Business
		u.Business = &b
	}
	if u.Client != nil {
		c := *u.Client
		u.Client = &c
	}
	favs := freedome.Favorites{}
	for k, v := range u.Favorites {
		favs[k] = v
	}
	u.Favorites = favs
	return u
}

type memOffers struct{ *memStore }

func (m memOffers) Create(ctx context.Context, o freedome.Offer) (freedome.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = freedome.OfferID(m.nextID())
	m.offers = append([]freedome.Offer{o}, m.offers...)
	return o, nil
}

func (m memOffers) List(ctx context.Context) ([]freedome.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]freedome.Offer{}, m.offers...), nil
}

func (m memOffers) DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keep []freedome.Offer
	for _, o := range m.offers {
		if o.BusinessID != id {
			keep = append(keep, o)
		}
	}
	m.offers = keep
	return nil
}

type memEvents struct{ *memStore }

func (m memEvents) Create(ctx context.Context, e freedome.Event) (freedome.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = freedome.EventID(m.nextID())
	m.events = append([]freedome.Event{e}, m.events...)
	return e, nil
}

func (m memEvents) Get(ctx context.Context, id freedome.EventID) (freedome.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			return e, nil
		}
	}
	return freedome.Event{}, errors.E(errors.NotExist)
}

func (m memEvents) List(ctx context.Context) ([]freedome.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]freedome.Event{}, m.events...), nil
}

func (m memEvents) SetAttendance(ctx context.Context, id freedome.EventID, user freedome.UserID, attending bool) (freedome.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.events {
		if e.ID != id {
			continue
		}
		attendees := []freedome.UserID{}
		for _, a := range e.Attendees {
			if a != user {
				attendees = append(attendees, a)
			}
		}
		if attending {
			attendees = append(attendees, user)
		}
		m.events[i].Attendees = attendees
		return m.events[i], nil
	}
	return freedome.Event{}, errors.E(errors.NotExist)
}

func (m memEvents) DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keep []freedome.Event
	for _, e := range m.events {
		if e.BusinessID != id {
			keep = append(keep, e)
		}
	}
	m.events = keep
	return nil
}

type memReviews struct{ *memStore }

func (m memReviews) Create(ctx context.Context, r freedome.Review) (freedome.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = freedome.ReviewID(m.nextID())
	m.reviews = append([]freedome.Review{r}, m.reviews...)
	return r, nil
}

func (m memReviews) ListForBusiness(ctx context.Context, id freedome.BusinessID) ([]freedome.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []freedome.Review{}
	for _, r := range m.reviews {
		if r.BusinessID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memReviews) DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keep []freedome.Review
	for _, r := range m.reviews {
		if r.BusinessID != id {
			keep = append(keep, r)
		}
	}
	m.reviews = keep
	return nil
}

type memNotifications struct{ *memStore }

func (m memNotifications) Create(ctx context.Context, n freedome.Notification) (freedome.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = freedome.NotificationID(m.nextID())
	m.notifications = append([]freedome.Notification{n}, m.notifications...)
	return n, nil
}

func (m memNotifications) Get(ctx context.Context, id freedome.NotificationID) (freedome.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return freedome.Notification{}, errors.E(errors.NotExist)
}

func (m memNotifications) ListForBusiness(ctx context.Context, id freedome.BusinessID) ([]freedome.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []freedome.Notification{}
	for _, n := range m.notifications {
		if n.BusinessID == id {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m memNotifications) MarkRead(ctx context.Context, id freedome.NotificationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].Read = true
			return nil
		}
	}
	return errors.E(errors.NotExist)
}

func (m memNotifications) Subscribe(ctx context.Context, id freedome.BusinessID, fn func([]freedome.Notification)) error {
	list, _ := m.ListForBusiness(ctx, id)
	fn(list)
	<-ctx.Done()
	return ctx.Err()
}

func (m memNotifications) DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keep []freedome.Notification
	for _, n := range m.notifications {
		if n.BusinessID != id {
			keep = append(keep, n)
		}
	}
	m.notifications = keep
	return nil
}

type fakeMaps struct {
	coords map[string]freedome.Coordinates
	calls  int
}

func (f *fakeMaps) Geocode(ctx context.Context, address string) (freedome.Coordinates, error) {
	f.calls++
	c, ok := f.coords[address]
	if !ok {
		return c, errors.E(errors.NotExist, "no results")
	}
	return c, nil
}

func (f *fakeMaps) Autocomplete(ctx context.Context, input string) ([]freedome.Place, error) {
	return []freedome.Place{{PlaceID: "p1", Description: input + ", Greece"}}, nil
}

func (f *fakeMaps) PlaceDetails(ctx context.Context, placeID string, fields []string) (freedome.Place, error) {
	return freedome.Place{PlaceID: placeID, Rating: 4.5, RatingCount: 12}, nil
}

type fakeStorage struct {
	uploads map[string][]byte
}

func (f *fakeStorage) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.uploads[path] = data
	return "https://storage.example/" + path, nil
}

type fakeIdentity struct {
	deleted []string
}

func (f *fakeIdentity) DeleteIdentity(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}
