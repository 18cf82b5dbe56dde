package firestore

import (
	"context"
	"time"

	fs "cloud.google.com/go/firestore"
	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
)

type offerDoc struct {
	BusinessID  string    `firestore:"businessId"`
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

// OfferStore stores offers in the top-level offers collection.
type OfferStore struct {
	Client *fs.Client
}

// Create adds an offer with a generated ID.
func (s *OfferStore) Create(ctx context.Context, o freedome.Offer) (freedome.Offer, error) {
	const op errors.Op = "OfferStore.Create"

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	ref, _, err := s.Client.Collection(Offers).Add(ctx, offerDoc{
		BusinessID:  string(o.BusinessID),
		Title:       o.Title,
		Description: o.Description,
		CreatedAt:   o.CreatedAt,
	})
	if err != nil {
		return o, errors.E(op, fsErr(err))
	}
	o.ID = freedome.OfferID(ref.ID)
	return o, nil
}

// List lists every offer, newest first.
func (s *OfferStore) List(ctx context.Context) ([]freedome.Offer, error) {
	snaps, err := docs(ctx, s.Client.Collection(Offers).OrderBy("createdAt", fs.Desc))
	if err != nil {
		return nil, err
	}

	offers := make([]freedome.Offer, 0, len(snaps))
	for _, snap := range snaps {
		var doc offerDoc
		if err := snap.DataTo(&doc); err != nil {
			continue
		}
		offers = append(offers, freedome.Offer{
			ID:          freedome.OfferID(snap.Ref.ID),
			BusinessID:  freedome.BusinessID(doc.BusinessID),
			Title:       doc.Title,
			Description: doc.Description,
			CreatedAt:   doc.CreatedAt,
		})
	}
	return offers, nil
}

// DeleteByBusiness removes every offer of a business.
func (s *OfferStore) DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error {
	return deleteWhere(ctx, s.Client, Offers, "businessId", string(id))
}

type eventDoc struct {
	BusinessID  string    `firestore:"businessId"`
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Date        string    `firestore:"date"`
	StartTime   string    `firestore:"startTime"`
	EndTime     string    `firestore:"endTime"`
	Attendees   []string  `firestore:"attendees"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func decodeEvent(snap *fs.DocumentSnapshot) (freedome.Event, error) {
	var doc eventDoc
	if err := snap.DataTo(&doc); err != nil {
		return freedome.Event{}, errors.E(errors.Internal, err)
	}

	attendees := make([]freedome.UserID, len(doc.Attendees))
	for i, a := range doc.Attendees {
		attendees[i] = freedome.UserID(a)
	}
	return freedome.Event{
		ID:          freedome.EventID(snap.Ref.ID),
		BusinessID:  freedome.BusinessID(doc.BusinessID),
		Title:       doc.Title,
		Description: doc.Description,
		Date:        doc.Date,
		StartTime:   doc.StartTime,
		EndTime:     doc.EndTime,
		Attendees:   attendees,
		CreatedAt:   doc.CreatedAt,
	}, nil
}

// EventStore stores events in the top-level events collection.
type EventStore struct {
	Client *fs.Client
}

// Create adds an event with a generated ID.
func (s *EventStore) Create(ctx context.Context, e freedome.Event) (freedome.Event, error) {
	const op errors.Op = "EventStore.Create"

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	attendees := make([]string, len(e.Attendees))
	for i, a := range e.Attendees {
		attendees[i] = string(a)
	}

	ref, _, err := s.Client.Collection(Events).Add(ctx, eventDoc{
		BusinessID:  string(e.BusinessID),
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Attendees:   attendees,
		CreatedAt:   e.CreatedAt,
	})
	if err != nil {
		return e, errors.E(op, fsErr(err))
	}
	e.ID = freedome.EventID(ref.ID)
	return e, nil
}

// Get retrieves an Event by ID.
func (s *EventStore) Get(ctx context.Context, id freedome.EventID) (freedome.Event, error) {
	if id == "" {
		return freedome.Event{}, errors.E(errors.NotExist)
	}
	snap, err := s.Client.Collection(Events).Doc(string(id)).Get(ctx)
	if err != nil {
		return freedome.Event{}, fsErr(err)
	}
	return decodeEvent(snap)
}

// List lists every event, newest first.
func (s *EventStore) List(ctx context.Context) ([]freedome.Event, error) {
	snaps, err := docs(ctx, s.Client.Collection(Events).OrderBy("createdAt", fs.Desc))
	if err != nil {
		return nil, err
	}

	events := make([]freedome.Event, 0, len(snaps))
	for _, snap := range snaps {
		e, err := decodeEvent(snap)
		if err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// SetAttendance adds or removes one attendee with an array transform, so
// concurrent RSVPs from other users are never overwritten.
func (s *EventStore) SetAttendance(ctx context.Context, id freedome.EventID, user freedome.UserID, attending bool) (freedome.Event, error) {
	if id == "" {
		return freedome.Event{}, errors.E(errors.NotExist)
	}

	var value interface{} = fs.ArrayRemove(string(user))
	if attending {
		value = fs.ArrayUnion(string(user))
	}

	ref := s.Client.Collection(Events).Doc(string(id))
	if _, err := ref.Update(ctx, []fs.Update{{Path: "attendees", Value: value}}); err != nil {
		return freedome.Event{}, fsErr(err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return freedome.Event{}, fsErr(err)
	}
	return decodeEvent(snap)
}

// DeleteByBusiness removes every event of a business.
func (s *EventStore) DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error {
	return deleteWhere(ctx, s.Client, Events, "businessId", string(id))
}

type reviewDoc struct {
	BusinessID string    `firestore:"businessId"`
	AuthorID   string    `firestore:"authorId"`
	AuthorName string    `firestore:"authorName"`
	Rating     int       `firestore:"rating"`
	Comment    string    `firestore:"comment"`
	CreatedAt  time.Time `firestore:"createdAt"`
}

// ReviewStore stores reviews in the top-level reviews collection.
type ReviewStore struct {
	Client *fs.Client
}

// Create adds a review with a generated ID.
func (s *ReviewStore) Create(ctx context.Context, r freedome.Review) (freedome.Review, error) {
	const op errors.Op = "ReviewStore.Create"

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	ref, _, err := s.Client.Collection(Reviews).Add(ctx, reviewDoc{
		BusinessID: string(r.BusinessID),
		AuthorID:   string(r.AuthorID),
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	})
	if err != nil {
		return r, errors.E(op, fsErr(err))
	}
	r.ID = freedome.ReviewID(ref.ID)
	return r, nil
}

// ListForBusiness lists a business's reviews, newest first.
func (s *ReviewStore) ListForBusiness(ctx context.Context, id freedome.BusinessID) ([]freedome.Review, error) {
	snaps, err := docs(ctx, s.Client.Collection(Reviews).Where("businessId", "==", string(id)))
	if err != nil {
		return nil, err
	}

	reviews := make([]freedome.Review, 0, len(snaps))
	for _, snap := range snaps {
		var doc reviewDoc
		if err := snap.DataTo(&doc); err != nil {
			continue
		}
		reviews = append(reviews, freedome.Review{
			ID:         freedome.ReviewID(snap.Ref.ID),
			BusinessID: freedome.BusinessID(doc.BusinessID),
			AuthorID:   freedome.UserID(doc.AuthorID),
			AuthorName: doc.AuthorName,
			Rating:     doc.Rating,
			Comment:    doc.Comment,
			CreatedAt:  doc.CreatedAt,
		})
	}
	newestFirst(reviews, func(r freedome.Review) time.Time { return r.CreatedAt })

	return reviews, nil
}

// DeleteByBusiness removes every review of a business.
func (s *ReviewStore) DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error {
	return deleteWhere(ctx, s.Client, Reviews, "businessId", string(id))
}
