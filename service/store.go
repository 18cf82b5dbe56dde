package service

import (
	"context"

	"github.com/freedome/freedome"
)

// The store interfaces are implemented by the firestore and pg packages.
//
// Getters return an errors.NotExist error when the record is missing. Lists
// are ordered newest first.

// UserStore keeps user records.
type UserStore interface {
	Get(ctx context.Context, id freedome.UserID) (freedome.User, error)
	// Create fails with errors.Exist if the user is already there.
	Create(ctx context.Context, user freedome.User) (freedome.User, error)
	// Update runs fn on the current record inside a transaction and saves
	// the result. If fn returns an error nothing is written.
	Update(ctx context.Context, id freedome.UserID, fn func(*freedome.User) error) (freedome.User, error)
	Delete(ctx context.Context, id freedome.UserID) error
	ListBusinesses(ctx context.Context) ([]freedome.User, error)
}

// OfferStore keeps offers.
type OfferStore interface {
	Create(ctx context.Context, offer freedome.Offer) (freedome.Offer, error)
	List(ctx context.Context) ([]freedome.Offer, error)
	DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error
}

// EventStore keeps events and their attendee lists.
type EventStore interface {
	Create(ctx context.Context, event freedome.Event) (freedome.Event, error)
	Get(ctx context.Context, id freedome.EventID) (freedome.Event, error)
	List(ctx context.Context) ([]freedome.Event, error)
	// SetAttendance adds or removes one attendee. It only touches that
	// attendee's entry and is idempotent.
	SetAttendance(ctx context.Context, id freedome.EventID, user freedome.UserID, attending bool) (freedome.Event, error)
	DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error
}

// ReviewStore keeps reviews.
type ReviewStore interface {
	Create(ctx context.Context, review freedome.Review) (freedome.Review, error)
	ListForBusiness(ctx context.Context, id freedome.BusinessID) ([]freedome.Review, error)
	DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error
}

// NotificationStore keeps the notifications shown to businesses.
type NotificationStore interface {
	Create(ctx context.Context, n freedome.Notification) (freedome.Notification, error)
	Get(ctx context.Context, id freedome.NotificationID) (freedome.Notification, error)
	ListForBusiness(ctx context.Context, id freedome.BusinessID) ([]freedome.Notification, error)
	MarkRead(ctx context.Context, id freedome.NotificationID) error
	// Subscribe calls fn with the business's full notification list, newest
	// first, once at the start and again after every change. It blocks until
	// ctx is done or the subscription fails, and never calls fn concurrently.
	Subscribe(ctx context.Context, id freedome.BusinessID, fn func([]freedome.Notification)) error
	DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error
}
