package firestore

import (
	"context"
	"time"

	fs "cloud.google.com/go/firestore"
	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type notificationDoc struct {
	BusinessID string    `firestore:"businessId"`
	Type       string    `firestore:"type"`
	FromUserID string    `firestore:"fromUserId"`
	Read       bool      `firestore:"read"`
	CreatedAt  time.Time `firestore:"createdAt"`
}

func decodeNotification(snap *fs.DocumentSnapshot) (freedome.Notification, error) {
	var doc notificationDoc
	if err := snap.DataTo(&doc); err != nil {
		return freedome.Notification{}, errors.E(errors.Internal, err)
	}
	typ := freedome.NotificationType(doc.Type)
	if typ == "" {
		typ = freedome.NotifyGeneric
	}
	return freedome.Notification{
		ID:         freedome.NotificationID(snap.Ref.ID),
		BusinessID: freedome.BusinessID(doc.BusinessID),
		Type:       typ,
		FromUserID: freedome.UserID(doc.FromUserID),
		Read:       doc.Read,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func decodeNotifications(snaps []*fs.DocumentSnapshot) []freedome.Notification {
	list := make([]freedome.Notification, 0, len(snaps))
	for _, snap := range snaps {
		n, err := decodeNotification(snap)
		if err != nil {
			continue
		}
		list = append(list, n)
	}
	newestFirst(list, func(n freedome.Notification) time.Time { return n.CreatedAt })
	return list
}

// NotificationStore stores business notifications in the top-level
// notifications collection.
type NotificationStore struct {
	Client *fs.Client
}

func (s *NotificationStore) forBusiness(id freedome.BusinessID) fs.Query {
	return s.Client.Collection(Notifications).Where("businessId", "==", string(id))
}

// Create adds a notification with a generated ID.
func (s *NotificationStore) Create(ctx context.Context, n freedome.Notification) (freedome.Notification, error) {
	const op errors.Op = "NotificationStore.Create"

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Type == "" {
		n.Type = freedome.NotifyGeneric
	}
	ref, _, err := s.Client.Collection(Notifications).Add(ctx, notificationDoc{
		BusinessID: string(n.BusinessID),
		Type:       string(n.Type),
		FromUserID: string(n.FromUserID),
		Read:       n.Read,
		CreatedAt:  n.CreatedAt,
	})
	if err != nil {
		return n, errors.E(op, fsErr(err))
	}
	n.ID = freedome.NotificationID(ref.ID)
	return n, nil
}

// Get retrieves a Notification by ID.
func (s *NotificationStore) Get(ctx context.Context, id freedome.NotificationID) (freedome.Notification, error) {
	if id == "" {
		return freedome.Notification{}, errors.E(errors.NotExist)
	}
	snap, err := s.Client.Collection(Notifications).Doc(string(id)).Get(ctx)
	if err != nil {
		return freedome.Notification{}, fsErr(err)
	}
	return decodeNotification(snap)
}

// ListForBusiness lists a business's notifications, newest first.
func (s *NotificationStore) ListForBusiness(ctx context.Context, id freedome.BusinessID) ([]freedome.Notification, error) {
	snaps, err := docs(ctx, s.forBusiness(id))
	if err != nil {
		return nil, err
	}
	return decodeNotifications(snaps), nil
}

// MarkRead sets a notification's read flag.
func (s *NotificationStore) MarkRead(ctx context.Context, id freedome.NotificationID) error {
	if id == "" {
		return errors.E(errors.NotExist)
	}
	_, err := s.Client.Collection(Notifications).Doc(string(id)).Update(ctx, []fs.Update{
		{Path: "read", Value: true},
	})
	return fsErr(err)
}

// Subscribe follows the business's notifications with a snapshot listener,
// sending the full list to fn on every change.
func (s *NotificationStore) Subscribe(ctx context.Context, id freedome.BusinessID, fn func([]freedome.Notification)) error {
	const op errors.Op = "NotificationStore.Subscribe"

	it := s.forBusiness(id).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if ctx.Err() != nil || status.Code(err) == codes.Canceled {
			return nil
		}
		if err != nil {
			return errors.E(op, fsErr(err))
		}

		all, err := snap.Documents.GetAll()
		if err != nil {
			return errors.E(op, fsErr(err))
		}
		fn(decodeNotifications(all))
	}
}

// DeleteByBusiness removes every notification of a business.
func (s *NotificationStore) DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error {
	return deleteWhere(ctx, s.Client, Notifications, "businessId", string(id))
}
