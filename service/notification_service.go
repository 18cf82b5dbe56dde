package service

import (
	"context"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
)

// NotificationList lists the calling business's notifications, newest first.
func (s *Service) NotificationList(ctx context.Context) ([]freedome.Notification, error) {
	const op errors.Op = "Service.NotificationList"

	business, err := s.callerBusiness(ctx, op)
	if err != nil {
		return nil, err
	}

	list, err := s.NotificationStore.ListForBusiness(ctx, freedome.BusinessID(business.ID))
	if err != nil {
		return nil, errors.E(op, business.ID, err)
	}
	return list, nil
}

// NotificationMarkRead marks one of the calling business's notifications as
// read.
func (s *Service) NotificationMarkRead(ctx context.Context, id freedome.NotificationID) error {
	const op errors.Op = "Service.NotificationMarkRead"

	business, err := s.callerBusiness(ctx, op)
	if err != nil {
		return err
	}

	n, err := s.NotificationStore.Get(ctx, id)
	if err != nil {
		return errors.E(op, business.ID, err)
	}
	if n.BusinessID != freedome.BusinessID(business.ID) {
		return errors.E(op, errors.Permission, business.ID)
	}
	if n.Read {
		return nil
	}

	if err := s.NotificationStore.MarkRead(ctx, id); err != nil {
		return errors.E(op, business.ID, err)
	}
	return nil
}

// NotificationSubscribe calls fn with the calling business's notifications
// whenever they change, until ctx is done. Cancellation isn't an error.
func (s *Service) NotificationSubscribe(ctx context.Context, fn func([]freedome.Notification)) error {
	const op errors.Op = "Service.NotificationSubscribe"

	business, err := s.callerBusiness(ctx, op)
	if err != nil {
		return err
	}

	err = s.NotificationStore.Subscribe(ctx, freedome.BusinessID(business.ID), fn)
	if err != nil && ctx.Err() == nil {
		return errors.E(op, business.ID, err)
	}
	return nil
}
