package service

import (
	"context"
	"strings"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/log"
	"github.com/freedome/freedome/search"
	"go.uber.org/zap"
)

// OfferCreate publishes an offer for the calling business.
func (s *Service) OfferCreate(ctx context.Context, offer freedome.Offer) (freedome.Offer, error) {
	const op errors.Op = "Service.OfferCreate"

	business, err := s.callerBusiness(ctx, op)
	if err != nil {
		return offer, err
	}

	offer.Title = strings.TrimSpace(offer.Title)
	if offer.Title == "" {
		return offer, errors.E(op, errors.Invalid, business.ID, "title is required")
	}
	offer.ID = ""
	offer.BusinessID = freedome.BusinessID(business.ID)
	offer.CreatedAt = s.now()
	offer.Business = nil

	offer, err = s.OfferStore.Create(ctx, offer)
	if err != nil {
		return offer, errors.E(op, business.ID, err)
	}

	return offer, nil
}

// OfferList lists offers whose business matches req. Offers from the caller's
// favorite businesses come first.
func (s *Service) OfferList(ctx context.Context, req freedome.ListingRequest) ([]freedome.Offer, error) {
	const op errors.Op = "Service.OfferList"

	offers, err := s.OfferStore.List(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}

	owners, err := s.businessIndex(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}

	joined := make([]freedome.Offer, 0, len(offers))
	for _, o := range offers {
		b, ok := owners[o.BusinessID]
		if !ok {
			continue
		}
		o.Business = publicProfile(b)
		joined = append(joined, o)
	}

	favs := s.optionalCaller(ctx).Favorites
	matched := search.Filter(joined, search.ListingCriteria(req), func(o freedome.Offer) search.Fields {
		return search.BusinessFields(*o.Business)
	})
	return search.FavoritesFirst(matched, func(o freedome.Offer) bool {
		return favs.Has(o.BusinessID)
	}), nil
}

// EventCreate publishes an event for the calling business.
func (s *Service) EventCreate(ctx context.Context, event freedome.Event) (freedome.Event, error) {
	const op errors.Op = "Service.EventCreate"

	business, err := s.callerBusiness(ctx, op)
	if err != nil {
		return event, err
	}

	event.Title = strings.TrimSpace(event.Title)
	if err := checkEvent(event); err != nil {
		return event, errors.E(op, business.ID, err)
	}
	event.ID = ""
	event.BusinessID = freedome.BusinessID(business.ID)
	event.Attendees = []freedome.UserID{}
	event.CreatedAt = s.now()
	event.Business = nil

	event, err = s.EventStore.Create(ctx, event)
	if err != nil {
		return event, errors.E(op, business.ID, err)
	}

	return event, nil
}

// EventList lists events whose business matches req. Events from the
// caller's favorite businesses come first.
func (s *Service) EventList(ctx context.Context, req freedome.ListingRequest) ([]freedome.Event, error) {
	const op errors.Op = "Service.EventList"

	events, err := s.EventStore.List(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}

	owners, err := s.businessIndex(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}

	joined := make([]freedome.Event, 0, len(events))
	for _, e := range events {
		b, ok := owners[e.BusinessID]
		if !ok {
			continue
		}
		e.Business = publicProfile(b)
		joined = append(joined, e)
	}

	favs := s.optionalCaller(ctx).Favorites
	matched := search.Filter(joined, search.ListingCriteria(req), func(e freedome.Event) search.Fields {
		return search.BusinessFields(*e.Business)
	})
	return search.FavoritesFirst(matched, func(e freedome.Event) bool {
		return favs.Has(e.BusinessID)
	}), nil
}

// EventRSVP adds or removes the caller from an event's attendees. A nil
// attending toggles the current state.
func (s *Service) EventRSVP(ctx context.Context, id freedome.EventID, attending *bool) (freedome.EventRSVPReply, error) {
	const op errors.Op = "Service.EventRSVP"

	var reply freedome.EventRSVPReply

	user, err := s.caller(ctx, op)
	if err != nil {
		return reply, err
	}

	event, err := s.EventStore.Get(ctx, id)
	if err != nil {
		return reply, errors.E(op, user.ID, err)
	}

	was := event.IsAttending(user.ID)
	want := !was
	if attending != nil {
		want = *attending
	}

	event, err = s.EventStore.SetAttendance(ctx, id, user.ID, want)
	if err != nil {
		return reply, errors.E(op, user.ID, err)
	}

	if want && !was {
		s.notify(ctx, event.BusinessID, freedome.NotifyRSVP, user.ID)
	}

	reply.Attending = event.IsAttending(user.ID)
	reply.Event = event
	return reply, nil
}

// businessIndex loads every business keyed by id, for joining.
func (s *Service) businessIndex(ctx context.Context) (map[freedome.BusinessID]freedome.User, error) {
	businesses, err := s.UserStore.ListBusinesses(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[freedome.BusinessID]freedome.User, len(businesses))
	for _, b := range businesses {
		index[freedome.BusinessID(b.ID)] = b
	}
	return index, nil
}

// notify records a notification for a business. Failures are logged, they
// never fail the action that caused them.
func (s *Service) notify(ctx context.Context, to freedome.BusinessID, typ freedome.NotificationType, from freedome.UserID) {
	if freedome.UserID(to) == from {
		return
	}

	_, err := s.NotificationStore.Create(ctx, freedome.Notification{
		BusinessID: to,
		Type:       typ,
		FromUserID: from,
		CreatedAt:  s.now(),
	})
	if err != nil {
		log.FromContext(ctx).Warn("notify failed",
			zap.Error(err),
			zap.String("businessID", string(to)),
			zap.String("type", string(typ)),
			zap.String("from", string(from)))
	}
}
