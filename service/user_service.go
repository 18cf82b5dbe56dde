package service

import (
	"context"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/auth"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/log"
	"go.uber.org/zap"
)

// ReauthWindow is how recent a sign-in must be to delete an account.
const ReauthWindow = 5 * time.Minute

// UserGet retrieves User records. The record is created from the sign-in
// identity the first time a user asks for it.
func (s *Service) UserGet(ctx context.Context, id freedome.UserID) (freedome.User, error) {
	const op errors.Op = "Service.UserGet"

	currentUser := auth.User(ctx)
	if currentUser.ID == "" {
		return freedome.User{}, errors.E(op, errors.NotLoggedIn)
	}
	userID := freedome.UserID(currentUser.ID)
	if id != "me" && id != userID {
		return freedome.User{}, errors.E(op, errors.Permission, userID)
	}

	user, err := s.ensureUser(ctx, currentUser)
	if err != nil {
		return user, errors.E(op, userID, err)
	}

	return user, nil
}

func (s *Service) ensureUser(ctx context.Context, info auth.Info) (freedome.User, error) {
	id := freedome.UserID(info.ID)

	user, err := s.UserStore.Get(ctx, id)
	if !errors.Is(errors.NotExist, err) {
		return user, err
	}

	user, err = s.UserStore.Create(ctx, freedome.User{
		ID:          id,
		Email:       info.Email,
		DisplayName: info.Name,
		PhotoURL:    info.PhotoURL,
		CreatedAt:   s.now(),
		Favorites:   freedome.Favorites{},
	})
	if errors.Is(errors.Exist, err) {
		// Lost a race with another first request
		return s.UserStore.Get(ctx, id)
	}
	if err == nil {
		log.FromContext(ctx).Info("created user", zap.String("userID", string(id)))
	}
	return user, err
}

// UserUpdate lets users fill in and edit their profile.
func (s *Service) UserUpdate(ctx context.Context, id freedome.UserID, update freedome.ProfileUpdate) (freedome.User, error) {
	const op errors.Op = "Service.UserUpdate"

	logger := log.FromContext(ctx)

	currentUser := auth.User(ctx)
	if currentUser.ID == "" {
		return freedome.User{}, errors.E(op, errors.NotLoggedIn)
	}
	userID := freedome.UserID(currentUser.ID)
	if id != "me" && id != userID {
		return freedome.User{}, errors.E(op, errors.Permission, userID)
	}

	current, err := s.ensureUser(ctx, currentUser)
	if err != nil {
		return current, errors.E(op, userID, err)
	}

	// Validate before any remote call
	apply := func(u *freedome.User) error {
		if err := checkRole(*u, update); err != nil {
			return err
		}
		next := update.Apply(*u)
		if err := checkProfile(next); err != nil {
			return err
		}
		*u = next
		return nil
	}
	preview := current
	if err := apply(&preview); err != nil {
		return current, errors.E(op, userID, err)
	}

	// Geocode when the business moved or was never placed
	var coords *freedome.Coordinates
	if b := preview.Business; b != nil && update.Has("business") && s.geocoder() != nil {
		moved := current.Business == nil || current.Business.Location != b.Location
		if moved || b.Coordinates == nil {
			c, err := s.geocoder().Geocode(ctx, b.Location)
			if err != nil {
				logger.Warn("geocode failed",
					zap.Error(err),
					zap.String("location", b.Location))
			} else {
				coords = &c
			}
		}
	}

	user, err := s.UserStore.Update(ctx, userID, func(u *freedome.User) error {
		var prevLocation string
		if u.Business != nil {
			prevLocation = u.Business.Location
		}
		if err := apply(u); err != nil {
			return err
		}
		if b := u.Business; b != nil {
			if b.Location != prevLocation {
				b.Coordinates = nil
			}
			if coords != nil && b.Location == preview.Business.Location {
				b.Coordinates = coords
			}
		}
		return nil
	})
	if err != nil {
		return user, errors.E(op, userID, err)
	}

	return user, nil
}

// UserDelete deletes the caller's account. Businesses lose their offers,
// events, reviews and notifications too. The caller must have signed in
// within ReauthWindow.
func (s *Service) UserDelete(ctx context.Context, id freedome.UserID) error {
	const op errors.Op = "Service.UserDelete"

	logger := log.FromContext(ctx)

	currentUser := auth.User(ctx)
	if currentUser.ID == "" {
		return errors.E(op, errors.NotLoggedIn)
	}
	userID := freedome.UserID(currentUser.ID)
	if id != "me" && id != userID {
		return errors.E(op, errors.Permission, userID)
	}
	if !currentUser.SignedInSince(s.now().Add(-ReauthWindow)) {
		return errors.E(op, errors.Reauth, userID)
	}

	user, err := s.UserStore.Get(ctx, userID)
	switch {
	case errors.Is(errors.NotExist, err):
		// Nothing stored, only the identity is left
	case err != nil:
		return errors.E(op, userID, err)
	default:
		if user.Role == freedome.RoleBusiness {
			if err := s.deleteBusinessRecords(ctx, freedome.BusinessID(userID)); err != nil {
				return errors.E(op, userID, err)
			}
		}
		if err := s.UserStore.Delete(ctx, userID); err != nil && !errors.Is(errors.NotExist, err) {
			return errors.E(op, userID, err)
		}
	}

	if s.Identity != nil {
		if err := s.Identity.DeleteIdentity(ctx, string(userID)); err != nil {
			return errors.E(op, errors.Internal, userID, err)
		}
	}

	logger.Info("deleted user",
		zap.String("userID", string(userID)),
		zap.String("role", string(user.Role)))

	return nil
}

func (s *Service) deleteBusinessRecords(ctx context.Context, id freedome.BusinessID) error {
	if err := s.OfferStore.DeleteByBusiness(ctx, id); err != nil {
		return err
	}
	if err := s.EventStore.DeleteByBusiness(ctx, id); err != nil {
		return err
	}
	if err := s.ReviewStore.DeleteByBusiness(ctx, id); err != nil {
		return err
	}
	if err := s.NotificationStore.DeleteByBusiness(ctx, id); err != nil {
		return err
	}
	return nil
}
