package service

import (
	"context"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/log"
	"go.uber.org/zap"
)

// FavoriteList lists the caller's favorites with the businesses side-loaded.
// Favorites pointing at businesses that no longer exist are skipped.
func (s *Service) FavoriteList(ctx context.Context) ([]freedome.FavoriteEntry, error) {
	const op errors.Op = "Service.FavoriteList"

	logger := log.FromContext(ctx)

	user, err := s.caller(ctx, op)
	if err != nil {
		return nil, err
	}

	entries := []freedome.FavoriteEntry{}
	for _, id := range user.Favorites.IDs() {
		business, err := s.business(ctx, op, id)
		if errors.Is(errors.NotExist, err) {
			logger.Debug("skipping missing favorite", zap.String("businessID", string(id)))
			continue
		}
		if err != nil {
			return nil, errors.E(op, user.ID, err)
		}

		entries = append(entries, freedome.FavoriteEntry{
			BusinessID: id,
			Favorite:   user.Favorites[id],
			Business:   publicProfile(business),
		})
	}

	return entries, nil
}

// FavoriteSet adds a business to the caller's favorites, or replaces the tags
// and note of one that's already there.
func (s *Service) FavoriteSet(ctx context.Context, id freedome.BusinessID, fav freedome.Favorite) (freedome.Favorites, error) {
	const op errors.Op = "Service.FavoriteSet"

	user, err := s.caller(ctx, op)
	if err != nil {
		return nil, err
	}
	if _, err := s.business(ctx, op, id); err != nil {
		return nil, err
	}
	if fav.Tags == nil {
		fav.Tags = []string{}
	}

	var added bool
	updated, err := s.UserStore.Update(ctx, user.ID, func(u *freedome.User) error {
		if u.Favorites == nil {
			u.Favorites = freedome.Favorites{}
		}
		added = !u.Favorites.Has(id)
		u.Favorites[id] = fav
		return nil
	})
	if err != nil {
		return nil, errors.E(op, user.ID, err)
	}

	if added {
		s.notify(ctx, id, freedome.NotifyFavorite, user.ID)
	}

	return updated.Favorites, nil
}

// FavoriteRemove takes a business off the caller's favorites. Removing one
// that isn't there is not an error.
func (s *Service) FavoriteRemove(ctx context.Context, id freedome.BusinessID) (freedome.Favorites, error) {
	const op errors.Op = "Service.FavoriteRemove"

	user, err := s.caller(ctx, op)
	if err != nil {
		return nil, err
	}

	updated, err := s.UserStore.Update(ctx, user.ID, func(u *freedome.User) error {
		delete(u.Favorites, id)
		return nil
	})
	if err != nil {
		return nil, errors.E(op, user.ID, err)
	}
	if updated.Favorites == nil {
		updated.Favorites = freedome.Favorites{}
	}

	return updated.Favorites, nil
}
