package service

import (
	"context"
	"strings"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/search"
)

// ReviewCreate rates a business. Businesses can't review themselves.
func (s *Service) ReviewCreate(ctx context.Context, id freedome.BusinessID, req freedome.ReviewCreateRequest) (freedome.Review, error) {
	const op errors.Op = "Service.ReviewCreate"

	var review freedome.Review

	user, err := s.caller(ctx, op)
	if err != nil {
		return review, err
	}
	if req.Rating < 1 || req.Rating > search.MaxStars {
		return review, errors.E(op, errors.Invalid, user.ID, errors.Errorf("rating must be between 1 and %d", search.MaxStars))
	}
	if freedome.UserID(id) == user.ID {
		return review, errors.E(op, errors.Permission, user.ID, "can't review your own business")
	}

	if _, err := s.business(ctx, op, id); err != nil {
		return review, err
	}

	review, err = s.ReviewStore.Create(ctx, freedome.Review{
		BusinessID: id,
		AuthorID:   user.ID,
		AuthorName: authorName(user),
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
		CreatedAt:  s.now(),
	})
	if err != nil {
		return review, errors.E(op, user.ID, err)
	}

	s.notify(ctx, id, freedome.NotifyReview, user.ID)

	return review, nil
}

// ReviewList lists a business's reviews, newest first.
func (s *Service) ReviewList(ctx context.Context, id freedome.BusinessID) ([]freedome.Review, error) {
	const op errors.Op = "Service.ReviewList"

	if _, err := s.business(ctx, op, id); err != nil {
		return nil, err
	}

	reviews, err := s.ReviewStore.ListForBusiness(ctx, id)
	if err != nil {
		return nil, errors.E(op, err)
	}
	return reviews, nil
}

func authorName(u freedome.User) string {
	switch {
	case u.Client != nil:
		if name := strings.TrimSpace(u.Client.FirstName + " " + u.Client.LastName); name != "" {
			return name
		}
	case u.Business != nil:
		if u.Business.BusinessName != "" {
			return u.Business.BusinessName
		}
	}
	return u.DisplayName
}
