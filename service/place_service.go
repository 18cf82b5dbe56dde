package service

import (
	"context"
	"strings"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/auth"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/log"
	"go.uber.org/zap"
)

// PlacesAutocomplete suggests places for a partially typed address.
func (s *Service) PlacesAutocomplete(ctx context.Context, input string) ([]freedome.Place, error) {
	const op errors.Op = "Service.PlacesAutocomplete"

	userID, err := s.mapsUser(ctx, op)
	if err != nil {
		return nil, err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return []freedome.Place{}, nil
	}

	places, err := s.Maps.Autocomplete(ctx, input)
	if err != nil {
		return nil, errors.E(op, errors.Internal, userID, err)
	}
	return places, nil
}

// PlacesGeocode resolves an address to coordinates.
func (s *Service) PlacesGeocode(ctx context.Context, address string) (freedome.Coordinates, error) {
	const op errors.Op = "Service.PlacesGeocode"

	userID, err := s.mapsUser(ctx, op)
	if err != nil {
		return freedome.Coordinates{}, err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return freedome.Coordinates{}, errors.E(op, errors.Invalid, userID, "address is required")
	}

	c, err := s.geocoder().Geocode(ctx, address)
	if err != nil {
		return c, errors.E(op, userID, err)
	}
	return c, nil
}

// PlaceDetails looks up a place by its maps provider id.
func (s *Service) PlaceDetails(ctx context.Context, placeID string, fields []string) (freedome.Place, error) {
	const op errors.Op = "Service.PlaceDetails"

	userID, err := s.mapsUser(ctx, op)
	if err != nil {
		return freedome.Place{}, err
	}
	if strings.TrimSpace(placeID) == "" {
		return freedome.Place{}, errors.E(op, errors.Invalid, userID, "place id is required")
	}

	place, err := s.Maps.PlaceDetails(ctx, placeID, fields)
	if err != nil {
		return place, errors.E(op, userID, err)
	}
	return place, nil
}

func (s *Service) mapsUser(ctx context.Context, op errors.Op) (freedome.UserID, error) {
	id := auth.User(ctx).ID
	if id == "" {
		return "", errors.E(op, errors.NotLoggedIn)
	}
	if s.Maps == nil {
		return "", errors.E(op, errors.Internal, "maps are not configured")
	}
	return freedome.UserID(id), nil
}

// GeocodeBackfill geocodes every business that has a location but no
// coordinates. Requests go out one at a time; the maps client paces them.
func (s *Service) GeocodeBackfill(ctx context.Context) (freedome.GeocodeBackfillReply, error) {
	const op errors.Op = "Service.GeocodeBackfill"

	logger := log.FromContext(ctx)

	var reply freedome.GeocodeBackfillReply

	if !auth.User(ctx).IsAdmin {
		return reply, errors.E(op, errors.Permission)
	}
	geocoder := s.geocoder()
	if geocoder == nil {
		return reply, errors.E(op, errors.Internal, "maps are not configured")
	}

	businesses, err := s.UserStore.ListBusinesses(ctx)
	if err != nil {
		return reply, errors.E(op, err)
	}

	for _, b := range businesses {
		if err := ctx.Err(); err != nil {
			return reply, errors.E(op, err)
		}

		p := b.Business
		if p == nil || p.Coordinates != nil || strings.TrimSpace(p.Location) == "" {
			continue
		}
		reply.Checked++

		c, err := geocoder.Geocode(ctx, p.Location)
		if err != nil {
			reply.Failed++
			logger.Warn("backfill geocode failed",
				zap.Error(err),
				zap.String("businessID", string(b.ID)),
				zap.String("location", p.Location))
			continue
		}

		location := p.Location
		_, err = s.UserStore.Update(ctx, b.ID, func(u *freedome.User) error {
			// Skip if the business moved while we were geocoding
			if u.Business != nil && u.Business.Location == location {
				u.Business.Coordinates = &c
			}
			return nil
		})
		if err != nil {
			reply.Failed++
			logger.Warn("backfill update failed",
				zap.Error(err),
				zap.String("businessID", string(b.ID)))
			continue
		}
		reply.Updated++
	}

	logger.Info("geocode backfill done",
		zap.Int("checked", reply.Checked),
		zap.Int("updated", reply.Updated),
		zap.Int("failed", reply.Failed))

	return reply, nil
}
