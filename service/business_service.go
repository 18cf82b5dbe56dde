package service

import (
	"context"
	"math"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/geojson"
	"github.com/freedome/freedome/log"
	"github.com/freedome/freedome/search"
	"go.uber.org/zap"
)

// placeRatingFields are requested when looking up a business's external
// rating.
var placeRatingFields = []string{"name", "rating", "user_ratings_total", "reviews"}

// BusinessSearch lists the businesses matching req, newest first.
func (s *Service) BusinessSearch(ctx context.Context, req freedome.BusinessSearchRequest) ([]freedome.User, error) {
	const op errors.Op = "Service.BusinessSearch"

	businesses, err := s.searchBusinesses(ctx, req)
	if err != nil {
		return nil, errors.E(op, err)
	}

	out := make([]freedome.User, len(businesses))
	for i, b := range businesses {
		out[i] = *publicProfile(b)
	}
	return out, nil
}

func (s *Service) searchBusinesses(ctx context.Context, req freedome.BusinessSearchRequest) ([]freedome.User, error) {
	// Written so NaN fails every check.
	if !(req.RadiusKM >= 0) || math.IsInf(req.RadiusKM, 1) {
		return nil, errors.E(errors.Invalid, errors.Fields{"radius"}, "radius must be a non-negative number")
	}
	if c := req.Near; c != nil && !(c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180) {
		return nil, errors.E(errors.Invalid, errors.Fields{"lat", "lng"}, "coordinates out of range")
	}

	businesses, err := s.UserStore.ListBusinesses(ctx)
	if err != nil {
		return nil, err
	}

	return search.Filter(businesses, search.CriteriaFor(req), search.BusinessFields), nil
}

// BusinessGet returns a business page: the profile, its offers, events and
// reviews, and the rating summary.
func (s *Service) BusinessGet(ctx context.Context, id freedome.BusinessID) (freedome.BusinessDetail, error) {
	const op errors.Op = "Service.BusinessGet"

	logger := log.FromContext(ctx)

	var detail freedome.BusinessDetail

	business, err := s.business(ctx, op, id)
	if err != nil {
		return detail, err
	}
	detail.Business = *publicProfile(business)

	offers, err := s.OfferStore.List(ctx)
	if err != nil {
		return detail, errors.E(op, err)
	}
	detail.Offers = []freedome.Offer{}
	for _, o := range offers {
		if o.BusinessID == id {
			detail.Offers = append(detail.Offers, o)
		}
	}

	events, err := s.EventStore.List(ctx)
	if err != nil {
		return detail, errors.E(op, err)
	}
	detail.Events = []freedome.Event{}
	for _, e := range events {
		if e.BusinessID == id {
			detail.Events = append(detail.Events, e)
		}
	}

	reviews, err := s.ReviewStore.ListForBusiness(ctx, id)
	if err != nil {
		return detail, errors.E(op, err)
	}
	detail.Reviews = reviews
	detail.Rating = search.Summarize(search.ReviewRatings(reviews))

	if placeID := business.Business.PlaceID; placeID != "" && s.Maps != nil {
		place, err := s.Maps.PlaceDetails(ctx, placeID, placeRatingFields)
		if err != nil {
			logger.Warn("place details failed",
				zap.Error(err),
				zap.String("placeID", placeID))
		} else {
			detail.PlaceRating = &place
		}
	}

	return detail, nil
}

// BusinessMap returns the businesses matching req as GeoJSON points.
// Businesses that were never geocoded are left off the map. When req has a
// centre the search circle is included as a polygon feature.
func (s *Service) BusinessMap(ctx context.Context, req freedome.BusinessSearchRequest) (geojson.FeatureCollection, error) {
	const op errors.Op = "Service.BusinessMap"

	businesses, err := s.searchBusinesses(ctx, req)
	if err != nil {
		return geojson.NewFeatureCollection(), errors.E(op, err)
	}

	features := []geojson.Feature{}
	for _, b := range businesses {
		p := b.Business
		if p == nil || p.Coordinates == nil {
			continue
		}
		features = append(features, geojson.NewFeature(geojson.Point(*p.Coordinates), map[string]interface{}{
			"id":       b.ID,
			"name":     p.BusinessName,
			"category": p.Category,
			"location": p.Location,
			"logoURL":  p.LogoURL,
		}))
	}

	if req.Near != nil {
		radius := req.RadiusKM
		if radius <= 0 {
			radius = search.DefaultRadiusKM
		}
		features = append(features, geojson.NewFeature(geojson.CircleGeom(*req.Near, radius), map[string]interface{}{
			"radiusKM": radius,
		}))
	}

	return geojson.NewFeatureCollection(features...), nil
}
