package maps

import (
	"context"
	"strings"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	gmaps "googlemaps.github.io/maps"
)

const (
	statusZeroResults    = "ZERO_RESULTS"
	statusNotFound       = "NOT_FOUND"
	statusInvalidRequest = "INVALID_REQUEST"
)

// statusOf pulls the web service status out of an error from the Maps
// client, which formats them as "maps: STATUS - message". Transport and
// decoding errors have no status.
func statusOf(err error) string {
	msg := strings.TrimPrefix(err.Error(), "maps: ")
	if i := strings.Index(msg, " - "); i >= 0 {
		msg = msg[:i]
	}
	for _, r := range msg {
		if (r < 'A' || r > 'Z') && r != '_' {
			return ""
		}
	}
	return msg
}

// mapsErr maps a Maps client error to a domain error. ZERO_RESULTS is
// handled by the callers since it means different things per endpoint.
func mapsErr(ctx context.Context, op errors.Op, err error) error {
	if ctx.Err() != nil {
		return errors.E(op, err)
	}
	switch statusOf(err) {
	case statusNotFound:
		return errors.E(op, errors.NotExist, err)
	case statusInvalidRequest:
		return errors.E(op, errors.Invalid, err)
	default:
		return errors.E(op, errors.Internal, err)
	}
}

func fieldMasks(op errors.Op, fields []string) ([]gmaps.PlaceDetailsFieldMask, error) {
	var masks []gmaps.PlaceDetailsFieldMask
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		m, err := gmaps.ParsePlaceDetailsFieldMask(f)
		if err != nil {
			return nil, errors.E(op, errors.Invalid, errors.Fields{"fields"}, err)
		}
		masks = append(masks, m)
	}
	return masks, nil
}

func toCoordinates(ll gmaps.LatLng) freedome.Coordinates {
	return freedome.Coordinates{Lat: ll.Lat, Lng: ll.Lng}
}

func toPlace(placeID string, d gmaps.PlaceDetailsResult) freedome.Place {
	p := freedome.Place{
		PlaceID:     placeID,
		Description: d.FormattedAddress,
		Name:        d.Name,
		Address:     d.FormattedAddress,
		Rating:      float64(d.Rating),
		RatingCount: d.UserRatingsTotal,
	}
	if loc := d.Geometry.Location; loc.Lat != 0 || loc.Lng != 0 {
		c := toCoordinates(loc)
		p.Coordinates = &c
	}
	for _, r := range d.Reviews {
		p.Reviews = append(p.Reviews, freedome.PlaceReview{
			AuthorName: r.AuthorName,
			Rating:     r.Rating,
			Text:       r.Text,
			Time:       time.Unix(int64(r.Time), 0).UTC(),
		})
	}
	return p
}
