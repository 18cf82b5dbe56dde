// Package maps adapts the Google Maps Platform client to the calls freedome
// makes: geocoding, place autocomplete and place details.
package maps

import (
	"context"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/log"
	"github.com/freedome/freedome/prom"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	gmaps "googlemaps.github.io/maps"
)

// Client calls the Maps Platform with an API key.
type Client struct {
	Maps *gmaps.Client

	// Limiter paces outgoing requests. It's shared by every call so bulk
	// geocoding can't exceed the project's quota. Nil means no limit.
	Limiter *rate.Limiter

	// Language and Region bias results, eg "el" and "gr".
	Language string
	Region   string
}

// NewClient returns a client that sends at most qps requests per second.
// Extra options go to the underlying Maps client; tests use them to point
// it at a local server.
func NewClient(key string, qps float64, opts ...gmaps.ClientOption) (*Client, error) {
	opts = append([]gmaps.ClientOption{gmaps.WithAPIKey(key)}, opts...)
	mc, err := gmaps.NewClient(opts...)
	if err != nil {
		return nil, errors.E(errors.Op("maps.NewClient"), errors.Invalid, err)
	}
	return &Client{
		Maps:     mc,
		Limiter:  rate.NewLimiter(rate.Limit(qps), 1),
		Language: "el",
		Region:   "gr",
	}, nil
}

func (c *Client) wait(ctx context.Context, op errors.Op) error {
	if c.Limiter == nil {
		return nil
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return errors.E(op, err)
	}
	return nil
}

// Geocode resolves a free-text address to the coordinates of its best match.
func (c *Client) Geocode(ctx context.Context, address string) (coords freedome.Coordinates, err error) {
	const op errors.Op = "maps.Geocode"
	defer func() { prom.MapsRequest("geocode", err) }()

	if err := c.wait(ctx, op); err != nil {
		return coords, err
	}

	results, err := c.Maps.Geocode(ctx, &gmaps.GeocodingRequest{
		Address:  address,
		Region:   c.Region,
		Language: c.Language,
	})
	if err != nil {
		if statusOf(err) == statusZeroResults {
			return coords, errors.E(op, errors.NotExist, "no match for address")
		}
		log.FromContext(ctx).Warn("geocode failed", zap.Error(err))
		return coords, mapsErr(ctx, op, err)
	}
	if len(results) == 0 {
		return coords, errors.E(op, errors.NotExist, "no match for address")
	}

	return toCoordinates(results[0].Geometry.Location), nil
}

// Autocomplete suggests places for partially typed input.
func (c *Client) Autocomplete(ctx context.Context, input string) (places []freedome.Place, err error) {
	const op errors.Op = "maps.Autocomplete"
	defer func() { prom.MapsRequest("autocomplete", err) }()

	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}

	req := &gmaps.PlaceAutocompleteRequest{
		Input:    input,
		Language: c.Language,
	}
	if c.Region != "" {
		req.Components = map[gmaps.Component][]string{gmaps.ComponentCountry: {c.Region}}
	}

	resp, err := c.Maps.PlaceAutocomplete(ctx, req)
	if err != nil {
		if statusOf(err) == statusZeroResults {
			return []freedome.Place{}, nil
		}
		return nil, mapsErr(ctx, op, err)
	}

	places = make([]freedome.Place, len(resp.Predictions))
	for i, p := range resp.Predictions {
		places[i] = freedome.Place{PlaceID: p.PlaceID, Description: p.Description}
	}
	return places, nil
}

// PlaceDetails looks up a place. Fields limits the response to the named
// fields, which also limits what the lookup is billed for. Empty fields
// means the provider's default set.
func (c *Client) PlaceDetails(ctx context.Context, placeID string, fields []string) (place freedome.Place, err error) {
	const op errors.Op = "maps.PlaceDetails"
	defer func() { prom.MapsRequest("details", err) }()

	masks, err := fieldMasks(op, fields)
	if err != nil {
		return place, err
	}
	if err := c.wait(ctx, op); err != nil {
		return place, err
	}

	res, err := c.Maps.PlaceDetails(ctx, &gmaps.PlaceDetailsRequest{
		PlaceID:  placeID,
		Language: c.Language,
		Fields:   masks,
	})
	if err != nil {
		if statusOf(err) == statusZeroResults {
			return place, errors.E(op, errors.NotExist)
		}
		return place, mapsErr(ctx, op, err)
	}

	return toPlace(placeID, res), nil
}
