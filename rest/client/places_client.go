package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/freedome/freedome"
)

// PlacesClient provides access to the freedome /places endpoint
type PlacesClient struct {
	client *Client
}

// Autocomplete suggests places for partially typed input.
func (c *PlacesClient) Autocomplete(ctx context.Context, input string) ([]freedome.Place, error) {
	var resp []freedome.Place
	err := c.client.doJSON(ctx, "GET", "/places/autocomplete"+query("input", input), nil, &resp)
	return resp, err
}

// Geocode resolves an address.
func (c *PlacesClient) Geocode(ctx context.Context, address string) (freedome.Coordinates, error) {
	var resp freedome.Coordinates
	err := c.client.doJSON(ctx, "GET", "/places/geocode"+query("address", address), nil, &resp)
	return resp, err
}

// Details looks up a place.
func (c *PlacesClient) Details(ctx context.Context, placeID string, fields ...string) (freedome.Place, error) {
	var resp freedome.Place
	path := "/places/" + url.PathEscape(placeID) + query("fields", strings.Join(fields, ","))
	err := c.client.doJSON(ctx, "GET", path, nil, &resp)
	return resp, err
}

// AdminClient provides access to the freedome /admin endpoint
type AdminClient struct {
	client *Client
}

// GeocodeBackfill geocodes every business that has no coordinates.
func (c *AdminClient) GeocodeBackfill(ctx context.Context) (freedome.GeocodeBackfillReply, error) {
	var resp freedome.GeocodeBackfillReply
	err := c.client.doJSON(ctx, "POST", "/admin/geocode", nil, &resp)
	return resp, err
}
