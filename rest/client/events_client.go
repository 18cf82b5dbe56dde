package client

import (
	"context"

	"github.com/freedome/freedome"
)

func listingQuery(req freedome.ListingRequest) string {
	return query(
		"category", req.Category,
		"location", req.Location,
		"keyword", req.Keyword,
	)
}

// EventsClient provides access to the freedome /events endpoint
type EventsClient struct {
	client *Client
}

// Create publishes an event for the signed-in business.
func (c *EventsClient) Create(ctx context.Context, event freedome.Event) (freedome.Event, error) {
	var resp freedome.Event
	err := c.client.doJSON(ctx, "POST", "/events/", event, &resp)
	return resp, err
}

// List lists events, the user's favorite businesses first.
func (c *EventsClient) List(ctx context.Context, req freedome.ListingRequest) ([]freedome.Event, error) {
	var resp []freedome.Event
	err := c.client.doJSON(ctx, "GET", "/events/"+listingQuery(req), nil, &resp)
	return resp, err
}

// RSVP sets the user's attendance. A nil attending toggles it.
func (c *EventsClient) RSVP(ctx context.Context, id string, attending *bool) (freedome.EventRSVPReply, error) {
	var resp freedome.EventRSVPReply
	req := freedome.EventRSVPRequest{Attending: attending}
	err := c.client.doJSON(ctx, "POST", "/events/"+id+"/rsvp", req, &resp)
	return resp, err
}

// OffersClient provides access to the freedome /offers endpoint
type OffersClient struct {
	client *Client
}

// Create publishes an offer for the signed-in business.
func (c *OffersClient) Create(ctx context.Context, offer freedome.Offer) (freedome.Offer, error) {
	var resp freedome.Offer
	err := c.client.doJSON(ctx, "POST", "/offers/", offer, &resp)
	return resp, err
}

// List lists offers, the user's favorite businesses first.
func (c *OffersClient) List(ctx context.Context, req freedome.ListingRequest) ([]freedome.Offer, error) {
	var resp []freedome.Offer
	err := c.client.doJSON(ctx, "GET", "/offers/"+listingQuery(req), nil, &resp)
	return resp, err
}
