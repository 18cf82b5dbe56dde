package client

import (
	"context"
	"strconv"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/geojson"
)

// BusinessesClient provides access to the freedome /businesses endpoint
type BusinessesClient struct {
	client *Client
}

func searchQuery(req freedome.BusinessSearchRequest) string {
	kv := []string{
		"category", req.Category,
		"location", req.Location,
		"keyword", req.Keyword,
	}
	if req.Near != nil {
		kv = append(kv,
			"lat", strconv.FormatFloat(req.Near.Lat, 'f', -1, 64),
			"lng", strconv.FormatFloat(req.Near.Lng, 'f', -1, 64))
	}
	if req.RadiusKM != 0 {
		kv = append(kv, "radius", strconv.FormatFloat(req.RadiusKM, 'f', -1, 64))
	}
	return query(kv...)
}

// Search finds businesses matching req.
func (c *BusinessesClient) Search(ctx context.Context, req freedome.BusinessSearchRequest) ([]freedome.User, error) {
	var resp []freedome.User
	err := c.client.doJSON(ctx, "GET", "/businesses/"+searchQuery(req), nil, &resp)
	return resp, err
}

// Map returns the businesses matching req as GeoJSON.
func (c *BusinessesClient) Map(ctx context.Context, req freedome.BusinessSearchRequest) (geojson.FeatureCollection, error) {
	var resp geojson.FeatureCollection
	err := c.client.doJSON(ctx, "GET", "/businesses/map"+searchQuery(req), nil, &resp)
	return resp, err
}

// Get retrieves a business page.
func (c *BusinessesClient) Get(ctx context.Context, id string) (freedome.BusinessDetail, error) {
	var resp freedome.BusinessDetail
	err := c.client.doJSON(ctx, "GET", "/businesses/"+id, nil, &resp)
	return resp, err
}

// Reviews lists a business's reviews.
func (c *BusinessesClient) Reviews(ctx context.Context, id string) ([]freedome.Review, error) {
	var resp []freedome.Review
	err := c.client.doJSON(ctx, "GET", "/businesses/"+id+"/reviews", nil, &resp)
	return resp, err
}

// Review reviews a business.
func (c *BusinessesClient) Review(ctx context.Context, id string, req freedome.ReviewCreateRequest) (freedome.Review, error) {
	var resp freedome.Review
	err := c.client.doJSON(ctx, "POST", "/businesses/"+id+"/reviews", req, &resp)
	return resp, err
}
