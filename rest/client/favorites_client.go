package client

import (
	"context"

	"github.com/freedome/freedome"
)

// FavoritesClient provides access to the freedome /favorites endpoint
type FavoritesClient struct {
	client *Client
}

// List lists the user's favorites with their businesses.
func (c *FavoritesClient) List(ctx context.Context) ([]freedome.FavoriteEntry, error) {
	var resp []freedome.FavoriteEntry
	err := c.client.doJSON(ctx, "GET", "/favorites/", nil, &resp)
	return resp, err
}

// Set adds a business to the favorites or updates its tags and note.
func (c *FavoritesClient) Set(ctx context.Context, id string, fav freedome.Favorite) (freedome.Favorites, error) {
	var resp freedome.Favorites
	err := c.client.doJSON(ctx, "PUT", "/favorites/"+id, fav, &resp)
	return resp, err
}

// Remove removes a business from the favorites.
func (c *FavoritesClient) Remove(ctx context.Context, id string) (freedome.Favorites, error) {
	var resp freedome.Favorites
	err := c.client.doJSON(ctx, "DELETE", "/favorites/"+id, nil, &resp)
	return resp, err
}
