package client

import (
	"context"

	"github.com/freedome/freedome"
)

// UsersClient provides access to the freedome /users endpoint
type UsersClient struct {
	client *Client
}

// Update lets users update their profile data.
func (c *UsersClient) Update(ctx context.Context, id string, update freedome.ProfileUpdate) (freedome.User, error) {
	var resp freedome.User
	if err := c.client.doJSON(ctx, "PATCH", "/users/"+id, update, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Get retrieves User records. Pass "me" for the signed-in user.
func (c *UsersClient) Get(ctx context.Context, id string) (freedome.User, error) {
	var resp freedome.User
	if err := c.client.doJSON(ctx, "GET", "/users/"+id, nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Delete deletes the user's account and everything it owns.
func (c *UsersClient) Delete(ctx context.Context, id string) error {
	return c.client.doJSON(ctx, "DELETE", "/users/"+id, nil, nil)
}
