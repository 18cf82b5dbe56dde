// Package client is a Go client for freedome's REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/freedome/freedome/errors"
)

// Client provides a client to freedome's REST API.
//
// Don't construct a Client directly. Use New() instead.
type Client struct {
	// HTTP is the underlying HTTP client used send requests.
	HTTP *http.Client
	// BaseURL is the HTTP endpoint for the REST API, including the /api
	// prefix. It defaults to http://localhost:8080/api.
	BaseURL string
	// JWT is the user credential used to authenticate with freedome.
	//
	// We're using Firebase auth, so this must be a Firebase ID token.
	JWT string

	Users         *UsersClient
	Businesses    *BusinessesClient
	Offers        *OffersClient
	Events        *EventsClient
	Favorites     *FavoritesClient
	Notifications *NotificationsClient
	Uploads       *UploadsClient
	Places        *PlacesClient
	Admin         *AdminClient
}

// New constructs a new Client
func New(jwt string) *Client {
	client := &Client{
		HTTP:    http.DefaultClient,
		BaseURL: "http://localhost:8080/api",
		JWT:     jwt,
	}

	client.Users = &UsersClient{client}
	client.Businesses = &BusinessesClient{client}
	client.Offers = &OffersClient{client}
	client.Events = &EventsClient{client}
	client.Favorites = &FavoritesClient{client}
	client.Notifications = &NotificationsClient{client}
	client.Uploads = &UploadsClient{client}
	client.Places = &PlacesClient{client}
	client.Admin = &AdminClient{client}

	return client
}

func (c Client) doJSON(ctx context.Context, method, path string, req interface{}, resp interface{}) error {
	var reqBody io.Reader
	if req != nil {
		reqJS, err := json.Marshal(req)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(reqJS)
	}

	return c.do(ctx, method, path, "application/json", reqBody, resp)
}

func (c Client) do(ctx context.Context, method, path, contentType string, body io.Reader, resp interface{}) error {
	r, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		r.Header.Set("Content-Type", contentType)
	}
	if c.JWT != "" {
		r.Header.Set("Authorization", "Bearer "+c.JWT)
	}

	w, err := c.HTTP.Do(r)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if status := w.StatusCode; status < 200 || status > 299 {
		var resp errors.Response
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			return errors.Errorf("status %d", status)
		}
		if resp.Status == 0 {
			resp.Status = status
		}
		return resp.ToError()
	}

	if resp != nil && w.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(w.Body).Decode(resp); err != nil {
			return err
		}
	}

	return nil
}

// query encodes the non-empty values as a query string, including the "?".
func query(kv ...string) string {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			v.Set(kv[i], kv[i+1])
		}
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}
