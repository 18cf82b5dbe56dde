package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
)

// NotificationsClient provides access to the freedome /notifications endpoint
type NotificationsClient struct {
	client *Client
}

// List lists the business's notifications, newest first.
func (c *NotificationsClient) List(ctx context.Context) ([]freedome.Notification, error) {
	var resp []freedome.Notification
	err := c.client.doJSON(ctx, "GET", "/notifications/", nil, &resp)
	return resp, err
}

// MarkRead marks a notification as read.
func (c *NotificationsClient) MarkRead(ctx context.Context, id string) error {
	return c.client.doJSON(ctx, "POST", "/notifications/"+id+"/read", nil, nil)
}

// Stream calls fn with the full notification list every time it changes. It
// blocks until ctx is done or the connection fails.
func (c *NotificationsClient) Stream(ctx context.Context, fn func([]freedome.Notification)) error {
	u := c.client.BaseURL + "/notifications/stream"
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}

	header := http.Header{}
	if c.client.JWT != "" {
		header.Set("Authorization", "Bearer "+c.client.JWT)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, header)
	if err != nil {
		if resp == nil {
			return err
		}
		// The handshake failed with a regular error response.
		var errResp errors.Response
		if json.NewDecoder(resp.Body).Decode(&errResp) != nil {
			return errors.Errorf("status %d", resp.StatusCode)
		}
		if errResp.Status == 0 {
			errResp.Status = resp.StatusCode
		}
		return errResp.ToError()
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var list []freedome.Notification
		if err := conn.ReadJSON(&list); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		fn(list)
	}
}
