package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"

	"github.com/freedome/freedome"
)

// UploadsClient provides access to the freedome /uploads endpoint
type UploadsClient struct {
	client *Client
}

// Logo uploads the business's logo.
func (c *UploadsClient) Logo(ctx context.Context, filename string, r io.Reader) (freedome.UploadReply, error) {
	var resp freedome.UploadReply

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return resp, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return resp, err
	}
	if err := mw.Close(); err != nil {
		return resp, err
	}

	err = c.client.do(ctx, "POST", "/uploads/logo", mw.FormDataContentType(), &body, &resp)
	return resp, err
}
