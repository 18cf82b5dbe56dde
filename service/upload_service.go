package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
)

// MaxLogoSize is the largest logo accepted by LogoUpload.
const MaxLogoSize = 5 << 20

var logoTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// LogoUpload stores a logo for the calling business and sets it as the
// profile's LogoURL.
func (s *Service) LogoUpload(ctx context.Context, filename string, r io.Reader) (freedome.UploadReply, error) {
	const op errors.Op = "Service.LogoUpload"

	var reply freedome.UploadReply

	business, err := s.callerBusiness(ctx, op)
	if err != nil {
		return reply, err
	}
	if s.Storage == nil {
		return reply, errors.E(op, errors.Internal, business.ID, "uploads are not configured")
	}

	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := logoTypes[ext]
	if !ok {
		return reply, errors.E(op, errors.Invalid, business.ID, errors.Errorf("unsupported image type %q", ext))
	}

	// Read one byte past the limit to tell a full-size file from a big one
	data, err := io.ReadAll(io.LimitReader(r, MaxLogoSize+1))
	if err != nil {
		return reply, errors.E(op, errors.Invalid, business.ID, err)
	}
	if len(data) > MaxLogoSize {
		return reply, errors.E(op, errors.Invalid, business.ID, errors.Errorf("logo is larger than %d MB", MaxLogoSize>>20))
	}
	if len(data) == 0 {
		return reply, errors.E(op, errors.Invalid, business.ID, "empty file")
	}

	objectPath := fmt.Sprintf("logos/%s/%d%s", business.ID, s.now().Unix(), ext)
	url, err := s.Storage.Upload(ctx, objectPath, contentType, bytes.NewReader(data))
	if err != nil {
		return reply, errors.E(op, errors.Internal, business.ID, err)
	}

	_, err = s.UserStore.Update(ctx, business.ID, func(u *freedome.User) error {
		if u.Business == nil {
			return errors.E(errors.Permission, "business profile missing")
		}
		u.Business.LogoURL = url
		return nil
	})
	if err != nil {
		return reply, errors.E(op, business.ID, err)
	}

	reply.URL = url
	return reply, nil
}
