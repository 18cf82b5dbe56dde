package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/prom"
	"github.com/freedome/freedome/service"
)

// UploadsHandler accepts multipart file uploads.
type UploadsHandler struct {
	http.Handler // router

	service *service.Service
}

func newUploadsHandler(service *service.Service) *UploadsHandler {
	h := &UploadsHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/logo",
		prom.InstrumentHandler("LogoUpload", http.HandlerFunc(h.HandleLogo)),
	).Methods("POST")

	h.Handler = m

	return h
}

// HandleLogo wraps Service.LogoUpload. The image is sent as the multipart
// field "file".
func (h *UploadsHandler) HandleLogo(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		// Leave room for the multipart framing around the file.
		r.Body = http.MaxBytesReader(w, r.Body, service.MaxLogoSize+64<<10)

		file, header, err := r.FormFile("file")
		if err != nil {
			if _, ok := err.(*http.MaxBytesError); ok {
				return nil, errors.E(errors.Invalid, "logo is too large")
			}
			return nil, errors.E(errors.Invalid, err)
		}
		defer file.Close()

		return h.service.LogoUpload(ctx, header.Filename, file)
	})
}
