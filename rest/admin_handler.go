package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/freedome/freedome/prom"
	"github.com/freedome/freedome/service"
)

// AdminHandler exposes maintenance operations to admins.
type AdminHandler struct {
	http.Handler // router

	service *service.Service
}

func newAdminHandler(service *service.Service) *AdminHandler {
	h := &AdminHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/geocode",
		prom.InstrumentHandler("GeocodeBackfill", http.HandlerFunc(h.HandleGeocodeBackfill)),
	).Methods("POST")

	h.Handler = m

	return h
}

// HandleGeocodeBackfill wraps Service.GeocodeBackfill in a REST interface
func (h *AdminHandler) HandleGeocodeBackfill(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.GeocodeBackfill(ctx)
	})
}
