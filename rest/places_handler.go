package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/freedome/freedome/prom"
	"github.com/freedome/freedome/service"
)

// PlacesHandler proxies maps lookups so the API key stays on the server.
type PlacesHandler struct {
	http.Handler // router

	service *service.Service
}

func newPlacesHandler(service *service.Service) *PlacesHandler {
	h := &PlacesHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/autocomplete",
		prom.InstrumentHandler("PlacesAutocomplete", http.HandlerFunc(h.HandleAutocomplete)),
	).Methods("GET")
	m.Handle(
		"/geocode",
		prom.InstrumentHandler("PlacesGeocode", http.HandlerFunc(h.HandleGeocode)),
	).Methods("GET")
	m.Handle(
		"/{id}",
		prom.InstrumentHandler("PlaceDetails", http.HandlerFunc(h.HandleDetails)),
	).Methods("GET")

	h.Handler = m

	return h
}

// HandleAutocomplete wraps Service.PlacesAutocomplete in a REST interface
func (h *PlacesHandler) HandleAutocomplete(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.PlacesAutocomplete(ctx, r.URL.Query().Get("input"))
	})
}

// HandleGeocode wraps Service.PlacesGeocode in a REST interface
func (h *PlacesHandler) HandleGeocode(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.PlacesGeocode(ctx, r.URL.Query().Get("address"))
	})
}

// HandleDetails wraps Service.PlaceDetails in a REST interface. The
// comma-separated fields parameter limits the lookup.
func (h *PlacesHandler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var fields []string
		for _, f := range strings.Split(r.URL.Query().Get("fields"), ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		return h.service.PlaceDetails(ctx, id, fields)
	})
}
