package rest

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/prom"
	"github.com/freedome/freedome/service"

	"github.com/gorilla/mux"
)

// BusinessesHandler provides a REST interface to the business directory:
// search, the map and business pages with their reviews.
type BusinessesHandler struct {
	http.Handler // router

	service *service.Service
}

func newBusinessesHandler(service *service.Service) *BusinessesHandler {
	h := &BusinessesHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/",
		prom.InstrumentHandler("BusinessSearch", http.HandlerFunc(h.HandleSearch)),
	).Methods("GET")
	m.Handle(
		"/map",
		prom.InstrumentHandler("BusinessMap", http.HandlerFunc(h.HandleMap)),
	).Methods("GET")
	m.Handle(
		"/{id}",
		prom.InstrumentHandler("BusinessGet", http.HandlerFunc(h.HandleGet)),
	).Methods("GET")
	m.Handle(
		"/{id}/reviews",
		prom.InstrumentHandler("ReviewList", http.HandlerFunc(h.HandleReviewList)),
	).Methods("GET")
	m.Handle(
		"/{id}/reviews",
		prom.InstrumentHandler("ReviewCreate", http.HandlerFunc(h.HandleReviewCreate)),
	).Methods("POST")
	h.Handler = m

	return h
}

// parseSearchRequest reads search criteria from the query string. The radius
// filter is only set when both lat and lng are present.
func parseSearchRequest(r *http.Request) (freedome.BusinessSearchRequest, error) {
	q := r.URL.Query()
	req := freedome.BusinessSearchRequest{
		Category: q.Get("category"),
		Location: q.Get("location"),
		Keyword:  q.Get("keyword"),
	}

	parse := func(name string) (float64, bool, error) {
		s := strings.TrimSpace(q.Get(name))
		if s == "" {
			return 0, false, nil
		}
		// ParseFloat accepts "NaN" and "Inf", which no coordinate or radius is.
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false, errors.E(errors.Invalid, errors.Fields{name}, "bad "+name)
		}
		return f, true, nil
	}

	lat, hasLat, err := parse("lat")
	if err != nil {
		return req, err
	}
	lng, hasLng, err := parse("lng")
	if err != nil {
		return req, err
	}
	if hasLat != hasLng {
		return req, errors.E(errors.Invalid, "lat and lng go together")
	}
	if hasLat {
		req.Near = &freedome.Coordinates{Lat: lat, Lng: lng}
	}

	if req.RadiusKM, _, err = parse("radius"); err != nil {
		return req, err
	}
	return req, nil
}

// HandleSearch wraps Service.BusinessSearch in a REST interface
func (h *BusinessesHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		req, err := parseSearchRequest(r)
		if err != nil {
			return nil, err
		}
		return h.service.BusinessSearch(ctx, req)
	})
}

// HandleMap wraps Service.BusinessMap in a REST interface
func (h *BusinessesHandler) HandleMap(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		req, err := parseSearchRequest(r)
		if err != nil {
			return nil, err
		}
		return h.service.BusinessMap(ctx, req)
	})
}

// HandleGet wraps Service.BusinessGet in a REST interface
func (h *BusinessesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.BusinessGet(ctx, freedome.BusinessID(id))
	})
}

// HandleReviewList wraps Service.ReviewList in a REST interface
func (h *BusinessesHandler) HandleReviewList(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.ReviewList(ctx, freedome.BusinessID(id))
	})
}

// HandleReviewCreate wraps Service.ReviewCreate in a REST interface
func (h *BusinessesHandler) HandleReviewCreate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var req freedome.ReviewCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, err
		}
		return h.service.ReviewCreate(ctx, freedome.BusinessID(id), req)
	})
}
