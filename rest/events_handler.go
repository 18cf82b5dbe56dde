package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/prom"
	"github.com/freedome/freedome/service"
)

func parseListingRequest(r *http.Request) freedome.ListingRequest {
	q := r.URL.Query()
	return freedome.ListingRequest{
		Category: q.Get("category"),
		Location: q.Get("location"),
		Keyword:  q.Get("keyword"),
	}
}

// EventsHandler provides a REST interface to freedome's event-related functions.
type EventsHandler struct {
	http.Handler // router

	service *service.Service
}

func newEventsHandler(service *service.Service) *EventsHandler {
	h := &EventsHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/",
		prom.InstrumentHandler("EventCreate", http.HandlerFunc(h.HandleCreate)),
	).Methods("POST")
	m.Handle(
		"/",
		prom.InstrumentHandler("EventList", http.HandlerFunc(h.HandleList)),
	).Methods("GET")
	m.Handle(
		"/{id}/rsvp",
		prom.InstrumentHandler("EventRSVP", http.HandlerFunc(h.HandleRSVP)),
	).Methods("POST")

	h.Handler = m

	return h
}

// HandleCreate wraps Service.EventCreate in a REST interface
func (h *EventsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var event freedome.Event
		if err := decodeJSON(r, &event); err != nil {
			return nil, err
		}
		return h.service.EventCreate(ctx, event)
	})
}

// HandleList wraps Service.EventList in a REST interface
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.EventList(ctx, parseListingRequest(r))
	})
}

// HandleRSVP wraps Service.EventRSVP in a REST interface. An empty body
// toggles attendance.
func (h *EventsHandler) HandleRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var req freedome.EventRSVPRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, err
		}
		return h.service.EventRSVP(ctx, freedome.EventID(eventID), req.Attending)
	})
}

// OffersHandler provides a REST interface to freedome's offer-related functions.
type OffersHandler struct {
	http.Handler // router

	service *service.Service
}

func newOffersHandler(service *service.Service) *OffersHandler {
	h := &OffersHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/",
		prom.InstrumentHandler("OfferCreate", http.HandlerFunc(h.HandleCreate)),
	).Methods("POST")
	m.Handle(
		"/",
		prom.InstrumentHandler("OfferList", http.HandlerFunc(h.HandleList)),
	).Methods("GET")

	h.Handler = m

	return h
}

// HandleCreate wraps Service.OfferCreate in a REST interface
func (h *OffersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var offer freedome.Offer
		if err := decodeJSON(r, &offer); err != nil {
			return nil, err
		}
		return h.service.OfferCreate(ctx, offer)
	})
}

// HandleList wraps Service.OfferList in a REST interface
func (h *OffersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.OfferList(ctx, parseListingRequest(r))
	})
}
