package rest

import (
	"context"
	"net/http"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/prom"
	"github.com/freedome/freedome/service"

	"github.com/gorilla/mux"
)

// UsersHandler provides a REST interface to freedome's user-related functions.
type UsersHandler struct {
	http.Handler // router

	service *service.Service
}

func newUsersHandler(service *service.Service) *UsersHandler {
	h := &UsersHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/{id}",
		prom.InstrumentHandler("UserGet", http.HandlerFunc(h.HandleGet)),
	).Methods("GET")
	m.Handle(
		"/{id}",
		prom.InstrumentHandler("UserUpdate", http.HandlerFunc(h.HandleUpdate)),
	).Methods("PATCH")
	m.Handle(
		"/{id}",
		prom.InstrumentHandler("UserDelete", http.HandlerFunc(h.HandleDelete)),
	).Methods("DELETE")
	h.Handler = m

	return h
}

// HandleUpdate wraps Service.UserUpdate in a REST interface
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var update freedome.ProfileUpdate
		if err := decodeJSON(r, &update); err != nil {
			return nil, err
		}

		return h.service.UserUpdate(ctx, freedome.UserID(userID), update)
	})
}

// HandleGet wraps Service.UserGet in a REST interface
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.UserGet(ctx, freedome.UserID(userID))
	})
}

// HandleDelete wraps Service.UserDelete in a REST interface
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return nil, h.service.UserDelete(ctx, freedome.UserID(userID))
	})
}
