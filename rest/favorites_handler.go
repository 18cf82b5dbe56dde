package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/prom"
	"github.com/freedome/freedome/service"
)

// FavoritesHandler provides a REST interface to the caller's favorites.
type FavoritesHandler struct {
	http.Handler // router

	service *service.Service
}

func newFavoritesHandler(service *service.Service) *FavoritesHandler {
	h := &FavoritesHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/",
		prom.InstrumentHandler("FavoriteList", http.HandlerFunc(h.HandleList)),
	).Methods("GET")
	m.Handle(
		"/{id}",
		prom.InstrumentHandler("FavoriteSet", http.HandlerFunc(h.HandleSet)),
	).Methods("PUT")
	m.Handle(
		"/{id}",
		prom.InstrumentHandler("FavoriteRemove", http.HandlerFunc(h.HandleRemove)),
	).Methods("DELETE")

	h.Handler = m

	return h
}

// HandleList wraps Service.FavoriteList in a REST interface
func (h *FavoritesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.FavoriteList(ctx)
	})
}

// HandleSet wraps Service.FavoriteSet in a REST interface. The body holds
// the favorite's tags and note and may be empty.
func (h *FavoritesHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var fav freedome.Favorite
		if err := decodeJSON(r, &fav); err != nil {
			return nil, err
		}
		return h.service.FavoriteSet(ctx, freedome.BusinessID(id), fav)
	})
}

// HandleRemove wraps Service.FavoriteRemove in a REST interface
func (h *FavoritesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.FavoriteRemove(ctx, freedome.BusinessID(id))
	})
}
