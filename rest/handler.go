// Package rest contains a REST handler for freedome. It wraps Service in a
// web-accessible API.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/freedome/freedome/auth"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/log"
	"github.com/freedome/freedome/service"
)

// maxBodySize caps JSON request bodies. Uploads have their own limit.
const maxBodySize = 1 << 20

// New creates a new REST service wrapping a freedome Service.
func New(service *service.Service, provider auth.Provider) *Handler {
	return &Handler{
		Auth: provider,

		UsersHandler:         newUsersHandler(service),
		BusinessesHandler:    newBusinessesHandler(service),
		OffersHandler:        newOffersHandler(service),
		EventsHandler:        newEventsHandler(service),
		FavoritesHandler:     newFavoritesHandler(service),
		NotificationsHandler: newNotificationsHandler(service),
		UploadsHandler:       newUploadsHandler(service),
		PlacesHandler:        newPlacesHandler(service),
		AdminHandler:         newAdminHandler(service),
	}
}

// Handler is an http.Handler that provides a REST interface for freedome.
type Handler struct {
	Auth auth.Provider

	// Sub-handlers for each top-level path. A nil handler answers 404.
	UsersHandler         http.Handler
	BusinessesHandler    http.Handler
	OffersHandler        http.Handler
	EventsHandler        http.Handler
	FavoritesHandler     http.Handler
	NotificationsHandler http.Handler
	UploadsHandler       http.Handler
	PlacesHandler        http.Handler
	AdminHandler         http.Handler
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var head string
	head, r.URL.Path = ShiftPath(r.URL.Path)

	if head == "healthz" {
		fmt.Fprintln(w, "ok")
		return
	}

	// Retrieve the logger from HTTP middleware, if set.
	ctx := r.Context()
	logger := log.FromContext(ctx)

	// Get auth info from the token
	var user auth.Info
	if h.Auth != nil {
		var err error
		user, err = h.Auth.FromRequest(r)
		if err == auth.ErrExpired {
			writeErrorResp(w, errors.Response{
				Error:  "auth token expired",
				Status: http.StatusUnauthorized,
			})
			return

		} else if err != nil {
			logger.Warn("parse auth failed", zap.Error(err))
		}
	}
	ctx = user.WithContext(ctx)

	// Decorate the logger with the user id
	logger = logger.With(zap.String("userid", user.ID))
	ctx = log.ToContext(ctx, logger)
	r = r.WithContext(ctx)

	var next http.Handler
	switch head {
	case "users":
		next = h.UsersHandler
	case "businesses":
		next = h.BusinessesHandler
	case "offers":
		next = h.OffersHandler
	case "events":
		next = h.EventsHandler
	case "favorites":
		next = h.FavoritesHandler
	case "notifications":
		next = h.NotificationsHandler
	case "uploads":
		next = h.UploadsHandler
	case "places":
		next = h.PlacesHandler
	case "admin":
		next = h.AdminHandler
	}

	if next == nil {
		http.NotFound(w, r)
		return
	}
	next.ServeHTTP(w, r)
}

// ShiftPath splits off the first component of p, which will be cleaned of
// relative components before processing. head will never contain a slash and
// tail will always be a rooted path without trailing slash.
func ShiftPath(p string) (head, tail string) {
	p = path.Clean("/" + p)
	i := strings.Index(p[1:], "/") + 1
	if i <= 0 {
		return p[1:], "/"
	}
	return p[1:i], p[i:]
}

// decodeJSON reads a JSON request body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errors.E(errors.Invalid, err)
	}
	return nil
}

func handleJSON(w http.ResponseWriter, r *http.Request, f func(context.Context) (interface{}, error)) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	resp, err := f(ctx)
	if err != nil {
		errResp := errors.ResponseForError(err)
		if errResp.Status >= 500 {
			logger.Error("internal server error", zap.Error(err))
		} else {
			logger.Warn("handler failed", zap.Stringer("kind", errors.KindOf(err)), zap.Error(err))
		}

		if auth.User(ctx).IsAdmin { // show the full error if it's an admin
			errResp.Error = fmt.Sprintf("%s: %s", errResp.Error, err.Error())
		}

		writeErrorResp(w, errResp)
		return
	}

	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	js, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		logger.Error("write json failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(js)
}

func writeErrorResp(w http.ResponseWriter, resp errors.Response) {
	js, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(resp.Status)
	w.Write(js)
}
