package rest

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/log"
	"github.com/freedome/freedome/prom"
	"github.com/freedome/freedome/service"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// NotificationsHandler provides a REST interface to a business's
// notifications, plus a websocket that pushes the list whenever it changes.
type NotificationsHandler struct {
	http.Handler // router

	service *service.Service

	// AllowedOrigins lists the origins that may open the stream, in addition
	// to the server's own origin.
	AllowedOrigins []string
}

func newNotificationsHandler(service *service.Service) *NotificationsHandler {
	h := &NotificationsHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/",
		prom.InstrumentHandler("NotificationList", http.HandlerFunc(h.HandleList)),
	).Methods("GET")
	m.Handle(
		"/stream",
		http.HandlerFunc(h.HandleStream),
	).Methods("GET")
	m.Handle(
		"/{id}/read",
		prom.InstrumentHandler("NotificationMarkRead", http.HandlerFunc(h.HandleMarkRead)),
	).Methods("POST")

	h.Handler = m

	return h
}

// HandleList wraps Service.NotificationList in a REST interface
func (h *NotificationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.NotificationList(ctx)
	})
}

// HandleMarkRead wraps Service.NotificationMarkRead in a REST interface
func (h *NotificationsHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return nil, h.service.NotificationMarkRead(ctx, freedome.NotificationID(id))
	})
}

func (h *NotificationsHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// HandleStream wraps Service.NotificationSubscribe in a websocket. Each
// message is the complete notification list, newest first.
func (h *NotificationsHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	// Check access before upgrading so failures get a normal error response.
	if _, err := h.service.NotificationList(ctx); err != nil {
		handleJSON(w, r, func(context.Context) (interface{}, error) { return nil, err })
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The reader only handles control frames. It ends the stream when the
	// client goes away.
	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(streamPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deadline := time.Now().Add(streamWriteWait)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	err = h.service.NotificationSubscribe(ctx, func(list []freedome.Notification) {
		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(list); err != nil {
			logger.Info("notification stream write failed", zap.Error(err))
			cancel()
		}
	})
	if err != nil {
		logger.Error("notification stream failed", zap.Error(err))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, ""),
			time.Now().Add(streamWriteWait))
		return
	}

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(streamWriteWait))
}
