package ws

import (
	"context"
	"net/http"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/config"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/domain"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/port"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/websocket"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/pkg/logger"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/service"
)

var upgrader = gws.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection and builds a per-session sync
// engine for the connecting user. The session arrives pre-authenticated; the
// engine trusts the identity parameters.
func HandleWebSocket(
	hub *websocket.Hub,
	remote port.MessageStore,
	bus port.PushBus,
	cfg config.Config,
	rootCtx context.Context,
) http.HandlerFunc {
	log := logger.FromContext(rootCtx).WithModule("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Errorf("upgrade error: %v", err)
			return
		}

		q := r.URL.Query()
		user := domain.User{
			ID:   q.Get("user_id"),
			Name: q.Get("name"),
			Role: domain.Role(q.Get("role")),
		}
		if user.ID == "" {
			log.Errorf("missing user_id param")
			conn.Close()
			return
		}
		viewport := service.ViewportDesktop
		if q.Get("viewport") == string(service.ViewportMobile) {
			viewport = service.ViewportMobile
		}

		client := &websocket.Connection{
			Ws:     conn,
			Send:   make(chan websocket.Event, 256),
			Hub:    hub,
			Logger: log.WithFields(map[string]interface{}{"user": user.ID}),
		}
		engine := service.NewSyncService(service.Options{
			User:          user,
			Viewport:      viewport,
			SyncInterval:  time.Duration(cfg.SyncInterval) * time.Second,
			SendRateBurst: cfg.SendRateBurst,
		}, remote, bus, client, logger.FromContext(rootCtx))
		client.Engine = engine

		if err := engine.Start(rootCtx); err != nil {
			log.Errorf("engine start for %s failed: %v", user.ID, err)
			conn.Close()
			return
		}

		hub.Register <- client
		log.Infof("new session from %s (user=%s viewport=%s)", conn.RemoteAddr(), user.ID, viewport)

		go client.ReadPump(rootCtx)
		go client.WritePump()
	}
}
