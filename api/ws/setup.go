package ws

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/config"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/port"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/websocket"
)

type WSConfig struct {
	Hub     *websocket.Hub
	Remote  port.MessageStore
	Bus     port.PushBus
	Cfg     config.Config
	RootCtx context.Context
}

func SetupWebSocketRoutes(cfg WSConfig) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", HandleWebSocket(cfg.Hub, cfg.Remote, cfg.Bus, cfg.Cfg, cfg.RootCtx))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
