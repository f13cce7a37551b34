package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/esports-arena/tournament-hub/realtime"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: ограничить Origin доменами фронтенда перед продакшеном.
		return true
	},
}

// subscribableTables — таблицы, на которые клиент может подписаться.
var subscribableTables = map[string]bool{
	"tournaments":    true,
	"registrations":  true,
	"matches":        true,
	"leaderboard":    true,
	"featured_games": true,
}

type WebSocketHandler struct {
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs обрабатывает GET /ws?table=matches&tournament_id=...
// Клиент получает пинги об изменениях и перечитывает данные через REST.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if !subscribableTables[table] {
		badRequestResponse(w, r, errors.New("unknown or missing table query parameter"))
		return
	}

	channel := table
	if tournamentID := r.URL.Query().Get("tournament_id"); tournamentID != "" {
		channel = table + ":" + tournamentID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту HTTP-ошибкой.
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := realtime.NewClient(h.hub, conn, channel)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client connected", slog.String("channel", channel))
}
