package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EventModerationSnapshot is sent once on connect with the current per-status counts.
const EventModerationSnapshot = "moderation_snapshot"

// ModerationStreamHandler streams post_submitted and post_reviewed events to
// connected admins.
func (s *Server) ModerationStreamHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		identity, ok := conn.Locals(middleware.LocalIdentity).(*models.Identity)
		if !ok || identity == nil {
			_ = conn.Close()
			return
		}

		// Register connection with scaling guardrails
		client, err := s.hub.Register(identity.ID, conn)
		if err != nil {
			middleware.Logger.Warn("WebSocket: failed to register",
				slog.String("identity_id", identity.ID),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		if snapshot, err := s.moderationSnapshot(); err == nil {
			client.TrySend(snapshot)
		} else {
			middleware.Logger.Warn("WebSocket: snapshot failed", slog.String("error", err.Error()))
		}

		// Start pumps
		go client.WritePump()
		client.ReadPump()
	})
}

func (s *Server) moderationSnapshot() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := s.postService.Counts(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(counts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(notifications.Event{
		Type:      EventModerationSnapshot,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}
