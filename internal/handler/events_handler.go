package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/campushire/placement-api/internal/events"
	"github.com/campushire/placement-api/internal/models"
)

// EventsHandler streams bus events to websocket clients. Each client joins
// the broadcast room, its role room and its private user room.
type EventsHandler struct {
	bus    *events.Bus
	logger zerolog.Logger
}

// NewEventsHandler constructs the handler.
func NewEventsHandler(bus *events.Bus, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		bus:    bus,
		logger: logger.With().Str("component", "events_handler").Logger(),
	}
}

// Register binds the websocket upgrade route.
func (h *EventsHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *EventsHandler) handleConnection(conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	userID, ok := conn.Locals("user_id").(uint)
	if !ok || userID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user id missing"))
		return
	}

	rooms := []string{events.RoomBroadcast, events.UserRoom(userID)}
	if role, ok := conn.Locals("user_role").(models.Role); ok {
		switch role {
		case models.RoleOfficer:
			rooms = append(rooms, events.RoomOfficers)
		case models.RoleRepresentative:
			rooms = append(rooms, events.RoomRepresentatives)
		}
	}

	stream, cleanup := h.bus.Subscribe(rooms...)
	defer cleanup()

	h.logger.Info().Uint("user_id", userID).Strs("rooms", rooms).Msg("event stream connected")
	defer h.logger.Info().Uint("user_id", userID).Msg("event stream disconnected")

	// Detect client disconnect by reading; inbound payloads are ignored.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, open := <-stream:
			if !open {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
