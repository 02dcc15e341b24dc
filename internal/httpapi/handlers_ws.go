package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gorilla/websocket"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/messaging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/identity"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
)

// WSHandler bridges C10's chat fan-out onto a WebSocket connection per room
// (§6: "GET /ws/rooms/{roomId}"). gorilla/websocket is adapted into fiber's
// net/http-shaped handler chain via middleware/adaptor rather than pulled in
// through a separate fiber-specific websocket contrib package.
type WSHandler struct {
	Messaging *messaging.Service
	Authorizer *identity.Authorizer
	Logger     logging.Logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsClientFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type wsServerFrame struct {
	Type         string             `json:"type"`
	ChatMessage  *messaging.Message `json:"message,omitempty"`
	Code         string             `json:"code,omitempty"`
	ErrorDetail  string             `json:"errorDetail,omitempty"`
}

// Room upgrades the connection and streams chat for one general room. Auth
// is taken from the "token" query parameter since browsers cannot set
// Authorization headers on the WebSocket handshake.
func (h *WSHandler) Room(c *fiber.Ctx) error {
	return h.serve(c, c.Params("roomId"), "")
}

// GuildRoom upgrades the connection and streams chat for one guild room.
func (h *WSHandler) GuildRoom(c *fiber.Ctx) error {
	return h.serve(c, "", c.Params("guildId"))
}

func (h *WSHandler) serve(c *fiber.Ctx, roomID, guildID string) error {
	token := c.Query("token")

	principal, err := h.Authorizer.Authorize(c.UserContext(), "Bearer "+token)
	if err != nil {
		return WithError(c, err)
	}

	senderID := principal.Sub

	handler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.Logger != nil {
				h.Logger.Errorf("websocket upgrade failed: %v", err)
			}

			return
		}
		defer conn.Close()

		events, unsubscribe := h.Messaging.Subscribe(roomID, guildID)
		defer unsubscribe()

		done := make(chan struct{})

		go func() {
			defer close(done)

			for {
				var frame wsClientFrame
				if err := conn.ReadJSON(&frame); err != nil {
					return
				}

				if frame.Type != "send" {
					continue
				}

				if _, err := h.Messaging.Send(r.Context(), roomID, guildID, senderID, frame.Text); err != nil {
					_ = conn.WriteJSON(wsServerFrame{Type: "error", Code: "send_failed", ErrorDetail: err.Error()})
				}
			}
		}()

		for {
			select {
			case evt, ok := <-events:
				if !ok {
					return
				}

				out := wsServerFrame{Type: evt.Type, ChatMessage: evt.Message, Code: evt.Code, ErrorDetail: evt.Detail}

				payload, err := json.Marshal(out)
				if err != nil {
					continue
				}

				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})

	return handler(c)
}
