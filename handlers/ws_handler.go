package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const (
	wsAuthTimeout = 10 * time.Second
	wsSendTimeout = 10 * time.Second
)

type wsInbound struct {
	Type  string `json:"type"`
	Token string `json:"token"`
	SendMessageRequest
}

// RequireUpgrade rejects plain HTTP requests to the websocket route.
func RequireUpgrade(c *fiber.Ctx) error {
	if !websocketcontrib.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// ServeWs authenticates the socket with its first frame, registers it with
// the hub and then accepts "message" frames until the client goes away.
func (h *Handler) ServeWs(conn *websocketcontrib.Conn) {
	identity, ok := h.authenticateSocket(conn)
	if !ok {
		_ = conn.Close()
		return
	}

	client := websocket.NewClient(identity.UserID, conn)
	h.Hub.Register(client)
	defer h.Hub.Unregister(client)
	h.Log.Info().Str("user_id", identity.UserID.String()).Msg("WebSocket client authenticated")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				h.Log.Debug().Str("user_id", identity.UserID.String()).Msg("WebSocket closed")
			} else {
				h.Log.Warn().Err(err).Str("user_id", identity.UserID.String()).Msg("WebSocket read error")
			}
			return
		}

		var frame wsInbound
		if err := json.Unmarshal(data, &frame); err != nil {
			_ = client.Send(websocket.EventError, fiber.Map{"message": "Invalid frame"})
			continue
		}
		switch frame.Type {
		case "ping":
			_ = client.Send(websocket.EventPong, nil)
		case "message":
			h.socketSend(client, identity, frame.SendMessageRequest)
		default:
			_ = client.Send(websocket.EventError, fiber.Map{"message": "Unknown frame type"})
		}
	}
}

func (h *Handler) authenticateSocket(conn *websocketcontrib.Conn) (models.Identity, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(wsAuthTimeout))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	var auth wsInbound
	if err := conn.ReadJSON(&auth); err != nil || auth.Type != "auth" {
		h.Log.Debug().Err(err).Msg("WebSocket auth failed: invalid or missing auth message")
		_ = conn.WriteJSON(websocket.Frame{Type: websocket.EventError, Data: fiber.Map{"message": "Invalid or missing auth message"}})
		return models.Identity{}, false
	}
	identity, err := h.Auth.ParseToken(auth.Token)
	if err != nil {
		h.Log.Debug().Err(err).Msg("WebSocket auth failed: invalid token")
		_ = conn.WriteJSON(websocket.Frame{Type: websocket.EventError, Data: fiber.Map{"message": "Invalid token"}})
		return models.Identity{}, false
	}
	return identity, true
}

// socketSend runs a send from the socket. Recipients are reached through the
// hub; the sender gets the stored message back as confirmation.
func (h *Handler) socketSend(client *websocket.Client, identity models.Identity, req SendMessageRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), wsSendTimeout)
	defer cancel()

	in, err := req.input()
	if err == nil {
		var msg *models.Message
		msg, err = h.Messaging.SendMessage(ctx, identity, in)
		if err == nil {
			_ = client.Send(websocket.EventMessageCreated, msg)
			return
		}
	}
	if apperrors.KindOf(err) == apperrors.KindInternal {
		h.Log.Error().Err(err).Str("user_id", identity.UserID.String()).Msg("WebSocket send failed")
	}
	_ = client.Send(websocket.EventError, fiber.Map{"message": apperrors.PublicMessage(err)})
}
