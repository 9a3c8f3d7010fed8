package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/edumanage/internal/middleware"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
)

// Handler for WebSocket connections
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler. Browsers cannot set headers on
// the upgrade request, so the route accepts the token as a query parameter.
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// authentication is by token, not cookie
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to enrollment events
// @Description Upgrades to a WebSocket that streams enrollment.created and enrollment.status_changed events. Instructors receive all events, students only their own.
// @Tags enrollments
// @Security BearerAuth
// @Param token query string false "JWT, for clients that cannot set the Authorization header"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Router /ws/enrollments [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		middleware.HandleAPIError(c, apperrors.ErrUnauthenticated)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.Warn().Err(err).Int64("userID", principal.UserID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:        h.hub,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		userID:     principal.UserID,
		instructor: principal.IsInstructor(),
		logger:     h.logger,
	}
	if !h.hub.join(client) {
		h.logger.Debug().Int64("userID", principal.UserID).Msg("Hub stopped, closing new connection")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
