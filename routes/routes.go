package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/TimeoSitruk/tupref/handlers"
	"github.com/TimeoSitruk/tupref/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // rooms are joined by shared link, any origin is fine
	},
}

func SetupRoutes(
	router *gin.Engine,
	roomHandler *handlers.RoomHandler,
	hub *services.Hub,
	roomService *services.RoomService,
	log *zap.Logger,
) {
	api := router.Group("/api")
	{
		// Single action-dispatch endpoint: the request carries an action
		// name plus flat fields, mirroring the client protocol.
		api.POST("/vote", roomHandler.HandleAction)
	}

	// WebSocket endpoint for live room updates.
	router.GET("/ws/:roomId/:playerId", func(c *gin.Context) {
		roomID := c.Param("roomId")
		playerID := c.Param("playerId")
		playerName := c.Query("playerName")

		// Reject before upgrading so the client gets a proper status code.
		if _, err := roomService.GetState(c.Request.Context(), roomID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "no such room"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed",
				zap.String("roomId", roomID),
				zap.Error(err))
			return
		}

		client := hub.RegisterClient(conn, roomID, playerID, playerName)
		hub.SendRoomState(client)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
