package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TimeoSitruk/tupref/models"
	"github.com/TimeoSitruk/tupref/services"
)

// anonPlayerID stands in for callers that never identified themselves.
const anonPlayerID = "anon"

type RoomHandler struct {
	rooms *services.RoomService
	hub   *services.Hub
	log   *zap.Logger
}

func NewRoomHandler(rooms *services.RoomService, hub *services.Hub, log *zap.Logger) *RoomHandler {
	return &RoomHandler{
		rooms: rooms,
		hub:   hub,
		log:   log,
	}
}

// ActionRequest is the flat envelope every engine call arrives in. Which
// fields matter depends on the action.
type ActionRequest struct {
	Action     string   `json:"action" binding:"required"`
	RoomID     string   `json:"roomId"`
	PlayerID   string   `json:"playerId"`
	PlayerName string   `json:"playerName"`
	Items      []string `json:"items"`
	Choice     string   `json:"choice"`
}

// HandleAction dispatches one engine operation per request.
func (h *RoomHandler) HandleAction(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid JSON"})
		return
	}

	if req.PlayerID == "" {
		req.PlayerID = anonPlayerID
	}

	ctx := c.Request.Context()

	var (
		room *models.Room
		err  error
	)

	switch req.Action {
	case "create_room":
		room, err = h.rooms.CreateRoom(ctx, req.RoomID, req.Items, req.PlayerID, req.PlayerName)

	case "join_room":
		room, err = h.rooms.JoinRoom(ctx, req.RoomID, req.PlayerID, req.PlayerName)

	case "get_state":
		room, err = h.rooms.GetState(ctx, req.RoomID)

	case "vote":
		room, err = h.rooms.CastVote(ctx, req.RoomID, req.PlayerID, req.Choice)

	case "next":
		room, err = h.rooms.AdvanceRound(ctx, req.RoomID, req.PlayerID)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown action"})
		return
	}

	if err != nil {
		h.respondError(c, req.Action, err)
		return
	}

	// Everything except a plain read changed the room; let the watchers know.
	if req.Action != "get_state" && h.hub != nil {
		h.hub.BroadcastToRoom(room.ID, "room_update", room)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "roomId": room.ID, "room": room})
}

func (h *RoomHandler) respondError(c *gin.Context, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		// Never leak store or marshal failures to the client.
		h.log.Error("action failed",
			zap.String("action", action),
			zap.Error(err))
		c.JSON(status, gin.H{"ok": false, "error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrRoomExists),
		errors.Is(err, services.ErrRoomFinished),
		errors.Is(err, services.ErrNotReady),
		errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
