package handlers

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

// WSHandler pushes change signals (imports finishing, reconciliation runs
// completing) to connected clients so open screens refresh without polling.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 64 * 1024

	// Keep-alive matters on cloud hosts that kill idle connections
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleDisconnect(func(s *melody.Session) {
		log.Printf("🔌 Client disconnected from updates feed")
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the request and joins the updates feed.
func (h *WSHandler) HandleWS(c *gin.Context) {
	if err := h.M.HandleRequest(c.Writer, c.Request); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

// Broadcast sends a typed signal to every connected client. Detail is a short
// human hint (a month, a count), never transaction contents.
func (h *WSHandler) Broadcast(updateType, detail string) {
	msg := []byte(`{"type": "` + updateType + `", "detail": "` + detail + `"}`)
	if err := h.M.Broadcast(msg); err != nil {
		log.Printf("⚠️ Error broadcasting %s update: %v", updateType, err)
	}
}
