package websocket

import (
	"log"
	"net/http"

	"asistencia-backend/internal/middleware"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades a dashboard connection. Viewing is public; the
// supervisor is recorded when OptionalAuth found a valid token.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := "anonimo"
		if user, ok := middleware.GetUserFromContext(r); ok {
			viewer = user.Email
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("❌ WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(uuid.New().String(), viewer, conn, hub)
		if !hub.add(client) {
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}
