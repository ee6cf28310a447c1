package events

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"popflix/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // read-only event feed
	},
}

func WSHandler(hub *Hub) gin.HandlerFunc {
	log := logging.With("events")
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		// welcome goes out before the hub can broadcast to this conn
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"welcome","transport":"websocket"}`))
		hub.Add(ws)
		log.Debug().Str("remote", c.Request.RemoteAddr).Msg("ws client connected")

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}
		hub.Remove(ws)
		log.Debug().Str("remote", c.Request.RemoteAddr).Msg("ws client disconnected")
	}
}
