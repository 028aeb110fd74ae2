package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	app_info "github.com/blume-tech/jetson-app/internal/app-info"
	"github.com/blume-tech/jetson-app/internal/event"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebSocket streams scan lifecycle and camera update events to
// the client. Pings on an interval so dead peers get reaped.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "websocket upgrade failed"})
		return
	}

	events := make(chan event.Event, 100)
	listenerID := s.core.RegisterEventListener(events)

	defer func() {
		s.core.RemoveEventListener(listenerID)
		conn.Close()
	}()

	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(time.Second * 60))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(time.Second * 60))
	})

	// one time snapshot so clients render without waiting for an event
	conn.WriteJSON(gin.H{
		"type": "connected",
		"payload": gin.H{
			"server":  app_info.NAME,
			"cameras": s.core.Cameras(),
			"scan":    s.core.ScanStatus(),
		},
	})

	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(time.Second * 30)

		defer ticker.Stop()
		defer close(done)

		for {
			select {
			case <-stop:
				return
			case evt := <-events:
				conn.SetWriteDeadline(time.Now().Add(time.Second * 10))

				if err := conn.WriteJSON(evt); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(time.Second * 10))

				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// consume control frames until the peer goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(stop)
	<-done
}
