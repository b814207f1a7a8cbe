package realtime

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same trust model as the SSE endpoint
	},
}

// WSHub serves the websocket variant of the event stream. Each connection
// registers its own channel with the broker, so SSE and websocket clients
// see the same events.
type WSHub struct {
	broker *Broker
}

// NewWSHub creates a websocket hub backed by the given broker
func NewWSHub(broker *Broker) *WSHub {
	return &WSHub{broker: broker}
}

// ServeHTTP upgrades the connection and streams broker events until the
// client goes away
func (h *WSHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️  Websocket upgrade failed: %v", err)
		return
	}

	clientChan := h.broker.Register()
	done := make(chan struct{})

	// Reader loop exists only to detect the client closing
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
		case <-done:
			h.broker.Unregister(clientChan)
			conn.Close()
			return
		case msg, ok := <-clientChan:
			if !ok {
				conn.Close()
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.broker.Unregister(clientChan)
				conn.Close()
				return
			}
		}
	}
}
