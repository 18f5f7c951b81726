package stream

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 50 * time.Second
)

// Handler returns an http.Handler that upgrades to a websocket and streams
// every published price update to the client as JSON. The connection carries
// no inbound protocol; client messages are read only to detect disconnects.
func Handler(broker *Broker, allowOrigin string) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowOrigin == "" || allowOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == allowOrigin
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			fmt.Printf("[WS] Upgrade failed: %v\n", err)
			return
		}
		fmt.Printf("[WS] Client connected: %s\n", conn.RemoteAddr())

		updates, cancel := broker.Subscribe()

		// Read pump: discard inbound frames, notice the close.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		go func() {
			defer func() {
				cancel()
				conn.Close()
				fmt.Printf("[WS] Client disconnected: %s\n", conn.RemoteAddr())
			}()

			ticker := time.NewTicker(pingPeriod)
			defer ticker.Stop()

			for {
				select {
				case <-done:
					return
				case u, ok := <-updates:
					if !ok {
						return
					}
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteJSON(u); err != nil {
						return
					}
				case <-ticker.C:
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()
	})
}
