package notify

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const writeTimeout = 5 * time.Second

// ServeWS upgrades the request to a websocket and streams every event
// published on topic to it as a text frame until either side disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, topic string) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[Notify] Websocket accept failed: %v", err)
		return
	}

	sub := h.Subscribe(topic)
	defer sub.Close()

	// CloseRead discards inbound frames and cancels ctx once the peer goes away.
	ctx := ws.CloseRead(r.Context())

	log.Printf("[Notify] Dashboard subscribed to %s from %s", topic, r.RemoteAddr)
	defer log.Printf("[Notify] Dashboard left %s", topic)

	for {
		select {
		case <-ctx.Done():
			_ = ws.Close(websocket.StatusNormalClosure, "")
			return
		case payload, ok := <-sub.C:
			if !ok {
				_ = ws.Close(websocket.StatusGoingAway, "")
				return
			}
			if err := write(ctx, ws, payload); err != nil {
				return
			}
		}
	}
}

func write(ctx context.Context, ws *websocket.Conn, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, payload)
}
