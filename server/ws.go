package server

import (
	"context"
	"net/http"
	"time"

	"github.com/etnz/dcadash/refresh"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// pushMessage is sent to websocket clients for each published refresh.
type pushMessage struct {
	Type   string          `json:"type"` // "portfolio"
	Result *refresh.Result `json:"result"`
}

// handleWebsocket pushes the latest result, then every published one, until the client
// goes away.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")

	results, unsubscribe := s.refresher.Subscribe()
	defer unsubscribe()

	// clients never send anything, CloseRead cancels ctx when they disconnect.
	ctx := conn.CloseRead(r.Context())
	log := s.log.With().Str("remote", r.RemoteAddr).Logger()
	log.Debug().Msg("websocket client connected")

	if latest := s.refresher.Latest(); latest != nil {
		if err := s.push(ctx, conn, latest); err != nil {
			log.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("websocket client disconnected")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case res, ok := <-results:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := s.push(ctx, conn, &res); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}

func (s *Server) push(ctx context.Context, conn *websocket.Conn, res *refresh.Result) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return wsjson.Write(ctx, conn, pushMessage{Type: "portfolio", Result: res})
}
