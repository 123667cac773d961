package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"tabletennis-scoreboard/internal/engine"
	"tabletennis-scoreboard/internal/history"
	"tabletennis-scoreboard/internal/hub"
	"tabletennis-scoreboard/internal/session"
	"tabletennis-scoreboard/internal/types"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 3 * time.Second
)

func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.GetSession{Code: code, Reply: reply}
		sess := <-reply
		if sess == nil {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.Outbound, 8)
		clientID := randID(6)

		sess.Inbox() <- session.Join{ClientID: clientID, Outbox: out}
		// The session closes the outbox on Leave, which ends the writer
		// goroutine below.
		defer func() { sess.Inbox() <- session.Leave{ClientID: clientID} }()

		log.Debug("client joined", zap.String("code", code), zap.String("client", clientID))

		connCtx, connCancel := context.WithCancel(r.Context())
		defer connCancel()

		// Writer goroutine
		go func() {
			for ob := range out {
				payload, _ := json.Marshal(serverMessage(ob))
				ctx, cancel := context.WithTimeout(connCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Keepalive goroutine. Scoreboard viewers may never send a
		// command, so there is no read deadline; dead peers are found
		// by pinging instead. A failed ping cancels connCtx, which
		// unblocks the reader.
		go func() {
			ticker := time.NewTicker(pingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-connCtx.Done():
					return
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(connCtx, writeTimeout)
					err := conn.Ping(ctx)
					cancel()
					if err != nil {
						connCancel()
						return
					}
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(connCtx)
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (session.Leave in defer):
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(connCtx, websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			cmd, ok := toCommand(cm)
			if !ok {
				_ = conn.Write(connCtx, websocket.MessageText,
					[]byte(`{"type":"Error","error":"unknown type"}`))
				continue
			}

			sess.Inbox() <- session.FromClient{ClientID: clientID, Cmd: cmd}
		}
	}
}

func serverMessage(ob session.Outbound) types.ServerMessage {
	if ob.Rejected != nil {
		return types.ServerMessage{Type: "Error", Error: ob.Rejected.Err.Error()}
	}
	view := types.BuildView(ob.Snapshot.State)
	return types.ServerMessage{Type: "StateSnapshot", Version: ob.Snapshot.Version, State: &view}
}

func toCommand(m types.ClientMessage) (history.Command, bool) {
	switch m.Type {
	case "Point":
		player, ok := parsePlayer(m.Player)
		if !ok {
			return history.Command{}, false
		}
		return history.Command{Type: history.CmdPoint, Player: player}, true
	case "Undo":
		return history.Command{Type: history.CmdUndo}, true
	case "Redo":
		return history.Command{Type: history.CmdRedo}, true
	default:
		return history.Command{}, false
	}
}

func parsePlayer(player string) (engine.Player, bool) {
	switch player {
	case "left":
		return engine.PlayerLeft, true
	case "right":
		return engine.PlayerRight, true
	default:
		return "", false
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
