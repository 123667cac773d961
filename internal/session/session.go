// Package session runs one scoreboard table as an actor goroutine. The
// session owns the single mutable slot holding the latest MatchHistory;
// clients talk to it exclusively through its inbox, so no locking is
// needed anywhere in the core.
package session

import (
	"context"

	"go.uber.org/zap"

	"tabletennis-scoreboard/internal/history"
	"tabletennis-scoreboard/internal/metrics"
)

type Msg interface{ isSessionMsg() }

type FromClient struct {
	ClientID string
	Cmd      history.Command
}

func (FromClient) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Outbound // where this client wants to receive session output
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Snapshot struct {
	Version int
	State   history.MatchHistory
}

// Rejection tells the client that issued a command why it was refused.
type Rejection struct {
	Command history.CommandType
	Err     error
}

// Outbound is one message on a client's outbox: either a snapshot
// broadcast to everyone or a rejection addressed to the command's sender.
// Exactly one field is set.
type Outbound struct {
	Snapshot *Snapshot
	Rejected *Rejection
}

// View reflects internal state for tests without data races.
type View struct {
	Version    int
	NumClients int
	State      history.MatchHistory
}

type Session struct {
	inbox   chan Msg
	state   history.MatchHistory
	version int
	clients map[string]chan Outbound
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, initial history.MatchHistory, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		inbox:   make(chan Msg, 64),
		state:   initial,
		version: 0,
		clients: make(map[string]chan Outbound),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}

	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				s.clients[msg.ClientID] = msg.Outbox
				snap := Snapshot{Version: s.version, State: s.state}
				msg.Outbox <- Outbound{Snapshot: &snap}

			case Leave:
				// Close the outbox so the client's writer goroutine
				// ends. The ok-guard keeps a Leave after a slow-drop
				// from closing twice.
				if ch, ok := s.clients[msg.ClientID]; ok {
					close(ch)
					delete(s.clients, msg.ClientID)
				}

			case FromClient:
				events, next, err := history.Apply(s.state, msg.Cmd)
				if err != nil {
					// Guard violations are caller bugs; reject loudly,
					// tell the sender why, and leave the history
					// untouched.
					metrics.CommandsRejected.WithLabelValues(string(msg.Cmd.Type)).Inc()
					s.log.Warn("command rejected",
						zap.String("command", string(msg.Cmd.Type)),
						zap.Error(err))
					s.reject(msg.ClientID, Rejection{Command: msg.Cmd.Type, Err: err})
					break
				}
				metrics.CommandsApplied.WithLabelValues(string(msg.Cmd.Type)).Inc()
				for _, ev := range events {
					if ev.Type == history.EvtGameFinished {
						s.log.Info("game finished",
							zap.String("winner", string(ev.Winner)))
					}
				}
				s.state = next
				s.version++
				s.broadcast(Snapshot{Version: s.version, State: s.state})

			case GetState:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.state,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch) // Tell client no more output
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		select {
		case ch <- Outbound{Snapshot: &snap}:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
		}
	}
}

func (s *Session) reject(clientID string, rej Rejection) {
	ch, ok := s.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- Outbound{Rejected: &rej}:
	default:
		close(ch)
		delete(s.clients, clientID)
	}
}
