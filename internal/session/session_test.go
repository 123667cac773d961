package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"tabletennis-scoreboard/internal/engine"
	"tabletennis-scoreboard/internal/history"
)

// helper: receive one outbound with a timeout so tests never hang
func recvOutbound(t *testing.T, ch <-chan Outbound, within time.Duration) Outbound {
	t.Helper()
	select {
	case ob, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return ob
	case <-time.After(within):
		t.Fatalf("timed out waiting for outbound")
		return Outbound{} // unreachable
	}
}

func recvSnapshot(t *testing.T, ch <-chan Outbound, within time.Duration) Snapshot {
	t.Helper()
	ob := recvOutbound(t, ch, within)
	if ob.Snapshot == nil {
		t.Fatalf("expected snapshot, got %+v", ob)
	}
	return *ob.Snapshot
}

func recvRejection(t *testing.T, ch <-chan Outbound, within time.Duration) Rejection {
	t.Helper()
	ob := recvOutbound(t, ch, within)
	if ob.Rejected == nil {
		t.Fatalf("expected rejection, got %+v", ob)
	}
	return *ob.Rejected
}

func recvNothing(t *testing.T, ch <-chan Outbound, within time.Duration) {
	t.Helper()
	select {
	case ob, ok := <-ch:
		if !ok {
			return // channel closed; no further output possible
		}
		t.Fatalf("expected no outbound within %v, but got: %+v", within, ob)
	case <-time.After(within):
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func requireClosed(t *testing.T, ch <-chan Outbound, within time.Duration) {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
			// Drain any output still buffered before the close.
		case <-deadline:
			t.Fatalf("outbox not closed within %v", within)
		}
	}
}

func newTestSession(t *testing.T) (*Session, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, history.NewMatchHistory("Anna", "Ben"), zap.NewNop())
	return s, cancel
}

func TestSession_Point_BroadcastsSnapshotAndVersionIncrements(t *testing.T) {
	s, cancel := newTestSession(t)
	defer cancel()

	out := make(chan Outbound, 2)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}

	first := recvSnapshot(t, out, 100*time.Millisecond)
	if first.Version != 0 {
		t.Fatalf("after join: want version=0, got %d", first.Version)
	}
	if got := first.State.Current().CurrentGame().PointsLeft; got != 0 {
		t.Fatalf("after join: expected 0 points, got %d", got)
	}

	s.Inbox() <- FromClient{ClientID: "c1", Cmd: history.Command{Type: history.CmdPoint, Player: engine.PlayerLeft}}

	next := recvSnapshot(t, out, 100*time.Millisecond)
	if next.Version != 1 {
		t.Fatalf("after point: want version=1, got %d", next.Version)
	}
	if got := next.State.Current().CurrentGame().PointsLeft; got != 1 {
		t.Fatalf("after point: want left at 1, got %d", got)
	}

	s.Inbox() <- Shutdown{}
}

func TestSession_UndoRedoRoundTrip(t *testing.T) {
	s, cancel := newTestSession(t)
	defer cancel()

	out := make(chan Outbound, 8)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	s.Inbox() <- FromClient{ClientID: "c1", Cmd: history.Command{Type: history.CmdPoint, Player: engine.PlayerLeft}}
	scored := recvSnapshot(t, out, 100*time.Millisecond)

	s.Inbox() <- FromClient{ClientID: "c1", Cmd: history.Command{Type: history.CmdUndo}}
	undone := recvSnapshot(t, out, 100*time.Millisecond)
	if got := undone.State.Current().CurrentGame().PointsLeft; got != 0 {
		t.Fatalf("after undo: want 0 points, got %d", got)
	}
	if !undone.State.CanRedo() {
		t.Fatalf("after undo: redo must be available")
	}

	s.Inbox() <- FromClient{ClientID: "c1", Cmd: history.Command{Type: history.CmdRedo}}
	redone := recvSnapshot(t, out, 100*time.Millisecond)
	if redone.State.Current().CurrentGame() != scored.State.Current().CurrentGame() {
		t.Fatalf("redo must restore the pre-undo game state exactly")
	}

	s.Inbox() <- Shutdown{}
}

func TestSession_RejectedCommandNotifiesSenderOnly(t *testing.T) {
	s, cancel := newTestSession(t)
	defer cancel()

	sender := make(chan Outbound, 2)
	watcher := make(chan Outbound, 2)
	s.Inbox() <- Join{ClientID: "sender", Outbox: sender}
	s.Inbox() <- Join{ClientID: "watcher", Outbox: watcher}
	_ = recvSnapshot(t, sender, 100*time.Millisecond)
	_ = recvSnapshot(t, watcher, 100*time.Millisecond)

	// Nothing to undo yet: the sender gets the reason, nobody gets a
	// snapshot, and the history stays put.
	s.Inbox() <- FromClient{ClientID: "sender", Cmd: history.Command{Type: history.CmdUndo}}

	rej := recvRejection(t, sender, 150*time.Millisecond)
	if rej.Command != history.CmdUndo || !errors.Is(rej.Err, history.ErrCannotUndo) {
		t.Fatalf("want CmdUndo/ErrCannotUndo rejection, got %+v", rej)
	}
	recvNothing(t, watcher, 150*time.Millisecond)

	reply := make(chan View, 1)
	s.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)
	if view.Version != 0 {
		t.Fatalf("rejected command must not bump version; got %d", view.Version)
	}
}

func TestSession_LeaveClosesOutbox(t *testing.T) {
	s, cancel := newTestSession(t)
	defer cancel()

	out := make(chan Outbound, 2)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	s.Inbox() <- Leave{ClientID: "c1"}

	// A writer draining the outbox must unblock; otherwise one goroutine
	// and its buffered snapshots leak per disconnected client.
	requireClosed(t, out, 500*time.Millisecond)

	reply := make(chan View, 1)
	s.Inbox() <- GetState{Reply: reply}
	if view := recvView(t, reply, 100*time.Millisecond); view.NumClients != 0 {
		t.Fatalf("expected client gone after leave; NumClients=%d", view.NumClients)
	}
}

func TestSession_DropSlowClient(t *testing.T) {
	s, cancel := newTestSession(t)
	defer cancel()

	// Outbox with one slot and nobody reading: the join snapshot fills
	// it and the next broadcast drops the client.
	out := make(chan Outbound, 1)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}

	s.Inbox() <- FromClient{ClientID: "c1", Cmd: history.Command{Type: history.CmdPoint, Player: engine.PlayerRight}}

	reply := make(chan View, 1)
	s.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)

	if view.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", view.NumClients)
	}
}

func TestSession_LeaveAfterSlowDropIsHarmless(t *testing.T) {
	s, cancel := newTestSession(t)
	defer cancel()

	out := make(chan Outbound, 1)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}

	// Slow-drop c1, then deliver the Leave a disconnecting ws handler
	// always sends. A double close would kill the session goroutine.
	s.Inbox() <- FromClient{ClientID: "c1", Cmd: history.Command{Type: history.CmdPoint, Player: engine.PlayerLeft}}
	s.Inbox() <- Leave{ClientID: "c1"}

	reply := make(chan View, 1)
	s.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)
	if view.Version != 1 {
		t.Fatalf("session must keep serving after leave-after-drop; version=%d", view.Version)
	}
}

func TestSession_ShutdownClosesOutboxes(t *testing.T) {
	s, cancel := newTestSession(t)
	defer cancel()

	out := make(chan Outbound, 2)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	s.Inbox() <- Shutdown{}

	requireClosed(t, out, 500*time.Millisecond)
}
