package main

import (
	"sync"
	"testing"
	"time"
)

// mockBroadcaster captures outbound traffic for loop tests
type mockBroadcaster struct {
	mu     sync.Mutex
	envs   []Envelope
	states int
}

func (m *mockBroadcaster) ToConns(conns []string, env Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.envs = append(m.envs, env)
}

func (m *mockBroadcaster) StateToConns(conns []string, state []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states++
}

func (m *mockBroadcaster) ToConn(connID string, env Envelope) {
	m.ToConns([]string{connID}, env)
}

func (m *mockBroadcaster) stateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states
}

func (m *mockBroadcaster) findEnvelope(msgType string) *Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.envs {
		if m.envs[i].T == msgType {
			return &m.envs[i]
		}
	}
	return nil
}

func (m *mockBroadcaster) countEnvelopes(msgType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, env := range m.envs {
		if env.T == msgType {
			n++
		}
	}
	return n
}

func startedPair(t *testing.T, mm *MatchManager) *Match {
	t.Helper()
	mm.FindQuickMatch("connA", pd("p1", "Alice"), 2)
	res, err := mm.FindQuickMatch("connB", pd("p2", "Bob"), 2)
	if err != nil || !res.Started {
		t.Fatalf("pairing failed: %v", err)
	}
	return res.Match
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestLoopBroadcastsSnapshots(t *testing.T) {
	mm := NewMatchManager()
	m := startedPair(t, mm)
	mock := &mockBroadcaster{}
	lr := NewLoopRunner(mm, mock, 100, nil)

	lr.Start(m.Code)
	defer lr.Stop(m.Code)

	if !waitFor(t, time.Second, func() bool { return mock.stateCount() >= 3 }) {
		t.Fatal("expected periodic gameState broadcasts")
	}
	if !lr.Running(m.Code) {
		t.Error("loop should be running")
	}
}

func TestLoopStartIdempotentStopNoop(t *testing.T) {
	mm := NewMatchManager()
	m := startedPair(t, mm)
	mock := &mockBroadcaster{}
	lr := NewLoopRunner(mm, mock, 100, nil)

	lr.Start(m.Code)
	lr.Start(m.Code) // no second loop
	if !lr.Running(m.Code) {
		t.Fatal("loop should be running")
	}
	lr.Stop(m.Code)
	lr.Stop(m.Code) // no-op
	if lr.Running(m.Code) {
		t.Error("loop should be stopped")
	}
	lr.Stop("UNKNOWN") // no-op
}

func TestLoopStartWithoutSimulationIsNoop(t *testing.T) {
	mm := NewMatchManager()
	res, _ := mm.CreatePrivateMatch("connA", pd("p1", "Host"), 4) // waiting, no game
	mock := &mockBroadcaster{}
	lr := NewLoopRunner(mm, mock, 100, nil)
	lr.Start(res.Match.Code)
	if lr.Running(res.Match.Code) {
		t.Error("a waiting match has no simulation to drive")
	}
	lr.Start("UNKNOWN")
}

func TestLoopDetectsWinAndEndsOnce(t *testing.T) {
	mm := NewMatchManager()
	m := startedPair(t, mm)
	game := m.Game

	// Set up the kill before the loop runs
	game.UpdatePlayer("connA", MoveMsg{X: 100, Y: 100, Rotation: 0})
	game.UpdatePlayer("connB", MoveMsg{X: 200, Y: 100})
	game.ChangeWeapon("connA", WeaponShotgun)
	for i := 0; i < 10 && game.PlayersAlive() > 1; i++ {
		game.HandleShoot("connA", ShootMsg{Angle: 0})
		for j := 0; j < 4; j++ {
			game.Update(0.25)
		}
	}
	if game.PlayersAlive() != 1 {
		t.Fatal("setup failed to produce a winner")
	}

	mock := &mockBroadcaster{}
	lr := NewLoopRunner(mm, mock, 100, nil)
	lr.Start(m.Code)

	if !waitFor(t, time.Second, func() bool { return mock.findEnvelope(MsgMatchEnd) != nil }) {
		t.Fatal("expected a matchEnd broadcast")
	}
	if !waitFor(t, time.Second, func() bool { return !lr.Running(m.Code) }) {
		t.Fatal("loop should stop after the match ends")
	}
	if mm.GetMatch(m.Code) != nil {
		t.Error("ended match should leave the registry")
	}
	if n := mock.countEnvelopes(MsgMatchEnd); n != 1 {
		t.Errorf("matchEnd must fire exactly once, got %d", n)
	}

	end := mock.findEnvelope(MsgMatchEnd)
	data, ok := end.Data.(MatchEndMsg)
	if !ok {
		t.Fatalf("unexpected matchEnd payload %T", end.Data)
	}
	if data.Winner == nil || data.Winner.PlayerID != "p1" {
		t.Errorf("expected p1 as winner, got %+v", data.Winner)
	}
	if len(data.Results) != 2 {
		t.Errorf("expected standings for both players, got %d", len(data.Results))
	}

	// No further snapshots after the loop stopped
	settled := mock.stateCount()
	time.Sleep(50 * time.Millisecond)
	if mock.stateCount() != settled {
		t.Error("gameState broadcasts must stop with the match")
	}
}

func TestLoopStopsWhenMatchVanishes(t *testing.T) {
	mm := NewMatchManager()
	m := startedPair(t, mm)
	mock := &mockBroadcaster{}
	lr := NewLoopRunner(mm, mock, 100, nil)
	lr.Start(m.Code)

	mm.LeaveMatch("connA")
	mm.LeaveMatch("connB")
	mm.RemoveMatch(m.Code)

	if !waitFor(t, time.Second, func() bool { return !lr.Running(m.Code) }) {
		t.Error("loop should notice the match is gone and stop")
	}
}
