package main

import (
	"log"
	"sync"
	"time"
)

// DefaultTickRate is the fixed simulation rate in ticks per second
const DefaultTickRate = 20

// RoomBroadcaster delivers outbound events to connections. Implementations
// must never block the caller; slow receivers get dropped messages, not a
// stalled tick.
type RoomBroadcaster interface {
	ToConns(conns []string, env Envelope)
	StateToConns(conns []string, state []byte)
	ToConn(connID string, env Envelope)
}

// LoopRunner drives one fixed-rate tick loop per active match. Loops are
// independent: starting is idempotent, stopping a missing loop is a no-op,
// and a panic inside one loop ends only that match.
type LoopRunner struct {
	mu       sync.Mutex
	loops    map[string]chan struct{}
	manager  *MatchManager
	out      RoomBroadcaster
	tickRate int
	db       *DB // optional, records finished matches
}

// NewLoopRunner creates a runner with the given tick rate
func NewLoopRunner(manager *MatchManager, out RoomBroadcaster, tickRate int, db *DB) *LoopRunner {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &LoopRunner{
		loops:    make(map[string]chan struct{}),
		manager:  manager,
		out:      out,
		tickRate: tickRate,
		db:       db,
	}
}

// Start begins the tick loop for a match. No-op if one is already running
// or the match has no simulation attached.
func (lr *LoopRunner) Start(code string) {
	m := lr.manager.GetMatch(code)
	if m == nil || m.Game == nil {
		return
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	if _, running := lr.loops[code]; running {
		return
	}
	stop := make(chan struct{})
	lr.loops[code] = stop
	go lr.run(code, m.Game, stop)
}

// Stop halts the tick loop for a match. No-op if none is running.
func (lr *LoopRunner) Stop(code string) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if stop, ok := lr.loops[code]; ok {
		close(stop)
		delete(lr.loops, code)
	}
}

// Running reports whether a loop exists for the match
func (lr *LoopRunner) Running(code string) bool {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	_, ok := lr.loops[code]
	return ok
}

func (lr *LoopRunner) run(code string, game *Game, stop chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("match %s: tick loop panic: %v", code, r)
			lr.Stop(code)
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(lr.tickRate))
	defer ticker.Stop()

	startedAt := time.Now()
	last := startedAt

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now

			if done := lr.tick(code, game, delta, startedAt); done {
				lr.Stop(code)
				return
			}
		}
	}
}

// tick advances the match once and returns true when the match is over
func (lr *LoopRunner) tick(code string, game *Game, delta float64, startedAt time.Time) bool {
	m := lr.manager.GetMatch(code)
	if m == nil || m.Status != StatusActive {
		return true
	}

	conns := lr.manager.RosterConns(code)
	res := game.Update(delta)

	if data, err := EncodeGameState(res.State); err == nil {
		lr.out.StateToConns(conns, data)
	} else {
		log.Printf("match %s: state encode: %v", code, err)
	}

	for _, hit := range res.Hits {
		lr.out.ToConns(conns, Envelope{T: MsgPlayerHit, Data: PlayerHitMsg{TargetID: hit.TargetID}})
		if hit.Killed {
			lr.out.ToConns(conns, Envelope{T: MsgPlayerKilled, Data: PlayerKilledMsg{
				KillerID:   hit.KillerID,
				KillerName: hit.KillerName,
				VictimID:   hit.VictimID,
				VictimName: hit.VictimName,
			}})
		}
	}

	if game.PlayersAlive() > 1 {
		return false
	}

	winner := game.GetWinner()
	winnerID := ""
	if winner != nil {
		winnerID = winner.PlayerID
	}
	results, ended := lr.manager.EndMatch(code, winnerID)
	if !ended {
		// Someone else ended it first; just stop this loop.
		return true
	}

	var winnerEntry *PlayerEntry
	if winner != nil {
		winnerEntry = &PlayerEntry{PlayerID: winner.PlayerID, Username: winner.Username}
	}
	lr.out.ToConns(conns, Envelope{T: MsgMatchEnd, Data: MatchEndMsg{Winner: winnerEntry, Results: results}})

	if lr.db != nil {
		duration := time.Since(startedAt).Seconds()
		if err := lr.db.RecordMatchResult(code, winnerID, duration, results); err != nil {
			log.Printf("match %s: record result: %v", code, err)
		}
	}
	log.Printf("match %s ended, winner=%s", code, winnerID)
	return true
}
