package main

import (
	"errors"
	"sync"
)

const (
	minMatchPlayers     = 2
	maxMatchPlayers     = 8
	defaultMatchPlayers = 2
)

// Matchmaking error taxonomy. These strings go to clients verbatim in
// matchError replies, so keep them stable.
var (
	ErrInvalidPlayerData = errors.New("Invalid player data")
	ErrInvalidJoinData   = errors.New("Invalid join data")
	ErrMatchNotFound     = errors.New("Match not found")
	ErrMatchFull         = errors.New("Match is full")
	ErrMatchEnded        = errors.New("Match already ended")
)

// JoinResult reports what a matchmaking operation did
type JoinResult struct {
	Match    *Match
	Snapshot MatchSnapshot
	Started  bool // this operation filled the roster and activated the match
	Rejoined bool // an existing playerId was re-attached to a new connection
}

// MatchManager owns every match, indexed by code and by connection id.
// The two indices always agree; all mutation happens under one lock so
// roster checks are never stale.
type MatchManager struct {
	mu      sync.RWMutex
	matches map[string]*Match // code -> match (waiting/active only)
	byConn  map[string]*Match // connID -> match
	nextSeq uint64

	// AllowRejoin lets a known playerId re-attach to its in-progress match
	// from a new connection instead of failing on a full roster.
	AllowRejoin bool
}

// NewMatchManager creates an empty registry
func NewMatchManager() *MatchManager {
	return &MatchManager{
		matches: make(map[string]*Match),
		byConn:  make(map[string]*Match),
	}
}

func validPlayerData(pd PlayerData) bool {
	return pd.PlayerID != "" && pd.Username != ""
}

func clampCapacity(maxPlayers int) int {
	if maxPlayers == 0 {
		return defaultMatchPlayers
	}
	return ClampInt(maxPlayers, minMatchPlayers, maxMatchPlayers)
}

// FindQuickMatch joins the oldest eligible waiting quick match, creating a
// fresh one when none exists. Repeated requests from a connection already in
// a match return that match unchanged.
func (mm *MatchManager) FindQuickMatch(connID string, pd PlayerData, maxPlayers int) (JoinResult, error) {
	if !validPlayerData(pd) {
		return JoinResult{}, ErrInvalidPlayerData
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()

	if m, ok := mm.byConn[connID]; ok && m.Status != StatusEnded {
		return JoinResult{Match: m, Snapshot: m.snapshot()}, nil
	}

	maxPlayers = clampCapacity(maxPlayers)

	// Oldest waiting quick match first, to bound wait time
	var target *Match
	for _, m := range mm.matches {
		if m.Private || m.Status != StatusWaiting || len(m.Players) >= m.MaxPlayers {
			continue
		}
		if target == nil || m.seq < target.seq {
			target = m
		}
	}
	if target == nil {
		target = mm.createMatchLocked(maxPlayers, false)
	}
	return mm.addPlayerLocked(target, connID, pd), nil
}

// CreatePrivateMatch always creates a new match with a fresh unique code.
// The creator vacates any match it was sitting in.
func (mm *MatchManager) CreatePrivateMatch(connID string, pd PlayerData, maxPlayers int) (JoinResult, error) {
	if !validPlayerData(pd) {
		return JoinResult{}, ErrInvalidPlayerData
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.leaveLocked(connID)
	m := mm.createMatchLocked(clampCapacity(maxPlayers), true)
	return mm.addPlayerLocked(m, connID, pd), nil
}

// JoinMatch joins a match by code. Late joins into an active match are
// allowed while there is room; with AllowRejoin a known playerId re-attaches
// to its existing combat state instead. A connection holds one seat at a
// time: a successful join vacates any match it was sitting in.
func (mm *MatchManager) JoinMatch(code, connID string, pd PlayerData) (JoinResult, error) {
	if code == "" || !validPlayerData(pd) {
		return JoinResult{}, ErrInvalidJoinData
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()

	m, ok := mm.matches[code]
	if !ok {
		return JoinResult{}, ErrMatchNotFound
	}
	if m.Status == StatusEnded {
		return JoinResult{}, ErrMatchEnded
	}
	if mm.byConn[connID] == m {
		return JoinResult{Match: m, Snapshot: m.snapshot()}, nil
	}

	if m.Status == StatusActive && mm.AllowRejoin && m.Game != nil {
		if m.Game.ReattachPlayer(pd.PlayerID, connID) {
			mm.leaveLocked(connID)
			// Drop the stale roster entry for this playerId
			for oldConn, s := range m.Players {
				if s.PlayerID == pd.PlayerID {
					delete(m.Players, oldConn)
					delete(mm.byConn, oldConn)
				}
			}
			m.Players[connID] = &PlayerSession{ConnID: connID, PlayerID: pd.PlayerID, Username: pd.Username}
			mm.byConn[connID] = m
			return JoinResult{Match: m, Snapshot: m.snapshot(), Rejoined: true}, nil
		}
	}

	if len(m.Players) >= m.MaxPlayers {
		return JoinResult{}, ErrMatchFull
	}

	// The join is going through; vacate the previous seat only now, so a
	// refused join leaves the caller where they were.
	mm.leaveLocked(connID)
	res := mm.addPlayerLocked(m, connID, pd)
	if m.Status == StatusActive && m.Game != nil {
		// Late joiner enters the running simulation
		m.Game.AddPlayer(m.Players[connID])
	}
	return res, nil
}

// createMatchLocked allocates a match with a unique code; callers hold the lock
func (mm *MatchManager) createMatchLocked(maxPlayers int, private bool) *Match {
	code := GenerateMatchCode()
	for _, taken := mm.matches[code]; taken; _, taken = mm.matches[code] {
		code = GenerateMatchCode()
	}
	mm.nextSeq++
	m := newMatch(code, maxPlayers, private, mm.nextSeq)
	mm.matches[code] = m
	return m
}

// addPlayerLocked adds a session to a match and starts it when the roster
// fills; callers hold the lock.
func (mm *MatchManager) addPlayerLocked(m *Match, connID string, pd PlayerData) JoinResult {
	m.Players[connID] = &PlayerSession{ConnID: connID, PlayerID: pd.PlayerID, Username: pd.Username}
	mm.byConn[connID] = m

	started := false
	if m.Status == StatusWaiting && len(m.Players) >= m.MaxPlayers {
		mm.startMatchLocked(m)
		started = true
	}
	return JoinResult{Match: m, Snapshot: m.snapshot(), Started: started}
}

// StartMatch explicitly transitions waiting -> active. No-op when the match
// is unknown or already active/ended.
func (mm *MatchManager) StartMatch(code string) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	m, ok := mm.matches[code]
	if !ok {
		return
	}
	mm.startMatchLocked(m)
}

func (mm *MatchManager) startMatchLocked(m *Match) {
	if m.Status != StatusWaiting {
		return
	}
	m.Status = StatusActive
	m.Game = NewGame(m.roster())
}

// EndMatch transitions active -> ended, detaches the simulation, computes
// final standings and removes the match from the by-code index. Connection
// index entries are cleared per player on their own leave/disconnect.
func (mm *MatchManager) EndMatch(code, winnerPlayerID string) ([]PlayerResult, bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	m, ok := mm.matches[code]
	if !ok || m.Status != StatusActive {
		return nil, false
	}
	m.Status = StatusEnded

	var results []PlayerResult
	if m.Game != nil {
		results = m.Game.Results(winnerPlayerID)
	}
	m.Game = nil
	delete(mm.matches, code)
	return results, true
}

// LeaveMatch removes a connection from its match. Idempotent: unknown
// connections return nil. The caller decides cleanup from the returned match.
func (mm *MatchManager) LeaveMatch(connID string) *Match {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.leaveLocked(connID)
}

// leaveLocked removes a connection from both indices and its simulation,
// dropping the match entirely when the roster empties; callers hold the lock.
func (mm *MatchManager) leaveLocked(connID string) *Match {
	m, ok := mm.byConn[connID]
	if !ok {
		return nil
	}
	delete(mm.byConn, connID)
	delete(m.Players, connID)
	if m.Game != nil {
		m.Game.RemovePlayer(connID)
	}
	if len(m.Players) == 0 {
		delete(mm.matches, m.Code)
	}
	return m
}

// RemoveMatch drops an emptied match from both indices
func (mm *MatchManager) RemoveMatch(code string) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	m, ok := mm.matches[code]
	if !ok {
		return
	}
	for connID := range m.Players {
		delete(mm.byConn, connID)
	}
	delete(mm.matches, code)
}

// GetMatch returns the match for a code, or nil
func (mm *MatchManager) GetMatch(code string) *Match {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.matches[code]
}

// GetPlayerMatch returns the match a connection belongs to, or nil
func (mm *MatchManager) GetPlayerMatch(connID string) *Match {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.byConn[connID]
}

// Snapshot returns the roster view of a match, or false if unknown
func (mm *MatchManager) Snapshot(code string) (MatchSnapshot, bool) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	m, ok := mm.matches[code]
	if !ok {
		return MatchSnapshot{}, false
	}
	return m.snapshot(), true
}

// RosterConns returns the connection ids currently in a match. Broadcast
// recipient lists are built from this so the transport never reads the
// roster map directly.
func (mm *MatchManager) RosterConns(code string) []string {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	m, ok := mm.matches[code]
	if !ok {
		return nil
	}
	conns := make([]string, 0, len(m.Players))
	for connID := range m.Players {
		conns = append(conns, connID)
	}
	return conns
}

// MatchCount returns the number of live matches
func (mm *MatchManager) MatchCount() int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return len(mm.matches)
}

// ListMatches returns public summaries for the status endpoint
func (mm *MatchManager) ListMatches() []MatchInfo {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	list := make([]MatchInfo, 0, len(mm.matches))
	for _, m := range mm.matches {
		list = append(list, m.info())
	}
	return list
}
