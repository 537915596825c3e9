package main

// MatchStatus is the lifecycle state of a match
type MatchStatus string

// Status moves forward only: waiting -> active -> ended
const (
	StatusWaiting MatchStatus = "waiting"
	StatusActive  MatchStatus = "active"
	StatusEnded   MatchStatus = "ended"
)

// PlayerSession is the ephemeral identity of one connection in a match
type PlayerSession struct {
	ConnID   string
	PlayerID string
	Username string
}

// Match is a bounded group of player sessions sharing one simulation.
// Roster and status are mutated only under the MatchManager's lock; the
// simulation has its own.
type Match struct {
	Code       string
	Players    map[string]*PlayerSession // connID -> session
	MaxPlayers int
	Status     MatchStatus
	Private    bool
	Game       *Game

	seq uint64 // creation order, for FIFO quick-match selection
}

func newMatch(code string, maxPlayers int, private bool, seq uint64) *Match {
	return &Match{
		Code:       code,
		Players:    make(map[string]*PlayerSession),
		MaxPlayers: maxPlayers,
		Status:     StatusWaiting,
		Private:    private,
		seq:        seq,
	}
}

// roster returns the sessions currently in the match
func (m *Match) roster() []*PlayerSession {
	list := make([]*PlayerSession, 0, len(m.Players))
	for _, s := range m.Players {
		list = append(list, s)
	}
	return list
}

// snapshot builds the roster view broadcast on matchmaking changes
func (m *Match) snapshot() MatchSnapshot {
	players := make([]PlayerEntry, 0, len(m.Players))
	for _, s := range m.Players {
		players = append(players, PlayerEntry{PlayerID: s.PlayerID, Username: s.Username})
	}
	return MatchSnapshot{
		Code:       m.Code,
		Players:    players,
		MaxPlayers: m.MaxPlayers,
		Status:     string(m.Status),
	}
}

// info builds the public summary for the /matches endpoint
func (m *Match) info() MatchInfo {
	return MatchInfo{
		Code:       m.Code,
		Status:     string(m.Status),
		Players:    len(m.Players),
		MaxPlayers: m.MaxPlayers,
		Private:    m.Private,
	}
}
