package main

import (
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// maxTickDelta caps the simulated time of one tick so a stalled scheduler
// cannot fast-forward reload and respawn timers in one jump.
const maxTickDelta = 0.25 // seconds

// spawnPoints are cycled through as players are seeded into a match
var spawnPoints = [][2]float64{
	{ArenaWidth * 0.1, ArenaHeight * 0.1},
	{ArenaWidth * 0.9, ArenaHeight * 0.9},
	{ArenaWidth * 0.9, ArenaHeight * 0.1},
	{ArenaWidth * 0.1, ArenaHeight * 0.9},
	{ArenaWidth * 0.5, ArenaHeight * 0.1},
	{ArenaWidth * 0.5, ArenaHeight * 0.9},
	{ArenaWidth * 0.1, ArenaHeight * 0.5},
	{ArenaWidth * 0.9, ArenaHeight * 0.5},
}

// Game is the authoritative simulation for one match. All mutation goes
// through its methods; the mutex serializes player actions against ticks.
type Game struct {
	mu        sync.RWMutex
	players   map[string]*Player // connID -> player
	kits      []*HealthKit
	tick      uint64
	nextSpawn int
}

// UpdateResult is what one tick produces: a full snapshot plus any hits
// caused by passive, time-based effects.
type UpdateResult struct {
	State GameState
	Hits  []HitResult
}

// NewGame creates a simulation seeded with the given roster
func NewGame(roster []*PlayerSession) *Game {
	g := &Game{
		players: make(map[string]*Player),
		kits:    NewHealthKits(),
	}
	for _, s := range roster {
		g.addPlayer(s)
	}
	return g
}

func (g *Game) addPlayer(s *PlayerSession) {
	pt := spawnPoints[g.nextSpawn%len(spawnPoints)]
	g.nextSpawn++
	g.players[s.ConnID] = NewPlayer(s.ConnID, s.PlayerID, s.Username, pt[0], pt[1])
}

// AddPlayer seeds a late joiner (rejoin policy) into the running simulation
func (g *Game) AddPlayer(s *PlayerSession) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.players[s.ConnID]; ok {
		return
	}
	g.addPlayer(s)
}

// RemovePlayer drops a disconnected player from the simulation
func (g *Game) RemovePlayer(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.players, connID)
}

// ReattachPlayer moves an existing combat state to a new connection id.
// Used by the rejoin policy when the same playerId comes back.
func (g *Game) ReattachPlayer(playerID, newConnID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for connID, p := range g.players {
		if p.PlayerID == playerID {
			delete(g.players, connID)
			p.ConnID = newConnID
			g.players[newConnID] = p
			return true
		}
	}
	return false
}

// UpdatePlayer applies a trusted movement update; unknown connections and
// dead players are ignored.
func (g *Game) UpdatePlayer(connID string, m MoveMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[connID]
	if !ok {
		return
	}
	p.ApplyMove(m)
}

// HandleShoot resolves a shot synchronously. Returns nil when the shooter
// cannot act or the shot misses. Ammo is spent on every fired shot.
func (g *Game) HandleShoot(connID string, shot ShootMsg) *HitResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	shooter, ok := g.players[connID]
	if !ok || !shooter.CanShoot() {
		return nil
	}

	def := GetWeaponDef(shooter.Weapon)
	shooter.Ammo--
	shooter.FireCD = def.FireInterval
	angle := NormalizeAngle(shot.Angle)
	shooter.Rotation = angle

	// Nearest alive target on the shot ray wins
	var target *Player
	var targetDist float64
	for id, p := range g.players {
		if id == connID || !p.Alive {
			continue
		}
		if !HitscanTarget(shooter.X, shooter.Y, angle, def, p.X, p.Y, PlayerRadius) {
			continue
		}
		d := Distance(shooter.X, shooter.Y, p.X, p.Y)
		if target == nil || d < targetDist {
			target = p
			targetDist = d
		}
	}
	if target == nil {
		return nil
	}

	killed := target.TakeDamage(def.Damage)
	if killed {
		shooter.Kills++
	}
	return &HitResult{
		TargetID:   target.ConnID,
		Damage:     def.Damage,
		Health:     target.Health,
		Killed:     killed,
		KillerID:   shooter.PlayerID,
		KillerName: shooter.Username,
		VictimID:   target.PlayerID,
		VictimName: target.Username,
	}
}

// ChangeWeapon switches the player's active weapon; invalid ids are a no-op
func (g *Game) ChangeWeapon(connID, weaponID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[connID]
	if !ok {
		return
	}
	p.SetWeapon(weaponID)
}

// HandleReload starts a reload; requests during a running reload are ignored
func (g *Game) HandleReload(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[connID]
	if !ok {
		return
	}
	p.StartReload()
}

// PickupHealthKit consumes the nearest unconsumed kit in range. Returns nil
// when no kit applies (all consumed, out of range, player dead or unknown).
func (g *Game) PickupHealthKit(connID string) *KitPickedMsg {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[connID]
	if !ok || !p.Alive {
		return nil
	}
	for _, kit := range g.kits {
		if kit.Consumed {
			continue
		}
		if Distance(p.X, p.Y, kit.X, kit.Y) > KitPickupRadius {
			continue
		}
		kit.Consume()
		health := p.Heal(KitHeal)
		return &KitPickedMsg{PlayerID: connID, KitID: kit.ID, Health: health}
	}
	return nil
}

// Update advances time-based state by dt seconds and returns the snapshot.
// Player-initiated shots are resolved in HandleShoot; Hits only carries
// damage produced by passive per-tick effects.
func (g *Game) Update(dt float64) UpdateResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	dt = Clamp(dt, 0, maxTickDelta)
	g.tick++

	for _, p := range g.players {
		p.Update(dt)
	}
	for _, kit := range g.kits {
		kit.Update(dt)
	}

	return UpdateResult{State: g.stateLocked()}
}

// stateLocked builds a snapshot; callers must hold the mutex
func (g *Game) stateLocked() GameState {
	state := GameState{
		Players: make([]PlayerState, 0, len(g.players)),
		Kits:    make([]KitState, 0, len(g.kits)),
		Tick:    g.tick,
	}
	for _, p := range g.players {
		state.Players = append(state.Players, p.ToState())
	}
	for _, kit := range g.kits {
		state.Kits = append(state.Kits, kit.ToState())
	}
	return state
}

// State returns the current snapshot outside the tick path
func (g *Game) State() GameState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.stateLocked()
}

// PlayersAlive counts simulation entries that are still alive. Always
// derived from current state, never cached.
func (g *Game) PlayersAlive() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	alive := 0
	for _, p := range g.players {
		if p.Alive {
			alive++
		}
	}
	return alive
}

// GetWinner returns the last player standing, or nil while the match is
// still contested.
func (g *Game) GetWinner() *PlayerSession {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var winner *Player
	for _, p := range g.players {
		if !p.Alive {
			continue
		}
		if winner != nil {
			return nil // more than one alive
		}
		winner = p
	}
	if winner == nil {
		return nil
	}
	return &PlayerSession{ConnID: winner.ConnID, PlayerID: winner.PlayerID, Username: winner.Username}
}

// Results computes final standings sorted by kills (descending)
func (g *Game) Results(winnerPlayerID string) []PlayerResult {
	g.mu.RLock()
	defer g.mu.RUnlock()
	results := make([]PlayerResult, 0, len(g.players))
	for _, p := range g.players {
		results = append(results, PlayerResult{
			PlayerID: p.PlayerID,
			Username: p.Username,
			Kills:    p.Kills,
			Deaths:   p.Deaths,
			Winner:   p.PlayerID == winnerPlayerID,
		})
	}
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Kills > results[j-1].Kills; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
	return results
}

// PlayerCount returns the number of simulation entries
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.players)
}

// EncodeGameState marshals a snapshot for the binary broadcast channel
func EncodeGameState(state GameState) ([]byte, error) {
	return msgpack.Marshal(state)
}
