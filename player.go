package main

const (
	PlayerRadius    = 24.0
	PlayerMaxHealth = 100
	ArenaWidth      = 2000.0
	ArenaHeight     = 2000.0
)

// Player is the authoritative combat state for one connection in a match
type Player struct {
	ConnID   string
	PlayerID string
	Username string

	X, Y     float64
	Rotation float64

	Health    int
	MaxHealth int
	Alive     bool

	Weapon    string
	Ammo      int
	ammoStore map[string]int // spent magazines carried across weapon switches
	Reloading bool
	ReloadT   float64 // seconds until reload completes
	FireCD    float64 // seconds until next shot allowed

	Kills  int
	Deaths int
}

// NewPlayer spawns a player at the given point with the starter weapon
func NewPlayer(connID, playerID, username string, x, y float64) *Player {
	pistol := GetWeaponDef(WeaponPistol)
	return &Player{
		ConnID:    connID,
		PlayerID:  playerID,
		Username:  username,
		X:         x,
		Y:         y,
		Health:    PlayerMaxHealth,
		MaxHealth: PlayerMaxHealth,
		Alive:     true,
		Weapon:    pistol.ID,
		Ammo:      pistol.Magazine,
		ammoStore: make(map[string]int),
	}
}

// ApplyMove applies a trusted movement update, clamped to the arena
func (p *Player) ApplyMove(m MoveMsg) {
	if !p.Alive {
		return
	}
	p.X = Clamp(m.X, 0, ArenaWidth)
	p.Y = Clamp(m.Y, 0, ArenaHeight)
	p.Rotation = NormalizeAngle(m.Rotation)
}

// Update advances reload and fire-cooldown timers (dt in seconds)
func (p *Player) Update(dt float64) {
	if p.FireCD > 0 {
		p.FireCD -= dt
	}
	if p.Reloading {
		p.ReloadT -= dt
		if p.ReloadT <= 0 {
			p.Reloading = false
			p.ReloadT = 0
			p.Ammo = GetWeaponDef(p.Weapon).Magazine
		}
	}
}

// CanShoot reports whether the player may fire right now
func (p *Player) CanShoot() bool {
	return p.Alive && !p.Reloading && p.Ammo > 0 && p.FireCD <= 0
}

// StartReload begins a reload unless one is running or the magazine is full
func (p *Player) StartReload() {
	if !p.Alive || p.Reloading {
		return
	}
	def := GetWeaponDef(p.Weapon)
	if p.Ammo >= def.Magazine {
		return
	}
	p.Reloading = true
	p.ReloadT = def.ReloadTime
}

// SetWeapon switches the active weapon; unknown ids are ignored. Each
// weapon keeps its own magazine, so cycling weapons never refills ammo.
func (p *Player) SetWeapon(id string) {
	if !p.Alive {
		return
	}
	def, ok := WeaponCatalogMap[id]
	if !ok || def.ID == p.Weapon {
		return
	}
	if p.ammoStore == nil {
		p.ammoStore = make(map[string]int)
	}
	p.ammoStore[p.Weapon] = p.Ammo
	p.Weapon = def.ID
	if saved, ok := p.ammoStore[def.ID]; ok {
		p.Ammo = saved
	} else {
		p.Ammo = def.Magazine
	}
	p.Reloading = false
	p.ReloadT = 0
	p.FireCD = 0
}

// TakeDamage reduces health, clamped at zero, and returns true on death
func (p *Player) TakeDamage(dmg int) bool {
	if !p.Alive || dmg <= 0 {
		return false
	}
	p.Health -= dmg
	if p.Health <= 0 {
		p.Health = 0
		p.Alive = false
		p.Deaths++
		return true
	}
	return false
}

// Heal restores health up to the maximum and returns the new value
func (p *Player) Heal(amount int) int {
	if !p.Alive || amount <= 0 {
		return p.Health
	}
	p.Health = ClampInt(p.Health+amount, 0, p.MaxHealth)
	return p.Health
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:        p.ConnID,
		PlayerID:  p.PlayerID,
		Name:      p.Username,
		X:         p.X,
		Y:         p.Y,
		Rotation:  p.Rotation,
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Weapon:    p.Weapon,
		Ammo:      p.Ammo,
		Reloading: p.Reloading,
		Kills:     p.Kills,
		Alive:     p.Alive,
	}
}
