package main

const (
	KitHeal         = 50
	KitPickupRadius = 60.0
	KitRespawnTime  = 20.0 // seconds after consumption
)

// kitSpawnPoints are the fixed kit locations seeded into every match
var kitSpawnPoints = [][2]float64{
	{ArenaWidth * 0.2, ArenaHeight * 0.2},
	{ArenaWidth * 0.8, ArenaHeight * 0.2},
	{ArenaWidth * 0.5, ArenaHeight * 0.5},
	{ArenaWidth * 0.2, ArenaHeight * 0.8},
	{ArenaWidth * 0.8, ArenaHeight * 0.8},
}

// HealthKit is a consumable pickup that restores health
type HealthKit struct {
	ID       string
	X, Y     float64
	Consumed bool
	RespawnT float64 // seconds until it comes back
}

// NewHealthKits creates kits at every spawn point
func NewHealthKits() []*HealthKit {
	kits := make([]*HealthKit, 0, len(kitSpawnPoints))
	for _, pt := range kitSpawnPoints {
		kits = append(kits, &HealthKit{
			ID: GenerateKitID(),
			X:  pt[0],
			Y:  pt[1],
		})
	}
	return kits
}

// Consume marks the kit taken and arms its respawn timer
func (k *HealthKit) Consume() {
	k.Consumed = true
	k.RespawnT = KitRespawnTime
}

// Update ticks the respawn timer (dt in seconds)
func (k *HealthKit) Update(dt float64) {
	if !k.Consumed {
		return
	}
	k.RespawnT -= dt
	if k.RespawnT <= 0 {
		k.Consumed = false
		k.RespawnT = 0
	}
}

// ToState converts to protocol state
func (k *HealthKit) ToState() KitState {
	return KitState{
		ID:       k.ID,
		X:        k.X,
		Y:        k.Y,
		Consumed: k.Consumed,
	}
}
