package main

// Weapon identifiers used on the wire
const (
	WeaponPistol  = "pistol"
	WeaponRifle   = "rifle"
	WeaponShotgun = "shotgun"
)

// WeaponDef holds the stats for one weapon
type WeaponDef struct {
	ID           string
	Damage       int
	Range        float64
	Magazine     int     // shots per reload
	ReloadTime   float64 // seconds
	FireInterval float64 // seconds between shots
	Spread       float64 // aim cone half-angle in radians
}

// WeaponCatalog is the full list of weapons players can carry
var WeaponCatalog = []WeaponDef{
	// Pistol: starter, forgiving reload
	{
		ID: WeaponPistol, Damage: 15, Range: 600,
		Magazine: 12, ReloadTime: 1.0, FireInterval: 0.35, Spread: 0.04,
	},
	// Rifle: long range, high rate of fire
	{
		ID: WeaponRifle, Damage: 25, Range: 900,
		Magazine: 30, ReloadTime: 2.0, FireInterval: 0.12, Spread: 0.02,
	},
	// Shotgun: brutal up close, wide cone
	{
		ID: WeaponShotgun, Damage: 40, Range: 250,
		Magazine: 6, ReloadTime: 2.5, FireInterval: 0.8, Spread: 0.18,
	},
}

// WeaponCatalogMap provides O(1) lookup by weapon ID
var WeaponCatalogMap map[string]WeaponDef

func init() {
	WeaponCatalogMap = make(map[string]WeaponDef, len(WeaponCatalog))
	for _, w := range WeaponCatalog {
		WeaponCatalogMap[w.ID] = w
	}
}

// GetWeaponDef returns the definition for a weapon, defaulting to the pistol
func GetWeaponDef(id string) WeaponDef {
	if w, ok := WeaponCatalogMap[id]; ok {
		return w
	}
	return WeaponCatalogMap[WeaponPistol]
}
