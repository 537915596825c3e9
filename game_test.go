package main

import (
	"math"
	"testing"
)

func twoPlayerGame() (*Game, string, string) {
	roster := []*PlayerSession{
		{ConnID: "connA", PlayerID: "p1", Username: "Alice"},
		{ConnID: "connB", PlayerID: "p2", Username: "Bob"},
	}
	return NewGame(roster), "connA", "connB"
}

// placeFacing puts the shooter at (100,100) aiming straight at the target
func placeFacing(g *Game, shooter, target string, dist float64) {
	g.UpdatePlayer(shooter, MoveMsg{X: 100, Y: 100, Rotation: 0})
	g.UpdatePlayer(target, MoveMsg{X: 100 + dist, Y: 100, Rotation: math.Pi})
}

func TestGameSeedsRoster(t *testing.T) {
	g, _, _ := twoPlayerGame()
	if g.PlayerCount() != 2 {
		t.Errorf("expected 2 players, got %d", g.PlayerCount())
	}
	if g.PlayersAlive() != 2 {
		t.Errorf("expected 2 alive, got %d", g.PlayersAlive())
	}
	state := g.State()
	if len(state.Players) != 2 {
		t.Errorf("expected 2 player states, got %d", len(state.Players))
	}
	if len(state.Kits) != len(kitSpawnPoints) {
		t.Errorf("expected %d kits, got %d", len(kitSpawnPoints), len(state.Kits))
	}
}

func TestHandleShootHitReducesHealthByWeaponDamage(t *testing.T) {
	g, a, b := twoPlayerGame()
	placeFacing(g, a, b, 300)

	hit := g.HandleShoot(a, ShootMsg{Angle: 0})
	if hit == nil {
		t.Fatal("expected a hit")
	}
	dmg := GetWeaponDef(WeaponPistol).Damage
	if hit.Damage != dmg {
		t.Errorf("expected damage %d, got %d", dmg, hit.Damage)
	}
	if hit.Health != PlayerMaxHealth-dmg {
		t.Errorf("expected health %d, got %d", PlayerMaxHealth-dmg, hit.Health)
	}
	if hit.Killed {
		t.Error("first pistol shot should not kill")
	}
	if hit.KillerID != "p1" || hit.VictimID != "p2" {
		t.Errorf("wrong identities: killer=%s victim=%s", hit.KillerID, hit.VictimID)
	}
}

func TestHandleShootSpendsAmmoAndCooldown(t *testing.T) {
	g, a, b := twoPlayerGame()
	placeFacing(g, a, b, 300)

	g.HandleShoot(a, ShootMsg{Angle: 0})
	state := g.State()
	for _, p := range state.Players {
		if p.ID == a {
			if p.Ammo != GetWeaponDef(WeaponPistol).Magazine-1 {
				t.Errorf("expected ammo spent, got %d", p.Ammo)
			}
		}
	}
	// Cooldown gates the next shot until ticks pass
	if hit := g.HandleShoot(a, ShootMsg{Angle: 0}); hit != nil {
		t.Error("shot during cooldown should not resolve")
	}
	g.Update(0.2)
	g.Update(0.2)
	if hit := g.HandleShoot(a, ShootMsg{Angle: 0}); hit == nil {
		t.Error("shot after cooldown should resolve")
	}
}

func TestHandleShootMiss(t *testing.T) {
	g, a, b := twoPlayerGame()
	placeFacing(g, a, b, 300)

	// Aiming straight away from the target
	if hit := g.HandleShoot(a, ShootMsg{Angle: math.Pi}); hit != nil {
		t.Error("shot fired away from the target should miss")
	}
	// Target beyond weapon range
	g.UpdatePlayer(b, MoveMsg{X: 100 + GetWeaponDef(WeaponPistol).Range + 200, Y: 100})
	g.Update(0.2)
	g.Update(0.2)
	if hit := g.HandleShoot(a, ShootMsg{Angle: 0}); hit != nil {
		t.Error("target out of range should not be hit")
	}
}

func killPlayer(t *testing.T, g *Game, shooter, victim string) *HitResult {
	t.Helper()
	g.ChangeWeapon(shooter, WeaponShotgun)
	var last *HitResult
	for i := 0; i < 10; i++ {
		hit := g.HandleShoot(shooter, ShootMsg{Angle: 0})
		if hit == nil {
			t.Fatal("expected every close-range shotgun shot to hit")
		}
		last = hit
		if hit.Killed {
			return last
		}
		// clear the fire cooldown
		for j := 0; j < 4; j++ {
			g.Update(0.25)
		}
	}
	t.Fatal("victim did not die")
	return nil
}

func TestFatalHitKillsExactlyOnce(t *testing.T) {
	g, a, b := twoPlayerGame()
	placeFacing(g, a, b, 100)

	last := killPlayer(t, g, a, b)
	if last.Health != 0 {
		t.Errorf("fatal hit should clamp health at 0, got %d", last.Health)
	}
	if g.PlayersAlive() != 1 {
		t.Errorf("expected 1 alive, got %d", g.PlayersAlive())
	}

	// Dead players cannot be targeted again
	for j := 0; j < 4; j++ {
		g.Update(0.25)
	}
	if hit := g.HandleShoot(a, ShootMsg{Angle: 0}); hit != nil {
		t.Error("a dead player must not be hit")
	}
	// Dead players cannot deal damage
	if hit := g.HandleShoot(b, ShootMsg{Angle: math.Pi}); hit != nil {
		t.Error("a dead player must not shoot")
	}
}

func TestGetWinner(t *testing.T) {
	g, a, b := twoPlayerGame()
	if g.GetWinner() != nil {
		t.Error("no winner while both are alive")
	}
	placeFacing(g, a, b, 100)
	killPlayer(t, g, a, b)

	winner := g.GetWinner()
	if winner == nil || winner.PlayerID != "p1" {
		t.Fatalf("expected p1 to win, got %+v", winner)
	}
}

func TestResultsSortedByKills(t *testing.T) {
	g, a, b := twoPlayerGame()
	placeFacing(g, a, b, 100)
	killPlayer(t, g, a, b)

	results := g.Results("p1")
	if len(results) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(results))
	}
	if results[0].PlayerID != "p1" || !results[0].Winner {
		t.Errorf("expected p1 first and marked winner, got %+v", results[0])
	}
	if results[0].Kills != 1 || results[1].Deaths != 1 {
		t.Error("kill and death counts should be recorded")
	}
}

func TestReloadFlow(t *testing.T) {
	g, a, b := twoPlayerGame()
	placeFacing(g, a, b, 300)

	def := GetWeaponDef(WeaponPistol)
	g.HandleShoot(a, ShootMsg{Angle: 0})
	g.HandleReload(a)

	state := g.State()
	for _, p := range state.Players {
		if p.ID == a && !p.Reloading {
			t.Error("expected reload in progress")
		}
	}
	// Cannot shoot while reloading
	for j := 0; j < 2; j++ {
		g.Update(0.25)
	}
	// reload takes 1.0s for the pistol; 0.5s in, still reloading
	if hit := g.HandleShoot(a, ShootMsg{Angle: 0}); hit != nil {
		t.Error("shot during reload should not resolve")
	}
	for j := 0; j < 3; j++ {
		g.Update(0.25)
	}
	state = g.State()
	for _, p := range state.Players {
		if p.ID == a {
			if p.Reloading {
				t.Error("reload should have completed")
			}
			if p.Ammo != def.Magazine {
				t.Errorf("expected full magazine %d, got %d", def.Magazine, p.Ammo)
			}
		}
	}
}

func TestChangeWeaponInvalidIsNoop(t *testing.T) {
	g, a, _ := twoPlayerGame()
	g.ChangeWeapon(a, "bfg9000")
	state := g.State()
	for _, p := range state.Players {
		if p.ID == a && p.Weapon != WeaponPistol {
			t.Errorf("unknown weapon must not switch, got %s", p.Weapon)
		}
	}
	g.ChangeWeapon(a, WeaponRifle)
	state = g.State()
	for _, p := range state.Players {
		if p.ID == a {
			if p.Weapon != WeaponRifle {
				t.Errorf("expected rifle, got %s", p.Weapon)
			}
			if p.Ammo != GetWeaponDef(WeaponRifle).Magazine {
				t.Errorf("switch should load a fresh magazine, got %d", p.Ammo)
			}
		}
	}
}

func TestPickupHealthKit(t *testing.T) {
	g, a, b := twoPlayerGame()
	placeFacing(g, a, b, 100)

	// Damage B, then walk B onto a kit
	g.HandleShoot(a, ShootMsg{Angle: 0})
	kit := kitSpawnPoints[0]
	g.UpdatePlayer(b, MoveMsg{X: kit[0], Y: kit[1]})

	picked := g.PickupHealthKit(b)
	if picked == nil {
		t.Fatal("expected pickup to succeed")
	}
	if picked.Health > PlayerMaxHealth {
		t.Errorf("healed past the maximum: %d", picked.Health)
	}

	// The same kit is consumed now
	if again := g.PickupHealthKit(b); again != nil && again.KitID == picked.KitID {
		t.Error("consumed kit must not be picked twice")
	}
}

func TestPickupHealthKitOutOfRange(t *testing.T) {
	g, a, _ := twoPlayerGame()
	g.UpdatePlayer(a, MoveMsg{X: 5, Y: 5})
	if picked := g.PickupHealthKit(a); picked != nil {
		t.Error("pickup far from every kit should fail")
	}
}

func TestHealthKitRespawns(t *testing.T) {
	g, a, b := twoPlayerGame()
	placeFacing(g, a, b, 100)
	g.HandleShoot(a, ShootMsg{Angle: 0})

	kit := kitSpawnPoints[0]
	g.UpdatePlayer(b, MoveMsg{X: kit[0], Y: kit[1]})
	picked := g.PickupHealthKit(b)
	if picked == nil {
		t.Fatal("expected pickup")
	}

	// Advance past the respawn time (dt is clamped per update)
	steps := int(KitRespawnTime/maxTickDelta) + 2
	for i := 0; i < steps; i++ {
		g.Update(maxTickDelta)
	}
	state := g.State()
	for _, k := range state.Kits {
		if k.ID == picked.KitID && k.Consumed {
			t.Error("kit should have respawned")
		}
	}
}

func TestUpdateClampsDelta(t *testing.T) {
	g, a, _ := twoPlayerGame()
	g.HandleReload(a) // full mag, no-op; now spend a shot to arm a reload
	g.ChangeWeapon(a, WeaponShotgun)
	g.HandleShoot(a, ShootMsg{Angle: 0})
	g.HandleReload(a)

	// A huge stall must not complete a 2.5s reload in one tick
	g.Update(60.0)
	state := g.State()
	for _, p := range state.Players {
		if p.ID == a && !p.Reloading {
			t.Error("clamped delta should not fast-forward the reload")
		}
	}
}

func TestPlayersAliveRecomputedAfterRemove(t *testing.T) {
	g, _, b := twoPlayerGame()
	g.RemovePlayer(b)
	if g.PlayersAlive() != 1 {
		t.Errorf("expected 1 alive after removal, got %d", g.PlayersAlive())
	}
	if g.PlayerCount() != 1 {
		t.Errorf("expected 1 player, got %d", g.PlayerCount())
	}
}

func TestReattachPlayer(t *testing.T) {
	g, a, _ := twoPlayerGame()
	if !g.ReattachPlayer("p1", "connA2") {
		t.Fatal("expected reattach to find p1")
	}
	if g.ReattachPlayer("ghost", "connX") {
		t.Error("unknown playerId should not reattach")
	}
	// Old connection no longer routes
	g.UpdatePlayer(a, MoveMsg{X: 1, Y: 1})
	g.UpdatePlayer("connA2", MoveMsg{X: 42, Y: 42})
	state := g.State()
	for _, p := range state.Players {
		if p.PlayerID == "p1" && (p.X != 42 || p.Y != 42) {
			t.Error("reattached connection should control the player")
		}
	}
}

func TestEncodeGameStateRoundTrip(t *testing.T) {
	g, _, _ := twoPlayerGame()
	data, err := EncodeGameState(g.State())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty snapshot")
	}
}
