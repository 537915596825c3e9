package main

import (
	"math"
	"testing"
)

func TestHitscanDirectHit(t *testing.T) {
	rifle := GetWeaponDef(WeaponRifle)
	if !HitscanTarget(0, 0, 0, rifle, 400, 0, PlayerRadius) {
		t.Error("target dead ahead within range should be hit")
	}
}

func TestHitscanOutOfRange(t *testing.T) {
	pistol := GetWeaponDef(WeaponPistol)
	if HitscanTarget(0, 0, 0, pistol, pistol.Range+1, 0, PlayerRadius) {
		t.Error("target past weapon range should be safe")
	}
}

func TestHitscanWrongDirection(t *testing.T) {
	rifle := GetWeaponDef(WeaponRifle)
	if HitscanTarget(0, 0, math.Pi, rifle, 400, 0, PlayerRadius) {
		t.Error("shot fired the other way should miss")
	}
}

func TestHitscanSpreadWidensWithDistance(t *testing.T) {
	shotgun := GetWeaponDef(WeaponShotgun)
	rifle := GetWeaponDef(WeaponRifle)

	// Offset target: outside a tight rifle line, inside the shotgun cone
	off := PlayerRadius + 10.0
	if !HitscanTarget(0, 0, 0, shotgun, 200, off, PlayerRadius) {
		t.Error("shotgun cone should reach a slightly offset target")
	}
	if HitscanTarget(0, 0, 0, rifle, 200, off+30, PlayerRadius) {
		t.Error("rifle should need a near-direct line")
	}
}

func TestSegmentCircleIntersect(t *testing.T) {
	if !segmentCircleIntersect(0, 0, 100, 0, 50, 0, 10) {
		t.Error("segment through circle should intersect")
	}
	if segmentCircleIntersect(0, 0, 100, 0, 50, 50, 10) {
		t.Error("segment far from circle should not intersect")
	}
	// Degenerate zero-length segment on the circle
	if !segmentCircleIntersect(5, 0, 5, 0, 0, 0, 10) {
		t.Error("point inside circle should intersect")
	}
}
