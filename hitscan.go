package main

import "math"

// segmentCircleIntersect checks if a line segment (x1,y1)-(x2,y2) intersects a circle at (cx,cy) with radius r.
func segmentCircleIntersect(x1, y1, x2, y2, cx, cy, r float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	fx := x1 - cx
	fy := y1 - cy
	a := dx*dx + dy*dy
	if a == 0 {
		return fx*fx+fy*fy <= r*r
	}
	b := 2 * (fx*dx + fy*dy)
	c := fx*fx + fy*fy - r*r
	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return false
	}
	discriminant = math.Sqrt(discriminant)
	t1 := (-b - discriminant) / (2 * a)
	t2 := (-b + discriminant) / (2 * a)
	return (t1 >= 0 && t1 <= 1) || (t2 >= 0 && t2 <= 1) || (t1 <= 0 && t2 >= 1)
}

// HitscanTarget reports whether a shot fired from (sx,sy) at the given angle
// hits a circular target at (tx,ty). The weapon's spread widens the effective
// target radius with distance, so a shotgun connects inside a cone while a
// rifle needs a near-direct line.
func HitscanTarget(sx, sy, angle float64, w WeaponDef, tx, ty, targetRadius float64) bool {
	dist := Distance(sx, sy, tx, ty)
	if dist > w.Range {
		return false
	}
	ex := sx + math.Cos(angle)*w.Range
	ey := sy + math.Sin(angle)*w.Range
	effective := targetRadius + dist*math.Tan(w.Spread)
	return segmentCircleIntersect(sx, sy, ex, ey, tx, ty, effective)
}
