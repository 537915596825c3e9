package main

import (
	"crypto/rand"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// matchCodeAlphabet avoids 0/O and 1/I so codes survive being read aloud.
const matchCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const matchCodeLen = 6

// GenerateMatchCode returns a short human-shareable match code.
func GenerateMatchCode() string {
	b := make([]byte, matchCodeLen)
	rand.Read(b)
	for i := range b {
		b[i] = matchCodeAlphabet[int(b[i])%len(matchCodeAlphabet)]
	}
	return string(b)
}

// GenerateConnID returns a unique id for a WebSocket connection.
func GenerateConnID() string {
	return uuid.NewString()
}

// GenerateKitID returns a unique id for a health kit.
func GenerateKitID() string {
	return uuid.NewString()
}

// GenerateGuestName returns a display name for players without an account.
func GenerateGuestName() string {
	b := make([]byte, 2)
	rand.Read(b)
	return fmt.Sprintf("Guest_%04d", (int(b[0])<<8|int(b[1]))%10000)
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampInt restricts v to [min, max]
func ClampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance returns the distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// NormalizeAngle wraps angle to [-PI, PI]
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
