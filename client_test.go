package main

import (
	"strings"
	"testing"
)

func TestPlayerDataAssignsGuestName(t *testing.T) {
	c := &Client{}
	pd := c.playerData(PlayerData{PlayerID: "p1"})
	if !strings.HasPrefix(pd.Username, "Guest_") {
		t.Errorf("expected a generated guest name, got %q", pd.Username)
	}
	if len(pd.Username) > maxUsernameLen {
		t.Errorf("guest name %q exceeds the username limit", pd.Username)
	}

	// The name sticks for the life of the connection
	again := c.playerData(PlayerData{PlayerID: "p1"})
	if again.Username != pd.Username {
		t.Errorf("guest name changed between requests: %q vs %q", pd.Username, again.Username)
	}
}

func TestPlayerDataKeepsClientName(t *testing.T) {
	c := &Client{}
	pd := c.playerData(PlayerData{PlayerID: "p1", Username: "Zoe"})
	if pd.Username != "Zoe" {
		t.Errorf("a provided name must not be replaced, got %q", pd.Username)
	}
	if c.guestName != "" {
		t.Error("no guest name should be assigned when one was provided")
	}
}

func TestPlayerDataAccountNameWins(t *testing.T) {
	c := &Client{authUsername: "alice"}
	pd := c.playerData(PlayerData{PlayerID: "p1", Username: "spoofed"})
	if pd.Username != "alice" {
		t.Errorf("account name must override the client-sent one, got %q", pd.Username)
	}
}

func TestPlayerDataTruncatesLongNames(t *testing.T) {
	c := &Client{}
	long := strings.Repeat("x", maxUsernameLen+10)
	pd := c.playerData(PlayerData{PlayerID: "p1", Username: long})
	if len(pd.Username) != maxUsernameLen {
		t.Errorf("expected truncation to %d, got %d", maxUsernameLen, len(pd.Username))
	}
}

func TestGenerateGuestNameFormat(t *testing.T) {
	for i := 0; i < 20; i++ {
		name := GenerateGuestName()
		if !strings.HasPrefix(name, "Guest_") || len(name) != len("Guest_0000") {
			t.Fatalf("unexpected guest name %q", name)
		}
	}
}
