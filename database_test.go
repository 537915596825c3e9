package main

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAccountAndLookup(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateAccount("alice", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Error("expected a non-zero account id")
	}

	exists, err := db.UsernameExists("alice")
	if err != nil || !exists {
		t.Error("username should exist")
	}
	exists, _ = db.UsernameExists("bob")
	if exists {
		t.Error("unknown username should not exist")
	}

	acct, err := db.GetAccountByUsername("alice")
	if err != nil || acct == nil {
		t.Fatalf("lookup: %v", err)
	}
	if acct.ID != id || acct.PassHash != "hash" {
		t.Error("account row mismatch")
	}
	if missing, _ := db.GetAccountByUsername("bob"); missing != nil {
		t.Error("expected nil for unknown account")
	}

	stats, err := db.GetStats(id)
	if err != nil || stats == nil {
		t.Fatal("stats row should be created with the account")
	}
	if stats.Kills != 0 || stats.Wins != 0 {
		t.Error("fresh stats should be zero")
	}
}

func TestRecordMatchResultUpdatesStats(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateAccount("alice", "hash")

	results := []PlayerResult{
		{PlayerID: "p1", Username: "alice", Kills: 3, Deaths: 0, Winner: true},
		{PlayerID: "p2", Username: "guest_77", Kills: 1, Deaths: 1, Winner: false},
	}
	if err := db.RecordMatchResult("ABC123", "p1", 95.5, results); err != nil {
		t.Fatalf("record: %v", err)
	}

	stats, _ := db.GetStats(id)
	if stats.Kills != 3 || stats.Wins != 1 || stats.Losses != 0 {
		t.Errorf("stats not folded in: %+v", stats)
	}
	if stats.Playtime != 95.5 {
		t.Errorf("expected playtime 95.5, got %f", stats.Playtime)
	}

	history, err := db.GetMatchHistory("p1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || !history[0].Winner || history[0].Kills != 3 {
		t.Errorf("unexpected history %+v", history)
	}
	if unreg, _ := db.GetMatchHistory("p2", 10); len(unreg) != 1 {
		t.Error("guest results should still be recorded per match")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if v := db.GetSetting("missing"); v != "" {
		t.Errorf("expected empty value, got %q", v)
	}
	if err := db.SetSetting("jwt_secret", "aa"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v := db.GetSetting("jwt_secret"); v != "aa" {
		t.Errorf("expected aa, got %q", v)
	}
	db.SetSetting("jwt_secret", "bb")
	if v := db.GetSetting("jwt_secret"); v != "bb" {
		t.Errorf("upsert failed, got %q", v)
	}
}
