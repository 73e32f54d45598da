package models

import (
	"testing"

	"github.com/Miseong-debug/Stock-Portfolio/src/database"
)

func TestSQLStateStore(t *testing.T) {
	newTestDB(t)
	store := NewSQLStateStore(database.DB)

	if _, ok, err := store.Get(1, "pin_hash"); err != nil || ok {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}

	if err := store.Set(1, "pin_hash", "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, ok, err := store.Get(1, "pin_hash")
	if err != nil || !ok || value != "abc" {
		t.Fatalf("Get after Set: value=%q ok=%v err=%v", value, ok, err)
	}

	// Set is an upsert.
	if err := store.Set(1, "pin_hash", "def"); err != nil {
		t.Fatalf("Set (overwrite): %v", err)
	}
	value, _, _ = store.Get(1, "pin_hash")
	if value != "def" {
		t.Errorf("got %q after overwrite, want def", value)
	}

	// Keys are scoped per user.
	if _, ok, _ := store.Get(2, "pin_hash"); ok {
		t.Error("user 2 sees user 1's key")
	}

	if err := store.Delete(1, "pin_hash"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(1, "pin_hash"); ok {
		t.Error("key still present after Delete")
	}

	// Deleting a missing key is not an error.
	if err := store.Delete(1, "pin_hash"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}
