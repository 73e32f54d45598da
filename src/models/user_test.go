package models

import (
	"errors"
	"testing"
	"time"

	"github.com/Miseong-debug/Stock-Portfolio/src/database"
)

func TestUserRoundTrip(t *testing.T) {
	newTestDB(t)

	u := &User{Username: "miseong", Password: "hashed-password"}
	if err := u.CreateUser(database.DB); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("CreateUser did not assign an id")
	}

	byName, err := GetUserByUsername(database.DB, "miseong")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if byName.ID != u.ID || byName.Password != "hashed-password" {
		t.Errorf("round trip mismatch: %+v", byName)
	}

	byID, err := GetUserByID(database.DB, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Username != "miseong" {
		t.Errorf("got username %q", byID.Username)
	}

	if _, err := GetUserByUsername(database.DB, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user: got %v, want ErrUserNotFound", err)
	}

	dup := &User{Username: "miseong", Password: "other"}
	if err := dup.CreateUser(database.DB); err == nil {
		t.Error("expected unique constraint violation for duplicate username")
	}
}

func TestSessionLifecycle(t *testing.T) {
	newTestDB(t)

	s := &Session{
		UserID:       1,
		Token:        "access-token",
		RefreshToken: "refresh-token",
		UserAgent:    "test",
		ClientIP:     "127.0.0.1",
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
	}
	if err := CreateSession(database.DB, s); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := GetSessionByToken(database.DB, "access-token")
	if err != nil {
		t.Fatalf("GetSessionByToken: %v", err)
	}
	if got.UserID != 1 || got.RefreshToken != "refresh-token" {
		t.Errorf("session mismatch: %+v", got)
	}

	byRefresh, err := GetSessionByRefreshToken(database.DB, "refresh-token")
	if err != nil {
		t.Fatalf("GetSessionByRefreshToken: %v", err)
	}
	if byRefresh.Token != "access-token" {
		t.Errorf("got token %q", byRefresh.Token)
	}

	if err := DeleteSessionByToken(database.DB, "access-token"); err != nil {
		t.Fatalf("DeleteSessionByToken: %v", err)
	}
	if _, err := GetSessionByToken(database.DB, "access-token"); err == nil {
		t.Error("session still retrievable after delete")
	}
}

func TestExpiredSessionNotReturned(t *testing.T) {
	newTestDB(t)

	s := &Session{
		UserID:       1,
		Token:        "stale-token",
		RefreshToken: "stale-refresh",
		ExpiresAt:    time.Now().UTC().Add(-time.Minute),
	}
	if err := CreateSession(database.DB, s); err != nil {
		t.Fatal(err)
	}
	if _, err := GetSessionByToken(database.DB, "stale-token"); err == nil {
		t.Error("expired session was returned")
	}
	if _, err := GetSessionByRefreshToken(database.DB, "stale-refresh"); err == nil {
		t.Error("expired session was returned via refresh token")
	}
}
