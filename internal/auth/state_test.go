package auth

import (
	"testing"
	"time"
)

func TestStateOneTimeUse(t *testing.T) {
	sm := NewStateManager()

	state, err := sm.GenerateState("google", "agent", "http://localhost:3000")
	if err != nil {
		t.Fatalf("GenerateState: %v", err)
	}

	entry, err := sm.ValidateState(state, "google", "agent")
	if err != nil {
		t.Fatalf("ValidateState: %v", err)
	}
	if entry.RedirectURI != "http://localhost:3000" {
		t.Errorf("redirect = %q", entry.RedirectURI)
	}

	if _, err := sm.ValidateState(state, "google", "agent"); err == nil {
		t.Fatal("expected reused state to be rejected")
	}
}

func TestStateRejections(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sm := NewStateManager()
	sm.now = func() time.Time { return now }

	providerState, _ := sm.GenerateState("github", "agent", "")
	expiredState, _ := sm.GenerateState("google", "agent", "")

	if _, err := sm.ValidateState("", "google", "agent"); err == nil {
		t.Error("expected empty state to be rejected")
	}
	if _, err := sm.ValidateState("unknown", "google", "agent"); err == nil {
		t.Error("expected unknown state to be rejected")
	}
	if _, err := sm.ValidateState(providerState, "google", "agent"); err == nil {
		t.Error("expected provider mismatch to be rejected")
	}

	now = now.Add(11 * time.Minute)
	if _, err := sm.ValidateState(expiredState, "google", "agent"); err == nil {
		t.Error("expected expired state to be rejected")
	}
}

func TestStateUserAgentMismatchAllowed(t *testing.T) {
	sm := NewStateManager()
	state, _ := sm.GenerateState("google", "agent-a", "")
	if _, err := sm.ValidateState(state, "google", "agent-b"); err != nil {
		t.Fatalf("user agent mismatch should only be logged: %v", err)
	}
}

func TestStateCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sm := NewStateManager()
	sm.now = func() time.Time { return now }

	if _, err := sm.GenerateState("google", "agent", ""); err != nil {
		t.Fatal(err)
	}
	now = now.Add(5 * time.Minute)
	fresh, _ := sm.GenerateState("google", "agent", "")

	now = now.Add(6 * time.Minute)
	if removed := sm.cleanupExpiredStates(); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := sm.ValidateState(fresh, "google", "agent"); err != nil {
		t.Fatalf("fresh state should survive cleanup: %v", err)
	}
}
