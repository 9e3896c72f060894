package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	stateTTL             = 10 * time.Minute
	stateCleanupInterval = 5 * time.Minute
)

type StateManager struct {
	states map[string]StateEntry
	mutex  sync.Mutex
	ttl    time.Duration
	now    func() time.Time
}

// StateEntry is what a login attempt remembers between the redirect to the
// provider and the callback.
type StateEntry struct {
	CreatedAt   time.Time
	Provider    string
	UserAgent   string
	RedirectURI string
}

var globalStateManager = NewStateManager()

func NewStateManager() *StateManager {
	return &StateManager{
		states: make(map[string]StateEntry),
		ttl:    stateTTL,
		now:    time.Now,
	}
}

// GenerateState creates a random one-time state token bound to provider.
func (sm *StateManager) GenerateState(provider, userAgent, redirectURI string) (string, error) {
	logger := slog.With("component", "state_manager", "operation", "generate", "provider", provider)

	// 256 bits from crypto/rand
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.Error("Failed to generate random bytes for state token", "error", err)
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	// Remember where the login started
	sm.mutex.Lock()
	sm.states[state] = StateEntry{
		CreatedAt:   sm.now(),
		Provider:    provider,
		UserAgent:   userAgent,
		RedirectURI: redirectURI,
	}
	sm.mutex.Unlock()

	logger.Debug("OAuth state token generated")
	return state, nil
}

// ValidateState consumes state. A token is accepted at most once.
func (sm *StateManager) ValidateState(state, provider, userAgent string) (StateEntry, error) {
	logger := slog.With("component", "state_manager", "operation", "validate", "provider", provider)

	if state == "" {
		return StateEntry{}, fmt.Errorf("state token is required")
	}

	// Remove first so a replayed callback never matches
	sm.mutex.Lock()
	entry, exists := sm.states[state]
	delete(sm.states, state)
	sm.mutex.Unlock()

	if !exists {
		logger.Warn("Invalid or reused state token")
		return StateEntry{}, fmt.Errorf("invalid or expired state token")
	}

	if age := sm.now().Sub(entry.CreatedAt); age > sm.ttl {
		logger.Warn("Expired state token", "age_minutes", age.Minutes())
		return StateEntry{}, fmt.Errorf("state token has expired")
	}

	// The callback must come back to the provider that issued it
	if entry.Provider != provider {
		logger.Warn("State token provider mismatch",
			"expected_provider", entry.Provider,
			"received_provider", provider)
		return StateEntry{}, fmt.Errorf("state token provider mismatch")
	}

	// User agents change on browser updates, so only log a mismatch
	if entry.UserAgent != userAgent {
		logger.Warn("State token user agent mismatch",
			"stored_user_agent", entry.UserAgent,
			"received_user_agent", userAgent)
	}

	return entry, nil
}

// Run drops expired tokens periodically until ctx is cancelled.
func (sm *StateManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(stateCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sm.cleanupExpiredStates()
		}
	}
}

func (sm *StateManager) cleanupExpiredStates() int {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	now := sm.now()
	expired := 0
	for state, entry := range sm.states {
		if now.Sub(entry.CreatedAt) > sm.ttl {
			delete(sm.states, state)
			expired++
		}
	}

	if expired > 0 {
		slog.Debug("Cleaned up expired state tokens",
			"component", "state_manager",
			"expired_count", expired,
			"remaining_count", len(sm.states))
	}
	return expired
}

func GenerateOAuthState(provider, userAgent, redirectURI string) (string, error) {
	return globalStateManager.GenerateState(provider, userAgent, redirectURI)
}

func ValidateOAuthState(state, provider, userAgent string) (StateEntry, error) {
	return globalStateManager.ValidateState(state, provider, userAgent)
}

// RunStateCleanup runs the shared state manager's cleanup loop.
func RunStateCleanup(ctx context.Context) error {
	return globalStateManager.Run(ctx)
}
