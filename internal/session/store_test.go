package session

import (
	"testing"
	"time"

	"github.com/bosocmputer/guarantee_letter_gemini/internal/ai"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutGet(t *testing.T) {
	store := NewStore(time.Minute)
	id := NewSessionID()

	state := State{
		Fields:          ai.GuaranteeFields{BankName: "Ajman Bank"},
		GuaranteeType:   ai.TenderBond,
		LastFingerprint: fingerprint.Of([]byte("upload")),
	}
	store.Put(id, state)

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Ajman Bank", got.Fields.BankName)
	assert.Equal(t, ai.TenderBond, got.GuaranteeType)
	assert.Equal(t, state.LastFingerprint, got.LastFingerprint)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestStoreGetMissing(t *testing.T) {
	store := NewStore(time.Minute)
	_, ok := store.Get("nope")
	assert.False(t, ok)
}

func TestStorePutReplacesWholesale(t *testing.T) {
	store := NewStore(time.Minute)
	id := NewSessionID()

	store.Put(id, State{Fields: ai.GuaranteeFields{BankName: "First Bank", Amount: "1000"}})
	store.Put(id, State{Fields: ai.GuaranteeFields{BankName: "Second Bank"}})

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Second Bank", got.Fields.BankName)
	assert.Empty(t, got.Fields.Amount, "replacement must not merge with previous fields")
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(time.Minute)
	id := NewSessionID()
	store.Put(id, State{})
	store.Delete(id)
	_, ok := store.Get(id)
	assert.False(t, ok)
}

func TestStoreCleanupExpiresStaleSessions(t *testing.T) {
	store := NewStore(10 * time.Millisecond)
	id := NewSessionID()
	store.Put(id, State{})

	// Force the entry past its TTL, then run cleanup directly.
	store.mu.Lock()
	state := store.sessions[id]
	state.UpdatedAt = time.Now().Add(-time.Second)
	store.sessions[id] = state
	store.mu.Unlock()

	store.cleanup()

	_, ok := store.Get(id)
	assert.False(t, ok)
}

func TestNewSessionIDUnique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
}
