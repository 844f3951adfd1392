package vault

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) (*Vault, *MemoryStore, *time.Time) {
	t.Helper()
	store := NewMemoryStore()
	v := New(store, "test-master-secret")

	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return clock }
	return v, store, &clock
}

func sampleSession() SessionData {
	return SessionData{
		Cookies: []Cookie{{Name: "li_at", Value: "tok123", Domain: ".linkedin.com", HTTPOnly: true}},
		Headers: map[string]string{"User-Agent": "Mozilla/5.0"},
		Token:   "bearer-xyz",
	}
}

func TestStoreAndGetRoundTrip(t *testing.T) {
	v, store, _ := newTestVault(t)
	ctx := context.Background()

	id, err := v.Store(ctx, "user-1", "linkedin", "https://linkedin.com", sampleSession(), map[string]string{"ua": "firefox"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := v.Get(ctx, "user-1", "linkedin")
	require.NoError(t, err)
	assert.Equal(t, "tok123", got.Cookies[0].Value)
	assert.Equal(t, "bearer-xyz", got.Token)

	//ciphertext at rest must not contain the cookie value
	record, err := store.Get(ctx, "user-1", "linkedin")
	require.NoError(t, err)
	assert.NotContains(t, string(record.Ciphertext), "tok123")
}

func TestGetJustBeforeExpiryBumpsLastUsed(t *testing.T) {
	v, store, clock := newTestVault(t)
	ctx := context.Background()

	_, err := v.Store(ctx, "user-1", "linkedin", "", sampleSession(), nil)
	require.NoError(t, err)

	created := *clock
	*clock = created.Add(TTL - time.Second)

	_, err = v.Get(ctx, "user-1", "linkedin")
	require.NoError(t, err)

	record, err := store.Get(ctx, "user-1", "linkedin")
	require.NoError(t, err)
	assert.Equal(t, created.Add(TTL-time.Second), record.LastUsedAt)
}

func TestGetAfterExpiryEvictsRecord(t *testing.T) {
	v, store, clock := newTestVault(t)
	ctx := context.Background()

	_, err := v.Store(ctx, "user-1", "linkedin", "", sampleSession(), nil)
	require.NoError(t, err)

	*clock = clock.Add(TTL + time.Second)

	_, err = v.Get(ctx, "user-1", "linkedin")
	assert.ErrorIs(t, err, ErrNotFound)

	//lazy eviction removed the record itself, not just the read
	_, err = store.Get(ctx, "user-1", "linkedin")
	assert.ErrorIs(t, err, ErrNotFound)

	events := store.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, EventExpired, events[len(events)-1].Type)
}

func TestRefreshExtendsExpiry(t *testing.T) {
	v, store, clock := newTestVault(t)
	ctx := context.Background()

	_, err := v.Store(ctx, "user-1", "workday", "", sampleSession(), nil)
	require.NoError(t, err)

	*clock = clock.Add(20 * time.Hour)
	require.NoError(t, v.Refresh(ctx, "user-1", "workday"))

	record, err := store.Get(ctx, "user-1", "workday")
	require.NoError(t, err)
	assert.Equal(t, clock.Add(TTL), record.ExpiresAt)
}

func TestUpsertReplacesExisting(t *testing.T) {
	v, _, _ := newTestVault(t)
	ctx := context.Background()

	_, err := v.Store(ctx, "user-1", "linkedin", "", sampleSession(), nil)
	require.NoError(t, err)

	fresh := sampleSession()
	fresh.Token = "bearer-second"
	_, err = v.Store(ctx, "user-1", "linkedin", "", fresh, nil)
	require.NoError(t, err)

	got, err := v.Get(ctx, "user-1", "linkedin")
	require.NoError(t, err)
	assert.Equal(t, "bearer-second", got.Token)
}

func TestPerUserKeyIsolation(t *testing.T) {
	v, store, _ := newTestVault(t)
	ctx := context.Background()

	_, err := v.Store(ctx, "user-1", "linkedin", "", sampleSession(), nil)
	require.NoError(t, err)

	//rewrite the record under a different user: user-2's derived key must
	//not open user-1's ciphertext
	record, err := store.Get(ctx, "user-1", "linkedin")
	require.NoError(t, err)
	stolen := *record
	stolen.UserID = "user-2"
	require.NoError(t, store.Upsert(ctx, &stolen))

	_, err = v.Get(ctx, "user-2", "linkedin")
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestDeleteAllRemovesEverySession(t *testing.T) {
	v, _, _ := newTestVault(t)
	ctx := context.Background()

	_, err := v.Store(ctx, "user-1", "linkedin", "", sampleSession(), nil)
	require.NoError(t, err)
	_, err = v.Store(ctx, "user-1", "workday", "", sampleSession(), nil)
	require.NoError(t, err)

	n, err := v.DeleteAll(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, v.HasValid(ctx, "user-1", "linkedin"))
	assert.False(t, v.HasValid(ctx, "user-1", "workday"))
}

func TestCleanupExpired(t *testing.T) {
	v, _, clock := newTestVault(t)
	ctx := context.Background()

	_, err := v.Store(ctx, "user-1", "linkedin", "", sampleSession(), nil)
	require.NoError(t, err)

	*clock = clock.Add(12 * time.Hour)
	_, err = v.Store(ctx, "user-2", "linkedin", "", sampleSession(), nil)
	require.NoError(t, err)

	*clock = clock.Add(13 * time.Hour) //user-1 expired, user-2 still live
	n, err := v.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, v.HasValid(ctx, "user-2", "linkedin"))
}

func TestGetUnknownSession(t *testing.T) {
	v, _, _ := newTestVault(t)

	_, err := v.Get(context.Background(), "nobody", "linkedin")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAuthEventTrail(t *testing.T) {
	v, store, _ := newTestVault(t)
	ctx := context.Background()

	_, err := v.Store(ctx, "user-1", "linkedin", "", sampleSession(), nil)
	require.NoError(t, err)
	require.NoError(t, v.Refresh(ctx, "user-1", "linkedin"))
	require.NoError(t, v.Delete(ctx, "user-1", "linkedin"))
	v.LogEvent(ctx, "user-1", "linkedin", EventLoginRequired, "session missing before submit")
	//login outcomes come from the external login flow through the same trail
	v.LogEvent(ctx, "user-1", "linkedin", EventLoginSuccess, "")

	var types []EventType
	for _, e := range store.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []EventType{EventCreated, EventRefreshed, EventDeleted, EventLoginRequired, EventLoginSuccess}, types)
}
