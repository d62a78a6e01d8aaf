package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/bracula/campus/pkg/errors"
)

func newTestManager(abs time.Duration) (*Manager, *MemoryStore, *fakeClock) {
	clk := newFakeClock()
	store := NewMemoryStore(clk.Now)
	m := NewManager(store, Options{IdleTimeout: time.Hour, AbsoluteTimeout: abs, Clock: clk.Now})
	return m, store, clk
}

var ada = Identity{UserID: 7, Email: "ada@uni.edu", FullName: "Ada Lovelace"}

func TestManager_CreateThenResolve(t *testing.T) {
	m, _, _ := newTestManager(0)
	ctx := context.Background()

	token, err := m.Create(ctx, ada)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	s, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, ada, s.Identity)
}

func TestManager_TokensAreUnique(t *testing.T) {
	m, _, _ := newTestManager(0)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := m.Create(context.Background(), ada)
		require.NoError(t, err)
		require.False(t, seen[tok])
		seen[tok] = true
	}
}

func TestManager_StoreIsKeyedByDigest(t *testing.T) {
	m, store, _ := newTestManager(0)
	token, err := m.Create(context.Background(), ada)
	require.NoError(t, err)

	_, ok := store.entries.Load(token)
	assert.False(t, ok, "raw token must not be a store key")
	assert.Equal(t, 1, store.Len())
}

func TestManager_ResolveEmptyTokenIsUnauthenticated(t *testing.T) {
	m, _, _ := newTestManager(0)
	s, err := m.Resolve(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestManager_ResolveRejectsMalformedAndUnknown(t *testing.T) {
	m, _, _ := newTestManager(0)
	for _, tok := range []string{"short", strings.Repeat("z", 64), strings.Repeat("a", 64)} {
		s, err := m.Resolve(context.Background(), tok)
		assert.Nil(t, s)
		assert.True(t, appErr.IsCode(err, appErr.CodeSessionInvalid), tok)
	}
}

func TestManager_IdleExpirySlides(t *testing.T) {
	m, _, clk := newTestManager(0)
	ctx := context.Background()
	token, err := m.Create(ctx, ada)
	require.NoError(t, err)

	clk.Advance(50 * time.Minute)
	_, err = m.Resolve(ctx, token)
	require.NoError(t, err)

	clk.Advance(50 * time.Minute)
	_, err = m.Resolve(ctx, token)
	require.NoError(t, err, "activity should have extended the idle window")

	clk.Advance(61 * time.Minute)
	_, err = m.Resolve(ctx, token)
	assert.True(t, appErr.IsCode(err, appErr.CodeSessionInvalid))
}

func TestManager_AbsoluteExpiry(t *testing.T) {
	m, _, clk := newTestManager(90 * time.Minute)
	ctx := context.Background()
	token, err := m.Create(ctx, ada)
	require.NoError(t, err)

	clk.Advance(45 * time.Minute)
	_, err = m.Resolve(ctx, token)
	require.NoError(t, err)

	clk.Advance(46 * time.Minute)
	_, err = m.Resolve(ctx, token)
	assert.True(t, appErr.IsCode(err, appErr.CodeSessionInvalid))
}

func TestManager_DestroyIsIdempotent(t *testing.T) {
	m, store, _ := newTestManager(0)
	ctx := context.Background()
	token, err := m.Create(ctx, ada)
	require.NoError(t, err)

	require.NoError(t, m.Destroy(ctx, token))
	require.NoError(t, m.Destroy(ctx, token))
	require.NoError(t, m.Destroy(ctx, "garbage"))
	assert.Equal(t, 0, store.Len())

	s, err := m.Resolve(ctx, token)
	assert.Nil(t, s)
	assert.True(t, appErr.IsCode(err, appErr.CodeSessionInvalid))
}

func TestManager_ConcurrentResolveAndDestroy(t *testing.T) {
	m, _, _ := newTestManager(0)
	ctx := context.Background()

	tokens := make([]string, 8)
	for i := range tokens {
		tok, err := m.Create(ctx, Identity{UserID: int64(i + 1)})
		require.NoError(t, err)
		tokens[i] = tok
	}

	var wg sync.WaitGroup
	for i, tok := range tokens {
		for j := 0; j < 20; j++ {
			wg.Add(1)
			go func(uid int64, tok string) {
				defer wg.Done()
				s, err := m.Resolve(ctx, tok)
				if err == nil {
					assert.Equal(t, uid, s.UserID)
				}
			}(int64(i+1), tok)
		}
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.Destroy(ctx, tokens[0])
	}()
	wg.Wait()

	_, err := m.Resolve(ctx, tokens[0])
	assert.True(t, appErr.IsCode(err, appErr.CodeSessionInvalid))
	s, err := m.Resolve(ctx, tokens[1])
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.UserID)
}

func TestMemoryStore_SweepsExpired(t *testing.T) {
	clk := newFakeClock()
	store := NewMemoryStore(clk.Now)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "old", Session{}, time.Minute))
	clk.Advance(2 * time.Minute)
	for i := 0; i < sweepEvery-1; i++ {
		require.NoError(t, store.Create(ctx, "k"+strings.Repeat("x", i), Session{}, time.Hour))
	}
	_, ok := store.entries.Load("old")
	assert.False(t, ok)
}
