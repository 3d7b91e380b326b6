package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySessionStore(t *testing.T) {
	store := NewInMemorySessionStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	page := &Page{}

	session := &Session{Page: page}
	require.NoError(t, store.Put(context.Background(), session))
	require.NotEmpty(t, session.ID)
	assert.Equal(t, now, session.Created)

	now = now.Add(10 * time.Minute)
	got, ok := store.Get(context.Background(), session.ID)
	require.True(t, ok)
	assert.Same(t, page, got.Page)
	assert.Equal(t, now, got.LastSeen)

	store.Delete(context.Background(), session.ID)
	_, ok = store.Get(context.Background(), session.ID)
	assert.False(t, ok)
}

func TestInMemorySessionStoreRequiresPage(t *testing.T) {
	store := NewInMemorySessionStore()
	assert.Error(t, store.Put(context.Background(), nil))
	assert.Error(t, store.Put(context.Background(), &Session{ID: "x"}))
}

func TestInMemorySessionStorePrune(t *testing.T) {
	store := NewInMemorySessionStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Put(context.Background(), &Session{ID: "old", Page: &Page{}}))
	now = now.Add(time.Hour)
	require.NoError(t, store.Put(context.Background(), &Session{ID: "fresh", Page: &Page{}}))

	assert.Zero(t, store.Prune(context.Background(), 0))
	assert.Equal(t, 1, store.Prune(context.Background(), 30*time.Minute))
	assert.Equal(t, 1, store.Len())
	_, ok := store.Get(context.Background(), "fresh")
	assert.True(t, ok)
}
