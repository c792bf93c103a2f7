package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidayx/lumina-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(":memory:", nil)
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testItem(id, itemType, name string) *types.CatalogItem {
	return &types.CatalogItem{
		ID:   id,
		Type: itemType,
		Name: name,
	}
}

func TestStoreNotReadyBeforeInit(t *testing.T) {
	s := New(":memory:", nil)
	assert.False(t, s.Ready())

	_, err := s.GetItemByID(context.Background(), "x")
	assert.ErrorIs(t, err, types.ErrNotReady)

	err = s.UpsertItem(context.Background(), testItem("a", types.TypeApp, "A"))
	assert.ErrorIs(t, err, types.ErrNotReady)
}

func TestStoreInitIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.True(t, s.Ready())
	require.NoError(t, s.Init(context.Background()))
	assert.True(t, s.Ready())
}

func TestStoreInitConcurrent(t *testing.T) {
	s := New(":memory:", nil)
	t.Cleanup(func() { _ = s.Close() })

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Init(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.True(t, s.Ready())
}

func TestStoreCloseThenReinit(t *testing.T) {
	s := New(":memory:", nil)
	require.NoError(t, s.Init(context.Background()))
	require.NoError(t, s.Close())
	assert.False(t, s.Ready())

	_, err := s.Stats(context.Background())
	assert.ErrorIs(t, err, types.ErrNotReady)

	require.NoError(t, s.Init(context.Background()))
	assert.True(t, s.Ready())
	_ = s.Close()
}

func TestStoreInitFailureRetries(t *testing.T) {
	// A directory path is not a usable database file.
	s := New(t.TempDir(), nil)
	err := s.Init(context.Background())
	require.Error(t, err)
	assert.False(t, s.Ready())

	// The failed attempt must not wedge the singleflight group.
	err = s.Init(context.Background())
	require.Error(t, err)
	assert.False(t, s.Ready())
}
