package verifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "verireg/pkg/domain"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	t.Run("add is idempotent", func(t *testing.T) {
		changed, err := store.Add(ctx, "v1")
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = store.Add(ctx, "v1")
		require.NoError(t, err)
		assert.False(t, changed)

		ok, err := store.Contains(ctx, "v1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("list is sorted", func(t *testing.T) {
		_, err := store.Add(ctx, "a0")
		require.NoError(t, err)
		got, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []id.AccountID{"a0", "v1"}, got)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		changed, err := store.Remove(ctx, "v1")
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = store.Remove(ctx, "v1")
		require.NoError(t, err)
		assert.False(t, changed)

		ok, err := store.Contains(ctx, "v1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown account is not a member", func(t *testing.T) {
		ok, err := store.Contains(ctx, "never-added")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
