package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "verireg/pkg/domain"
	audit "verireg/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	alice := id.AccountID("alice")
	bob := id.AccountID("bob")
	require.NoError(t, store.Append(ctx, audit.Event{Account: alice, Action: string(audit.EventIdentitySubmitted)}))
	require.NoError(t, store.Append(ctx, audit.Event{Account: bob, Action: string(audit.EventIdentitySubmitted)}))
	require.NoError(t, store.Append(ctx, audit.Event{Account: alice, Action: string(audit.EventIdentityVerified)}))

	t.Run("list by account keeps order", func(t *testing.T) {
		events, err := store.ListByAccount(ctx, alice)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, string(audit.EventIdentitySubmitted), events[0].Action)
		assert.Equal(t, string(audit.EventIdentityVerified), events[1].Action)
	})

	t.Run("list all keeps append order", func(t *testing.T) {
		all, err := store.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, alice, all[0].Account)
		assert.Equal(t, bob, all[1].Account)
		assert.Equal(t, string(audit.EventIdentityVerified), all[2].Action)
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		events, err := store.ListByAccount(ctx, alice)
		require.NoError(t, err)
		events[0].Action = "tampered"

		again, err := store.ListByAccount(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, string(audit.EventIdentitySubmitted), again[0].Action)
	})
}
