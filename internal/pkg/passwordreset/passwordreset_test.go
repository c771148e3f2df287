package passwordreset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/testutil"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "password_reset:42", Key(42))
}

func TestStore_IssueVerifyConsume(t *testing.T) {
	client := testutil.NewRedisClient(t, testutil.RedisDBCache)
	store := NewStore(client)
	ctx := context.Background()

	token, err := store.Issue(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, token, 43)

	ttl, err := client.TTL(ctx, Key(7)).Result()
	require.NoError(t, err)
	assert.InDelta(t, TokenTTL.Seconds(), ttl.Seconds(), 5)

	assert.NoError(t, store.Verify(ctx, 7, token))
	assert.ErrorIs(t, store.Verify(ctx, 7, "wrong"), ErrInvalidToken)
	assert.ErrorIs(t, store.Verify(ctx, 8, token), ErrInvalidToken)

	second, err := store.Issue(ctx, 7)
	require.NoError(t, err)
	assert.ErrorIs(t, store.Verify(ctx, 7, token), ErrInvalidToken, "a new token replaces the old one")

	require.NoError(t, store.Consume(ctx, 7))
	assert.ErrorIs(t, store.Verify(ctx, 7, second), ErrInvalidToken)
}
