package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/testutil"
)

func TestSetGetDelete(t *testing.T) {
	UseClient(testutil.NewRedisClient(t, testutil.RedisDBCache))
	t.Cleanup(func() { UseClient(nil) })

	require.NoError(t, Ping(context.Background()))
	require.NoError(t, Set("password_reset:1", "token", time.Minute))

	v, err := Get("password_reset:1")
	require.NoError(t, err)
	assert.Equal(t, "token", v)

	require.NoError(t, Delete("password_reset:1"))
	_, err = Get("password_reset:1")
	assert.ErrorIs(t, err, redis.Nil)
}
