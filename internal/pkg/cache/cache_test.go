package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheJSONRoundTrip(t *testing.T) {
	s := miniredis.RunT(t)
	c := New(redis.NewClient(&redis.Options{Addr: s.Addr()}))
	ctx := context.Background()

	type counts struct {
		Pending int `json:"pending"`
	}

	require.NoError(t, c.SetJSON(ctx, "stats", counts{Pending: 4}, time.Minute))

	var got counts
	require.NoError(t, c.GetJSON(ctx, "stats", &got))
	assert.Equal(t, 4, got.Pending)
	assert.Equal(t, time.Minute, s.TTL("stats"))

	require.NoError(t, c.Delete(ctx, "stats"))
	assert.ErrorIs(t, c.GetJSON(ctx, "stats", &got), redis.Nil)
}
