package kv_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/vending-machine/internal/config"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/kv"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	t.Run("Should connect to a running server", func(t *testing.T) {
		rdb, err := kv.NewRedisClient(context.Background(), config.Redis{Addr: mr.Addr()})
		require.NoError(t, err)
		defer rdb.Close()

		require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
		got, err := mr.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v", got)
	})

	t.Run("Should fail when server is unreachable", func(t *testing.T) {
		_, err := kv.NewRedisClient(context.Background(), config.Redis{Addr: "127.0.0.1:1"})
		assert.Error(t, err)
	})
}
