package cardcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"psenrich/internal/models"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache, err := New("", "", 0, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	_, ok := cache.Get(ctx, "Get-Process")
	require.False(t, ok)

	cache.Set(ctx, &models.CmdletCard{Name: "Get-Process", Description: "d"})

	// Lookups are case-insensitive, like the card table.
	card, ok := cache.Get(ctx, "get-process")
	require.True(t, ok)
	require.Equal(t, "Get-Process", card.Name)

	cache.Invalidate(ctx, "GET-PROCESS")
	_, ok = cache.Get(ctx, "Get-Process")
	require.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache, err := New("", "", 0, 20*time.Millisecond)
	require.NoError(t, err)

	ctx := context.Background()
	cache.Set(ctx, &models.CmdletCard{Name: "Get-Service", Description: "d"})

	_, ok := cache.Get(ctx, "Get-Service")
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	_, ok = cache.Get(ctx, "Get-Service")
	require.False(t, ok)
}

func TestUnreachableRedisFallsBackToMemory(t *testing.T) {
	// Port 1 refuses connections; the constructor reports the error but
	// still hands back a working in-memory cache.
	cache, err := New("127.0.0.1:1", "", 0, time.Minute)
	require.Error(t, err)
	require.NotNil(t, cache)

	ctx := context.Background()
	cache.Set(ctx, &models.CmdletCard{Name: "Get-Item", Description: "d"})
	_, ok := cache.Get(ctx, "Get-Item")
	require.True(t, ok)
}
