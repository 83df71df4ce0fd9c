package redisfact

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goap-runtime/internal/goap"
)

func newTestMirror(t *testing.T) (*Mirror, *miniredis.Miniredis) {
	t.Helper()
	srv, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewMirror(client, time.Minute), srv
}

func TestMirror_SaveLoadRoundTrip(t *testing.T) {
	mirror, _ := newTestMirror(t)
	ctx := context.Background()

	facts := []goap.Fact{
		{Binding: "weather", Value: "storm", SourceSensor: "WeatherSensor", Timestamp: time.Unix(1700000000, 0).UTC()},
		{Binding: "has_wood", Value: true, SourceSensor: "WoodSensor", Timestamp: time.Unix(1700000001, 0).UTC()},
	}

	require.NoError(t, mirror.Save(ctx, "scout-1", facts))

	got, err := mirror.Load(ctx, "scout-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "weather", got[0].Binding)
	assert.Equal(t, "storm", got[0].Value)
	assert.Equal(t, "has_wood", got[1].Binding)
	assert.Equal(t, true, got[1].Value)
}

func TestMirror_LoadMissingAgentReturnsNil(t *testing.T) {
	mirror, _ := newTestMirror(t)

	got, err := mirror.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMirror_ExpiresAfterTTL(t *testing.T) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mirror := NewMirror(client, time.Second)
	ctx := context.Background()

	require.NoError(t, mirror.Save(ctx, "scout-1", []goap.Fact{{Binding: "weather", Value: "clear"}}))
	srv.FastForward(2 * time.Second)

	got, err := mirror.Load(ctx, "scout-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
