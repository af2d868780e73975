package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	addr, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)
	return addr
}

func TestRedis_SetGetDelete(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	r, err := NewRedis(ctx, addr, "", 0, time.Minute)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Get(ctx, "cart:s1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.Set(ctx, "cart:s1", []byte(`{"items":[]}`)))
	got, err := r.Get(ctx, "cart:s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(got))

	ttl, err := r.client.TTL(ctx, r.prefix+"cart:s1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, r.Delete(ctx, "cart:s1"))
	_, err = r.Get(ctx, "cart:s1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedis(ctx, "127.0.0.1:1", "", 0, time.Minute)
	assert.Error(t, err)
}
