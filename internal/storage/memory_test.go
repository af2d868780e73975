package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "cart:1")
	require.ErrorIs(t, err, ErrNotFound)

	val := []byte(`{"items":[]}`)
	require.NoError(t, m.Set(ctx, "cart:1", val))

	// callers must not be able to mutate stored bytes
	val[0] = 'X'
	got, err := m.Get(ctx, "cart:1")
	require.NoError(t, err)
	require.Equal(t, `{"items":[]}`, string(got))

	require.NoError(t, m.Delete(ctx, "cart:1"))
	_, err = m.Get(ctx, "cart:1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Delete(ctx, "missing"))
}
