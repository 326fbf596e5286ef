package tx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/misfit-go/rng"
)

func TestBuildParallel_IndependentOfWorkers(t *testing.T) {
	var seed [rng.SeedSize]byte
	seed[0] = 0x42

	one, err := BuildParallel(context.Background(), seed, 12, 1)
	require.NoError(t, err)
	many, err := BuildParallel(context.Background(), seed, 12, 4)
	require.NoError(t, err)

	require.Len(t, one, 12)
	require.Len(t, many, 12)
	for i := range one {
		assert.Equal(t, one[i].TxID(), many[i].TxID(), "index %d", i)
	}
	assert.NotEqual(t, one[0].TxID(), one[1].TxID())
}

func TestBuildParallel_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := BuildParallel(ctx, rng.NewSeed(), 5, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildParallel_InvalidCount(t *testing.T) {
	_, err := BuildParallel(context.Background(), rng.NewSeed(), -1, 2)
	assert.ErrorIs(t, err, ErrInvalidParams)

	gs, err := BuildParallel(context.Background(), rng.NewSeed(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, gs)
}
