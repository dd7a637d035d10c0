package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CollectsFailuresWithoutAborting(t *testing.T) {
	r := New(WithConcurrency(3))

	result, err := r.Run(context.Background(), 10, func(_ context.Context, i int) error {
		if i == 5 {
			return errors.New("classifier unavailable")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 9, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 5, result.Errors[0].Index)
	assert.Contains(t, result.Errors[0].Message, "classifier unavailable")
}

func TestRun_CapsErrorList(t *testing.T) {
	r := New(WithConcurrency(2), WithMaxErrors(3))

	result, err := r.Run(context.Background(), 20, func(context.Context, int) error {
		return errors.New("boom")
	})

	require.NoError(t, err)
	assert.Equal(t, 20, result.Failed)
	assert.Len(t, result.Errors, 3)
	assert.True(t, result.ErrorsTruncated)
}

func TestRun_StopsDispatchOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var processed atomic.Int32
	r := New(WithConcurrency(1))

	_, err := r.Run(ctx, 1000, func(context.Context, int) error {
		if processed.Add(1) == 3 {
			cancel()
		}
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	// Cancellation is checked between items, so a few in-flight items may
	// complete, but nowhere near the full batch.
	assert.Less(t, processed.Load(), int32(10))
}

func TestRun_EmptyBatch(t *testing.T) {
	r := New()
	result, err := r.Run(context.Background(), 0, func(context.Context, int) error {
		t.Fatal("fn must not be called for an empty batch")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
}
