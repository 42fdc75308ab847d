package autolink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture(t *testing.T) {
	ctx := context.Background()

	t.Run("resolved settles immediately", func(t *testing.T) {
		f := Resolved(42)
		v, err, settled := f.Settled()
		require.True(t, settled)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("failed settles immediately", func(t *testing.T) {
		f := Failed[int](assert.AnError)
		_, err, settled := f.Settled()
		require.True(t, settled)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("go settles when fn returns", func(t *testing.T) {
		block := make(chan struct{})
		f := Go(func() (string, error) {
			<-block
			return "done", nil
		})

		_, _, settled := f.Settled()
		assert.False(t, settled)

		close(block)
		v, err := f.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, "done", v)

		_, _, settled = f.Settled()
		assert.True(t, settled)
	})

	t.Run("wait honors context cancellation", func(t *testing.T) {
		f := Go(func() (int, error) {
			time.Sleep(time.Minute)
			return 0, nil
		})

		ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		_, err := f.Wait(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestEnrichedAutolinkPaused(t *testing.T) {
	assert.False(t, EnrichedAutolink{}.Paused())
	assert.False(t, EnrichedAutolink{Result: Resolved[*IssueOrPullRequest](nil)}.Paused())

	block := make(chan struct{})
	f := Go(func() (*IssueOrPullRequest, error) {
		<-block
		return nil, nil
	})
	ea := EnrichedAutolink{Result: f}
	assert.True(t, ea.Paused())

	close(block)
	<-f.Done()
	assert.False(t, ea.Paused())
}
