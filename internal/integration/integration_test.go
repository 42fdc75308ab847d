package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget(t *testing.T) {
	t.Run("nil budget allows everything", func(t *testing.T) {
		var b *Budget
		assert.NoError(t, b.Allow())
		assert.NoError(t, b.Allow())
	})

	t.Run("exhausted budget rejects", func(t *testing.T) {
		b := NewBudget(0.001, 2)
		require.NoError(t, b.Allow())
		require.NoError(t, b.Allow())
		assert.ErrorIs(t, b.Allow(), ErrRateLimited)
	})
}
