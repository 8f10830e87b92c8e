package metadata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerWait(t *testing.T) {
	t.Run("first call is immediate", func(t *testing.T) {
		p := NewPacer(200 * time.Millisecond)

		start := time.Now()
		err := p.Wait(context.Background())
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("second call waits out the interval", func(t *testing.T) {
		p := NewPacer(100 * time.Millisecond)

		require.NoError(t, p.Wait(context.Background()))
		start := time.Now()
		require.NoError(t, p.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("cancellation interrupts the wait", func(t *testing.T) {
		p := NewPacer(10 * time.Second)

		require.NoError(t, p.Wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := p.Wait(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}
