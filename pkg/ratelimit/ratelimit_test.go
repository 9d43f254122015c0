package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestTokenLimiter_Wait(t *testing.T) {
	l := NewTokenLimiterWithPeriod(100, 50*time.Millisecond)

	require.NoError(t, l.Wait(context.Background(), 60))
	assert.Equal(t, 40, l.GetRemaining())

	// blocks until the bucket refills
	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), 60))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestTokenLimiter_WaitCancelled(t *testing.T) {
	l := NewTokenLimiterWithPeriod(10, time.Hour)
	require.NoError(t, l.Wait(context.Background(), 10))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx, 5), context.DeadlineExceeded)
}

func TestTokenLimiter_OversizedRequest(t *testing.T) {
	l := NewTokenLimiterWithPeriod(10, time.Hour)
	require.NoError(t, l.Wait(context.Background(), 500))
	assert.Equal(t, 0, l.GetRemaining())
}

func TestLimiterStore_GetLimiter(t *testing.T) {
	s := NewLimiterStore(rate.Limit(1), 0)

	a := s.GetLimiter("carsales.com.au")
	b := s.GetLimiter("carsales.com.au")
	c := s.GetLimiter("gumtree.com.au")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, a.Burst())
}
