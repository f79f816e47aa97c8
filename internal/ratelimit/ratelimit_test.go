package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeWindowLimit(t *testing.T) {
	l := New()

	results := make([]bool, 0, 6)
	for i := 0; i < 6; i++ {
		results = append(results, l.Consume("u1:t1:chat:post", 5, time.Minute))
	}

	assert.Equal(t, []bool{true, true, true, true, true, false}, results)
}

func TestConsumeSlidingWindow(t *testing.T) {
	now := time.Now()
	l := NewWithClock(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		require.True(t, l.Consume("k", 5, time.Minute))
	}
	require.False(t, l.Consume("k", 5, time.Minute))

	// Advance the clock past the window; all recorded entries expire.
	now = now.Add(61 * time.Second)
	assert.True(t, l.Consume("k", 5, time.Minute))
}

func TestRejectedConsumeIsNoOp(t *testing.T) {
	now := time.Now()
	l := NewWithClock(func() time.Time { return now })

	require.True(t, l.Consume("k", 1, time.Minute))

	// Hammer the rejected path; none of these may record a timestamp.
	for i := 0; i < 10; i++ {
		require.False(t, l.Consume("k", 1, time.Minute))
	}

	now = now.Add(61 * time.Second)
	assert.True(t, l.Consume("k", 1, time.Minute),
		"rejected consumes must not extend the window")
}

func TestConsumeIndependentKeys(t *testing.T) {
	l := New()

	require.True(t, l.Consume("a", 1, time.Minute))
	require.False(t, l.Consume("a", 1, time.Minute))
	assert.True(t, l.Consume("b", 1, time.Minute))
}

func TestResetAll(t *testing.T) {
	l := New()

	require.True(t, l.Consume("k", 1, time.Minute))
	require.False(t, l.Consume("k", 1, time.Minute))

	l.ResetAll()
	assert.True(t, l.Consume("k", 1, time.Minute))
}

func TestConsumeConcurrent(t *testing.T) {
	l := New()

	const workers = 50
	var wg sync.WaitGroup
	admitted := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			admitted <- l.Consume("k", 10, time.Minute)
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for ok := range admitted {
		if ok {
			count++
		}
	}
	assert.Equal(t, 10, count)
}

func TestConsumeZeroLimit(t *testing.T) {
	l := New()
	assert.False(t, l.Consume("k", 0, time.Minute))
}
