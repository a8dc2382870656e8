package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/lock"
)

func TestLocalSerialisesSameKey(t *testing.T) {
	l := lock.NewLocal()
	var inside, peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "order:place:1", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
			_ = unlock(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
}

func TestLocalDifferentKeysDoNotBlock(t *testing.T) {
	l := lock.NewLocal()
	unlockA, err := l.Lock(context.Background(), "a", time.Second)
	require.NoError(t, err)
	defer unlockA(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b", time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlockB(context.Background()))
}

func TestLocalHonoursContext(t *testing.T) {
	l := lock.NewLocal()
	unlock, err := l.Lock(context.Background(), "k", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "k", time.Second)
	assert.ErrorIs(t, err, lock.ErrNotAcquired)

	require.NoError(t, unlock(context.Background()))
	assert.NoError(t, unlock(context.Background()), "double unlock is a no-op")

	again, err := l.Lock(context.Background(), "k", time.Second)
	require.NoError(t, err)
	_ = again(context.Background())
}

func TestNewFallsBackToLocal(t *testing.T) {
	_, ok := lock.New(nil).(*lock.Local)
	assert.True(t, ok)
}
