package memfs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapacityTracker_Blocks(t *testing.T) {
	c := NewCapacityTracker(512, 10, 4)

	require.NoError(t, c.TryReserveBlocks(4))
	require.NoError(t, c.TryReserveBlocks(6))
	assert.ErrorIs(t, c.TryReserveBlocks(1), ErrNoSpace)
	assert.Equal(t, uint64(0), c.Stats().FreeBlocks)

	c.ReleaseBlocks(3)
	assert.Equal(t, uint64(3), c.Stats().FreeBlocks)
	assert.ErrorIs(t, c.TryReserveBlocks(4), ErrNoSpace)
	assert.Equal(t, uint64(3), c.Stats().FreeBlocks, "failed reservation must not change state")

	c.ReleaseBlocks(100)
	assert.Equal(t, uint64(10), c.Stats().FreeBlocks)
}

func TestCapacityTracker_Inodes(t *testing.T) {
	c := NewCapacityTracker(512, 10, 2)

	require.NoError(t, c.TryReserveInode())
	require.NoError(t, c.TryReserveInode())
	assert.ErrorIs(t, c.TryReserveInode(), ErrNoSpace)

	c.ReleaseInode()
	c.ReleaseInode()
	c.ReleaseInode()
	assert.Equal(t, uint64(2), c.Stats().FreeInodes)
}

func TestCapacityTracker_BlocksFor(t *testing.T) {
	c := NewCapacityTracker(512, 10, 2)

	tests := []struct {
		n    int64
		want uint64
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{511, 1},
		{512, 1},
		{513, 2},
		{600, 2},
		{1024, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.BlocksFor(tt.n), "BlocksFor(%d)", tt.n)
	}
}

func TestCapacityTracker_ConcurrentReservations(t *testing.T) {
	c := NewCapacityTracker(512, 100, 0)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 250; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.TryReserveBlocks(1) == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, granted)
	assert.Equal(t, uint64(0), c.Stats().FreeBlocks)
}
