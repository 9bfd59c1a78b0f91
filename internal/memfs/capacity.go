package memfs

import "sync"

// VolumeStats is the statfs view of the volume.
type VolumeStats struct {
	BlockSize   uint64 `json:"blockSize"`
	TotalBlocks uint64 `json:"totalBlocks"`
	FreeBlocks  uint64 `json:"freeBlocks"`
	TotalInodes uint64 `json:"totalInodes"`
	FreeInodes  uint64 `json:"freeInodes"`
	NameMax     uint64 `json:"nameMax"`
	FsID        uint64 `json:"fsid"`
	Flags       uint64 `json:"flags"`
}

// CapacityTracker enforces the fixed block and inode-slot pools.
//
// INVARIANT: freeBlocks <= totalBlocks
// INVARIANT: freeInodes <= totalInodes
type CapacityTracker struct {
	mu sync.Mutex

	blockSize   uint64
	totalBlocks uint64
	freeBlocks  uint64 // GUARDED_BY(mu)
	totalInodes uint64
	freeInodes  uint64 // GUARDED_BY(mu)
}

func NewCapacityTracker(blockSize, totalBlocks, totalInodes uint64) *CapacityTracker {
	return &CapacityTracker{
		blockSize:   blockSize,
		totalBlocks: totalBlocks,
		freeBlocks:  totalBlocks,
		totalInodes: totalInodes,
		freeInodes:  totalInodes,
	}
}

// BlocksFor returns the number of whole blocks needed to hold n bytes.
func (c *CapacityTracker) BlocksFor(n int64) uint64 {
	if n <= 0 {
		return 0
	}
	return (uint64(n) + c.blockSize - 1) / c.blockSize
}

func (c *CapacityTracker) TryReserveBlocks(n uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.freeBlocks < n {
		return ErrNoSpace
	}
	c.freeBlocks -= n
	return nil
}

func (c *CapacityTracker) ReleaseBlocks(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.freeBlocks += n
	if c.freeBlocks > c.totalBlocks {
		c.freeBlocks = c.totalBlocks
	}
}

func (c *CapacityTracker) TryReserveInode() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.freeInodes == 0 {
		return ErrNoSpace
	}
	c.freeInodes--
	return nil
}

func (c *CapacityTracker) ReleaseInode() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.freeInodes < c.totalInodes {
		c.freeInodes++
	}
}

// Stats fills in the block and inode counters of a VolumeStats.
func (c *CapacityTracker) Stats() VolumeStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return VolumeStats{
		BlockSize:   c.blockSize,
		TotalBlocks: c.totalBlocks,
		FreeBlocks:  c.freeBlocks,
		TotalInodes: c.totalInodes,
		FreeInodes:  c.freeInodes,
	}
}
