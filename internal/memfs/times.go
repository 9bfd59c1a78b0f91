package memfs

import "time"

// TimeMask selects which of an inode's timestamps an operation refreshes.
type TimeMask uint8

const (
	TimeAccess TimeMask = 1 << iota
	TimeChange
	TimeModify

	TimeAll = TimeAccess | TimeChange | TimeModify
)

// touch applies mask at now. LOCKS_REQUIRED(n.mu)
func (n *Inode) touch(now time.Time, mask TimeMask) {
	if mask&TimeAccess != 0 {
		n.atime = now
	}
	if mask&TimeChange != 0 {
		n.ctime = now
	}
	if mask&TimeModify != 0 {
		n.mtime = now
	}
}
