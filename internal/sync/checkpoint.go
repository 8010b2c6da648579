package sync

import (
	"strconv"

	"github.com/matheus3301/dialogs/internal/store"
)

const remoteSeqKey = "remote.seq"

// Checkpoint tracks the sequence number of the last remote update applied,
// so replayed pushes are ignored.
type Checkpoint struct {
	db *store.DB
}

// NewCheckpoint creates a checkpoint backed by the sync_state table.
func NewCheckpoint(db *store.DB) *Checkpoint {
	return &Checkpoint{db: db}
}

// Seq returns the last applied sequence number, 0 if none.
func (c *Checkpoint) Seq() (uint64, error) {
	v, err := c.db.SyncState(remoteSeqKey)
	if err != nil || v == "" {
		return 0, err
	}
	return strconv.ParseUint(v, 10, 64)
}

// Stale reports whether seq was already applied. Zero is never stale.
func (c *Checkpoint) Stale(seq uint64) (bool, error) {
	if seq == 0 {
		return false, nil
	}
	last, err := c.Seq()
	if err != nil {
		return false, err
	}
	return seq <= last, nil
}

// Advance records seq as applied.
func (c *Checkpoint) Advance(seq uint64) error {
	if seq == 0 {
		return nil
	}
	return c.db.SetSyncState(remoteSeqKey, strconv.FormatUint(seq, 10))
}
