package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/dialog"
)

// QueueAction adds a user action to the outbox. Queuing an action id twice
// is a no-op.
func (db *DB) QueueAction(a action.Pending) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO action_outbox (action_id, kind, list_type, folder_id, filter_id, targets, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 'queued', ?, ?)
		ON CONFLICT(action_id) DO NOTHING`,
		a.ID, a.Kind.String(), int(a.List.Type), a.List.FolderID, a.List.FilterID, encodeTargets(a.Targets), now, now)
	return err
}

// MarkActionApplying updates an outbox entry to 'applying' status.
func (db *DB) MarkActionApplying(actionID string) error {
	return db.markAction(actionID, StatusApplying, "")
}

// MarkActionDone updates an outbox entry to 'done' status.
func (db *DB) MarkActionDone(actionID string) error {
	return db.markAction(actionID, StatusDone, "")
}

// MarkActionFailed updates an outbox entry to 'failed' with an error message.
func (db *DB) MarkActionFailed(actionID, errMsg string) error {
	return db.markAction(actionID, StatusFailed, errMsg)
}

func (db *DB) markAction(actionID, status, errMsg string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE action_outbox SET status = ?, error_message = ?, updated_at = ? WHERE action_id = ?`,
		status, errMsg, now, actionID)
	return err
}

// PendingActions returns outbox entries that are still queued, oldest first.
func (db *DB) PendingActions() ([]OutboxEntry, error) {
	return db.queryOutbox(`WHERE status = 'queued' ORDER BY id ASC`)
}

// RecentActions returns the latest outbox entries, newest first.
func (db *DB) RecentActions(limit int) ([]OutboxEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return db.queryOutbox(`ORDER BY id DESC LIMIT ?`, limit)
}

// ActionStatus returns the status of one outbox entry.
func (db *DB) ActionStatus(actionID string) (*OutboxEntry, error) {
	entries, err := db.queryOutbox(`WHERE action_id = ?`, actionID)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

func (db *DB) queryOutbox(tail string, args ...any) ([]OutboxEntry, error) {
	rows, err := db.Query(`
		SELECT id, action_id, kind, list_type, folder_id, filter_id, targets, status, error_message
		FROM action_outbox `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []OutboxEntry
	for rows.Next() {
		var (
			e       OutboxEntry
			kind    string
			lt      int
			targets string
		)
		if err := rows.Scan(&e.Seq, &e.Action.ID, &kind, &lt, &e.Action.List.FolderID, &e.Action.List.FilterID,
			&targets, &e.Status, &e.ErrorMessage); err != nil {
			return nil, err
		}
		if e.Action.Kind, err = action.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("outbox entry %s: %w", e.Action.ID, err)
		}
		if e.Action.Targets, err = decodeTargets(targets); err != nil {
			return nil, fmt.Errorf("outbox entry %s: %w", e.Action.ID, err)
		}
		e.Action.List.Type = dialog.ListType(lt)
		e.Action.FilterID = e.Action.List.FilterID
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func encodeTargets(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func decodeTargets(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad target %q: %w", p, err)
		}
		ids[i] = id
	}
	return ids, nil
}
