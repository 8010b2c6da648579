package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/matheus3301/dialogs/internal/dialog"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanDialog(s scanner) (dialog.Dialog, error) {
	var d dialog.Dialog
	var variant int
	err := s.Scan(&d.ID, &variant, &d.Title, &d.FolderID, &d.PinnedOrder,
		&d.UnreadCount, &d.HasUnreadMark, &d.LastActivity, &d.Muted)
	d.Variant = dialog.Variant(variant)
	return d, err
}

// ListDialogs returns the rows of a list in display order: synthetic rows
// first, then the pinned prefix by pinned order, then the rest by last
// activity descending. Blocked dialogs are never listed, and filters only
// list dialogs outside the archive.
func (db *DB) ListDialogs(key dialog.Key) ([]dialog.Dialog, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch key.Type {
	case dialog.ListFilter:
		rows, err = db.Query(`
			SELECT d.id, d.variant, d.title, d.folder_id, fd.pinned_order,
				d.unread_count, d.unread_mark, d.last_activity, d.muted
			FROM filter_dialogs fd
			JOIN dialogs d ON d.id = fd.dialog_id
			WHERE fd.filter_id = ? AND d.blocked = 0 AND d.variant = 0 AND d.folder_id = 0
			ORDER BY fd.pinned_order = 0, fd.pinned_order, d.last_activity DESC, d.id`,
			key.FilterID)
	default:
		rows, err = db.Query(`
			SELECT id, variant, title, folder_id, pinned_order,
				unread_count, unread_mark, last_activity, muted
			FROM dialogs
			WHERE folder_id = ? AND blocked = 0
			ORDER BY variant = 0, pinned_order = 0, pinned_order, last_activity DESC, id`,
			key.FolderID)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", key, err)
	}
	defer func() { _ = rows.Close() }()

	var out []dialog.Dialog
	for rows.Next() {
		d, err := scanDialog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDialog returns a single dialog by id, or nil if it does not exist.
func (db *DB) GetDialog(id int64) (*dialog.Dialog, error) {
	d, err := scanDialog(db.QueryRow(`
		SELECT id, variant, title, folder_id, pinned_order,
			unread_count, unread_mark, last_activity, muted
		FROM dialogs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const upsertDialogSQL = `
	INSERT INTO dialogs (id, variant, title, folder_id, pinned_order, unread_count, unread_mark, last_activity, muted, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		variant = excluded.variant,
		title = excluded.title,
		folder_id = excluded.folder_id,
		pinned_order = excluded.pinned_order,
		unread_count = excluded.unread_count,
		unread_mark = excluded.unread_mark,
		last_activity = MAX(dialogs.last_activity, excluded.last_activity),
		muted = excluded.muted,
		updated_at = excluded.updated_at`

// UpsertDialog inserts or replaces a dialog as reported by the remote
// source. Last activity never moves backwards.
func (db *DB) UpsertDialog(d dialog.Dialog) error {
	return db.UpsertDialogs([]dialog.Dialog{d})
}

// UpsertDialogs upserts a batch of dialogs in one transaction.
func (db *DB) UpsertDialogs(ds []dialog.Dialog) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, d := range ds {
		if _, err := tx.Exec(upsertDialogSQL,
			d.ID, int(d.Variant), d.Title, d.FolderID, d.PinnedOrder, d.UnreadCount,
			boolInt(d.HasUnreadMark), d.LastActivity, boolInt(d.Muted), now); err != nil {
			return fmt.Errorf("upsert dialog %d: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

// RemoveDialog deletes a dialog. Removing a missing dialog is not an error.
func (db *DB) RemoveDialog(id int64) error {
	_, err := db.Exec(`DELETE FROM dialogs WHERE id = ?`, id)
	return err
}

// PinnedCount returns how many dialogs are pinned in a list.
func (db *DB) PinnedCount(key dialog.Key) (int, error) {
	var n int
	var err error
	if key.Type == dialog.ListFilter {
		err = db.QueryRow(`
			SELECT COUNT(*) FROM filter_dialogs fd
			JOIN dialogs d ON d.id = fd.dialog_id
			WHERE fd.filter_id = ? AND fd.pinned_order > 0 AND d.blocked = 0 AND d.folder_id = 0`, key.FilterID).Scan(&n)
	} else {
		err = db.QueryRow(`SELECT COUNT(*) FROM dialogs WHERE folder_id = ? AND pinned_order > 0 AND blocked = 0`, key.FolderID).Scan(&n)
	}
	return n, err
}

// DialogCount returns the total number of stored dialogs.
func (db *DB) DialogCount() (int64, error) {
	var n int64
	err := db.QueryRow(`SELECT COUNT(*) FROM dialogs`).Scan(&n)
	return n, err
}
