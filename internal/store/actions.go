package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/dialog"
)

// pinScope names where the pinned order of a list lives: on the dialog row
// for folders, on the membership row for filters.
type pinScope struct {
	table    string
	idColumn string
	column   string
	value    int
}

func scopeOf(key dialog.Key) pinScope {
	if key.Type == dialog.ListFilter {
		return pinScope{table: "filter_dialogs", idColumn: "dialog_id", column: "filter_id", value: key.FilterID}
	}
	return pinScope{table: "dialogs", idColumn: "id", column: "folder_id", value: key.FolderID}
}

// ApplyAction applies a user action to every target in one transaction.
// Reorder actions carry the complete new pinned order as their targets.
func (db *DB) ApplyAction(ctx context.Context, a action.Pending) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if a.Kind == action.Reorder {
		if err := setPinnedOrder(ctx, tx, a.List, a.Targets); err != nil {
			return fmt.Errorf("reorder %s: %w", a.List, err)
		}
	} else {
		for _, id := range a.Targets {
			if err := applyOne(ctx, tx, a.Kind, a.List, id); err != nil {
				return fmt.Errorf("%s dialog %d: %w", a.Kind, id, err)
			}
		}
	}
	return tx.Commit()
}

// CommitPinnedOrder stores the pinned order of a list directly.
func (db *DB) CommitPinnedOrder(ctx context.Context, key dialog.Key, order []int64) error {
	return db.ApplyAction(ctx, action.Pending{Kind: action.Reorder, List: key, Targets: order})
}

func applyOne(ctx context.Context, tx *sql.Tx, kind action.Kind, key dialog.Key, id int64) error {
	now := time.Now().UnixMilli()
	switch kind {
	case action.Pin:
		return pin(ctx, tx, key, id)
	case action.Unpin:
		s := scopeOf(key)
		if err := exec1(ctx, tx, fmt.Sprintf(`UPDATE %s SET pinned_order = 0 WHERE %s = ? AND %s = ?`, s.table, s.idColumn, s.column), id, s.value); err != nil {
			return err
		}
		return renumber(ctx, tx, key)
	case action.Read, action.Clear:
		return exec1(ctx, tx, `UPDATE dialogs SET unread_count = 0, unread_mark = 0, updated_at = ? WHERE id = ?`, now, id)
	case action.Unread:
		return exec1(ctx, tx, `UPDATE dialogs SET unread_mark = 1, updated_at = ? WHERE id = ?`, now, id)
	case action.Mute, action.Unmute:
		return exec1(ctx, tx, `UPDATE dialogs SET muted = ?, updated_at = ? WHERE id = ?`, boolInt(kind == action.Mute), now, id)
	case action.Archive, action.Unarchive:
		folder := dialog.FolderPrimary
		if kind == action.Archive {
			folder = dialog.FolderArchive
		}
		if err := exec1(ctx, tx, `UPDATE dialogs SET folder_id = ?, pinned_order = 0, updated_at = ? WHERE id = ?`, folder, now, id); err != nil {
			return err
		}
		return renumberFolders(ctx, tx)
	case action.Block:
		if err := exec1(ctx, tx, `UPDATE dialogs SET blocked = 1, pinned_order = 0, updated_at = ? WHERE id = ?`, now, id); err != nil {
			return err
		}
		return renumberFolders(ctx, tx)
	case action.Delete:
		if err := exec1(ctx, tx, `DELETE FROM dialogs WHERE id = ?`, id); err != nil {
			return err
		}
		return renumberFolders(ctx, tx)
	}
	return fmt.Errorf("unsupported action %s", kind)
}

// pin puts id at the top of the pinned prefix of key.
func pin(ctx context.Context, tx *sql.Tx, key dialog.Key, id int64) error {
	s := scopeOf(key)
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET pinned_order = pinned_order + 1 WHERE %s = ? AND pinned_order > 0`, s.table, s.column), s.value); err != nil {
		return err
	}
	if err := exec1(ctx, tx, fmt.Sprintf(
		`UPDATE %s SET pinned_order = 1 WHERE %s = ? AND %s = ?`, s.table, s.idColumn, s.column), id, s.value); err != nil {
		return err
	}
	return renumber(ctx, tx, key)
}

// setPinnedOrder assigns 1..n to order. Pinned rows of key missing from
// order keep their relative place after it.
func setPinnedOrder(ctx context.Context, tx *sql.Tx, key dialog.Key, order []int64) error {
	s := scopeOf(key)
	offset := len(order)
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET pinned_order = pinned_order + ? WHERE %s = ? AND pinned_order > 0`, s.table, s.column), offset, s.value); err != nil {
		return err
	}
	for i, id := range order {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(
			`UPDATE %s SET pinned_order = ? WHERE %s = ? AND %s = ? AND pinned_order > 0`, s.table, s.idColumn, s.column),
			i+1, id, s.value); err != nil {
			return err
		}
	}
	return renumber(ctx, tx, key)
}

// renumber rewrites the pinned order of key densely as 1..n.
func renumber(ctx context.Context, tx *sql.Tx, key dialog.Key) error {
	s := scopeOf(key)
	rows, err := tx.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = ? AND pinned_order > 0 ORDER BY pinned_order, %s`, s.idColumn, s.table, s.column, s.idColumn), s.value)
	if err != nil {
		return err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(
			`UPDATE %s SET pinned_order = ? WHERE %s = ? AND %s = ?`, s.table, s.idColumn, s.column), i+1, id, s.value); err != nil {
			return err
		}
	}
	return nil
}

func renumberFolders(ctx context.Context, tx *sql.Tx) error {
	for _, f := range []int{dialog.FolderPrimary, dialog.FolderArchive} {
		if err := renumber(ctx, tx, dialog.FolderKey(f)); err != nil {
			return err
		}
	}
	return nil
}

// exec1 runs a statement that must touch at least one row.
func exec1(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
