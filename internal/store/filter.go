package store

// UpsertFilter creates or renames a filter.
func (db *DB) UpsertFilter(f Filter) error {
	_, err := db.Exec(`
		INSERT INTO filters (id, title) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title`,
		f.ID, f.Title)
	return err
}

// ListFilters returns all filters by id.
func (db *DB) ListFilters() ([]Filter, error) {
	rows, err := db.Query(`SELECT id, title FROM filters ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Filter
	for rows.Next() {
		var f Filter
		if err := rows.Scan(&f.ID, &f.Title); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// AddToFilter includes a dialog in a filter. Adding it twice is a no-op.
func (db *DB) AddToFilter(filterID int, dialogID int64) error {
	_, err := db.Exec(`
		INSERT INTO filter_dialogs (filter_id, dialog_id) VALUES (?, ?)
		ON CONFLICT(filter_id, dialog_id) DO NOTHING`,
		filterID, dialogID)
	return err
}

// RemoveFromFilter drops a dialog from a filter.
func (db *DB) RemoveFromFilter(filterID int, dialogID int64) error {
	_, err := db.Exec(`DELETE FROM filter_dialogs WHERE filter_id = ? AND dialog_id = ?`, filterID, dialogID)
	return err
}

// FilterEntries returns how many dialogs a filter includes without pinning
// them. Pins share the filter's capacity with these entries.
func (db *DB) FilterEntries(filterID int) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM filter_dialogs WHERE filter_id = ? AND pinned_order = 0`, filterID).Scan(&n)
	return n, err
}

// FiltersOf returns the ids of the filters that include a dialog.
func (db *DB) FiltersOf(dialogID int64) ([]int, error) {
	rows, err := db.Query(`SELECT filter_id FROM filter_dialogs WHERE dialog_id = ? ORDER BY filter_id`, dialogID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
