package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/xldb/internal/xlink"
)

// Save stores a copy of st under a new id and returns its description.
// The snapshot and its records are written in one transaction.
func (s *Store) Save(ctx context.Context, name string, st *xlink.Store) (info Info, err error) {
	if st == nil || !st.Loaded() {
		return Info{}, errors.New("snapshot save: store not loaded")
	}
	if name == "" {
		return Info{}, errors.New("snapshot save: empty name")
	}

	keymap, extras, err := encodeInfo(st)
	if err != nil {
		return Info{}, fmt.Errorf("snapshot save: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Info{}, fmt.Errorf("snapshot save: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots`).Scan(&seq); err != nil {
		return Info{}, fmt.Errorf("snapshot save: next seq: %w", err)
	}

	info = Info{
		ID:          s.ids.Generate(),
		Name:        name,
		KeyMap:      st.KeyMap(),
		Extras:      st.Extras(),
		RecordCount: st.Len(),
		Seq:         seq,
	}
	if info.Extras == nil {
		info.Extras = []xlink.Key{}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, keymap, extras, record_count, seq)
		VALUES (?, ?, ?, ?, ?, ?)
	`, info.ID, info.Name, keymap, extras, info.RecordCount, info.Seq)
	if err != nil {
		return Info{}, fmt.Errorf("snapshot save: insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (snapshot_id, seq, identity, fields)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return Info{}, fmt.Errorf("snapshot save: prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range st.All() {
		fields, err := encodeRecord(r)
		if err != nil {
			return Info{}, fmt.Errorf("snapshot save: row %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, info.ID, i, r.Identity(), fields); err != nil {
			return Info{}, fmt.Errorf("snapshot save: row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Info{}, fmt.Errorf("snapshot save: commit: %w", err)
	}
	return info, nil
}

// Delete removes a snapshot and its records.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("snapshot delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("snapshot delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("snapshot delete %s: %w", id, ErrNotFound)
	}
	return nil
}
