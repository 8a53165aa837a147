package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/xldb/internal/xlink"
	"github.com/roach88/xldb/internal/xlsql"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInfo(sc rowScanner) (Info, error) {
	var (
		info           Info
		keymap, extras string
	)
	if err := sc.Scan(&info.ID, &info.Name, &keymap, &extras, &info.RecordCount, &info.Seq); err != nil {
		return Info{}, err
	}
	if err := decodeInfo(&info, keymap, extras); err != nil {
		return Info{}, fmt.Errorf("snapshot %s: %w", info.ID, err)
	}
	return info, nil
}

// List returns all snapshots ordered by seq. Returns an empty slice, not
// nil, when there are none.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, keymap, extras, record_count, seq
		FROM snapshots
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return infos, nil
}

// Get returns the description of one snapshot.
func (s *Store) Get(ctx context.Context, id string) (Info, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, keymap, extras, record_count, seq
		FROM snapshots
		WHERE id = ?
	`, id)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Info{}, fmt.Errorf("get snapshot: %w", err)
	}
	return info, nil
}

// Load rebuilds the stored set as a loaded xlink.Store.
func (s *Store) Load(ctx context.Context, id string) (*xlink.Store, error) {
	return s.Query(ctx, id, nil)
}

// Query rebuilds the subset of a snapshot matching pred, filtering in SQL.
// A nil pred returns the whole set. Predicates are checked against the
// snapshot's keys exactly as xlink.Store.Filter checks them.
func (s *Store) Query(ctx context.Context, id string, pred xlink.Predicate) (*xlink.Store, error) {
	info, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	shape, err := xlink.FromRecords(info.KeyMap, info.Extras, nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	where, params, err := xlsql.NewCompiler(shape).Compile(pred)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT fields
		FROM records
		WHERE snapshot_id = ? AND (` + where + `)
		ORDER BY seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, append([]any{id}, params...)...)
	if err != nil {
		return nil, fmt.Errorf("query snapshot %s: %w", id, err)
	}
	defer rows.Close()

	var records []xlink.Record
	for rows.Next() {
		var fields string
		if err := rows.Scan(&fields); err != nil {
			return nil, fmt.Errorf("query snapshot %s: %w", id, err)
		}
		r, err := decodeRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("query snapshot %s: %w", id, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query snapshot %s: %w", id, err)
	}

	st, err := xlink.FromRecords(info.KeyMap, info.Extras, records)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return st, nil
}

// Locate returns the snapshots containing a record with the given identity,
// ordered by seq.
func (s *Store) Locate(ctx context.Context, identity string) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT s.id, s.name, s.keymap, s.extras, s.record_count, s.seq
		FROM snapshots s
		JOIN records r ON r.snapshot_id = s.id
		WHERE r.identity = ?
		ORDER BY s.seq ASC
	`, identity)
	if err != nil {
		return nil, fmt.Errorf("locate record: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("locate record: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("locate record: %w", err)
	}
	return infos, nil
}
