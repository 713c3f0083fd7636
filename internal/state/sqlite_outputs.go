package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const outputColumns = `dir, path, source_hash, output_hash, targets, run_id, generated_at`

// GetOutput retrieves the recorded output of a package directory.
// It returns nil without error when nothing is recorded.
func (s *SQLiteStore) GetOutput(ctx context.Context, dir string) (*Output, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+outputColumns+` FROM outputs WHERE dir = ?`, dir)
	out, err := scanOutput(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get output: %w", err)
	}
	return out, nil
}

// RecordOutput stores or replaces the output of a package directory.
func (s *SQLiteStore) RecordOutput(ctx context.Context, out *Output) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	out.GeneratedAt = time.Now().UTC()
	var runID sql.NullString
	if out.RunID != "" {
		runID = sql.NullString{String: out.RunID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outputs (`+outputColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (dir) DO UPDATE SET
			path = excluded.path,
			source_hash = excluded.source_hash,
			output_hash = excluded.output_hash,
			targets = excluded.targets,
			run_id = excluded.run_id,
			generated_at = excluded.generated_at`,
		out.Dir, out.Path, out.SourceHash, out.OutputHash,
		strings.Join(out.Targets, ","), runID, out.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record output: %w", err)
	}
	return nil
}

// DeleteOutput removes the record of a package directory.
func (s *SQLiteStore) DeleteOutput(ctx context.Context, dir string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM outputs WHERE dir = ?`, dir); err != nil {
		return fmt.Errorf("failed to delete output: %w", err)
	}
	return nil
}

// ListOutputs returns all recorded outputs ordered by directory.
func (s *SQLiteStore) ListOutputs(ctx context.Context) ([]*Output, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+outputColumns+` FROM outputs ORDER BY dir`)
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}
	defer rows.Close()

	var outputs []*Output
	for rows.Next() {
		out, err := scanOutput(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan output: %w", err)
		}
		outputs = append(outputs, out)
	}
	return outputs, rows.Err()
}

func scanOutput(row scanner) (*Output, error) {
	out := &Output{}
	var targets string
	var runID sql.NullString

	if err := row.Scan(&out.Dir, &out.Path, &out.SourceHash, &out.OutputHash,
		&targets, &runID, &out.GeneratedAt); err != nil {
		return nil, err
	}

	if targets != "" {
		out.Targets = strings.Split(targets, ",")
	}
	out.RunID = runID.String
	return out, nil
}
