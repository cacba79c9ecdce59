package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/hexcore/internal/canon"
	"github.com/roach88/hexcore/internal/model"
)

// ErrNotFound is returned when no build matches a query.
var ErrNotFound = errors.New("build not found")

const buildColumns = `id, seq, case_name, fingerprint, xs_hash, core_hash, manifest, warnings`

// LatestBuild returns the most recent build of a case.
func (s *Store) LatestBuild(ctx context.Context, caseName string) (Build, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+buildColumns+`
		FROM builds
		WHERE case_name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, caseName)

	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, fmt.Errorf("latest build of %q: %w", caseName, ErrNotFound)
	}
	if err != nil {
		return Build{}, fmt.Errorf("latest build of %q: %w", caseName, err)
	}
	return b, nil
}

// ListBuilds returns builds in seq order. An empty case name lists every case.
//
// Returns an empty slice (not nil) if no builds exist.
func (s *Store) ListBuilds(ctx context.Context, caseName string) ([]Build, error) {
	query := `SELECT ` + buildColumns + ` FROM builds`
	var args []any
	if caseName != "" {
		query += ` WHERE case_name = ?`
		args = append(args, caseName)
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

// CanonicalIDs returns the canonical ID map recorded with a build, keyed by
// kind and ordered by ID.
func (s *Store) CanonicalIDs(ctx context.Context, buildID string) (map[string][]canon.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, id, key
		FROM canonical_ids
		WHERE build_id = ?
		ORDER BY kind ASC, id ASC
	`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query canonical ids: %w", err)
	}
	defer rows.Close()

	out := map[string][]canon.Entry{}
	for rows.Next() {
		var kind string
		var e canon.Entry
		if err := rows.Scan(&kind, &e.ID, &e.Key); err != nil {
			return nil, fmt.Errorf("scan canonical id: %w", err)
		}
		out[kind] = append(out[kind], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate canonical ids: %w", err)
	}
	return out, nil
}

// Diagnostics returns the warnings recorded with a build in emission order.
func (s *Store) Diagnostics(ctx context.Context, buildID string) ([]model.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, subject, message
		FROM diagnostics
		WHERE build_id = ?
		ORDER BY seq ASC
	`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	diags := []model.Diagnostic{}
	for rows.Next() {
		var d model.Diagnostic
		if err := rows.Scan(&d.Code, &d.Subject, &d.Message); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		diags = append(diags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnostics: %w", err)
	}
	return diags, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (Build, error) {
	var b Build
	err := row.Scan(&b.ID, &b.Seq, &b.Case, &b.Fingerprint, &b.XSHash, &b.CoreHash, &b.Manifest, &b.Warnings)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Build{}, err
		}
		return Build{}, fmt.Errorf("scan build: %w", err)
	}
	return b, nil
}
