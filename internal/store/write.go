package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/roach88/hexcore/internal/build"
	"github.com/roach88/hexcore/internal/canon"
)

// Build is one recorded pipeline run.
type Build struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Case        string `json:"case"`
	Fingerprint string `json:"fingerprint"`
	XSHash      string `json:"xs_hash"`
	CoreHash    string `json:"core_hash"`
	Manifest    string `json:"-"` // canonical JSON
	Warnings    int    `json:"warnings"`
}

// RecordBuild appends a pipeline result to the ledger together with its
// canonical ID map and diagnostics. The build ID and seq are assigned here.
//
// The manifest is stored as canonical JSON so equal cores store equal bytes.
func (s *Store) RecordBuild(ctx context.Context, res *build.Result) (Build, error) {
	manifest, err := canon.MarshalCanonical(res.Manifest)
	if err != nil {
		return Build{}, fmt.Errorf("record build: marshal manifest: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Build{}, fmt.Errorf("record build: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM builds`).Scan(&seq); err != nil {
		return Build{}, fmt.Errorf("record build: next seq: %w", err)
	}

	b := Build{
		ID:          s.newID(),
		Seq:         seq,
		Case:        res.Case,
		Fingerprint: res.Fingerprint,
		XSHash:      res.XSHash,
		CoreHash:    res.CoreHash,
		Manifest:    string(manifest),
		Warnings:    len(res.Diagnostics),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO builds
		(id, seq, case_name, fingerprint, xs_hash, core_hash, manifest, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID,
		b.Seq,
		b.Case,
		b.Fingerprint,
		b.XSHash,
		b.CoreHash,
		b.Manifest,
		b.Warnings,
	)
	if err != nil {
		return Build{}, fmt.Errorf("record build: %w", err)
	}

	kinds := make([]string, 0, len(res.IDs))
	for kind := range res.IDs {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		for _, e := range res.IDs[kind] {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO canonical_ids (build_id, kind, id, key)
				VALUES (?, ?, ?, ?)
			`, b.ID, kind, e.ID, e.Key)
			if err != nil {
				return Build{}, fmt.Errorf("record build: canonical id %s %d: %w", kind, e.ID, err)
			}
		}
	}

	for i, d := range res.Diagnostics {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO diagnostics (build_id, seq, code, subject, message)
			VALUES (?, ?, ?, ?, ?)
		`, b.ID, i, d.Code, d.Subject, d.Message)
		if err != nil {
			return Build{}, fmt.Errorf("record build: diagnostic %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Build{}, fmt.Errorf("record build: commit: %w", err)
	}
	return b, nil
}
