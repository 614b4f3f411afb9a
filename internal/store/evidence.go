package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// InsertEvidence persists a legacy evidence placeholder record.
func (s *Store) InsertEvidence(ctx context.Context, evidence *Evidence) error {
	if evidence == nil {
		return errors.New("evidence is nil")
	}
	evidence.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO evidence (
            id, school_id, stage, title, description, status,
            needs_resubmission, is_migrated, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		evidence.ID,
		evidence.SchoolID,
		string(evidence.Stage),
		evidence.Title,
		nullableString(evidence.Description),
		evidence.Status,
		boolToInt(evidence.NeedsResubmission),
		boolToInt(evidence.IsMigrated),
		formatTime(evidence.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert evidence: %w", err)
	}
	return nil
}

// CountEvidence returns the number of evidence records for a school and stage.
func (s *Store) CountEvidence(ctx context.Context, schoolID string, stage Stage) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		"SELECT COUNT(1) FROM evidence WHERE school_id = ? AND stage = ?",
		schoolID, string(stage),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count evidence: %w", err)
	}
	return count, nil
}
