package storage

import (
	"context"
	"fmt"

	"protoflow/internal/models"
)

// CorrectionRepo is the append-only log behind the correction learner.
type CorrectionRepo struct {
	db *DB
}

func NewCorrectionRepo(db *DB) *CorrectionRepo {
	return &CorrectionRepo{db: db}
}

func (r *CorrectionRepo) Append(ctx context.Context, c models.Correction) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO corrections (original_text, normalized_key, accepted_value, field_kind, was_reversed)
VALUES ($1, $2, $3, $4, $5)`,
		c.OriginalText, c.NormalizedKey, c.AcceptedValue, c.FieldKind, c.WasReversed)
	if err != nil {
		return fmt.Errorf("insert correction: %w", err)
	}
	return nil
}

// ListAll replays in insertion order so the learner's newest-wins index
// rebuilds exactly.
func (r *CorrectionRepo) ListAll(ctx context.Context) ([]models.Correction, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT correction_id, original_text, normalized_key, accepted_value, field_kind, was_reversed, created_at
FROM corrections
ORDER BY correction_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list corrections: %w", err)
	}
	defer rows.Close()

	out := make([]models.Correction, 0)
	for rows.Next() {
		var c models.Correction
		if err := rows.Scan(&c.CorrectionID, &c.OriginalText, &c.NormalizedKey, &c.AcceptedValue, &c.FieldKind, &c.WasReversed, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan correction: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corrections: %w", err)
	}
	return out, nil
}
