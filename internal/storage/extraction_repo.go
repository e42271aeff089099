package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"protoflow/internal/session"
)

// ExtractionRepo stores the draft a pipeline run produced for a protocol.
// Reviewers open their sessions from it.
type ExtractionRepo struct {
	db *DB
}

func NewExtractionRepo(db *DB) *ExtractionRepo {
	return &ExtractionRepo{db: db}
}

func (r *ExtractionRepo) SaveDraft(ctx context.Context, protocolID string, draft session.Draft) error {
	b, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO extractions (protocol_id, draft)
VALUES ($1, $2::jsonb)
ON CONFLICT (protocol_id)
DO UPDATE SET draft = EXCLUDED.draft, updated_at = NOW()`, protocolID, string(b))
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (r *ExtractionRepo) GetDraft(ctx context.Context, protocolID string) (session.Draft, error) {
	var b []byte
	if err := r.db.Pool.QueryRow(ctx, `SELECT draft FROM extractions WHERE protocol_id=$1`, protocolID).Scan(&b); err != nil {
		return session.Draft{}, fmt.Errorf("get draft: %w", err)
	}
	var d session.Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return session.Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}
