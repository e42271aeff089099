package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"protoflow/internal/models"
)

type ProtocolRepo struct {
	db *DB
}

func NewProtocolRepo(db *DB) *ProtocolRepo {
	return &ProtocolRepo{db: db}
}

func (r *ProtocolRepo) UpsertProtocol(ctx context.Context, p models.Protocol) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO protocols (protocol_id, filename, meeting_no, status, fail_reason)
VALUES ($1, $2, NULLIF($3,''), $4, NULLIF($5,''))
ON CONFLICT (protocol_id)
DO UPDATE SET
  filename = EXCLUDED.filename,
  meeting_no = COALESCE(EXCLUDED.meeting_no, protocols.meeting_no),
  status = EXCLUDED.status,
  fail_reason = EXCLUDED.fail_reason,
  updated_at = NOW()`,
		p.ProtocolID, p.Filename, p.MeetingNo, p.Status, p.FailReason,
	)
	if err != nil {
		return fmt.Errorf("upsert protocol: %w", err)
	}
	return nil
}

func (r *ProtocolRepo) UpdateProtocolStatus(ctx context.Context, protocolID, status, failReason string) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE protocols SET status=$2, fail_reason=NULLIF($3,''), updated_at=NOW() WHERE protocol_id=$1`, protocolID, status, failReason)
	if err != nil {
		return fmt.Errorf("update protocol status: %w", err)
	}
	return nil
}

func (r *ProtocolRepo) ListProtocols(ctx context.Context) ([]models.Protocol, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT protocol_id, filename, COALESCE(meeting_no,''), status, COALESCE(fail_reason,''), created_at, updated_at
FROM protocols
ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list protocols: %w", err)
	}
	defer rows.Close()

	out := make([]models.Protocol, 0)
	for rows.Next() {
		var p models.Protocol
		if err := rows.Scan(&p.ProtocolID, &p.Filename, &p.MeetingNo, &p.Status, &p.FailReason, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan protocol: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate protocols: %w", err)
	}
	return out, nil
}

func (r *ProtocolRepo) ListProtocolsByStatus(ctx context.Context, status string) ([]models.Protocol, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT protocol_id, filename, COALESCE(meeting_no,''), status, COALESCE(fail_reason,''), created_at, updated_at
FROM protocols
WHERE status=$1
ORDER BY created_at ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("list protocols by status: %w", err)
	}
	defer rows.Close()
	out := make([]models.Protocol, 0)
	for rows.Next() {
		var p models.Protocol
		if err := rows.Scan(&p.ProtocolID, &p.Filename, &p.MeetingNo, &p.Status, &p.FailReason, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan protocol by status: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindProtocol is GetProtocol with absence as a result instead of an error.
func (r *ProtocolRepo) FindProtocol(ctx context.Context, protocolID string) (models.Protocol, bool, error) {
	p, err := r.GetProtocol(ctx, protocolID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Protocol{}, false, nil
	}
	if err != nil {
		return models.Protocol{}, false, err
	}
	return p, true, nil
}

func (r *ProtocolRepo) GetProtocol(ctx context.Context, protocolID string) (models.Protocol, error) {
	var p models.Protocol
	err := r.db.Pool.QueryRow(ctx, `
SELECT protocol_id, filename, COALESCE(meeting_no,''), status, COALESCE(fail_reason,''), created_at, updated_at
FROM protocols
WHERE protocol_id=$1`, protocolID).
		Scan(&p.ProtocolID, &p.Filename, &p.MeetingNo, &p.Status, &p.FailReason, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Protocol{}, fmt.Errorf("get protocol: %w", err)
	}
	return p, nil
}
