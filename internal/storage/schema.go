package storage

import (
	"context"
	"fmt"
)

// EnsureSchema creates the tables on first start. Idempotent; both binaries
// call it so either can come up against an empty database.
func (d *DB) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS protocols (
  protocol_id TEXT PRIMARY KEY,
  filename TEXT NOT NULL,
  meeting_no TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  fail_reason TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_protocols_status ON protocols(status, updated_at DESC);

CREATE TABLE IF NOT EXISTS persons (
  person_id SERIAL PRIMARY KEY,
  full_name TEXT NOT NULL,
  faction TEXT,
  term_id INT,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  is_staff BOOLEAN NOT NULL DEFAULT FALSE,
  role TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS meetings (
  meeting_id SERIAL PRIMARY KEY,
  meeting_no TEXT NOT NULL,
  meeting_date DATE,
  meeting_type TEXT,
  term_id INT,
  version INT NOT NULL DEFAULT 1,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_meetings_no ON meetings(meeting_no);

CREATE TABLE IF NOT EXISTS attendance (
  meeting_id INT NOT NULL REFERENCES meetings(meeting_id) ON DELETE CASCADE,
  person_id INT NOT NULL REFERENCES persons(person_id) ON DELETE CASCADE,
  is_present BOOLEAN NOT NULL DEFAULT TRUE,
  PRIMARY KEY (meeting_id, person_id)
);

CREATE TABLE IF NOT EXISTS discussions (
  discussion_id SERIAL PRIMARY KEY,
  meeting_id INT NOT NULL REFERENCES meetings(meeting_id) ON DELETE CASCADE,
  issue_no TEXT,
  title TEXT NOT NULL,
  category TEXT,
  discussion_type TEXT,
  decision TEXT,
  yes_count INT NOT NULL DEFAULT 0,
  no_count INT NOT NULL DEFAULT 0,
  abstain_count INT NOT NULL DEFAULT 0,
  missing_count INT NOT NULL DEFAULT 0,
  total_budget NUMERIC,
  agenda_only BOOLEAN NOT NULL DEFAULT FALSE,
  version INT NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_discussions_meeting ON discussions(meeting_id);

CREATE TABLE IF NOT EXISTS funding_sources (
  funding_id SERIAL PRIMARY KEY,
  discussion_id INT NOT NULL REFERENCES discussions(discussion_id) ON DELETE CASCADE,
  source_name TEXT NOT NULL,
  amount NUMERIC NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS votes (
  discussion_id INT NOT NULL REFERENCES discussions(discussion_id) ON DELETE CASCADE,
  person_id INT NOT NULL REFERENCES persons(person_id) ON DELETE CASCADE,
  value TEXT NOT NULL CHECK (value IN ('yes','no','abstain','missing')),
  PRIMARY KEY (discussion_id, person_id)
);

CREATE TABLE IF NOT EXISTS corrections (
  correction_id SERIAL PRIMARY KEY,
  original_text TEXT NOT NULL,
  normalized_key TEXT NOT NULL,
  accepted_value TEXT NOT NULL,
  field_kind TEXT NOT NULL,
  was_reversed BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_corrections_key ON corrections(normalized_key, field_kind);

CREATE TABLE IF NOT EXISTS extractions (
  protocol_id TEXT PRIMARY KEY REFERENCES protocols(protocol_id) ON DELETE CASCADE,
  draft JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS llm_calls (
  call_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  operation TEXT NOT NULL,
  protocol_id TEXT,
  provider_name TEXT NOT NULL,
  model TEXT NOT NULL,
  request_id TEXT,
  status TEXT NOT NULL,
  error_type TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	if _, err := d.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
