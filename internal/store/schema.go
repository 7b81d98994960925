package store

import (
	"context"
	"fmt"
)

// EnsureSchema creates the tables the scoring engine owns. Shift
// sessions, creators and transactions are written by other services;
// they are created here too so a fresh database can run the full
// pipeline. The unique index on chatter_hourly_scores is the real
// idempotency enforcement point.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS creators (
			id TEXT PRIMARY KEY,
			name TEXT,
			ofapi_creator_id TEXT,
			ofapi_token TEXT,
			telegram_group_id TEXT,
			telegram_id TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS chatter_schedules (
			email TEXT PRIMARY KEY,
			name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS chatter_sessions (
			id BIGSERIAL PRIMARY KEY,
			chatter_email TEXT NOT NULL,
			creator_id TEXT NOT NULL REFERENCES creators(id),
			clock_in TIMESTAMPTZ NOT NULL,
			clock_out TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			creator_id TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			date TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chatter_hourly_scores (
			id BIGSERIAL PRIMARY KEY,
			chatter_email TEXT NOT NULL,
			creator_id TEXT NOT NULL,
			window_start TIMESTAMPTZ NOT NULL,
			window_end TIMESTAMPTZ NOT NULL,
			sla_score INT NOT NULL,
			followup_score INT NOT NULL,
			trigger_score INT NOT NULL,
			quality_score INT NOT NULL,
			revenue_score INT NOT NULL,
			copy_paste_penalty INT NOT NULL,
			missed_trigger_penalty INT NOT NULL,
			spam_penalty INT NOT NULL,
			total_score INT NOT NULL,
			attribution_confidence TEXT NOT NULL,
			detected_archetype TEXT,
			conversations_scanned INT NOT NULL,
			messages_analyzed INT NOT NULL,
			robot_phrase_count INT NOT NULL,
			creative_phrase_count INT NOT NULL,
			ai_notes TEXT,
			mistake_tags JSONB NOT NULL DEFAULT '[]',
			strength_tags JSONB NOT NULL DEFAULT '[]',
			notable_quotes JSONB NOT NULL DEFAULT '[]',
			conversations JSONB,
			copy_paste_blasts JSONB,
			story JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS chatter_hourly_scores_triple
			ON chatter_hourly_scores (chatter_email, creator_id, window_start)`,
		`CREATE TABLE IF NOT EXISTS chatter_profiles (
			chatter_email TEXT NOT NULL,
			creator_id TEXT NOT NULL,
			chatter_name TEXT,
			avg_total_score DOUBLE PRECISION NOT NULL,
			avg_sla_score DOUBLE PRECISION NOT NULL,
			avg_followup_score DOUBLE PRECISION NOT NULL,
			avg_trigger_score DOUBLE PRECISION NOT NULL,
			avg_quality_score DOUBLE PRECISION NOT NULL,
			avg_revenue_score DOUBLE PRECISION NOT NULL,
			recent_scores JSONB NOT NULL DEFAULT '[]',
			improvement_index DOUBLE PRECISION NOT NULL DEFAULT 0,
			archetype_counts JSONB NOT NULL DEFAULT '{}',
			dominant_archetype TEXT,
			top_strengths JSONB NOT NULL DEFAULT '[]',
			top_weaknesses JSONB NOT NULL DEFAULT '[]',
			total_scoring_sessions INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (chatter_email, creator_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
