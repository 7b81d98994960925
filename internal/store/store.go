package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatter-insights-go/internal/types"
)

// Store wraps the Postgres pool. It is the only shared mutable state in
// the scoring engine; idempotency is enforced here via the unique
// constraint on (chatter_email, creator_id, window_start), not by the
// application-level existence check alone.
type Store struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// ShiftSession is one clock-in/out record joined with its creator's
// OFAPI credentials.
type ShiftSession struct {
	ChatterEmail   string
	CreatorID      string
	CreatorName    string
	OFAPICreatorID string
	OFAPIToken     string
	ClockIn        time.Time
	ClockOut       *time.Time
}

// SessionsOverlapping returns shift sessions that overlap the window:
// clock-in at or before windowEnd and clock-out null or at or after
// windowStart.
func (s *Store) SessionsOverlapping(ctx context.Context, windowStart, windowEnd time.Time) ([]ShiftSession, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cs.chatter_email, cs.creator_id,
		       COALESCE(c.name, ''), COALESCE(c.ofapi_creator_id, ''), COALESCE(c.ofapi_token, ''),
		       cs.clock_in, cs.clock_out
		FROM chatter_sessions cs
		JOIN creators c ON c.id = cs.creator_id
		WHERE cs.clock_in <= $2
		  AND (cs.clock_out IS NULL OR cs.clock_out >= $1)`,
		windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []ShiftSession
	for rows.Next() {
		var sess ShiftSession
		if err := rows.Scan(&sess.ChatterEmail, &sess.CreatorID, &sess.CreatorName,
			&sess.OFAPICreatorID, &sess.OFAPIToken, &sess.ClockIn, &sess.ClockOut); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// RevenueInWindow sums transaction amounts for a creator inside the window.
func (s *Store) RevenueInWindow(ctx context.Context, creatorID string, windowStart, windowEnd time.Time) (float64, error) {
	var total float64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE creator_id = $1 AND date >= $2 AND date <= $3`,
		creatorID, windowStart, windowEnd).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return total, nil
}

// HasScore reports whether a score already exists for the triple.
func (s *Store) HasScore(ctx context.Context, chatterEmail, creatorID string, windowStart time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chatter_hourly_scores
			WHERE chatter_email = $1 AND creator_id = $2 AND window_start = $3
		)`, chatterEmail, creatorID, windowStart).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing score: %w", err)
	}
	return exists, nil
}

// InsertScore persists one scoring result in a single write. Returns
// false when the unique constraint fired (a concurrent scorer got there
// first) — callers treat that as the idempotent no-op.
func (s *Store) InsertScore(ctx context.Context, res *types.ScoringResult) (bool, error) {
	mistakeTags, _ := json.Marshal(res.MistakeTags)
	strengthTags, _ := json.Marshal(res.StrengthTags)
	quotes, _ := json.Marshal(res.NotableQuotes)
	conversations, _ := json.Marshal(res.Conversations)
	blasts, _ := json.Marshal(res.CopyPasteBlasts)

	var story []byte
	if res.Story != nil {
		story, _ = json.Marshal(res.Story)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO chatter_hourly_scores (
			chatter_email, creator_id, window_start, window_end,
			sla_score, followup_score, trigger_score, quality_score, revenue_score,
			copy_paste_penalty, missed_trigger_penalty, spam_penalty, total_score,
			attribution_confidence, detected_archetype,
			conversations_scanned, messages_analyzed,
			robot_phrase_count, creative_phrase_count,
			ai_notes, mistake_tags, strength_tags, notable_quotes,
			conversations, copy_paste_blasts, story, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,now())
		ON CONFLICT (chatter_email, creator_id, window_start) DO NOTHING`,
		res.Window.ChatterEmail, res.Window.CreatorID, res.Window.WindowStart, res.Window.WindowEnd,
		res.SLAScore, res.FollowupScore, res.TriggerScore, res.QualityScore, res.RevenueScore,
		res.CopyPastePenalty, res.MissedTriggerPenalty, res.SpamPenalty, res.TotalScore,
		string(res.Window.AttributionConfidence), nullIfEmpty(res.DetectedArchetype),
		res.ConversationsScanned, res.MessagesAnalyzed,
		res.RobotPhraseCount, res.CreativePhraseCount,
		nullIfEmpty(res.AINotes), mistakeTags, strengthTags, quotes,
		conversations, blasts, story)
	if err != nil {
		return false, fmt.Errorf("insert score: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RecentScoreCount counts persisted scores for a pair since a cutoff.
// The notifier uses this for "first score of the shift" detection.
func (s *Store) RecentScoreCount(ctx context.Context, chatterEmail, creatorID string, since time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM chatter_hourly_scores
		WHERE chatter_email = $1 AND creator_id = $2 AND created_at >= $3`,
		chatterEmail, creatorID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count recent scores: %w", err)
	}
	return n, nil
}

// GetProfile loads the long-term profile for a pair, or nil if none exists.
func (s *Store) GetProfile(ctx context.Context, chatterEmail, creatorID string) (*types.ChatterProfile, error) {
	p := types.ChatterProfile{ChatterEmail: chatterEmail, CreatorID: creatorID}
	var recentScores, archetypeCounts, topStrengths, topWeaknesses []byte
	var chatterName, dominant *string

	err := s.pool.QueryRow(ctx, `
		SELECT chatter_name,
		       avg_total_score, avg_sla_score, avg_followup_score,
		       avg_trigger_score, avg_quality_score, avg_revenue_score,
		       recent_scores, improvement_index,
		       archetype_counts, dominant_archetype,
		       top_strengths, top_weaknesses, total_scoring_sessions
		FROM chatter_profiles
		WHERE chatter_email = $1 AND creator_id = $2`,
		chatterEmail, creatorID).Scan(
		&chatterName,
		&p.AvgTotalScore, &p.AvgSLAScore, &p.AvgFollowupScore,
		&p.AvgTriggerScore, &p.AvgQualityScore, &p.AvgRevenueScore,
		&recentScores, &p.ImprovementIndex,
		&archetypeCounts, &dominant,
		&topStrengths, &topWeaknesses, &p.TotalScoringSessions)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if chatterName != nil {
		p.ChatterName = *chatterName
	}
	if dominant != nil {
		p.DominantArchetype = *dominant
	}
	_ = json.Unmarshal(recentScores, &p.RecentScores)
	_ = json.Unmarshal(archetypeCounts, &p.ArchetypeCounts)
	_ = json.Unmarshal(topStrengths, &p.TopStrengths)
	_ = json.Unmarshal(topWeaknesses, &p.TopWeaknesses)
	return &p, nil
}

// UpsertProfile writes the full profile in one transactional statement
// keyed by (chatter_email, creator_id).
func (s *Store) UpsertProfile(ctx context.Context, p *types.ChatterProfile) error {
	recentScores, _ := json.Marshal(p.RecentScores)
	archetypeCounts, _ := json.Marshal(p.ArchetypeCounts)
	topStrengths, _ := json.Marshal(p.TopStrengths)
	topWeaknesses, _ := json.Marshal(p.TopWeaknesses)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO chatter_profiles (
			chatter_email, creator_id, chatter_name,
			avg_total_score, avg_sla_score, avg_followup_score,
			avg_trigger_score, avg_quality_score, avg_revenue_score,
			recent_scores, improvement_index,
			archetype_counts, dominant_archetype,
			top_strengths, top_weaknesses, total_scoring_sessions, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now())
		ON CONFLICT (chatter_email, creator_id) DO UPDATE SET
			chatter_name = EXCLUDED.chatter_name,
			avg_total_score = EXCLUDED.avg_total_score,
			avg_sla_score = EXCLUDED.avg_sla_score,
			avg_followup_score = EXCLUDED.avg_followup_score,
			avg_trigger_score = EXCLUDED.avg_trigger_score,
			avg_quality_score = EXCLUDED.avg_quality_score,
			avg_revenue_score = EXCLUDED.avg_revenue_score,
			recent_scores = EXCLUDED.recent_scores,
			improvement_index = EXCLUDED.improvement_index,
			archetype_counts = EXCLUDED.archetype_counts,
			dominant_archetype = EXCLUDED.dominant_archetype,
			top_strengths = EXCLUDED.top_strengths,
			top_weaknesses = EXCLUDED.top_weaknesses,
			total_scoring_sessions = EXCLUDED.total_scoring_sessions,
			updated_at = now()`,
		p.ChatterEmail, p.CreatorID, nullIfEmpty(p.ChatterName),
		p.AvgTotalScore, p.AvgSLAScore, p.AvgFollowupScore,
		p.AvgTriggerScore, p.AvgQualityScore, p.AvgRevenueScore,
		recentScores, p.ImprovementIndex,
		archetypeCounts, nullIfEmpty(p.DominantArchetype),
		topStrengths, topWeaknesses, p.TotalScoringSessions)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// ChatterName resolves a chatter's display name from the schedule table.
func (s *Store) ChatterName(ctx context.Context, chatterEmail string) (string, error) {
	var name *string
	err := s.pool.QueryRow(ctx, `
		SELECT name FROM chatter_schedules WHERE email = $1 LIMIT 1`,
		chatterEmail).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup chatter name: %w", err)
	}
	if name == nil {
		return "", nil
	}
	return *name, nil
}

// CreatorTelegramChat returns the Telegram destination for a creator:
// the group id when set, otherwise the direct id, otherwise "".
func (s *Store) CreatorTelegramChat(ctx context.Context, creatorID string) (string, error) {
	var groupID, directID *string
	err := s.pool.QueryRow(ctx, `
		SELECT telegram_group_id, telegram_id FROM creators WHERE id = $1`,
		creatorID).Scan(&groupID, &directID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup creator telegram: %w", err)
	}
	if groupID != nil && *groupID != "" {
		return *groupID, nil
	}
	if directID != nil {
		return *directID, nil
	}
	return "", nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
