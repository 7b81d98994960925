package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chatter-insights-go/internal/types"
)

// ScoreRow is one persisted hourly score, flattened for report export.
type ScoreRow struct {
	ChatterEmail      string
	CreatorID         string
	CreatorName       string
	WindowStart       time.Time
	TotalScore        int
	SLAScore          int
	FollowupScore     int
	TriggerScore      int
	QualityScore      int
	RevenueScore      int
	CopyPastePenalty  int
	MissedTriggerPen  int
	SpamPenalty       int
	DetectedArchetype string
	MessagesAnalyzed  int
	AINotes           string
	MistakeTags       []string
	StrengthTags      []string
}

// ScoresSince returns hourly scores created at or after the cutoff,
// newest first.
func (s *Store) ScoresSince(ctx context.Context, since time.Time) ([]ScoreRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT h.chatter_email, h.creator_id, COALESCE(c.name, ''),
		       h.window_start, h.total_score,
		       h.sla_score, h.followup_score, h.trigger_score, h.quality_score, h.revenue_score,
		       h.copy_paste_penalty, h.missed_trigger_penalty, h.spam_penalty,
		       COALESCE(h.detected_archetype, ''), h.messages_analyzed, COALESCE(h.ai_notes, ''),
		       h.mistake_tags, h.strength_tags
		FROM chatter_hourly_scores h
		LEFT JOIN creators c ON c.id = h.creator_id
		WHERE h.created_at >= $1
		ORDER BY h.created_at DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var r ScoreRow
		var mistakeTags, strengthTags []byte
		if err := rows.Scan(&r.ChatterEmail, &r.CreatorID, &r.CreatorName,
			&r.WindowStart, &r.TotalScore,
			&r.SLAScore, &r.FollowupScore, &r.TriggerScore, &r.QualityScore, &r.RevenueScore,
			&r.CopyPastePenalty, &r.MissedTriggerPen, &r.SpamPenalty,
			&r.DetectedArchetype, &r.MessagesAnalyzed, &r.AINotes,
			&mistakeTags, &strengthTags); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		_ = json.Unmarshal(mistakeTags, &r.MistakeTags)
		_ = json.Unmarshal(strengthTags, &r.StrengthTags)
		out = append(out, r)
	}
	return out, rows.Err()
}

// AllProfiles returns every chatter profile, highest average first.
func (s *Store) AllProfiles(ctx context.Context) ([]types.ChatterProfile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT chatter_email, creator_id FROM chatter_profiles
		ORDER BY avg_total_score DESC`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}

	type key struct{ email, creator string }
	var keys []key
	for rows.Next() {
		var k key
		if err := rows.Scan(&k.email, &k.creator); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan profile key: %w", err)
		}
		keys = append(keys, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []types.ChatterProfile
	for _, k := range keys {
		p, err := s.GetProfile(ctx, k.email, k.creator)
		if err != nil {
			return nil, err
		}
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}
