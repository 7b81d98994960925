// Package window turns shift records into scoring windows: one per
// chatter-creator pair that was live during a given hour.
package window

import (
	"context"
	"time"

	"chatter-insights-go/internal/store"
	"chatter-insights-go/internal/types"
)

// SessionSource supplies shift records overlapping a window.
type SessionSource interface {
	SessionsOverlapping(ctx context.Context, windowStart, windowEnd time.Time) ([]store.ShiftSession, error)
}

// Build emits one ScoringWindow per chatter-creator pair with at least
// one overlapping shift. Creators missing OFAPI credentials are skipped
// entirely (no messages can be fetched for them). Attribution confidence
// drops to low when more than one session maps to the same pair — we
// can't tell which chatter sent which message.
func Build(ctx context.Context, src SessionSource, windowStart, windowEnd time.Time) ([]types.ScoringWindow, error) {
	sessions, err := src.SessionsOverlapping(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	type pairKey struct{ email, creatorID string }
	groups := make(map[pairKey][]store.ShiftSession)
	var order []pairKey

	for _, sess := range sessions {
		if sess.OFAPICreatorID == "" || sess.OFAPIToken == "" {
			continue
		}
		key := pairKey{sess.ChatterEmail, sess.CreatorID}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], sess)
	}

	windows := make([]types.ScoringWindow, 0, len(order))
	for _, key := range order {
		pair := groups[key]
		first := pair[0]

		confidence := types.ConfidenceHigh
		if len(pair) > 1 {
			confidence = types.ConfidenceLow
		}

		name := first.CreatorName
		if name == "" {
			name = "Unknown"
		}

		windows = append(windows, types.ScoringWindow{
			ChatterEmail:          first.ChatterEmail,
			CreatorID:             first.CreatorID,
			CreatorName:           name,
			OFAPICreatorID:        first.OFAPICreatorID,
			OFAPIToken:            first.OFAPIToken,
			WindowStart:           windowStart,
			WindowEnd:             windowEnd,
			AttributionConfidence: confidence,
		})
	}
	return windows, nil
}
