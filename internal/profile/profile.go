// Package profile maintains the long-lived per-(chatter, creator)
// aggregate: exponential moving averages of every sub-score, a bounded
// score history with an improvement trend, and the archetype histogram.
package profile

import (
	"context"
	"math"

	"chatter-insights-go/internal/types"
)

// EMA smoothing factor. New samples carry 30% weight.
const alpha = 0.3

const (
	historyCap         = 10
	historyMinForTrend = 4
	topTagCount        = 5
)

// Store is the persistence surface for profiles.
type Store interface {
	GetProfile(ctx context.Context, chatterEmail, creatorID string) (*types.ChatterProfile, error)
	UpsertProfile(ctx context.Context, p *types.ChatterProfile) error
	ChatterName(ctx context.Context, chatterEmail string) (string, error)
}

type Updater struct {
	store Store
}

func NewUpdater(store Store) *Updater {
	return &Updater{store: store}
}

// Update folds a fresh scoring result into the profile and upserts it.
// All EMA components are computed from the same prior snapshot before
// anything is mutated; concurrent updates for the same pair must be
// serialized by the caller (the batch driver processes windows
// sequentially).
func (u *Updater) Update(ctx context.Context, res *types.ScoringResult) error {
	chatterEmail := res.Window.ChatterEmail
	creatorID := res.Window.CreatorID

	existing, err := u.store.GetProfile(ctx, chatterEmail, creatorID)
	if err != nil {
		return err
	}

	next := Fold(existing, res)

	if name, err := u.store.ChatterName(ctx, chatterEmail); err == nil && name != "" {
		next.ChatterName = name
	} else if existing != nil {
		next.ChatterName = existing.ChatterName
	}

	return u.store.UpsertProfile(ctx, next)
}

// Fold computes the next profile state from the previous snapshot and a
// fresh result. Pure; exported for testing.
func Fold(existing *types.ChatterProfile, res *types.ScoringResult) *types.ChatterProfile {
	next := &types.ChatterProfile{
		ChatterEmail: res.Window.ChatterEmail,
		CreatorID:    res.Window.CreatorID,
	}

	if existing == nil {
		// First sample seeds the EMAs directly, no smoothing.
		next.AvgTotalScore = float64(res.TotalScore)
		next.AvgSLAScore = float64(res.SLAScore)
		next.AvgFollowupScore = float64(res.FollowupScore)
		next.AvgTriggerScore = float64(res.TriggerScore)
		next.AvgQualityScore = float64(res.QualityScore)
		next.AvgRevenueScore = float64(res.RevenueScore)
		next.RecentScores = []int{res.TotalScore}
		next.ArchetypeCounts = map[string]int{}
		next.TotalScoringSessions = 1
	} else {
		next.AvgTotalScore = round1(ema(existing.AvgTotalScore, float64(res.TotalScore)))
		next.AvgSLAScore = round1(ema(existing.AvgSLAScore, float64(res.SLAScore)))
		next.AvgFollowupScore = round1(ema(existing.AvgFollowupScore, float64(res.FollowupScore)))
		next.AvgTriggerScore = round1(ema(existing.AvgTriggerScore, float64(res.TriggerScore)))
		next.AvgQualityScore = round1(ema(existing.AvgQualityScore, float64(res.QualityScore)))
		next.AvgRevenueScore = round1(ema(existing.AvgRevenueScore, float64(res.RevenueScore)))

		next.RecentScores = append(append([]int{}, existing.RecentScores...), res.TotalScore)
		if len(next.RecentScores) > historyCap {
			next.RecentScores = next.RecentScores[len(next.RecentScores)-historyCap:]
		}

		next.ArchetypeCounts = make(map[string]int, len(existing.ArchetypeCounts))
		for k, v := range existing.ArchetypeCounts {
			next.ArchetypeCounts[k] = v
		}
		next.ImprovementIndex = existing.ImprovementIndex
		next.TotalScoringSessions = existing.TotalScoringSessions + 1
	}

	if idx, ok := improvementIndex(next.RecentScores); ok {
		next.ImprovementIndex = idx
	}

	if res.DetectedArchetype != "" {
		next.ArchetypeCounts[res.DetectedArchetype]++
	}
	next.DominantArchetype = dominant(next.ArchetypeCounts)

	// Top lists are a snapshot of the latest round, not a cumulative tally.
	next.TopStrengths = firstN(res.StrengthTags, topTagCount)
	next.TopWeaknesses = firstN(res.MistakeTags, topTagCount)

	return next
}

func ema(prev, curr float64) float64 {
	return alpha*curr + (1-alpha)*prev
}

// improvementIndex is the mean of the newer half of the history minus
// the mean of the older half (smaller older half on odd lengths),
// rounded to one decimal. Needs at least 4 samples.
func improvementIndex(history []int) (float64, bool) {
	if len(history) < historyMinForTrend {
		return 0, false
	}
	mid := len(history) / 2
	older := history[:mid]
	newer := history[mid:]
	return round1(mean(newer) - mean(older)), true
}

func mean(xs []int) float64 {
	var sum int
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func dominant(counts map[string]int) string {
	best := ""
	bestCount := 0
	for archetype, count := range counts {
		if count > bestCount || (count == bestCount && best != "" && archetype < best) {
			best = archetype
			bestCount = count
		}
	}
	return best
}

func firstN(xs []string, n int) []string {
	if len(xs) > n {
		xs = xs[:n]
	}
	return append([]string{}, xs...)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
