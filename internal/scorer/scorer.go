// Package scorer orchestrates one scoring pass: fetch and attribute
// messages, compute deterministic signals, blend in the AI judgment,
// persist the hourly record and fan out to profile update and
// notification.
package scorer

import (
	"context"
	"time"

	"chatter-insights-go/internal/attribution"
	"chatter-insights-go/internal/logger"
	"chatter-insights-go/internal/types"
)

const (
	minMessagesForJudgment = 3
	minMessagesForStory    = 8
	penalty                = -10
)

// Store is the persistence surface the orchestrator needs.
type Store interface {
	HasScore(ctx context.Context, chatterEmail, creatorID string, windowStart time.Time) (bool, error)
	RevenueInWindow(ctx context.Context, creatorID string, windowStart, windowEnd time.Time) (float64, error)
	InsertScore(ctx context.Context, res *types.ScoringResult) (bool, error)
}

// Judge is the structured-judgment function for scoring. A nil result
// with nil error means the judge declined (not configured); callers
// fall back to deterministic-only scoring either way.
type Judge interface {
	Score(ctx context.Context, transcript string, meta types.JudgmentContext) (*types.Judgment, error)
}

// StoryAnalyzer is the second, independent judgment call. Nil analysis
// is a valid outcome (soft enrichment).
type StoryAnalyzer interface {
	Analyze(ctx context.Context, transcript string, messageCount int) (*types.StoryAnalysis, error)
}

// ProfileUpdater folds a fresh result into the long-term profile.
type ProfileUpdater interface {
	Update(ctx context.Context, res *types.ScoringResult) error
}

// Notifier dispatches a score card. Implementations must swallow their
// own errors; the pipeline never retries or propagates them.
type Notifier interface {
	NotifyScore(ctx context.Context, res *types.ScoringResult)
}

// Scorer wires the pipeline for one window at a time.
type Scorer struct {
	store    Store
	chats    attribution.ChatSource
	judge    Judge
	story    StoryAnalyzer
	profiles ProfileUpdater
	notifier Notifier
	maxChats int
}

func New(store Store, chats attribution.ChatSource, judge Judge, story StoryAnalyzer, profiles ProfileUpdater, notifier Notifier, maxChats int) *Scorer {
	if maxChats <= 0 {
		maxChats = 5
	}
	return &Scorer{
		store:    store,
		chats:    chats,
		judge:    judge,
		story:    story,
		profiles: profiles,
		notifier: notifier,
		maxChats: maxChats,
	}
}

// ScoreWindow runs the full pass for one window. Returns nil (no error)
// when the window was already scored or had no messages; any failure
// before the persist is logged and also yields nil so one window never
// blocks the rest of the batch.
func (s *Scorer) ScoreWindow(ctx context.Context, window types.ScoringWindow) *types.ScoringResult {
	log := logger.New().
		WithWindow(window.ChatterEmail, window.CreatorName, window.WindowStart).
		WithField("component", "scorer")

	exists, err := s.store.HasScore(ctx, window.ChatterEmail, window.CreatorID, window.WindowStart)
	if err != nil {
		log.WithField("error", err.Error()).Error("existence check failed")
		return nil
	}
	if exists {
		log.Info("score already exists, skipping")
		return nil
	}

	fetched := attribution.Fetch(ctx, s.chats, window, s.maxChats)
	if len(fetched.AllMessages) == 0 {
		log.Info("no messages in window, skipping")
		return nil
	}

	// Deterministic signals
	slaScoreDet := ComputeSLAScore(fetched.ResponseDelays)
	robot := attribution.DetectRobotPhrases(fetched.ChatterMessages)
	copyPasteDetected := DetectCopyPaste(fetched.ChatterMessages)
	spamDetected := DetectSpam(fetched.ChatterMessages)

	revenue, err := s.store.RevenueInWindow(ctx, window.CreatorID, window.WindowStart, window.WindowEnd)
	if err != nil {
		log.WithField("error", err.Error()).Error("revenue lookup failed")
		return nil
	}
	revenueScore := ComputeRevenueScore(revenue)

	// AI judgment, best-effort. Below 3 messages the judgment is
	// unreliable, so AI sub-scores are treated as absent.
	var judgment *types.Judgment
	transcript := ""
	if len(fetched.AllMessages) >= minMessagesForJudgment {
		transcript = FormatTranscript(fetched.AllMessages)
		meta := types.JudgmentContext{
			ChatterEmail:        window.ChatterEmail,
			CreatorName:         window.CreatorName,
			AvgResponseTimeSec:  avg(fetched.ResponseDelays),
			RobotPhraseCount:    robot.RobotCount,
			CreativePhraseCount: robot.CreativeCount,
			TotalMessages:       len(fetched.AllMessages),
		}
		judgment, err = s.judge.Score(ctx, transcript, meta)
		if err != nil {
			log.WithField("error", err.Error()).Warn("judgment call failed, falling back to deterministic scoring")
			judgment = nil
		}
	}

	result := merge(window, fetched, judgment, slaScoreDet, revenueScore, copyPasteDetected, spamDetected, robot)

	result.Conversations = BuildSnapshot(fetched.AllMessages)

	if len(fetched.AllMessages) >= minMessagesForStory {
		if transcript == "" {
			transcript = FormatTranscript(fetched.AllMessages)
		}
		analysis, err := s.story.Analyze(ctx, transcript, len(fetched.AllMessages))
		if err != nil {
			log.WithField("error", err.Error()).Warn("story analysis failed, omitting enrichment")
		} else {
			result.Story = analysis
		}
	}

	result.CopyPasteBlasts = DetectBlasts(fetched.AllMessages)

	// Durability boundary: everything above is recomputable.
	inserted, err := s.store.InsertScore(ctx, result)
	if err != nil {
		log.WithField("error", err.Error()).Error("score persist failed, window lost")
		return nil
	}
	if !inserted {
		log.Info("concurrent scorer already persisted this window")
		return nil
	}

	if err := s.profiles.Update(ctx, result); err != nil {
		log.WithField("error", err.Error()).Error("profile update failed")
	}

	s.notifier.NotifyScore(ctx, result)

	log.WithField("total_score", result.TotalScore).
		WithField("archetype", result.DetectedArchetype).
		Info("window scored")

	return result
}

// merge blends deterministic and AI sub-scores per the fixed rules:
// the judge's SLA overrides the deterministic one when it ran; follow-up,
// trigger and quality come only from the judge; copy-paste and spam
// penalties fire when either side flagged them; missed-trigger only
// from the judge (no deterministic equivalent exists).
func merge(
	window types.ScoringWindow,
	fetched attribution.Result,
	judgment *types.Judgment,
	slaScoreDet, revenueScore int,
	copyPasteDetected, spamDetected bool,
	robot attribution.RobotDetection,
) *types.ScoringResult {
	res := &types.ScoringResult{
		Window:       window,
		SLAScore:     slaScoreDet,
		RevenueScore: revenueScore,
		MistakeTags:  []string{},
		StrengthTags: []string{},
	}

	if judgment != nil {
		res.SLAScore = judgment.SLAScore
		res.FollowupScore = judgment.FollowupScore
		res.TriggerScore = judgment.TriggerScore
		res.QualityScore = judgment.QualityScore
		res.DetectedArchetype = judgment.DetectedArchetype
		res.AINotes = judgment.Notes
		res.NotableQuotes = judgment.NotableQuotes
		if judgment.MistakeTags != nil {
			res.MistakeTags = judgment.MistakeTags
		}
		if judgment.StrengthTags != nil {
			res.StrengthTags = judgment.StrengthTags
		}
		copyPasteDetected = copyPasteDetected || judgment.CopyPasteDetected
		spamDetected = spamDetected || judgment.SpamDetected
		if judgment.MissedHighIntent {
			res.MissedTriggerPenalty = penalty
		}
	}

	if copyPasteDetected {
		res.CopyPastePenalty = penalty
	}
	if spamDetected {
		res.SpamPenalty = penalty
	}

	raw := res.SLAScore + res.FollowupScore + res.TriggerScore + res.QualityScore + res.RevenueScore +
		res.CopyPastePenalty + res.MissedTriggerPenalty + res.SpamPenalty
	res.TotalScore = clampInt(raw, 0, 100)

	chatIDs := make(map[string]struct{})
	for _, m := range fetched.AllMessages {
		chatIDs[m.ChatID] = struct{}{}
	}
	res.ConversationsScanned = len(chatIDs)
	res.MessagesAnalyzed = len(fetched.AllMessages)
	res.RobotPhraseCount = robot.RobotCount
	res.CreativePhraseCount = robot.CreativeCount

	return res
}

func avg(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
