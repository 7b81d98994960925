// Package notify dispatches score cards to creator Telegram chats.
// Strictly fire-and-forget: every failure is logged and swallowed, the
// scoring pipeline never sees or retries a notification error.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"chatter-insights-go/internal/logger"
	"chatter-insights-go/internal/types"
)

const telegramAPIBase = "https://api.telegram.org"

// Store supplies the lookups frequency control needs.
type Store interface {
	RecentScoreCount(ctx context.Context, chatterEmail, creatorID string, since time.Time) (int, error)
	GetProfile(ctx context.Context, chatterEmail, creatorID string) (*types.ChatterProfile, error)
	ChatterName(ctx context.Context, chatterEmail string) (string, error)
	CreatorTelegramChat(ctx context.Context, creatorID string) (string, error)
}

// Telegram sends score cards through the Bot API. A short-TTL cache
// suppresses duplicate sends for the same pair within one window even
// if the driver re-runs (process-local only, no persistence guarantee).
type Telegram struct {
	botToken string
	store    Store
	http     *http.Client
	sent     *gocache.Cache
}

func NewTelegram(botToken string, store Store) *Telegram {
	return &Telegram{
		botToken: botToken,
		store:    store,
		http:     &http.Client{Timeout: 10 * time.Second},
		sent:     gocache.New(time.Hour, 10*time.Minute),
	}
}

// NotifyScore formats and dispatches a score card, subject to frequency
// control: always for extreme scores (<50 or >=85), the first score of a
// shift, or an archetype shift; otherwise skipped.
func (t *Telegram) NotifyScore(ctx context.Context, res *types.ScoringResult) {
	log := logger.New().
		WithWindow(res.Window.ChatterEmail, res.Window.CreatorName, res.Window.WindowStart).
		WithField("component", "notify")

	if t.botToken == "" {
		log.Debug("telegram bot token not configured, skipping notification")
		return
	}

	dedupeKey := fmt.Sprintf("%s|%s|%d", res.Window.ChatterEmail, res.Window.CreatorID, res.Window.WindowStart.Unix())
	if _, dup := t.sent.Get(dedupeKey); dup {
		return
	}

	send, err := t.shouldNotify(ctx, res)
	if err != nil {
		log.WithField("error", err.Error()).Warn("frequency check failed, skipping notification")
		return
	}
	if !send {
		log.Info("skipping notification (frequency control)")
		return
	}

	chatID, err := t.store.CreatorTelegramChat(ctx, res.Window.CreatorID)
	if err != nil || chatID == "" {
		log.Debug("no telegram destination for creator")
		return
	}

	chatterName, _ := t.store.ChatterName(ctx, res.Window.ChatterEmail)
	msg := FormatScoreCard(res, chatterName)

	if err := t.sendMessage(ctx, chatID, msg); err != nil {
		log.WithField("error", err.Error()).Warn("notification send failed")
		return
	}
	t.sent.Set(dedupeKey, struct{}{}, gocache.DefaultExpiration)
	log.Info("score notification sent")
}

func (t *Telegram) shouldNotify(ctx context.Context, res *types.ScoringResult) (bool, error) {
	if res.TotalScore < 50 || res.TotalScore >= 85 {
		return true, nil
	}

	// First score of the shift: nothing persisted in the prior 2 hours
	// besides the record we just wrote.
	twoHoursAgo := time.Now().Add(-2 * time.Hour)
	recent, err := t.store.RecentScoreCount(ctx, res.Window.ChatterEmail, res.Window.CreatorID, twoHoursAgo)
	if err != nil {
		return false, err
	}
	if recent <= 1 {
		return true, nil
	}

	if res.DetectedArchetype != "" {
		p, err := t.store.GetProfile(ctx, res.Window.ChatterEmail, res.Window.CreatorID)
		if err != nil {
			return false, err
		}
		if p != nil && p.DominantArchetype != "" && p.DominantArchetype != res.DetectedArchetype {
			return true, nil
		}
	}

	return false, nil
}

func (t *Telegram) sendMessage(ctx context.Context, chatID, text string) error {
	payload, _ := json.Marshal(map[string]any{
		"chat_id": chatID,
		"text":    text,
	})

	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return nil
}

// FormatScoreCard renders the plain-text score card.
func FormatScoreCard(res *types.ScoringResult, chatterName string) string {
	emoji := "🔴"
	if res.TotalScore >= 85 {
		emoji = "🟢"
	} else if res.TotalScore >= 50 {
		emoji = "🟡"
	}

	displayName := chatterName
	if displayName == "" {
		displayName = strings.SplitN(res.Window.ChatterEmail, "@", 2)[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s CHATTER SCORE: %s\n", emoji, displayName)
	fmt.Fprintf(&b, "Model: %s\n", res.Window.CreatorName)
	fmt.Fprintf(&b, "Score: %d/100\n\n", res.TotalScore)

	fmt.Fprintf(&b, "SLA: %d/25 | Follow-up: %d/20\n", res.SLAScore, res.FollowupScore)
	fmt.Fprintf(&b, "Triggers: %d/20 | Quality: %d/20\n", res.TriggerScore, res.QualityScore)
	fmt.Fprintf(&b, "Revenue: %d/15\n", res.RevenueScore)

	if res.DetectedArchetype != "" {
		label := types.ArchetypeLabels[res.DetectedArchetype]
		if label == "" {
			label = res.DetectedArchetype
		}
		fmt.Fprintf(&b, "\nStyle: %s", label)
	}

	if len(res.StrengthTags) > 0 {
		fmt.Fprintf(&b, "\nStrengths: %s", strings.Join(res.StrengthTags, ", "))
	}
	if len(res.MistakeTags) > 0 {
		fmt.Fprintf(&b, "\nImprove: %s", strings.Join(res.MistakeTags, ", "))
	}
	if res.AINotes != "" {
		fmt.Fprintf(&b, "\n\nNotes: %s", res.AINotes)
	}
	fmt.Fprintf(&b, "\n\nAnalyzed %d messages across %d chats", res.MessagesAnalyzed, res.ConversationsScanned)

	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
