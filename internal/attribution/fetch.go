// Package attribution pulls recent chat transcripts for a scoring
// window and classifies each message as chatter- or fan-authored.
// Messages arrive from the creator's account, so authorship is decided
// by comparing the sender id against the conversation counterpart.
package attribution

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"chatter-insights-go/internal/logger"
	"chatter-insights-go/internal/ofapi"
	"chatter-insights-go/internal/types"
)

const (
	messagesPerChat = 50
	minTextLength   = 3
	// Gaps of two hours or more are treated as unrelated, not a response.
	maxResponseDelay = 7200 * time.Second
)

// ChatSource lists conversations and their messages for a creator account.
type ChatSource interface {
	ListChats(ctx context.Context, accountID, token string, limit int) ([]ofapi.Chat, error)
	ChatMessages(ctx context.Context, accountID, chatID, token string, limit int) ([]ofapi.Message, error)
}

// Result carries everything downstream scoring needs from one window.
type Result struct {
	ChatterMessages []string
	FanMessages     []string
	AllMessages     []types.AttributedMessage
	ResponseDelays  []float64 // seconds, chatter reply after a fan message
}

// Fetch scans up to maxChats most-recently-active conversations and
// attributes messages inside the window. Per-conversation failures are
// skipped; a total source failure returns an empty Result, not an error
// — callers treat "no messages" as a valid outcome and skip the window.
func Fetch(ctx context.Context, src ChatSource, window types.ScoringWindow, maxChats int) Result {
	log := logger.New().WithField("component", "attribution")
	var res Result

	chats, err := src.ListChats(ctx, window.OFAPICreatorID, window.OFAPIToken, maxChats)
	if err != nil {
		log.WithError(err).WithField("creator", window.CreatorName).Warn("chat listing failed, skipping window")
		return res
	}

	for _, chat := range chats {
		msgs, err := src.ChatMessages(ctx, window.OFAPICreatorID, chat.ID, window.OFAPIToken, messagesPerChat)
		if err != nil {
			log.WithError(err).WithField("chat_id", chat.ID).Debug("chat fetch failed, skipping conversation")
			continue
		}

		sort.Slice(msgs, func(i, j int) bool {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		})

		var lastFanMsgTime time.Time

		for _, m := range msgs {
			if m.CreatedAt.Before(window.WindowStart) || m.CreatedAt.After(window.WindowEnd) {
				continue
			}

			text := strings.TrimSpace(StripMarkup(m.Text))
			if len(text) < minTextLength {
				continue
			}

			isChatter := m.FromID != chat.ID

			res.AllMessages = append(res.AllMessages, types.AttributedMessage{
				Text:      text,
				IsChatter: isChatter,
				CreatedAt: m.CreatedAt,
				ChatID:    chat.ID,
				FanName:   chat.FanName,
			})

			if isChatter {
				res.ChatterMessages = append(res.ChatterMessages, text)
				if !lastFanMsgTime.IsZero() {
					delay := m.CreatedAt.Sub(lastFanMsgTime)
					if delay > 0 && delay < maxResponseDelay {
						res.ResponseDelays = append(res.ResponseDelays, delay.Seconds())
					}
				}
				lastFanMsgTime = time.Time{}
			} else {
				res.FanMessages = append(res.FanMessages, text)
				lastFanMsgTime = m.CreatedAt
			}
		}
	}

	return res
}

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	entityPattern = regexp.MustCompile(`&(nbsp|amp|lt|gt|quot|#39);`)
)

// StripMarkup removes HTML tags and common entities from message text.
func StripMarkup(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = entityPattern.ReplaceAllStringFunc(s, func(e string) string {
		switch e {
		case "&nbsp;":
			return " "
		case "&amp;":
			return "&"
		case "&lt;":
			return "<"
		case "&gt;":
			return ">"
		case "&quot;":
			return `"`
		case "&#39;":
			return "'"
		}
		return ""
	})
	return s
}
