package scorer

import (
	"fmt"
	"strings"

	"chatter-insights-go/internal/types"
)

const (
	maxLinesPerChat   = 30
	maxLineChars      = 200
	maxTranscriptSize = 6000 // hard cap for LLM context
)

// FormatTranscript renders attributed messages for the judgment calls:
// grouped by conversation, one "[HH:MM] [ROLE]: text" line per message.
func FormatTranscript(messages []types.AttributedMessage) string {
	if len(messages) == 0 {
		return "(no messages in window)"
	}

	groups := make(map[string][]types.AttributedMessage)
	var order []string
	for _, msg := range messages {
		if _, seen := groups[msg.ChatID]; !seen {
			order = append(order, msg.ChatID)
		}
		groups[msg.ChatID] = append(groups[msg.ChatID], msg)
	}

	var parts []string
	for i, chatID := range order {
		msgs := groups[chatID]
		fanName := msgs[0].FanName
		if fanName == "" {
			fanName = fmt.Sprintf("Fan #%d", i+1)
		}
		parts = append(parts, fmt.Sprintf("--- Chat with %s ---", fanName))

		lines := msgs
		if len(lines) > maxLinesPerChat {
			lines = lines[:maxLinesPerChat]
		}
		for _, m := range lines {
			role := "FAN"
			if m.IsChatter {
				role = "CHATTER"
			}
			text := m.Text
			if len(text) > maxLineChars {
				text = text[:maxLineChars]
			}
			parts = append(parts, fmt.Sprintf("[%s] [%s]: %s", m.CreatedAt.UTC().Format("15:04"), role, text))
		}
		parts = append(parts, "")
	}

	out := strings.Join(parts, "\n")
	if len(out) > maxTranscriptSize {
		out = out[:maxTranscriptSize]
	}
	return out
}
