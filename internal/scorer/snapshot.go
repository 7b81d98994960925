package scorer

import (
	"sort"
	"strings"

	"chatter-insights-go/internal/types"
)

const (
	snapshotMaxChats     = 10
	snapshotMaxMessages  = 20
	snapshotMaxTextChars = 500
	blastMinMessageChars = 20
	blastMinFanCount     = 2
	blastMaxKept         = 10
	blastMaxMessageChars = 300
)

// BuildSnapshot produces the bounded per-conversation excerpt persisted
// with a score so reviewers can see what was graded.
func BuildSnapshot(messages []types.AttributedMessage) []types.ConversationSnapshot {
	groups := make(map[string][]types.AttributedMessage)
	var order []string
	for _, msg := range messages {
		if _, seen := groups[msg.ChatID]; !seen {
			order = append(order, msg.ChatID)
		}
		groups[msg.ChatID] = append(groups[msg.ChatID], msg)
	}

	if len(order) > snapshotMaxChats {
		order = order[:snapshotMaxChats]
	}

	snapshots := make([]types.ConversationSnapshot, 0, len(order))
	for _, chatID := range order {
		msgs := groups[chatID]
		if len(msgs) > snapshotMaxMessages {
			msgs = msgs[:snapshotMaxMessages]
		}
		snap := types.ConversationSnapshot{
			ChatID:  chatID,
			FanName: msgs[0].FanName,
		}
		for _, m := range msgs {
			text := m.Text
			if len(text) > snapshotMaxTextChars {
				text = text[:snapshotMaxTextChars]
			}
			snap.Messages = append(snap.Messages, types.SnapshotMessage{
				Text:      text,
				IsChatter: m.IsChatter,
				CreatedAt: m.CreatedAt,
			})
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// DetectBlasts finds chatter messages sent verbatim to two or more
// distinct conversations — mass-pasted openers and sell lines. Keeps the
// top 10 by distinct recipient count.
func DetectBlasts(messages []types.AttributedMessage) []types.CopyPasteBlast {
	recipients := make(map[string]map[string]struct{})
	original := make(map[string]string)

	for _, m := range messages {
		if !m.IsChatter || len(m.Text) < blastMinMessageChars {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(m.Text))
		if recipients[key] == nil {
			recipients[key] = make(map[string]struct{})
			original[key] = m.Text
		}
		recipients[key][m.ChatID] = struct{}{}
	}

	var blasts []types.CopyPasteBlast
	for key, chats := range recipients {
		if len(chats) < blastMinFanCount {
			continue
		}
		text := original[key]
		if len(text) > blastMaxMessageChars {
			text = text[:blastMaxMessageChars]
		}
		blasts = append(blasts, types.CopyPasteBlast{Message: text, FanCount: len(chats)})
	}

	sort.Slice(blasts, func(i, j int) bool {
		if blasts[i].FanCount != blasts[j].FanCount {
			return blasts[i].FanCount > blasts[j].FanCount
		}
		return blasts[i].Message < blasts[j].Message
	})
	if len(blasts) > blastMaxKept {
		blasts = blasts[:blastMaxKept]
	}
	return blasts
}
