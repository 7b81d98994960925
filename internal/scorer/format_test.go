package scorer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatter-insights-go/internal/types"
)

func mkMsg(chatID, fanName, text string, chatter bool, at time.Time) types.AttributedMessage {
	return types.AttributedMessage{
		Text:      text,
		IsChatter: chatter,
		CreatedAt: at,
		ChatID:    chatID,
		FanName:   fanName,
	}
}

func TestFormatTranscriptEmpty(t *testing.T) {
	assert.Equal(t, "(no messages in window)", FormatTranscript(nil))
}

func TestFormatTranscriptGroupsAndLabels(t *testing.T) {
	at := time.Date(2026, 8, 27, 14, 5, 0, 0, time.UTC)
	msgs := []types.AttributedMessage{
		mkMsg("c1", "Mike", "hey gorgeous", false, at),
		mkMsg("c1", "Mike", "hey you, missed me?", true, at.Add(time.Minute)),
		mkMsg("c2", "", "hi", false, at.Add(2*time.Minute)),
	}

	out := FormatTranscript(msgs)

	assert.Contains(t, out, "--- Chat with Mike ---")
	assert.Contains(t, out, "[14:05] [FAN]: hey gorgeous")
	assert.Contains(t, out, "[14:06] [CHATTER]: hey you, missed me?")
	// Nameless fan gets a positional placeholder.
	assert.Contains(t, out, "--- Chat with Fan #2 ---")
}

func TestFormatTranscriptTruncatesLongLines(t *testing.T) {
	at := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	long := strings.Repeat("x", 400)
	out := FormatTranscript([]types.AttributedMessage{mkMsg("c1", "Ana", long, true, at)})

	require.Contains(t, out, strings.Repeat("x", 200))
	assert.NotContains(t, out, strings.Repeat("x", 201))
}

func TestFormatTranscriptCapsLinesPerChat(t *testing.T) {
	at := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	var msgs []types.AttributedMessage
	for i := 0; i < 40; i++ {
		msgs = append(msgs, mkMsg("c1", "Ana", "short msg", i%2 == 0, at.Add(time.Duration(i)*time.Second)))
	}
	out := FormatTranscript(msgs)
	assert.Equal(t, 30, strings.Count(out, "short msg"))
}

func TestFormatTranscriptHardCap(t *testing.T) {
	at := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	var msgs []types.AttributedMessage
	for i := 0; i < 30; i++ {
		msgs = append(msgs, mkMsg("c"+string(rune('a'+i)), "F", strings.Repeat("y", 199), true, at))
	}
	out := FormatTranscript(msgs)
	assert.LessOrEqual(t, len(out), 6000)
}

func TestBuildSnapshotBounds(t *testing.T) {
	at := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	var msgs []types.AttributedMessage
	for c := 0; c < 12; c++ {
		chatID := "chat" + string(rune('a'+c))
		for i := 0; i < 25; i++ {
			msgs = append(msgs, mkMsg(chatID, "Fan", strings.Repeat("z", 600), false, at))
		}
	}

	snaps := BuildSnapshot(msgs)

	require.Len(t, snaps, 10)
	for _, s := range snaps {
		assert.Len(t, s.Messages, 20)
		for _, m := range s.Messages {
			assert.LessOrEqual(t, len(m.Text), 500)
		}
	}
}

func TestBuildSnapshotPreservesOrderAndRoles(t *testing.T) {
	at := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	msgs := []types.AttributedMessage{
		mkMsg("c1", "Mike", "first", false, at),
		mkMsg("c1", "Mike", "second", true, at.Add(time.Minute)),
	}

	snaps := BuildSnapshot(msgs)

	require.Len(t, snaps, 1)
	assert.Equal(t, "Mike", snaps[0].FanName)
	require.Len(t, snaps[0].Messages, 2)
	assert.Equal(t, "first", snaps[0].Messages[0].Text)
	assert.False(t, snaps[0].Messages[0].IsChatter)
	assert.True(t, snaps[0].Messages[1].IsChatter)
}

func TestDetectBlasts(t *testing.T) {
	at := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	opener := "hey babe, just dropped something special for you"
	msgs := []types.AttributedMessage{
		mkMsg("c1", "A", opener, true, at),
		mkMsg("c2", "B", strings.ToUpper(opener), true, at),
		mkMsg("c3", "C", opener, true, at),
		// Too short to count as a blast candidate.
		mkMsg("c1", "A", "hey babe", true, at),
		mkMsg("c2", "B", "hey babe", true, at),
		// Fan messages never count.
		mkMsg("c1", "A", "wow this looks amazing, tell me more please", false, at),
		mkMsg("c2", "B", "wow this looks amazing, tell me more please", false, at),
	}

	blasts := DetectBlasts(msgs)

	require.Len(t, blasts, 1)
	assert.Equal(t, opener, blasts[0].Message)
	assert.Equal(t, 3, blasts[0].FanCount)
}

func TestDetectBlastsSingleChatNotABlast(t *testing.T) {
	at := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	msg := "same long message repeated to the same fan over and over"
	msgs := []types.AttributedMessage{
		mkMsg("c1", "A", msg, true, at),
		mkMsg("c1", "A", msg, true, at.Add(time.Minute)),
	}
	assert.Empty(t, DetectBlasts(msgs))
}

func TestDetectBlastsOrderingAndCap(t *testing.T) {
	at := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	var msgs []types.AttributedMessage
	for v := 0; v < 12; v++ {
		text := "variant " + string(rune('a'+v)) + " of a long promotional blast"
		fanCount := 2 + v%3
		for c := 0; c < fanCount; c++ {
			msgs = append(msgs, mkMsg("chat"+string(rune('a'+v))+string(rune('0'+c)), "F", text, true, at))
		}
	}

	blasts := DetectBlasts(msgs)

	assert.Len(t, blasts, 10)
	for i := 1; i < len(blasts); i++ {
		assert.GreaterOrEqual(t, blasts[i-1].FanCount, blasts[i].FanCount)
	}
}
