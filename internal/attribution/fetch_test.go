package attribution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatter-insights-go/internal/ofapi"
	"chatter-insights-go/internal/types"
)

type fakeChatSource struct {
	chats    []ofapi.Chat
	messages map[string][]ofapi.Message
	listErr  error
	msgErr   map[string]error
}

func (f *fakeChatSource) ListChats(ctx context.Context, accountID, token string, limit int) ([]ofapi.Chat, error) {
	return f.chats, f.listErr
}

func (f *fakeChatSource) ChatMessages(ctx context.Context, accountID, chatID, token string, limit int) ([]ofapi.Message, error) {
	if err := f.msgErr[chatID]; err != nil {
		return nil, err
	}
	return f.messages[chatID], nil
}

func fetchWindow() types.ScoringWindow {
	start := time.Date(2026, 8, 27, 14, 0, 0, 0, time.UTC)
	return types.ScoringWindow{
		ChatterEmail:   "anna@agency.com",
		CreatorID:      "c1",
		CreatorName:    "Luna",
		OFAPICreatorID: "acct1",
		OFAPIToken:     "tok",
		WindowStart:    start,
		WindowEnd:      start.Add(time.Hour),
	}
}

func TestFetchAttributesBySender(t *testing.T) {
	w := fetchWindow()
	src := &fakeChatSource{
		chats: []ofapi.Chat{{ID: "fan-7", FanName: "Mike"}},
		messages: map[string][]ofapi.Message{
			"fan-7": {
				{Text: "hey you", FromID: "fan-7", CreatedAt: w.WindowStart.Add(5 * time.Minute)},
				{Text: "hey yourself, missed me?", FromID: "creator-acct", CreatedAt: w.WindowStart.Add(6 * time.Minute)},
			},
		},
	}

	res := Fetch(context.Background(), src, w, 5)

	require.Len(t, res.AllMessages, 2)
	assert.Equal(t, []string{"hey you"}, res.FanMessages)
	assert.Equal(t, []string{"hey yourself, missed me?"}, res.ChatterMessages)
	assert.False(t, res.AllMessages[0].IsChatter)
	assert.True(t, res.AllMessages[1].IsChatter)
	assert.Equal(t, "Mike", res.AllMessages[0].FanName)
}

func TestFetchWindowBoundsAndShortMessages(t *testing.T) {
	w := fetchWindow()
	src := &fakeChatSource{
		chats: []ofapi.Chat{{ID: "fan-1"}},
		messages: map[string][]ofapi.Message{
			"fan-1": {
				{Text: "before the window entirely", FromID: "fan-1", CreatedAt: w.WindowStart.Add(-time.Minute)},
				{Text: "inside the window", FromID: "fan-1", CreatedAt: w.WindowStart.Add(time.Minute)},
				{Text: "ok", FromID: "fan-1", CreatedAt: w.WindowStart.Add(2 * time.Minute)},
				{Text: "after the window entirely", FromID: "fan-1", CreatedAt: w.WindowEnd.Add(time.Minute)},
			},
		},
	}

	res := Fetch(context.Background(), src, w, 5)

	require.Len(t, res.AllMessages, 1)
	assert.Equal(t, "inside the window", res.AllMessages[0].Text)
}

func TestFetchResponseDelays(t *testing.T) {
	w := fetchWindow()
	src := &fakeChatSource{
		chats: []ofapi.Chat{{ID: "fan-1"}},
		messages: map[string][]ofapi.Message{
			"fan-1": {
				{Text: "first fan message", FromID: "fan-1", CreatedAt: w.WindowStart.Add(1 * time.Minute)},
				{Text: "quick chatter reply", FromID: "creator", CreatedAt: w.WindowStart.Add(3 * time.Minute)},
				// Consecutive chatter messages: only the first counts as the response.
				{Text: "another chatter message", FromID: "creator", CreatedAt: w.WindowStart.Add(4 * time.Minute)},
				{Text: "second fan message", FromID: "fan-1", CreatedAt: w.WindowStart.Add(10 * time.Minute)},
				{Text: "slower chatter reply", FromID: "creator", CreatedAt: w.WindowStart.Add(15 * time.Minute)},
			},
		},
	}

	res := Fetch(context.Background(), src, w, 5)

	assert.Equal(t, []float64{120, 300}, res.ResponseDelays)
}

func TestFetchStripsMarkup(t *testing.T) {
	w := fetchWindow()
	src := &fakeChatSource{
		chats: []ofapi.Chat{{ID: "fan-1"}},
		messages: map[string][]ofapi.Message{
			"fan-1": {
				{Text: "<p>hey &amp; hi</p>", FromID: "creator", CreatedAt: w.WindowStart.Add(time.Minute)},
			},
		},
	}

	res := Fetch(context.Background(), src, w, 5)

	require.Len(t, res.ChatterMessages, 1)
	assert.Equal(t, "hey & hi", res.ChatterMessages[0])
}

func TestFetchSkipsFailedConversations(t *testing.T) {
	w := fetchWindow()
	src := &fakeChatSource{
		chats: []ofapi.Chat{{ID: "broken"}, {ID: "fine"}},
		messages: map[string][]ofapi.Message{
			"fine": {
				{Text: "still works", FromID: "fine", CreatedAt: w.WindowStart.Add(time.Minute)},
			},
		},
		msgErr: map[string]error{"broken": errors.New("upstream 502")},
	}

	res := Fetch(context.Background(), src, w, 5)

	require.Len(t, res.AllMessages, 1)
	assert.Equal(t, "still works", res.AllMessages[0].Text)
}

func TestFetchTotalFailureIsEmptyNotError(t *testing.T) {
	w := fetchWindow()
	src := &fakeChatSource{listErr: errors.New("account suspended")}

	res := Fetch(context.Background(), src, w, 5)

	assert.Empty(t, res.AllMessages)
	assert.Empty(t, res.ResponseDelays)
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "hello world", StripMarkup(`<a href="x">hello</a> world`))
	assert.Equal(t, `he said "hi" & 'bye'`, StripMarkup("he said &quot;hi&quot; &amp; &#39;bye&#39;"))
	assert.Equal(t, "a b", StripMarkup("a&nbsp;b"))
}
