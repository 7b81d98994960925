package scorer

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

type fakeStore struct {
	hasScore  bool
	hasErr    error
	revenue   float64
	inserted  []*types.ScoringResult
	insertOK  bool
	insertErr error
}

func (f *fakeStore) HasScore(ctx context.Context, email, creatorID string, ws time.Time) (bool, error) {
	return f.hasScore, f.hasErr
}

func (f *fakeStore) RevenueInWindow(ctx context.Context, creatorID string, ws, we time.Time) (float64, error) {
	return f.revenue, nil
}

func (f *fakeStore) InsertScore(ctx context.Context, res *types.ScoringResult) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	f.inserted = append(f.inserted, res)
	return f.insertOK, nil
}

type fakeChats struct {
	chats    []ofapi.Chat
	messages map[string][]ofapi.Message
	listErr  error
}

func (f *fakeChats) ListChats(ctx context.Context, accountID, token string, limit int) ([]ofapi.Chat, error) {
	return f.chats, f.listErr
}

func (f *fakeChats) ChatMessages(ctx context.Context, accountID, chatID, token string, limit int) ([]ofapi.Message, error) {
	return f.messages[chatID], nil
}

type fakeJudge struct {
	judgment *types.Judgment
	err      error
	called   bool
}

func (f *fakeJudge) Score(ctx context.Context, transcript string, meta types.JudgmentContext) (*types.Judgment, error) {
	f.called = true
	return f.judgment, f.err
}

type fakeStory struct {
	analysis *types.StoryAnalysis
	called   bool
}

func (f *fakeStory) Analyze(ctx context.Context, transcript string, messageCount int) (*types.StoryAnalysis, error) {
	f.called = true
	return f.analysis, nil
}

type fakeProfiles struct{ updated []*types.ScoringResult }

func (f *fakeProfiles) Update(ctx context.Context, res *types.ScoringResult) error {
	f.updated = append(f.updated, res)
	return nil
}

type fakeNotifier struct{ notified []*types.ScoringResult }

func (f *fakeNotifier) NotifyScore(ctx context.Context, res *types.ScoringResult) {
	f.notified = append(f.notified, res)
}

func testWindow() types.ScoringWindow {
	start := time.Date(2026, 8, 27, 14, 0, 0, 0, time.UTC)
	return types.ScoringWindow{
		ChatterEmail:          "anna@agency.com",
		CreatorID:             "creator-1",
		CreatorName:           "Luna",
		OFAPICreatorID:        "acct_1",
		OFAPIToken:            "tok",
		WindowStart:           start,
		WindowEnd:             start.Add(time.Hour),
		AttributionConfidence: types.ConfidenceHigh,
	}
}

// chatFixture returns a chat with 3 chatter messages and 2 fan messages
// inside the window, with sub-2-minute response delays.
func chatFixture(start time.Time) *fakeChats {
	fan := "chat-1"
	msgs := []ofapi.Message{
		{Text: "hey gorgeous, how was your day?", FromID: "creator", CreatedAt: start.Add(1 * time.Minute)},
		{Text: "pretty rough honestly, work was a lot", FromID: fan, CreatedAt: start.Add(2 * time.Minute)},
		{Text: "come here then, let me make it better... what do you need tonight?", FromID: "creator", CreatedAt: start.Add(3 * time.Minute)},
		{Text: "you always know what to say, show me something", FromID: fan, CreatedAt: start.Add(4 * time.Minute)},
		{Text: "patience baby, I made something just for you today", FromID: "creator", CreatedAt: start.Add(5 * time.Minute)},
	}
	return &fakeChats{
		chats:    []ofapi.Chat{{ID: fan, FanName: "Mike"}},
		messages: map[string][]ofapi.Message{fan: msgs},
	}
}

func TestScoreWindowSkipsWhenAlreadyScored(t *testing.T) {
	st := &fakeStore{hasScore: true, insertOK: true}
	sc := New(st, &fakeChats{}, &fakeJudge{}, &fakeStory{}, &fakeProfiles{}, &fakeNotifier{}, 5)

	res := sc.ScoreWindow(context.Background(), testWindow())

	assert.Nil(t, res)
	assert.Empty(t, st.inserted)
}

func TestScoreWindowSkipsWhenNoMessages(t *testing.T) {
	st := &fakeStore{insertOK: true}
	sc := New(st, &fakeChats{listErr: errors.New("upstream down")}, &fakeJudge{}, &fakeStory{}, &fakeProfiles{}, &fakeNotifier{}, 5)

	res := sc.ScoreWindow(context.Background(), testWindow())

	assert.Nil(t, res)
	assert.Empty(t, st.inserted)
}

func TestScoreWindowDeterministicFallback(t *testing.T) {
	w := testWindow()
	st := &fakeStore{revenue: 30, insertOK: true}
	j := &fakeJudge{err: errors.New("gateway timeout")}
	profiles := &fakeProfiles{}
	notifier := &fakeNotifier{}
	sc := New(st, chatFixture(w.WindowStart), j, &fakeStory{}, profiles, notifier, 5)

	res := sc.ScoreWindow(context.Background(), w)

	require.NotNil(t, res)
	assert.True(t, j.called)

	// Delays are all 1 minute, well under the 2-minute band.
	assert.Equal(t, 25, res.SLAScore)
	assert.Equal(t, 10, res.RevenueScore)
	assert.Equal(t, 0, res.FollowupScore)
	assert.Equal(t, 0, res.TriggerScore)
	assert.Equal(t, 0, res.QualityScore)
	assert.Equal(t, 35, res.TotalScore)

	assert.Equal(t, 5, res.MessagesAnalyzed)
	assert.Equal(t, 1, res.ConversationsScanned)

	require.Len(t, st.inserted, 1)
	require.Len(t, profiles.updated, 1)
	require.Len(t, notifier.notified, 1)
}

func TestScoreWindowMergesJudgment(t *testing.T) {
	w := testWindow()
	st := &fakeStore{revenue: 150, insertOK: true}
	j := &fakeJudge{judgment: &types.Judgment{
		SLAScore:          18,
		FollowupScore:     16,
		TriggerScore:      14,
		QualityScore:      17,
		DetectedArchetype: types.ArchetypeTease,
		StrengthTags:      []string{"built_tension"},
		MistakeTags:       []string{"no_cta"},
		MissedHighIntent:  true,
	}}
	sc := New(st, chatFixture(w.WindowStart), j, &fakeStory{}, &fakeProfiles{}, &fakeNotifier{}, 5)

	res := sc.ScoreWindow(context.Background(), w)

	require.NotNil(t, res)
	// Judge SLA replaces the deterministic one.
	assert.Equal(t, 18, res.SLAScore)
	assert.Equal(t, -10, res.MissedTriggerPenalty)
	assert.Equal(t, 0, res.CopyPastePenalty)
	// 18+16+14+17+15-10
	assert.Equal(t, 70, res.TotalScore)
	assert.Equal(t, types.ArchetypeTease, res.DetectedArchetype)
}

func TestScoreWindowTotalNeverNegative(t *testing.T) {
	w := testWindow()
	st := &fakeStore{revenue: 0, insertOK: true}
	j := &fakeJudge{judgment: &types.Judgment{
		CopyPasteDetected: true,
		SpamDetected:      true,
		MissedHighIntent:  true,
	}}
	sc := New(st, chatFixture(w.WindowStart), j, &fakeStory{}, &fakeProfiles{}, &fakeNotifier{}, 5)

	res := sc.ScoreWindow(context.Background(), w)

	require.NotNil(t, res)
	assert.Equal(t, -10, res.CopyPastePenalty)
	assert.Equal(t, -10, res.SpamPenalty)
	assert.Equal(t, -10, res.MissedTriggerPenalty)
	assert.Equal(t, 0, res.TotalScore)
}

func TestScoreWindowStopsWhenInsertLosesRace(t *testing.T) {
	w := testWindow()
	st := &fakeStore{revenue: 0, insertOK: false}
	profiles := &fakeProfiles{}
	notifier := &fakeNotifier{}
	sc := New(st, chatFixture(w.WindowStart), &fakeJudge{}, &fakeStory{}, profiles, notifier, 5)

	res := sc.ScoreWindow(context.Background(), w)

	assert.Nil(t, res)
	assert.Empty(t, profiles.updated, "losing the insert race must not touch the profile")
	assert.Empty(t, notifier.notified)
}

func TestScoreWindowStoryGate(t *testing.T) {
	w := testWindow()
	story := &fakeStory{}
	st := &fakeStore{insertOK: true}
	sc := New(st, chatFixture(w.WindowStart), &fakeJudge{}, story, &fakeProfiles{}, &fakeNotifier{}, 5)

	res := sc.ScoreWindow(context.Background(), w)

	require.NotNil(t, res)
	// Only 5 messages in the fixture; the story analyzer needs 8.
	assert.False(t, story.called)
}
