package judge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatter-insights-go/internal/types"
)

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSON(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, ExtractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, ExtractJSON(`Here is the result: {"a":1} hope that helps!`))
	assert.Equal(t, `{"a":{"b":2}}`, ExtractJSON(`prefix {"a":{"b":2}} suffix`))
	assert.Equal(t, "", ExtractJSON("no json here"))
	assert.Equal(t, "", ExtractJSON(""))
	assert.Equal(t, "", ExtractJSON(`{"unbalanced": `))
}

func TestExtractContentFromChoices(t *testing.T) {
	body := `{"choices":[{"message":{"content":"Sure! {\"slaScore\": 20}"}}]}`
	assert.Equal(t, `{"slaScore": 20}`, extractContentFromChoices([]byte(body)))

	assert.Equal(t, "", extractContentFromChoices([]byte(`{"choices":[]}`)))
	assert.Equal(t, "", extractContentFromChoices([]byte(`not json`)))
}

func TestParseJudgmentClampsScores(t *testing.T) {
	j := parseJudgment(map[string]any{
		"slaScore":      float64(99),
		"followupScore": float64(-5),
		"triggerScore":  float64(20),
		"qualityScore":  float64(12),
	})

	assert.Equal(t, 25, j.SLAScore)
	assert.Equal(t, 0, j.FollowupScore)
	assert.Equal(t, 20, j.TriggerScore)
	assert.Equal(t, 12, j.QualityScore)
}

func TestParseJudgmentArchetypeNormalized(t *testing.T) {
	j := parseJudgment(map[string]any{"detectedArchetype": "Yes Babe Robot"})
	assert.Equal(t, types.ArchetypeYesBabeRobot, j.DetectedArchetype)

	j = parseJudgment(map[string]any{"detectedArchetype": "sparkly unicorn"})
	assert.Equal(t, types.ArchetypeUnrecognized, j.DetectedArchetype)

	j = parseJudgment(map[string]any{"detectedArchetype": "null"})
	assert.Equal(t, "", j.DetectedArchetype)
}

func TestParseJudgmentFlags(t *testing.T) {
	j := parseJudgment(map[string]any{
		"copyPasteDetected": true,
		"spamDetected":      true,
		"missedHighIntent":  true,
		"mistakeTags":       []any{"no_cta", "", "slow_reply"},
		"strengthTags":      []any{"built_tension"},
		"notes":             "solid hour",
	})

	assert.True(t, j.CopyPasteDetected)
	assert.True(t, j.SpamDetected)
	assert.True(t, j.MissedHighIntent)
	assert.Equal(t, []string{"no_cta", "slow_reply"}, j.MistakeTags)
	assert.Equal(t, []string{"built_tension"}, j.StrengthTags)
	assert.Equal(t, "solid hour", j.Notes)
}

func TestParseJudgmentQuotes(t *testing.T) {
	quotes := []any{
		map[string]any{"text": "patience baby", "type": "good", "context": "push-pull"},
		map[string]any{"text": "invalid type", "type": "meh"},
		map[string]any{"text": "", "type": "bad"},
		map[string]any{"text": strings.Repeat("q", 200), "type": "ugly", "context": strings.Repeat("c", 150)},
		map[string]any{"text": "third", "type": "great"},
		map[string]any{"text": "fourth", "type": "bad"},
		map[string]any{"text": "fifth never kept", "type": "good"},
	}

	j := parseJudgment(map[string]any{"notableQuotes": quotes})

	require.Len(t, j.NotableQuotes, 4)
	assert.Equal(t, "patience baby", j.NotableQuotes[0].Text)
	assert.Equal(t, types.QuoteGood, j.NotableQuotes[0].Type)
	assert.Len(t, j.NotableQuotes[1].Text, 120)
	assert.Len(t, j.NotableQuotes[1].Context, 100)
	assert.Equal(t, types.QuoteGreat, j.NotableQuotes[2].Type)
}

func TestParseJudgmentMissingFieldsAreZero(t *testing.T) {
	j := parseJudgment(map[string]any{})
	assert.Equal(t, 0, j.SLAScore)
	assert.Equal(t, "", j.DetectedArchetype)
	assert.Empty(t, j.NotableQuotes)
	assert.False(t, j.CopyPasteDetected)
}

func TestBuildPromptIncludesContext(t *testing.T) {
	meta := types.JudgmentContext{
		ChatterEmail:        "anna@agency.com",
		CreatorName:         "Luna",
		AvgResponseTimeSec:  95,
		RobotPhraseCount:    2,
		CreativePhraseCount: 4,
		TotalMessages:       17,
	}

	prompt := BuildPrompt("[14:05] [FAN]: hey", meta)

	assert.Contains(t, prompt, "Luna")
	assert.Contains(t, prompt, "[14:05] [FAN]: hey")
	assert.Contains(t, prompt, "17")
}
