package types

// QuoteType categorizes a notable chatter quote pulled by the judge.
type QuoteType string

const (
	QuoteGreat QuoteType = "great"
	QuoteGood  QuoteType = "good"
	QuoteBad   QuoteType = "bad"
	QuoteUgly  QuoteType = "ugly"
)

// NotableQuote is an actual chatter message the judge flagged as showing
// skill or lack of it.
type NotableQuote struct {
	Text    string    `json:"text"`
	Type    QuoteType `json:"type"`
	Context string    `json:"context"`
}

// Judgment is the structured output of the AI scoring call. Sub-scores
// are clamped to their ranges at the parse boundary.
type Judgment struct {
	SLAScore      int `json:"slaScore"`      // 0-25
	FollowupScore int `json:"followupScore"` // 0-20
	TriggerScore  int `json:"triggerScore"`  // 0-20
	QualityScore  int `json:"qualityScore"`  // 0-20

	DetectedArchetype string `json:"detectedArchetype,omitempty"`

	MistakeTags   []string       `json:"mistakeTags"`
	StrengthTags  []string       `json:"strengthTags"`
	Notes         string         `json:"notes"`
	NotableQuotes []NotableQuote `json:"notableQuotes"`

	CopyPasteDetected bool `json:"copyPasteDetected"`
	MissedHighIntent  bool `json:"missedHighIntent"`
	SpamDetected      bool `json:"spamDetected"`
}

// JudgmentContext is the small metadata object handed to the judge
// alongside the formatted transcript.
type JudgmentContext struct {
	ChatterEmail        string
	CreatorName         string
	AvgResponseTimeSec  float64 // 0 means unknown
	RobotPhraseCount    int
	CreativePhraseCount int
	TotalMessages       int
}
