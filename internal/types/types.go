package types

import "time"

// AttributionConfidence flags whether messages in a window can be
// attributed to exactly one chatter.
type AttributionConfidence string

const (
	ConfidenceHigh AttributionConfidence = "high"
	ConfidenceLow  AttributionConfidence = "low"
)

// ScoringWindow identifies one unit of scoring work: a chatter-creator
// pair over a single UTC hour. Built by the window builder, consumed and
// discarded within one scoring pass.
type ScoringWindow struct {
	ChatterEmail          string                `json:"chatter_email"`
	CreatorID             string                `json:"creator_id"`
	CreatorName           string                `json:"creator_name"`
	OFAPICreatorID        string                `json:"ofapi_creator_id"`
	OFAPIToken            string                `json:"-"`
	WindowStart           time.Time             `json:"window_start"`
	WindowEnd             time.Time             `json:"window_end"`
	AttributionConfidence AttributionConfidence `json:"attribution_confidence"`
}

// AttributedMessage is one chat message tagged with its author role.
// Ephemeral; only derived aggregates are persisted.
type AttributedMessage struct {
	Text      string    `json:"text"`
	IsChatter bool      `json:"is_chatter"` // true = outgoing (chatter), false = incoming (fan)
	CreatedAt time.Time `json:"created_at"`
	ChatID    string    `json:"chat_id"`
	FanName   string    `json:"fan_name,omitempty"`
}

// SnapshotMessage is one message inside a persisted conversation snapshot.
type SnapshotMessage struct {
	Text      string    `json:"text"`
	IsChatter bool      `json:"is_chatter"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationSnapshot is a bounded per-chat excerpt stored alongside a
// score so reviewers can see what was graded.
type ConversationSnapshot struct {
	ChatID   string            `json:"chat_id"`
	FanName  string            `json:"fan_name,omitempty"`
	Messages []SnapshotMessage `json:"messages"`
}

// CopyPasteBlast records a chatter message sent verbatim to multiple fans.
type CopyPasteBlast struct {
	Message  string `json:"message"`
	FanCount int    `json:"fanCount"`
}

// ScoringResult is the per-window output of the scoring engine. One
// exists per (chatter, creator, windowStart) triple; immutable once
// persisted.
type ScoringResult struct {
	Window ScoringWindow `json:"window"`

	SLAScore      int `json:"sla_score"`      // 0-25
	FollowupScore int `json:"followup_score"` // 0-20
	TriggerScore  int `json:"trigger_score"`  // 0-20
	QualityScore  int `json:"quality_score"`  // 0-20
	RevenueScore  int `json:"revenue_score"`  // 0-15

	CopyPastePenalty     int `json:"copy_paste_penalty"`     // 0 or -10
	MissedTriggerPenalty int `json:"missed_trigger_penalty"` // 0 or -10
	SpamPenalty          int `json:"spam_penalty"`           // 0 or -10

	TotalScore int `json:"total_score"` // clamped to [0,100]

	DetectedArchetype string `json:"detected_archetype,omitempty"`

	ConversationsScanned int `json:"conversations_scanned"`
	MessagesAnalyzed     int `json:"messages_analyzed"`
	RobotPhraseCount     int `json:"robot_phrase_count"`
	CreativePhraseCount  int `json:"creative_phrase_count"`

	AINotes       string         `json:"ai_notes,omitempty"`
	MistakeTags   []string       `json:"mistake_tags"`
	StrengthTags  []string       `json:"strength_tags"`
	NotableQuotes []NotableQuote `json:"notable_quotes,omitempty"`

	Conversations   []ConversationSnapshot `json:"conversations,omitempty"`
	CopyPasteBlasts []CopyPasteBlast       `json:"copy_paste_blasts,omitempty"`
	Story           *StoryAnalysis         `json:"story,omitempty"`
}
