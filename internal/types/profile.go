package types

// ChatterProfile is the long-lived aggregate per (chatter, creator)
// pair. Rolling averages use an exponential moving average; recent
// history is bounded to the last 10 totals.
type ChatterProfile struct {
	ChatterEmail string `json:"chatter_email"`
	CreatorID    string `json:"creator_id"`
	ChatterName  string `json:"chatter_name,omitempty"`

	AvgTotalScore    float64 `json:"avg_total_score"`
	AvgSLAScore      float64 `json:"avg_sla_score"`
	AvgFollowupScore float64 `json:"avg_followup_score"`
	AvgTriggerScore  float64 `json:"avg_trigger_score"`
	AvgQualityScore  float64 `json:"avg_quality_score"`
	AvgRevenueScore  float64 `json:"avg_revenue_score"`

	RecentScores     []int   `json:"recent_scores"` // FIFO, max 10
	ImprovementIndex float64 `json:"improvement_index"`

	ArchetypeCounts   map[string]int `json:"archetype_counts"`
	DominantArchetype string         `json:"dominant_archetype,omitempty"`

	TopStrengths  []string `json:"top_strengths"`  // snapshot of latest round, max 5
	TopWeaknesses []string `json:"top_weaknesses"` // snapshot of latest round, max 5

	TotalScoringSessions int `json:"total_scoring_sessions"`
}
