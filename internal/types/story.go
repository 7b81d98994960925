package types

// SellingApproach identifies which of the two valid selling patterns an
// arc followed. Approach A (immediate sell after a buying signal) is the
// highest-scoring behavior, not a shortcut.
type SellingApproach string

const (
	ApproachBuyingSignal SellingApproach = "A_BUYING_SIGNAL"
	ApproachStoryArc     SellingApproach = "B_STORY_ARC"
)

// MessageLabel tags one message inside a story arc with its narrative role.
type MessageLabel struct {
	MessageIndex  int    `json:"messageIndex"`
	Label         string `json:"label"`
	Sublabel      string `json:"sublabel,omitempty"`
	IsSellMessage bool   `json:"isSellMessage"`
}

// PatternStep is one entry of the selling-pattern checklist.
type PatternStep struct {
	Description string `json:"description"`
	Achieved    bool   `json:"achieved"`
	MessageRef  *int   `json:"messageRef,omitempty"`
}

// StoryArc is a detected narrative segment used to build fan investment
// before a sell.
type StoryArc struct {
	Title             string          `json:"title"`
	MessageRange      [2]int          `json:"messageRange"`
	MessageLabels     []MessageLabel  `json:"messageLabels"`
	SellCount         int             `json:"sellCount"`
	SellQuotes        []string        `json:"sellQuotes"`
	StoryFlowAnalysis string          `json:"storyFlowAnalysis"`
	FanInvestment     string          `json:"fanInvestment"`
	KeyElements       []string        `json:"keyElements"`
	SellingApproach   SellingApproach `json:"sellingApproach,omitempty"`
	SellingPattern    []PatternStep   `json:"sellingPattern"`
}

// StoryAnalysis is the optional narrative enrichment of a ScoringResult.
type StoryAnalysis struct {
	StoryArcs           []StoryArc `json:"storyArcs"`
	OverallSellingScore int        `json:"overallSellingScore"` // 0-100
	FanInvestmentMoment string     `json:"fanInvestmentMoment,omitempty"`
}
