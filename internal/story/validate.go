package story

import (
	"fmt"

	"chatter-insights-go/internal/types"
)

const (
	maxArcs         = 5
	maxLabels       = 30
	maxPatternSteps = 10
	maxSellQuotes   = 5
	maxKeyElements  = 8
)

// Validate sanitizes the raw model output into a bounded StoryAnalysis.
// Oversized lists are truncated, scores clamped, and malformed entries
// replaced with safe defaults. It never rejects an otherwise usable
// payload: immediate sells after buying signals arrive with achieved
// pattern steps and must pass through unchanged.
func Validate(raw map[string]any) *types.StoryAnalysis {
	analysis := &types.StoryAnalysis{
		StoryArcs:           []types.StoryArc{},
		OverallSellingScore: clampScore(numField(raw, "overallSellingScore")),
		FanInvestmentMoment: strField(raw, "fanInvestmentMoment"),
	}

	arcs, _ := raw["storyArcs"].([]any)
	for _, a := range arcs {
		if len(analysis.StoryArcs) >= maxArcs {
			break
		}
		am, ok := a.(map[string]any)
		if !ok {
			continue
		}
		analysis.StoryArcs = append(analysis.StoryArcs, validateArc(am))
	}

	return analysis
}

func validateArc(am map[string]any) types.StoryArc {
	arc := types.StoryArc{
		Title:             strFieldOr(am, "title", "Untitled Arc"),
		SellCount:         int(numField(am, "sellCount")),
		SellQuotes:        strSlice(am["sellQuotes"], maxSellQuotes),
		StoryFlowAnalysis: strField(am, "storyFlowAnalysis"),
		FanInvestment:     strField(am, "fanInvestment"),
		KeyElements:       strSlice(am["keyElements"], maxKeyElements),
		SellingApproach:   approach(strField(am, "sellingApproach")),
	}

	if r, ok := am["messageRange"].([]any); ok && len(r) >= 2 {
		arc.MessageRange = [2]int{toInt(r[0]), toInt(r[1])}
	}

	if labels, ok := am["messageLabels"].([]any); ok {
		for _, l := range labels {
			if len(arc.MessageLabels) >= maxLabels {
				break
			}
			lm, ok := l.(map[string]any)
			if !ok {
				continue
			}
			arc.MessageLabels = append(arc.MessageLabels, types.MessageLabel{
				MessageIndex:  int(numField(lm, "messageIndex")),
				Label:         strField(lm, "label"),
				Sublabel:      strField(lm, "sublabel"),
				IsSellMessage: boolField(lm, "isSellMessage"),
			})
		}
	}

	if steps, ok := am["sellingPattern"].([]any); ok {
		for _, p := range steps {
			if len(arc.SellingPattern) >= maxPatternSteps {
				break
			}
			pm, ok := p.(map[string]any)
			if !ok {
				continue
			}
			step := types.PatternStep{
				Description: strField(pm, "description"),
				Achieved:    boolField(pm, "achieved"),
			}
			if f, ok := pm["messageRef"].(float64); ok {
				ref := int(f)
				step.MessageRef = &ref
			}
			arc.SellingPattern = append(arc.SellingPattern, step)
		}
	}

	return arc
}

func approach(s string) types.SellingApproach {
	switch types.SellingApproach(s) {
	case types.ApproachBuyingSignal, types.ApproachStoryArc:
		return types.SellingApproach(s)
	default:
		return ""
	}
}

func clampScore(f float64) int {
	v := int(f)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func numField(m map[string]any, key string) float64 {
	f, _ := m[key].(float64)
	return f
}

func strField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func strFieldOr(m map[string]any, key, def string) string {
	if s := strField(m, key); s != "" {
		return s
	}
	return def
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func strSlice(v any, max int) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range arr {
		if len(out) >= max {
			break
		}
		switch s := item.(type) {
		case string:
			out = append(out, s)
		default:
			out = append(out, fmt.Sprintf("%v", s))
		}
	}
	return out
}

func toInt(v any) int {
	f, _ := v.(float64)
	return int(f)
}
