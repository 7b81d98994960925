package report

import (
	"math"
	"sort"

	"chatter-insights-go/internal/store"
)

type ArchetypeCount struct {
	Archetype string `json:"archetype"`
	Count     int    `json:"count"`
}

// Insights is the roll-up shown on the workbook's summary sheet and
// returned by the report endpoint.
type Insights struct {
	TotalWindows     int              `json:"total_windows"`
	AvgTotal         float64          `json:"avg_total"`
	PenalizedWindows int              `json:"penalized_windows"`
	Archetypes       []ArchetypeCount `json:"archetypes"`
}

// Aggregate rolls score rows up into workbook insights. Archetypes come
// back sorted by count, ties alphabetical.
func Aggregate(rows []store.ScoreRow) Insights {
	ins := Insights{TotalWindows: len(rows)}

	counts := map[string]int{}
	sum := 0
	for _, r := range rows {
		sum += r.TotalScore
		if r.CopyPastePenalty < 0 || r.MissedTriggerPen < 0 || r.SpamPenalty < 0 {
			ins.PenalizedWindows++
		}
		if r.DetectedArchetype != "" {
			counts[r.DetectedArchetype]++
		}
	}
	if len(rows) > 0 {
		ins.AvgTotal = math.Round(float64(sum)/float64(len(rows))*10) / 10
	}

	for a, c := range counts {
		ins.Archetypes = append(ins.Archetypes, ArchetypeCount{Archetype: a, Count: c})
	}
	sort.Slice(ins.Archetypes, func(i, j int) bool {
		if ins.Archetypes[i].Count != ins.Archetypes[j].Count {
			return ins.Archetypes[i].Count > ins.Archetypes[j].Count
		}
		return ins.Archetypes[i].Archetype < ins.Archetypes[j].Archetype
	})
	return ins
}
