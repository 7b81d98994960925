// Package report exports scoring data to xlsx workbooks for agency
// review: one sheet of hourly scores, one of long-term profiles, one of
// aggregate insights.
package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"chatter-insights-go/internal/store"
	"chatter-insights-go/internal/types"
)

// Export writes the workbook to path.
func Export(path string, scores []store.ScoreRow, profiles []types.ChatterProfile) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeScoresSheet(f, scores); err != nil {
		return err
	}
	if err := writeProfilesSheet(f, profiles); err != nil {
		return err
	}
	if err := writeInsightsSheet(f, scores); err != nil {
		return err
	}

	// Drop the default sheet left over from NewFile.
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeScoresSheet(f *excelize.File, scores []store.ScoreRow) error {
	const sheet = "Hourly Scores"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{
		"Chatter", "Creator", "Window Start (UTC)", "Total",
		"SLA", "Follow-up", "Triggers", "Quality", "Revenue",
		"Penalties", "Archetype", "Messages", "Strengths", "Mistakes", "Notes",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, s := range scores {
		penalties := s.CopyPastePenalty + s.MissedTriggerPen + s.SpamPenalty
		row := []any{
			s.ChatterEmail, s.CreatorName, s.WindowStart.UTC().Format("2006-01-02 15:04"),
			s.TotalScore,
			s.SLAScore, s.FollowupScore, s.TriggerScore, s.QualityScore, s.RevenueScore,
			penalties, s.DetectedArchetype, s.MessagesAnalyzed,
			strings.Join(s.StrengthTags, ", "), strings.Join(s.MistakeTags, ", "), s.AINotes,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeProfilesSheet(f *excelize.File, profiles []types.ChatterProfile) error {
	const sheet = "Profiles"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{
		"Chatter", "Creator", "Avg Total", "Avg SLA", "Avg Follow-up",
		"Avg Triggers", "Avg Quality", "Avg Revenue",
		"Improvement", "Dominant Archetype", "Sessions",
		"Top Strengths", "Top Weaknesses",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, p := range profiles {
		name := p.ChatterName
		if name == "" {
			name = p.ChatterEmail
		}
		label := types.ArchetypeLabels[p.DominantArchetype]
		if label == "" {
			label = p.DominantArchetype
		}
		row := []any{
			name, p.CreatorID, p.AvgTotalScore, p.AvgSLAScore, p.AvgFollowupScore,
			p.AvgTriggerScore, p.AvgQualityScore, p.AvgRevenueScore,
			p.ImprovementIndex, label, p.TotalScoringSessions,
			strings.Join(p.TopStrengths, ", "), strings.Join(p.TopWeaknesses, ", "),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeInsightsSheet(f *excelize.File, scores []store.ScoreRow) error {
	const sheet = "Insights"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	ins := Aggregate(scores)

	rows := [][]any{
		{"Scored windows", ins.TotalWindows},
		{"Average total score", ins.AvgTotal},
		{"Windows with penalties", ins.PenalizedWindows},
		{},
		{"Archetype", "Count"},
	}
	for _, ac := range ins.Archetypes {
		rows = append(rows, []any{ac.Archetype, ac.Count})
	}

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}
