package leaderboardservice

import (
	"fmt"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/domain"
	"github.com/xuri/excelize/v2"
)

const (
	leaderboardSheet = "Leaderboard"
	weightsSheet     = "Weights"
)

var leaderboardHeader = []any{"Rank", "User", "Score", "Reports", "Community", "Simulations"}

// GenerateLeaderboardWorkbook writes entries to an XLSX workbook. A second
// sheet records the weights the scores were computed with.
func GenerateLeaderboardWorkbook(entries []leaderboarddomain.LeaderboardEntry, w leaderboarddomain.ScoreWeights, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leaderboardSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := leaderboardHeader
	if err := f.SetSheetRow(leaderboardSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	if err := f.SetRowStyle(leaderboardSheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{e.Rank, e.UserID, e.TotalScore, e.RawCounts.Reports, e.RawCounts.Community, e.RawCounts.Simulations}
		if err := f.SetSheetRow(leaderboardSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(leaderboardSheet, "B", "B", 32); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(weightsSheet); err != nil {
		return nil, fmt.Errorf("create weights sheet: %w", err)
	}
	rows := [][]any{
		{"Generated at", generatedAt.Format(time.RFC3339)},
		{"Reports weight", w.Reports},
		{"Community weight", w.Community},
		{"Simulations weight", w.Simulations},
		{"Simulation cap", w.SimulationCap},
	}
	for i, row := range rows {
		row := row
		if err := f.SetSheetRow(weightsSheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, fmt.Errorf("write weights: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
