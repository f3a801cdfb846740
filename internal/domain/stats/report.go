package stats

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// reportRowLimit caps how many leaderboard rows a PDF carries.
const reportRowLimit = 100

// GenerateLeaderboardPDF renders the filtered leaderboard to a PDF under the
// service's report directory and returns the file path.
func (s *Service) GenerateLeaderboardPDF(ctx context.Context, filter Filter) (string, error) {
	ranking, err := s.Store.Ranking(ctx, filter, reportRowLimit, 0)
	if err != nil {
		return "", err
	}
	AssignRanks(ranking, 0)

	total, avg, highest, lowest, err := s.Store.Aggregates(ctx, filter)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.ReportDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.ReportDir, "leaderboard-"+uuid.NewString()+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Leaderboard")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")))
	pdf.Ln(6)
	if filter.Department != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Department: %s", filter.Department))
		pdf.Ln(6)
	}
	if filter.Month != 0 && filter.Year != 0 {
		pdf.Cell(0, 7, fmt.Sprintf("Period: %02d/%d", filter.Month, filter.Year))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Entries: %d   Average: %.1f   Highest: %d   Lowest: %d", total, avg, highest, lowest))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(12, 8, "Rank", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 8, "Employee", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Department", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 8, "Template", "1", 0, "L", false, 0, "")
	pdf.CellFormat(18, 8, "Period", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Score", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range ranking {
		pdf.CellFormat(12, 7, fmt.Sprintf("%d", r.Rank), "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 7, r.EmployeeName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, r.Department, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, r.TemplateName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(18, 7, fmt.Sprintf("%02d/%d", r.Month, r.Year), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d/%d", r.Score, r.MaxScore), "1", 1, "C", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
