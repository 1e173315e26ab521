package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/progress"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	progressSheet = "Progress"
	summarySheet  = "Collections"
)

var (
	progressHeaders = []string{
		"User ID", "Collection Code", "Collection Title", "Total Questions", "Answered",
		"Correct", "Success Rate (%)", "Completion Rate (%)", "Last Answered At",
	}
	summaryHeaders = []string{
		"Collection Code", "Collection Title", "Learners", "Answered", "Correct", "Success Rate (%)",
	}
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ExportProgress renders every progress row as an xlsx workbook, with a per-collection
// summary on a second sheet.
func (s *exportService) ExportProgress(ctx context.Context) ([]byte, error) {
	rows, err := s.repo.Progress().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	collections, err := s.repo.Collection().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	byID := make(map[uint]*models.Collection, len(collections))
	for _, c := range collections {
		byID[c.ID] = c
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", progressSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel style: %w", err)
	}

	if err := writeRow(f, progressSheet, 1, toCells(progressHeaders)); err != nil {
		return nil, err
	}
	if err := styleHeader(f, progressSheet, len(progressHeaders), headerStyle); err != nil {
		return nil, err
	}

	type summary struct {
		learners, answered, correct int
	}
	totals := map[uint]*summary{}

	for i, p := range rows {
		code, title := "", ""
		if c := byID[p.CollectionID]; c != nil {
			code, title = c.Code, c.Title
		}
		lastAnswered := ""
		if p.LastAnsweredAt != nil {
			lastAnswered = p.LastAnsweredAt.Format("2006-01-02 15:04:05")
		}

		values := []interface{}{
			p.UserID, code, title, p.TotalQuestions, p.AnsweredQuestions,
			p.CorrectAnswers, p.SuccessRate, p.CompletionRate, lastAnswered,
		}
		if err := writeRow(f, progressSheet, i+2, values); err != nil {
			return nil, err
		}

		t := totals[p.CollectionID]
		if t == nil {
			t = &summary{}
			totals[p.CollectionID] = t
		}
		t.learners++
		t.answered += p.AnsweredQuestions
		t.correct += p.CorrectAnswers
	}

	if err := writeRow(f, summarySheet, 1, toCells(summaryHeaders)); err != nil {
		return nil, err
	}
	if err := styleHeader(f, summarySheet, len(summaryHeaders), headerStyle); err != nil {
		return nil, err
	}
	for i, c := range collections {
		t := totals[c.ID]
		if t == nil {
			t = &summary{}
		}
		values := []interface{}{c.Code, c.Title, t.learners, t.answered, t.correct, progress.Rate(t.correct, t.answered)}
		if err := writeRow(f, summarySheet, i+2, values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported progress workbook", "rows", len(rows), "collections", len(collections))
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, columns, style int) error {
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func toCells(headers []string) []interface{} {
	out := make([]interface{}, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}
