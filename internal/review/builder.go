package review

import (
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// Builder turns questions into review views. It never fails: metadata that does not decode
// is logged and the fields derived from it are left out.
type Builder struct {
	logger *slog.Logger
}

func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{logger: logger}
}

// Preview builds the pre-attempt view. It never carries correct-answer data.
func (b *Builder) Preview(q *models.Question) QuestionReview {
	return b.Build(q, nil)
}

// Build builds the view of q. With a nil answer the result is the preview; otherwise it also
// discloses the submitted answer and the correct answer for q's type.
func (b *Builder) Build(q *models.Question, answer *models.UserAnswer) QuestionReview {
	r := QuestionReview{
		QuestionID:   q.ID,
		QuestionType: q.Type,
		Prompt:       q.Prompt,
	}
	if answer != nil {
		r.UserAnswer = &UserAnswerReview{
			Answer:           answer.Answer,
			IsCorrect:        answer.IsCorrect,
			SubmittedAt:      answer.SubmittedAt,
			TimeSpentSeconds: answer.TimeSpentSeconds,
		}
	}

	meta, err := q.DecodeMetadata()
	if err != nil {
		b.logger.Error("Malformed question metadata, omitting review content",
			"question_id", q.ID,
			"question_type", q.Type,
			"error", err)
		return r
	}

	common := meta.Common()
	r.Content = buildContent(meta)
	r.Hints = orderedHints(common.Hints)
	r.Explanation = nonBlank(common.Explanation)

	if answer != nil {
		r.CorrectAnswer = buildCorrectAnswer(meta)
	}
	return r
}

func buildContent(meta models.Metadata) ContentReview {
	common := meta.Common()
	c := ContentReview{
		CodeBefore: nonBlank(common.CodeBefore),
		CodeAfter:  nonBlank(common.CodeAfter),
	}

	switch m := meta.(type) {
	case *models.MCQMetadata:
		for _, o := range m.Options {
			if isBlank(o.ID) || isBlank(o.Text) {
				continue
			}
			c.Options = append(c.Options, OptionChoice{ID: o.ID, Text: o.Text})
		}
	case *models.FillMetadata:
		c.CodeWithBlank = nonBlankValue(m.CodeWithBlank)
	case *models.ErrorSpottingMetadata:
		c.CodeWithError = nonBlankValue(m.CodeWithError)
	case *models.OutputPredictionMetadata:
		c.Snippet = nonBlankValue(m.Snippet)
	case *models.CodeWritingMetadata:
		for _, e := range m.Examples {
			if !isBlank(e) {
				c.Examples = append(c.Examples, e)
			}
		}
	}
	return c
}

func buildCorrectAnswer(meta models.Metadata) *CorrectAnswer {
	switch m := meta.(type) {
	case *models.MCQMetadata:
		options := make([]CorrectOption, 0, len(m.Options))
		for _, o := range m.Options {
			if isBlank(o.ID) || isBlank(o.Text) {
				continue
			}
			options = append(options, CorrectOption{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
		}
		return &CorrectAnswer{Options: options}
	case *models.TrueFalseMetadata:
		return &CorrectAnswer{BooleanAnswer: m.CorrectAnswer}
	case *models.FillMetadata:
		return &CorrectAnswer{TextAnswer: nonBlankValue(m.CorrectAnswer)}
	case *models.ErrorSpottingMetadata:
		return &CorrectAnswer{TextAnswer: nonBlankValue(m.CorrectAnswer)}
	case *models.OutputPredictionMetadata:
		return &CorrectAnswer{TextAnswer: nonBlankValue(m.ExpectedOutput)}
	case *models.CodeWritingMetadata:
		results := make([]TestCaseResult, 0, len(m.TestCases))
		for _, tc := range m.TestCases {
			if isBlank(tc.Input) || isBlank(tc.ExpectedOutput) {
				continue
			}
			results = append(results, TestCaseResult{Input: tc.Input, ExpectedOutput: tc.ExpectedOutput})
		}
		return &CorrectAnswer{SampleSolution: nonBlank(m.Solution), TestCaseResults: results}
	}
	return &CorrectAnswer{}
}

// orderedHints drops blank hints and sorts the rest by OrderIndex, keeping stored order on ties.
func orderedHints(hints []models.Hint) []string {
	kept := make([]models.Hint, 0, len(hints))
	for _, h := range hints {
		if !isBlank(h.Hint) {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].OrderIndex < kept[j].OrderIndex })

	out := make([]string, len(kept))
	for i, h := range kept {
		out[i] = h.Hint
	}
	return out
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func nonBlank(s *string) *string {
	if s == nil || isBlank(*s) {
		return nil
	}
	v := *s
	return &v
}

func nonBlankValue(s string) *string {
	return nonBlank(&s)
}
