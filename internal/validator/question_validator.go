package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

const metadataPrefix = "metadata."

// QuestionValidator checks decoded metadata against the authoring rules of its type.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateMetadata returns the rule violations of meta, or nil when it is acceptable.
func (v *QuestionValidator) ValidateMetadata(meta models.Metadata) ValidationErrors {
	var errs ValidationErrors

	switch m := meta.(type) {
	case *models.MCQMetadata:
		v.validateMCQ(m, &errs)
	case *models.TrueFalseMetadata:
		if m.CorrectAnswer == nil {
			errs.Add(field(models.FieldCorrectAnswer), "is required", "required")
		}
	case *models.FillMetadata:
		requireText(&errs, models.FieldCodeWithBlank, m.CodeWithBlank)
		requireText(&errs, models.FieldCorrectAnswer, m.CorrectAnswer)
	case *models.ErrorSpottingMetadata:
		requireText(&errs, models.FieldCodeWithError, m.CodeWithError)
		requireText(&errs, models.FieldCorrectAnswer, m.CorrectAnswer)
	case *models.OutputPredictionMetadata:
		requireText(&errs, models.FieldSnippet, m.Snippet)
		requireText(&errs, models.FieldExpectedOutput, m.ExpectedOutput)
	case *models.CodeWritingMetadata:
		v.validateCodeWriting(m, &errs)
	case nil:
		errs.Add("metadata", "is required", "required")
	default:
		errs.Add("metadata", fmt.Sprintf("unsupported metadata for type %s", meta.QuestionType()), "question_type")
	}

	if meta != nil {
		for i, h := range meta.Common().Hints {
			if strings.TrimSpace(h.Hint) == "" {
				errs.Add(fmt.Sprintf("%s%s[%d].hint", metadataPrefix, models.FieldHints, i), "is required", "required")
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (v *QuestionValidator) validateMCQ(m *models.MCQMetadata, errs *ValidationErrors) {
	if len(m.Options) < 2 {
		errs.Add(field(models.FieldOptions), "must have at least 2 options", "min")
	}

	seen := make(map[string]bool, len(m.Options))
	correct := 0
	for i, o := range m.Options {
		id := strings.TrimSpace(o.ID)
		switch {
		case id == "":
			errs.Add(fmt.Sprintf("%s%s[%d].id", metadataPrefix, models.FieldOptions, i), "is required", "required")
		case seen[id]:
			errs.Add(fmt.Sprintf("%s%s[%d].id", metadataPrefix, models.FieldOptions, i), fmt.Sprintf("duplicates option %q", id), "unique")
		}
		seen[id] = true

		if strings.TrimSpace(o.Text) == "" {
			errs.Add(fmt.Sprintf("%s%s[%d].text", metadataPrefix, models.FieldOptions, i), "is required", "required")
		}
		if o.IsCorrect {
			correct++
		}
	}

	if len(m.Options) > 0 && correct == 0 {
		errs.Add(field(models.FieldOptions), "must have at least 1 correct option", "correct_option")
	}
}

func (v *QuestionValidator) validateCodeWriting(m *models.CodeWritingMetadata, errs *ValidationErrors) {
	hasSolution := m.Solution != nil && strings.TrimSpace(*m.Solution) != ""
	if !hasSolution && len(m.TestCases) == 0 {
		errs.Add(field(models.FieldSolution), "a solution or at least 1 test case is required", "required_without")
	}

	for i, tc := range m.TestCases {
		if strings.TrimSpace(tc.ExpectedOutput) == "" {
			errs.Add(fmt.Sprintf("%s%s[%d].expectedOutput", metadataPrefix, models.FieldTestCases, i), "is required", "required")
		}
	}
}

func requireText(errs *ValidationErrors, name, value string) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field(name), "is required", "required")
	}
}

func field(name string) string {
	return metadataPrefix + name
}
