package review

import (
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// QuestionReview is the view of a question shown to a user. UserAnswer and CorrectAnswer are
// populated only when an answer was supplied to the builder.
type QuestionReview struct {
	QuestionID    uint                `json:"question_id"`
	QuestionType  models.QuestionType `json:"question_type"`
	Prompt        string              `json:"prompt"`
	Content       ContentReview       `json:"content"`
	Hints         []string            `json:"hints,omitempty"`
	Explanation   *string             `json:"explanation,omitempty"`
	UserAnswer    *UserAnswerReview   `json:"user_answer,omitempty"`
	CorrectAnswer *CorrectAnswer      `json:"correct_answer,omitempty"`
}

// ContentReview holds the type-specific material needed to attempt the question.
// Fields that do not apply to the question's type stay unset and are omitted.
type ContentReview struct {
	CodeBefore    *string        `json:"code_before,omitempty"`
	CodeAfter     *string        `json:"code_after,omitempty"`
	CodeWithBlank *string        `json:"code_with_blank,omitempty"`
	CodeWithError *string        `json:"code_with_error,omitempty"`
	Snippet       *string        `json:"snippet,omitempty"`
	Options       []OptionChoice `json:"options,omitempty"`
	Examples      []string       `json:"examples,omitempty"`
}

// OptionChoice is an MCQ option without its correctness flag.
type OptionChoice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type UserAnswerReview struct {
	Answer           string    `json:"answer"`
	IsCorrect        bool      `json:"is_correct"`
	SubmittedAt      time.Time `json:"submitted_at"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
}

type CorrectAnswer struct {
	Options         []CorrectOption  `json:"options,omitempty"`
	BooleanAnswer   *bool            `json:"boolean_answer,omitempty"`
	TextAnswer      *string          `json:"text_answer,omitempty"`
	SampleSolution  *string          `json:"sample_solution,omitempty"`
	TestCaseResults []TestCaseResult `json:"test_case_results,omitempty"`
}

type CorrectOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// TestCaseResult carries placeholders: submitted code is not executed, so Passed is always
// false and UserOutput always nil.
type TestCaseResult struct {
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expected_output"`
	UserOutput     *string `json:"user_output"`
	Passed         bool    `json:"passed"`
}
