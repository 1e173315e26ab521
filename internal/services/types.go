package services

import (
	"encoding/json"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/review"
)

// ===== SUBMISSION =====

type SubmitAnswerRequest struct {
	QuestionID       uint   `json:"question_id" validate:"required"`
	Answer           string `json:"answer" validate:"required,max=5000"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"gt=0"`
}

type SubmitAnswerResponse struct {
	IsCorrect bool `json:"is_correct"`
	// Persisted is false for anonymous submissions, which are graded only.
	Persisted     bool              `json:"persisted"`
	AttemptNumber *int              `json:"attempt_number,omitempty"`
	Progress      *ProgressResponse `json:"progress,omitempty"`
}

type LatestAnswerResponse struct {
	QuestionID       uint      `json:"question_id"`
	AttemptNumber    int       `json:"attempt_number"`
	Answer           string    `json:"answer"`
	IsCorrect        bool      `json:"is_correct"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// ===== SESSIONS =====

type SessionAnswer struct {
	QuestionID       uint   `json:"question_id" validate:"required"`
	Answer           string `json:"answer" validate:"required"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"gte=0"`
}

type CompleteSessionRequest struct {
	SessionID string          `json:"session_id" validate:"required,max=100"`
	Answers   []SessionAnswer `json:"answers" validate:"required,min=1,dive"`
}

type CompleteSessionResponse struct {
	SessionID       string                  `json:"session_id"`
	TotalQuestions  int                     `json:"total_questions"`
	CorrectAnswers  int                     `json:"correct_answers"`
	ScorePercentage float64                 `json:"score_percentage"`
	ReviewItems     []review.QuestionReview `json:"review_items"`
}

// ===== AUTHORING =====

// QuestionInput is a question authored as part of a new collection.
type QuestionInput struct {
	Type                 string          `json:"type" validate:"required,question_type"`
	Subcategory          string          `json:"subcategory" validate:"required,max=200"`
	Difficulty           string          `json:"difficulty" validate:"required,difficulty_level"`
	Prompt               string          `json:"prompt" validate:"required,max=2000"`
	EstimatedTimeMinutes int             `json:"estimated_time_minutes" validate:"required,min=1,max=120"`
	Metadata             json.RawMessage `json:"metadata" validate:"required"`
}

type CreateQuestionRequest struct {
	CollectionID         uint            `json:"collection_id" validate:"required"`
	Type                 string          `json:"type" validate:"required,question_type"`
	Subcategory          string          `json:"subcategory" validate:"required,max=200"`
	Difficulty           string          `json:"difficulty" validate:"required,difficulty_level"`
	Prompt               string          `json:"prompt" validate:"required,max=2000"`
	EstimatedTimeMinutes int             `json:"estimated_time_minutes" validate:"required,min=1,max=120"`
	Metadata             json.RawMessage `json:"metadata" validate:"required"`
}

func (r *CreateQuestionRequest) input() QuestionInput {
	return QuestionInput{
		Type:                 r.Type,
		Subcategory:          r.Subcategory,
		Difficulty:           r.Difficulty,
		Prompt:               r.Prompt,
		EstimatedTimeMinutes: r.EstimatedTimeMinutes,
		Metadata:             r.Metadata,
	}
}

type CreateCollectionRequest struct {
	Code        string          `json:"code" validate:"required,max=50,collection_code"`
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"required,max=1000"`
	Icon        string          `json:"icon" validate:"required,max=50"`
	SortOrder   int             `json:"sort_order" validate:"gte=0"`
	Questions   []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

type QuestionResponse struct {
	ID                   uint                `json:"id"`
	CollectionID         uint                `json:"collection_id"`
	Type                 models.QuestionType `json:"type"`
	Subcategory          string              `json:"subcategory"`
	Difficulty           models.Difficulty   `json:"difficulty"`
	Prompt               string              `json:"prompt"`
	EstimatedTimeMinutes int                 `json:"estimated_time_minutes"`
	Metadata             json.RawMessage     `json:"metadata"`
	CreatedAt            time.Time           `json:"created_at"`
}

type CreateCollectionResponse struct {
	ID             uint   `json:"id"`
	Code           string `json:"code"`
	Title          string `json:"title"`
	QuestionsCount int    `json:"questions_count"`
}

// ===== BROWSING =====

type CollectionResponse struct {
	ID             uint              `json:"id"`
	Code           string            `json:"code"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Icon           string            `json:"icon"`
	SortOrder      int               `json:"sort_order"`
	QuestionsCount int               `json:"questions_count"`
	Progress       *ProgressResponse `json:"progress,omitempty"`
}

// QuestionItem is a question preview with browsing attributes. PreviousAnswer is the
// caller's latest attempt, present only for authenticated callers who answered before.
type QuestionItem struct {
	review.QuestionReview
	Subcategory          string                   `json:"subcategory"`
	Difficulty           models.Difficulty        `json:"difficulty"`
	EstimatedTimeMinutes int                      `json:"estimated_time_minutes"`
	PreviousAnswer       *review.UserAnswerReview `json:"previous_answer,omitempty"`
}

type QuestionListResponse struct {
	Items      []QuestionItem `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// ===== RESULTS =====

type CollectionReviewResponse struct {
	CollectionID          uint                    `json:"collection_id"`
	CollectionName        string                  `json:"collection_name"`
	TotalQuestions        int                     `json:"total_questions"`
	AnsweredQuestions     int                     `json:"answered_questions"`
	CorrectAnswers        int                     `json:"correct_answers"`
	ScorePercentage       float64                 `json:"score_percentage"`
	TotalTimeSpentSeconds int                     `json:"total_time_spent_seconds"`
	CompletedAt           *time.Time              `json:"completed_at,omitempty"`
	Items                 []review.QuestionReview `json:"items"`
}

// ===== PROGRESS =====

type ProgressResponse struct {
	CollectionID      uint       `json:"collection_id"`
	CollectionCode    string     `json:"collection_code,omitempty"`
	CollectionTitle   string     `json:"collection_title,omitempty"`
	TotalQuestions    int        `json:"total_questions"`
	AnsweredQuestions int        `json:"answered_questions"`
	CorrectAnswers    int        `json:"correct_answers"`
	SuccessRate       float64    `json:"success_rate"`
	CompletionRate    float64    `json:"completion_rate"`
	LastAnsweredAt    *time.Time `json:"last_answered_at,omitempty"`
}

type UserProgressGroup struct {
	UserID             string             `json:"user_id"`
	Collections        []ProgressResponse `json:"collections"`
	TotalAnswered      int                `json:"total_answered"`
	TotalCorrect       int                `json:"total_correct"`
	OverallSuccessRate float64            `json:"overall_success_rate"`
}

type UserProgressGroupListResponse struct {
	Items      []UserProgressGroup `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	Total      int64               `json:"total"`
	TotalPages int                 `json:"total_pages"`
}

func toProgressResponse(p *models.UserProgress, col *models.Collection) *ProgressResponse {
	resp := &ProgressResponse{
		CollectionID:      p.CollectionID,
		TotalQuestions:    p.TotalQuestions,
		AnsweredQuestions: p.AnsweredQuestions,
		CorrectAnswers:    p.CorrectAnswers,
		SuccessRate:       p.SuccessRate,
		CompletionRate:    p.CompletionRate,
		LastAnsweredAt:    p.LastAnsweredAt,
	}
	if col != nil {
		resp.CollectionCode = col.Code
		resp.CollectionTitle = col.Title
	}
	return resp
}

func toQuestionResponse(q *models.Question) *QuestionResponse {
	return &QuestionResponse{
		ID:                   q.ID,
		CollectionID:         q.CollectionID,
		Type:                 q.Type,
		Subcategory:          q.Subcategory,
		Difficulty:           q.Difficulty,
		Prompt:               q.Prompt,
		EstimatedTimeMinutes: q.EstimatedTimeMinutes,
		Metadata:             json.RawMessage(q.Metadata),
		CreatedAt:            q.CreatedAt,
	}
}
