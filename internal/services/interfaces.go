package services

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// SubmissionService grades answers and, for identified users, records the attempt and the
// resulting collection progress.
type SubmissionService interface {
	SubmitAnswer(ctx context.Context, userID string, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error)
}

// SessionService grades a batch of answers without persisting anything.
type SessionService interface {
	CompleteSession(ctx context.Context, req *CompleteSessionRequest) (*CompleteSessionResponse, error)
}

type QuestionService interface {
	CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*QuestionResponse, error)
	ListQuestions(ctx context.Context, userID string, collectionID uint, page, pageSize int) (*QuestionListResponse, error)
	GetPreviewQuestions(ctx context.Context, collectionID uint) ([]QuestionItem, error)
}

type CollectionService interface {
	CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*CreateCollectionResponse, error)
	ListCollections(ctx context.Context, userID string) ([]CollectionResponse, error)
}

type ResultsService interface {
	GetLatestAnswer(ctx context.Context, userID string, questionID uint) (*LatestAnswerResponse, error)
	GetCollectionReview(ctx context.Context, userID string, collectionID uint, includeUnanswered bool) (*CollectionReviewResponse, error)
}

type ProgressService interface {
	GetUserProgress(ctx context.Context, userID string) ([]ProgressResponse, error)
	ListUserProgressGrouped(ctx context.Context, page, pageSize int) (*UserProgressGroupListResponse, error)
	RecomputeProgress(ctx context.Context, userID string, collectionID uint) (*ProgressResponse, error)
}

type ExportService interface {
	ExportProgress(ctx context.Context) ([]byte, error)
}

// QuestionReader is the only store access the session service has.
type QuestionReader interface {
	GetByID(ctx context.Context, id uint) (*models.Question, error)
}

type ServiceManager interface {
	Submission() SubmissionService
	Session() SessionService
	Question() QuestionService
	Collection() CollectionService
	Results() ResultsService
	Progress() ProgressService
	Export() ExportService

	Health(ctx context.Context) error
}
