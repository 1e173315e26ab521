package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of events the quiz service emits
type EventType string

const (
	EventAnswerSubmitted  EventType = "answer.submitted"
	EventProgressUpdated  EventType = "progress.updated"
	EventSessionCompleted EventType = "session.completed"
)

const (
	eventSource  = "quiz-service"
	eventVersion = "1.0"
)

// QuizEvent is the envelope for every published event
type QuizEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Data      any            `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	// PartitionKey keeps events of one user ordered on the broker.
	PartitionKey string `json:"-"`
}

type AnswerSubmittedEvent struct {
	UserID           string    `json:"user_id"`
	QuestionID       uint      `json:"question_id"`
	CollectionID     uint      `json:"collection_id"`
	AttemptNumber    int       `json:"attempt_number"`
	IsCorrect        bool      `json:"is_correct"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

type ProgressUpdatedEvent struct {
	UserID            string  `json:"user_id"`
	CollectionID      uint    `json:"collection_id"`
	TotalQuestions    int     `json:"total_questions"`
	AnsweredQuestions int     `json:"answered_questions"`
	CorrectAnswers    int     `json:"correct_answers"`
	SuccessRate       float64 `json:"success_rate"`
	CompletionRate    float64 `json:"completion_rate"`
}

type SessionCompletedEvent struct {
	SessionID       string  `json:"session_id"`
	TotalQuestions  int     `json:"total_questions"`
	CorrectAnswers  int     `json:"correct_answers"`
	ScorePercentage float64 `json:"score_percentage"`
}

func NewAnswerSubmittedEvent(data AnswerSubmittedEvent) *QuizEvent {
	return newEvent(EventAnswerSubmitted, data.UserID, data)
}

func NewProgressUpdatedEvent(data ProgressUpdatedEvent) *QuizEvent {
	return newEvent(EventProgressUpdated, data.UserID, data)
}

func NewSessionCompletedEvent(data SessionCompletedEvent) *QuizEvent {
	return newEvent(EventSessionCompleted, data.SessionID, data)
}

func newEvent(t EventType, key string, data any) *QuizEvent {
	return &QuizEvent{
		ID:           GenerateEventID(),
		Type:         t,
		Timestamp:    time.Now().UTC(),
		Source:       eventSource,
		Version:      eventVersion,
		Data:         data,
		PartitionKey: key,
	}
}

func GenerateEventID() string {
	return uuid.NewString()
}
