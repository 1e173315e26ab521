package models

import "time"

// UserAnswer is one recorded attempt. Rows are appended and never updated.
type UserAnswer struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           string    `json:"user_id" gorm:"size:255;not null;uniqueIndex:idx_user_question_attempt,priority:1;index:idx_user_answers_user"`
	QuestionID       uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_user_question_attempt,priority:2"`
	AttemptNumber    int       `json:"attempt_number" gorm:"not null;uniqueIndex:idx_user_question_attempt,priority:3"`
	Answer           string    `json:"answer" gorm:"type:text;not null"`
	IsCorrect        bool      `json:"is_correct" gorm:"not null"`
	TimeSpentSeconds int       `json:"time_spent_seconds" gorm:"not null;default:0"`
	SubmittedAt      time.Time `json:"submitted_at" gorm:"not null;index"`
}

// UserProgress is a derived aggregate over a user's answers in one collection.
type UserProgress struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	UserID            string     `json:"user_id" gorm:"size:255;not null;uniqueIndex:idx_user_collection,priority:1"`
	CollectionID      uint       `json:"collection_id" gorm:"not null;uniqueIndex:idx_user_collection,priority:2"`
	TotalQuestions    int        `json:"total_questions" gorm:"not null;default:0"`
	AnsweredQuestions int        `json:"answered_questions" gorm:"not null;default:0"`
	CorrectAnswers    int        `json:"correct_answers" gorm:"not null;default:0"`
	SuccessRate       float64    `json:"success_rate" gorm:"not null;default:0"`
	CompletionRate    float64    `json:"completion_rate" gorm:"not null;default:0"`
	LastAnsweredAt    *time.Time `json:"last_answered_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}
