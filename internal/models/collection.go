package models

import "time"

type Collection struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Code        string    `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Icon        string    `json:"icon" gorm:"size:100"`
	SortOrder   int       `json:"sort_order" gorm:"not null;default:0;index"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:CollectionID"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}
