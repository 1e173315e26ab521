package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionMCQ              QuestionType = "MCQ"
	QuestionTrueFalse        QuestionType = "TrueFalse"
	QuestionFill             QuestionType = "Fill"
	QuestionErrorSpotting    QuestionType = "ErrorSpotting"
	QuestionOutputPrediction QuestionType = "OutputPrediction"
	QuestionCodeWriting      QuestionType = "CodeWriting"
)

// QuestionTypes lists every supported type in display order.
var QuestionTypes = []QuestionType{
	QuestionMCQ,
	QuestionTrueFalse,
	QuestionFill,
	QuestionErrorSpotting,
	QuestionOutputPrediction,
	QuestionCodeWriting,
}

// authoring payloads use snake_case aliases
var questionTypeAliases = map[string]QuestionType{
	"mcq":               QuestionMCQ,
	"true_false":        QuestionTrueFalse,
	"truefalse":         QuestionTrueFalse,
	"fill":              QuestionFill,
	"error_spotting":    QuestionErrorSpotting,
	"errorspotting":     QuestionErrorSpotting,
	"output_prediction": QuestionOutputPrediction,
	"outputprediction":  QuestionOutputPrediction,
	"code_writing":      QuestionCodeWriting,
	"codewriting":       QuestionCodeWriting,
}

// ParseQuestionType resolves a canonical type name or one of its authoring aliases.
func ParseQuestionType(s string) (QuestionType, bool) {
	t, ok := questionTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

func (t QuestionType) IsValid() bool {
	_, ok := ParseQuestionType(string(t))
	return ok
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Question is immutable once created. Metadata is decoded on demand through DecodeMetadata.
type Question struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	CollectionID         uint           `json:"collection_id" gorm:"not null;index"`
	Subcategory          string         `json:"subcategory" gorm:"size:200;not null"`
	Difficulty           Difficulty     `json:"difficulty" gorm:"size:20;not null"`
	Prompt               string         `json:"prompt" gorm:"type:text;not null"`
	EstimatedTimeMinutes int            `json:"estimated_time_minutes" gorm:"not null;default:1"`
	Type                 QuestionType   `json:"type" gorm:"size:30;not null;index"`
	Metadata             datatypes.JSON `json:"-" gorm:"type:jsonb;not null"`
	IsActive             bool           `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// DecodeMetadata decodes the stored blob under the schema implied by Type.
func (q *Question) DecodeMetadata() (Metadata, error) {
	return DecodeMetadata(q.Type, q.Metadata)
}
