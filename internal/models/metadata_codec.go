package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedMetadata matches every *DecodeError.
var ErrMalformedMetadata = errors.New("malformed question metadata")

// DecodeError reports a metadata blob that is not valid structured data for its type.
// A field that is simply absent is not an error.
type DecodeError struct {
	Type  QuestionType
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed %s metadata at %q: %v", e.Type, e.Field, e.Err)
	}
	return fmt.Sprintf("malformed %s metadata: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrMalformedMetadata }

// NewMetadata returns an empty, normalized schema for the given type.
func NewMetadata(t QuestionType) (Metadata, error) {
	var m Metadata
	switch t {
	case QuestionMCQ:
		m = &MCQMetadata{}
	case QuestionTrueFalse:
		m = &TrueFalseMetadata{}
	case QuestionFill:
		m = &FillMetadata{}
	case QuestionErrorSpotting:
		m = &ErrorSpottingMetadata{}
	case QuestionOutputPrediction:
		m = &OutputPredictionMetadata{}
	case QuestionCodeWriting:
		m = &CodeWritingMetadata{}
	default:
		return nil, &DecodeError{Type: t, Err: fmt.Errorf("unsupported question type %q", t)}
	}
	m.normalize()
	return m, nil
}

// DecodeMetadata decodes blob under the schema implied by t. Missing fields come back as
// empty collections or nil pointers; only invalid JSON or a wrongly shaped value fails.
func DecodeMetadata(t QuestionType, blob []byte) (Metadata, error) {
	m, err := NewMetadata(t)
	if err != nil {
		return nil, err
	}

	data := bytes.TrimSpace(blob)
	if len(data) == 0 {
		return nil, &DecodeError{Type: t, Err: errors.New("empty metadata")}
	}

	if err := json.Unmarshal(data, m); err != nil {
		decodeErr := &DecodeError{Type: t, Err: err}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			decodeErr.Field = typeErr.Field
		}
		return nil, decodeErr
	}

	m.normalize()
	return m, nil
}

// EncodeMetadata serializes m. Nil collections in m are normalized to empty ones first,
// so DecodeMetadata(m.QuestionType(), out) reproduces m exactly.
func EncodeMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		return nil, errors.New("cannot encode nil metadata")
	}
	m.normalize()

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s metadata: %w", m.QuestionType(), err)
	}
	return data, nil
}
