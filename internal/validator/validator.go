package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/go-playground/validator/v10"
)

var collectionCodePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Validator combines struct tag validation with metadata validation
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

func New() *Validator {
	structValidator := validator.New(validator.WithRequiredStructEnabled())

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate runs struct validation and returns field errors keyed by json path, or nil.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// Engine exposes the underlying validator, e.g. for gin's binding.
func (v *Validator) Engine() *validator.Validate {
	return v.structValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("difficulty_level", validateDifficultyLevel)
	validate.RegisterValidation("collection_code", validateCollectionCode)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// question_type accepts canonical names and the snake_case authoring aliases.
func validateQuestionType(fl validator.FieldLevel) bool {
	_, ok := models.ParseQuestionType(fl.Field().String())
	return ok
}

func validateDifficultyLevel(fl validator.FieldLevel) bool {
	return models.Difficulty(fl.Field().String()).IsValid()
}

func validateCollectionCode(fl validator.FieldLevel) bool {
	return collectionCodePattern.MatchString(fl.Field().String())
}
