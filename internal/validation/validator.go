package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/article-engagement-api/internal/models"
	"github.com/go-playground/validator/v10"
)

// MaxArticleIDLength bounds the article identifier used in store paths
const MaxArticleIDLength = 128

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Errors is a list of validation errors in field order
type Errors []ValidationError

// Error implements the error interface
func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Field+": "+ve.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// First returns the first failing field, which the form focuses
func (e Errors) First() (ValidationError, bool) {
	if len(e) == 0 {
		return ValidationError{}, false
	}
	return e[0], true
}

// AsErrors extracts validation errors from err
func AsErrors(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

// Validator provides validation methods
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New()
	// Report json names ("name", "body") instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateComment validates a trimmed comment submission
func (v *Validator) ValidateComment(in models.CommentInput) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: commentMessage(fe),
		})
	}
	return out
}

// ValidateRating checks a star value is within 1..5
func (v *Validator) ValidateRating(value int) error {
	tag := fmt.Sprintf("min=%d,max=%d", models.MinRating, models.MaxRating)
	if err := v.validate.Var(value, tag); err != nil {
		return Errors{{
			Field:   "value",
			Message: fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating),
			Value:   value,
		}}
	}
	return nil
}

// ValidateArticleID checks the identifier is usable as a store path segment
func (v *Validator) ValidateArticleID(id string) error {
	if err := v.validate.Var(id, fmt.Sprintf("required,max=%d,excludes=/", MaxArticleIDLength)); err != nil {
		return Errors{{
			Field:   "article_id",
			Message: fmt.Sprintf("article id must be 1-%d characters without '/'", MaxArticleIDLength),
			Value:   id,
		}}
	}
	return nil
}

func commentMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "name":
		if fe.Tag() == "required" {
			return "Please enter your name."
		}
		return fmt.Sprintf("Name must be %d characters or fewer.", models.MaxCommentNameLength)
	case "body":
		if fe.Tag() == "required" {
			return "Please enter a comment."
		}
		return fmt.Sprintf("Comment must be %d characters or fewer.", models.MaxCommentBodyLength)
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
