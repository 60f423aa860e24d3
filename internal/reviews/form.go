package reviews

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Submission is the review form as posted by the visitor.
type Submission struct {
	Name    string `json:"name" validate:"required,max=80"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Content string `json:"content" validate:"required,max=2000"`
}

// FieldError describes one rejected form field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ErrInvalidSubmission wraps form validation failures.
var ErrInvalidSubmission = errors.New("invalid review submission")

// ValidationError lists the rejected fields of a Submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+":"+f.Rule)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidSubmission, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidSubmission }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims surrounding whitespace from text fields.
func (s Submission) Normalize() Submission {
	s.Name = strings.TrimSpace(s.Name)
	s.Content = strings.TrimSpace(s.Content)
	return s
}

// Validate checks the submission against the form rules.
func (s Submission) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: strings.ToLower(fe.Field()), Rule: fe.Tag()})
	}
	return out
}
