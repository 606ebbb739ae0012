package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	CourseID string `json:"course_id" validate:"required"`
	Method   string `json:"payment_method" validate:"oneof=card UPI"`
	Email    string `form:"email" validate:"email"`
}

func TestFromBindError(t *testing.T) {
	in := sample{Method: "bitcoin", Email: "nope"}
	err := validator.New().Struct(in)

	got := FromBindError(err, &in)
	assert.Equal(t, FieldErrors{
		"course_id":      "This field is required.",
		"payment_method": "Must be one of: card UPI.",
		"email":          "Must be a valid email address.",
	}, got)
}

func TestFromBindError_NotValidation(t *testing.T) {
	got := FromBindError(errors.New("unexpected EOF"), &sample{})
	assert.Equal(t, FieldErrors{"_": "Request body is malformed."}, got)
}
