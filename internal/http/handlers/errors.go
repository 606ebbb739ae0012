package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"learnora.com/app/internal/http/middleware"
	"learnora.com/app/internal/http/validation"
	"learnora.com/app/internal/modules/courses"
	"learnora.com/app/internal/modules/payments"
	"learnora.com/app/internal/modules/users"
	"learnora.com/app/internal/shared/apperr"
)

// toAppErr maps module sentinels onto the public error kinds.
func toAppErr(err error) *apperr.AppError {
	var inErr *courses.InputError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &inErr):
		return apperr.InvalidErr("Invalid course.", inErr.Fields)

	case errors.Is(err, payments.ErrInvalidSignature):
		return apperr.AuthenticationErr(err)

	case errors.Is(err, payments.ErrMissingFields),
		errors.Is(err, payments.ErrInvalidPaymentMethod),
		errors.Is(err, payments.ErrMalformedEvent),
		errors.Is(err, courses.ErrNoFiles):
		ae := apperr.InvalidErr(err.Error(), nil)
		ae.Err = err
		return ae

	case errors.Is(err, payments.ErrPaymentNotFound):
		return apperr.NotFoundErr("Payment not found.")
	case errors.Is(err, users.ErrNotFound):
		return apperr.NotFoundErr("User not found.")
	case errors.Is(err, courses.ErrNotFound):
		return apperr.NotFoundErr("Course not found.")

	case errors.Is(err, payments.ErrInvalidTransition):
		return apperr.ConflictErr("Payment is not in a state that allows this.")
	case errors.Is(err, payments.ErrDuplicateOrder):
		return apperr.ConflictErr("Order already exists.")
	case errors.Is(err, users.ErrEmailTaken):
		return apperr.ConflictErr("Email already registered.")
	case errors.Is(err, courses.ErrSlugTaken):
		return apperr.ConflictErr("Course already exists.")

	case errors.Is(err, payments.ErrGateway):
		return apperr.UpstreamErr("Payment gateway unavailable.", err)
	}
	return apperr.Wrap(err)
}

func fail(c *gin.Context, err error) {
	middleware.Fail(c, toAppErr(err))
}

func failBind(c *gin.Context, err error, dst any) {
	middleware.Fail(c, apperr.InvalidErr("Invalid input.", validation.FromBindError(err, dst)))
}
