package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/dSumitabha/multi-tenant/internal/apierror"
	"github.com/dSumitabha/multi-tenant/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			c.JSON(http.StatusUnprocessableEntity, apierror.FromFieldErrors(fieldErrs))
			return false
		}
		c.JSON(http.StatusBadRequest, apierror.New("invalid request body"))
		return false
	}
	return true
}

// respondError maps the service error taxonomy onto HTTP statuses. Anything
// untyped is recorded on the context so ErrorHandler logs it and returns a
// sanitized 500.
func respondError(c *gin.Context, err error) {
	var (
		notFound     *service.NotFoundError
		inactive     *service.InactiveEntityError
		insufficient *service.InsufficientStockError
		invalid      *service.InvalidRequestError
		noTransition *service.NoTransitionError
		conflict     *service.ConflictError
		transient    *service.TransientStorageError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.As(err, &inactive),
		errors.As(err, &insufficient),
		errors.As(err, &noTransition),
		errors.As(err, &conflict):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.As(err, &transient):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, apierror.New("storage contention, retry the request"))
	default:
		_ = c.Error(err)
	}
}
