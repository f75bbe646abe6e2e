package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/couponview/internal/coupon/domain"
)

// apiError is the wire shape of every non-2xx response.
type apiError struct {
	status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *apiError) Error() string { return e.Message }

var (
	ErrRateLimited = &apiError{status: http.StatusTooManyRequests, Code: "rate_limited", Message: "too many requests"}
)

func invalidRequestError() *apiError {
	return &apiError{status: http.StatusBadRequest, Code: "invalid_request", Message: "request body could not be parsed"}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

// AbortWithError maps service errors onto HTTP responses. Unrecognized errors
// surface as a 502 when the ledger could not be reconciled and a 500
// otherwise.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.status, api)
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, domain.ErrIdentityRequired):
		status, code = http.StatusUnauthorized, "identity_required"
	case errors.Is(err, domain.ErrValidation):
		status, code = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrCouponNotFound),
		errors.Is(err, domain.ErrOrganizationNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrCouponAlreadyUsed):
		status, code = http.StatusConflict, "coupon_already_used"
	case errors.Is(err, domain.ErrCouponInactive):
		status, code = http.StatusConflict, "coupon_inactive"
	case errors.Is(err, domain.ErrWriteInFlight):
		status, code = http.StatusConflict, "write_in_flight"
	case errors.Is(err, domain.ErrTransactionRejected):
		status, code = http.StatusBadGateway, "transaction_rejected"
	case errors.Is(err, domain.ErrTransactionReverted):
		status, code = http.StatusUnprocessableEntity, "transaction_reverted"
	case errors.Is(err, domain.ErrReconcileFailed):
		status, code = http.StatusBadGateway, "ledger_unavailable"
	}

	c.AbortWithStatusJSON(status, &apiError{status: status, Code: code, Message: err.Error()})
}
