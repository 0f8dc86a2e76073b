package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	commissiondomain "github.com/smallbiznis/partnerledger/internal/commission/domain"
	ratedomain "github.com/smallbiznis/partnerledger/internal/commissionrate/domain"
	earningsdomain "github.com/smallbiznis/partnerledger/internal/earnings/domain"
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
	payoutdomain "github.com/smallbiznis/partnerledger/internal/payout/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// classifyErrorForLog feeds the request logger the same type the client sees.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	if code := conflictCode(err); code != "" {
		return payload.Type, code
	}
	return payload.Type, payload.Type
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		message := "conflict"
		if code := conflictCode(err); code != "" {
			message = code
		}
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: message,
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

var validationSentinels = []error{
	ErrInvalidRequest,
	partnerdomain.ErrInvalidID,
	partnerdomain.ErrInvalidName,
	partnerdomain.ErrInvalidCategory,
	partnerdomain.ErrInvalidEmail,
	partnerdomain.ErrInvalidReferralCode,
	ratedomain.ErrInvalidID,
	ratedomain.ErrInvalidPartner,
	ratedomain.ErrInvalidTripCategory,
	ratedomain.ErrInvalidRate,
	commissiondomain.ErrInvalidID,
	commissiondomain.ErrInvalidBookingID,
	commissiondomain.ErrInvalidAmount,
	commissiondomain.ErrInvalidCurrency,
	commissiondomain.ErrInvalidStatus,
	commissiondomain.ErrInvalidPartner,
	earningsdomain.ErrInvalidPartner,
	payoutdomain.ErrInvalidID,
	payoutdomain.ErrInvalidPartner,
	payoutdomain.ErrInvalidPeriod,
}

var conflictSentinels = []error{
	ErrConflict,
	partnerdomain.ErrDuplicateReferralCode,
	ratedomain.ErrDuplicateActiveRate,
	commissiondomain.ErrDuplicateCommission,
	commissiondomain.ErrInvalidTransition,
	payoutdomain.ErrPayoutInProgress,
}

func isValidationError(err error) bool {
	return matchSentinel(err, validationSentinels) != nil
}

func isConflictError(err error) bool {
	return matchSentinel(err, conflictSentinels) != nil
}

func conflictCode(err error) string {
	if target := matchSentinel(err, conflictSentinels); target != nil {
		return target.Error()
	}
	return ""
}

func matchSentinel(err error, sentinels []error) error {
	for _, target := range sentinels {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, partnerdomain.ErrNotFound),
		errors.Is(err, ratedomain.ErrNotFound),
		errors.Is(err, commissiondomain.ErrNotFound),
		errors.Is(err, payoutdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if target := matchSentinel(err, validationSentinels); target != nil {
		return target.Error()
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
