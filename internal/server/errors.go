package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	cashdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/domain"
	einvoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/einvoice/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	templatedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/domain"
	obscontext "github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/context"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/logger"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/orgcontext"
	reportdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/reports/domain"
	"go.uber.org/zap"
)

// APIError is the JSON error envelope returned by every handler.
type APIError struct {
	Status    int    `json:"-"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (e *APIError) Error() string { return e.Code }

var (
	ErrNotFound       = &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
	ErrMissingOrgID   = &APIError{Status: http.StatusBadRequest, Code: "missing_organization", Message: "X-Org-Id header is required"}
	ErrRateLimited    = &APIError{Status: http.StatusTooManyRequests, Code: "rate_limited", Message: "too many requests"}
	errInternalServer = &APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal server error"}
)

func invalidRequestError() error {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request body"}
}

func newValidationError(field, code, message string) error {
	return &APIError{Status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

type errorMapping struct {
	target error
	status int
}

var errorMappings = []errorMapping{
	{orgcontext.ErrMissingOrganization, http.StatusBadRequest},
	{invoicedomain.ErrInvalidOrganization, http.StatusBadRequest},
	{invoicedomain.ErrInvalidInvoiceID, http.StatusBadRequest},
	{invoicedomain.ErrInvalidItemID, http.StatusBadRequest},
	{invoicedomain.ErrInvalidStatus, http.StatusBadRequest},
	{invoicedomain.ErrInvalidCurrency, http.StatusBadRequest},
	{invoicedomain.ErrInvalidCustomer, http.StatusBadRequest},
	{invoicedomain.ErrInvalidDueDate, http.StatusBadRequest},
	{invoicedomain.ErrInvalidItemOrder, http.StatusBadRequest},
	{invoicedomain.ErrInvoiceNotFound, http.StatusNotFound},
	{invoicedomain.ErrItemNotFound, http.StatusNotFound},
	{invoicedomain.ErrDuplicateItem, http.StatusConflict},
	{invoicedomain.ErrConcurrentUpdate, http.StatusConflict},
	{invoicedomain.ErrInvalidTransition, http.StatusConflict},
	{invoicedomain.ErrMutationAfterFreeze, http.StatusConflict},
	{invoicedomain.ErrEmptyInvoice, http.StatusUnprocessableEntity},

	{templatedomain.ErrInvalidOrganization, http.StatusBadRequest},
	{templatedomain.ErrInvalidID, http.StatusBadRequest},
	{templatedomain.ErrInvalidName, http.StatusBadRequest},
	{templatedomain.ErrInvalidLocale, http.StatusBadRequest},
	{templatedomain.ErrNotFound, http.StatusNotFound},

	{cashdomain.ErrInvalidOrganization, http.StatusBadRequest},
	{cashdomain.ErrInvalidSessionID, http.StatusBadRequest},
	{cashdomain.ErrInvalidRegister, http.StatusBadRequest},
	{cashdomain.ErrInvalidAmount, http.StatusBadRequest},
	{cashdomain.ErrInvalidPayment, http.StatusBadRequest},
	{cashdomain.ErrInvalidMovementKind, http.StatusBadRequest},
	{cashdomain.ErrEmptySale, http.StatusUnprocessableEntity},
	{cashdomain.ErrSessionNotFound, http.StatusNotFound},
	{cashdomain.ErrSessionAlreadyOpen, http.StatusConflict},
	{cashdomain.ErrSessionClosed, http.StatusConflict},
	{cashdomain.ErrConcurrentUpdate, http.StatusConflict},

	{reportdomain.ErrInvalidOrganization, http.StatusBadRequest},
	{reportdomain.ErrInvalidRange, http.StatusBadRequest},

	{einvoicedomain.ErrNotIssued, http.StatusUnprocessableEntity},
	{einvoicedomain.ErrAlreadySubmitted, http.StatusConflict},
	{einvoicedomain.ErrSubmissionInProgress, http.StatusConflict},
	{einvoicedomain.ErrProviderRejected, http.StatusUnprocessableEntity},
	{einvoicedomain.ErrProviderUnavailable, http.StatusServiceUnavailable},
	{einvoicedomain.ErrProviderNotFound, http.StatusServiceUnavailable},
}

// toAPIError maps service errors onto the HTTP envelope. Unknown errors
// become a generic 500 so internals never leak to clients.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var inputErr *calc.InputError
	if errors.As(err, &inputErr) {
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    calc.ErrInvalidInput.Error(),
			Message: inputErr.Error(),
			Field:   inputErr.Field,
		}
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return &APIError{Status: m.status, Code: m.target.Error(), Message: err.Error()}
		}
	}
	return errInternalServer
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	apiErr := toAPIError(err)
	_ = c.Error(err)
	if apiErr.Status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	body := *apiErr
	body.RequestID = obscontext.RequestIDFromGin(c)
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": body})
}
