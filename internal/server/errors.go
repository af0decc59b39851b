package server

import (
	"errors"
	"net/http"

	agentdomain "github.com/dialplane/dialplane/internal/agent/domain"
	billingdomain "github.com/dialplane/dialplane/internal/billing/domain"
	clientdomain "github.com/dialplane/dialplane/internal/client/domain"
	subscriptiondomain "github.com/dialplane/dialplane/internal/subscription/domain"
	tenantdomain "github.com/dialplane/dialplane/internal/tenant/domain"
	usagedomain "github.com/dialplane/dialplane/internal/usagemetering/domain"
	"github.com/gin-gonic/gin"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware maps a handler's recorded error onto a JSON
// response once, at the edge.
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

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, usagedomain.ErrInvalidDuration),
		errors.Is(err, tenantdomain.ErrInvalidHost):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid request",
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, tenantdomain.ErrSlugAlreadyExists),
		errors.Is(err, tenantdomain.ErrDomainAlreadyExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, billingdomain.ErrMissingCredential),
		errors.Is(err, usagedomain.ErrMissingMeterEventName):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Message: "billing configuration incomplete",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, tenantdomain.ErrOrganizationNotFound),
		errors.Is(err, clientdomain.ErrClientNotFound),
		errors.Is(err, agentdomain.ErrAgentNotFound),
		errors.Is(err, usagedomain.ErrAgentNotFound),
		errors.Is(err, subscriptiondomain.ErrClientNotFound),
		errors.Is(err, subscriptiondomain.ErrSubscriptionNotFound),
		errors.Is(err, billingdomain.ErrNoSubscription):
		return true
	default:
		return false
	}
}
