package server

import (
	"math"
	"net/http"
	"time"

	usagedomain "github.com/dialplane/dialplane/internal/usagemetering/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// callReportEnvelope is the voice platform's end-of-call callback.
// Other message types arrive on the same URL and are acknowledged
// without effect.
type callReportEnvelope struct {
	Message struct {
		Type            string  `json:"type"`
		DurationSeconds float64 `json:"durationSeconds"`
		Call            struct {
			ID string `json:"id"`
		} `json:"call"`
		Timestamp int64 `json:"timestamp"`
	} `json:"message"`
}

const messageTypeEndOfCallReport = "end-of-call-report"

func (s *Server) handleCallReport(c *gin.Context) {
	var envelope callReportEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if envelope.Message.Type != messageTypeEndOfCallReport {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	var occurredAt time.Time
	if envelope.Message.Timestamp > 0 {
		occurredAt = time.UnixMilli(envelope.Message.Timestamp).UTC()
	}

	record, err := s.usageSvc.RecordCompletion(c.Request.Context(), usagedomain.RecordCompletionInput{
		AgentRef:        c.Param("agent_id"),
		CallRef:         envelope.Message.Call.ID,
		DurationSeconds: int64(math.Round(envelope.Message.DurationSeconds)),
		OccurredAt:      occurredAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "recorded",
		"call_ref":         record.CallRef,
		"duration_seconds": record.DurationSeconds,
	})
}

// handleCallRoute answers the voice platform's inbound-call query:
// either a destination override from the time-window rules or the
// agent's default assistant.
func (s *Server) handleCallRoute(c *gin.Context) {
	agent, err := s.resolveAgent(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	decision, err := s.callRoutingSvc.Route(c.Request.Context(), agent.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if decision.Matched {
		c.JSON(http.StatusOK, gin.H{
			"destination": gin.H{
				"type":   "number",
				"number": decision.Override,
			},
		})
		return
	}

	if agent.DefaultDestination != "" {
		c.JSON(http.StatusOK, gin.H{
			"destination": gin.H{
				"type":   "number",
				"number": agent.DefaultDestination,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assistantId": agent.AssistantRef})
}

// billingEventEnvelope is the provider's subscription-change event.
// Only the nested customer reference matters; the local mirror is
// refreshed from the provider regardless of event type.
type billingEventEnvelope struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			Customer string `json:"customer"`
		} `json:"object"`
	} `json:"data"`
}

func (s *Server) handleBillingEvent(c *gin.Context) {
	var envelope billingEventEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	customerRef := envelope.Data.Object.Customer
	if customerRef == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	client, err := s.clientRepo.FindByBillingCustomerID(c.Request.Context(), customerRef)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if client == nil {
		// events for customers we don't know are acknowledged so the
		// provider stops retrying
		s.log.Warn("billing event for unknown customer",
			zap.String("customer", customerRef),
			zap.String("event_type", envelope.Type),
		)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	sub, err := s.subscriptionSvc.Reconcile(c.Request.Context(), client.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "reconciled",
		"client_id":   client.ID.String(),
		"external_id": sub.ExternalID,
	})
}
