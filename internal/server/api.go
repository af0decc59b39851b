package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	agentdomain "github.com/dialplane/dialplane/internal/agent/domain"
	tenantdomain "github.com/dialplane/dialplane/internal/tenant/domain"
	usagedomain "github.com/dialplane/dialplane/internal/usagemetering/domain"
	"github.com/dialplane/dialplane/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func (s *Server) resolveAgent(c *gin.Context) (*agentdomain.Agent, error) {
	ref := c.Param("agent_id")

	if id, err := snowflake.ParseString(ref); err == nil {
		agent, err := s.agentRepo.FindByID(c.Request.Context(), id)
		if err != nil {
			return nil, err
		}
		if agent != nil {
			return agent, nil
		}
	}

	agent, err := s.agentRepo.FindByAssistantRef(c.Request.Context(), ref)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, agentdomain.ErrAgentNotFound
	}
	return agent, nil
}

func (s *Server) handleListUsage(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	req := usagedomain.ListRequest{Pagination: page}
	if raw := c.Query("org_id"); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.OrgID = id
	}
	if raw := c.Query("client_id"); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.ClientID = id
	}

	res, err := s.usageSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

type createOrganizationRequest struct {
	Name               string  `json:"name" binding:"required"`
	Domain             *string `json:"domain"`
	BillingAccountRef  string  `json:"billing_account_ref"`
	VoiceCredentialRef string  `json:"voice_credential_ref"`
}

func (s *Server) handleCreateOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	org, err := s.tenantSvc.CreateOrganization(c.Request.Context(), tenantdomain.CreateOrganizationInput{
		Name:               req.Name,
		Domain:             req.Domain,
		BillingAccountRef:  req.BillingAccountRef,
		VoiceCredentialRef: req.VoiceCredentialRef,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

func (s *Server) handleGetOrganization(c *gin.Context) {
	orgID, err := snowflake.ParseString(c.Param("org_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	org, err := s.tenantSvc.GetOrganization(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

func (s *Server) handleReconcileClient(c *gin.Context) {
	clientID, err := snowflake.ParseString(c.Param("client_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	sub, err := s.subscriptionSvc.Reconcile(c.Request.Context(), clientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (s *Server) handleGetSubscription(c *gin.Context) {
	clientID, err := snowflake.ParseString(c.Param("client_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	sub, err := s.subscriptionSvc.GetByClientID(c.Request.Context(), clientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}
