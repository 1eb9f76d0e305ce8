package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	accountdomain "github.com/contentry/ledger/internal/account/domain"
)

type ensureAccountRequest struct {
	OwnerAccountID string   `json:"owner_account_id"`
	Capabilities   []string `json:"capabilities"`
}

func (s *Server) EnsureAccount(c *gin.Context) {
	var req ensureAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	ownerID, err := snowflake.ParseString(req.OwnerAccountID)
	if err != nil {
		AbortWithError(c, newValidationError("owner_account_id", "invalid_id", "invalid id"))
		return
	}

	capabilities := make([]accountdomain.Capability, 0, len(req.Capabilities))
	for _, raw := range req.Capabilities {
		capability, err := accountdomain.ParseCapability(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		capabilities = append(capabilities, capability)
	}

	account, err := s.accountSvc.EnsureForOwner(c.Request.Context(), ownerID, capabilities...)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": account})
}

func (s *Server) GetAccountByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := s.accountSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

type grantCapabilityRequest struct {
	Capability string `json:"capability"`
}

func (s *Server) GrantCapability(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req grantCapabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	capability, err := accountdomain.ParseCapability(req.Capability)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.accountSvc.GrantCapability(c.Request.Context(), id, capability)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

type attachConnectedAccountRequest struct {
	ExternalID string `json:"external_id"`
}

func (s *Server) AttachConnectedAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req attachConnectedAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	item, err := s.accountSvc.AttachConnectedAccount(c.Request.Context(), id, req.ExternalID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

type updateConnectedStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateConnectedAccountStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateConnectedStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	item, err := s.accountSvc.UpdateConnectedAccountStatus(c.Request.Context(), id, accountdomain.ConnectedAccountStatus(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}
