package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type createOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	identity, ok := s.identity(c)
	if !ok {
		return
	}

	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, newValidationError("name", "required", "organization name is required"))
		return
	}

	resp, err := s.svc.CreateOrganization(c.Request.Context(), identity, req.Name, req.Description)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListOrganizations(c *gin.Context) {
	identity, ok := s.identity(c)
	if !ok {
		return
	}

	items, err := s.svc.ListOrganizations(c.Request.Context(), identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetOrganization(c *gin.Context) {
	identity, ok := s.identity(c)
	if !ok {
		return
	}

	orgID := c.Param("id")
	if orgID == "" {
		AbortWithError(c, newValidationError("id", "missing_id", "organization id is required"))
		return
	}

	resp, err := s.svc.OrganizationDetails(c.Request.Context(), identity, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
