package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
)

type createPartnerRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Email        *string `json:"email"`
	ReferralCode *string `json:"referral_code"`
	IsActive     *bool   `json:"is_active"`
}

type updatePartnerRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Email    *string `json:"email,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (s *Server) CreatePartner(c *gin.Context) {
	var req createPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.partnerSvc.Create(c.Request.Context(), partnerdomain.CreateRequest{
		Name:         strings.TrimSpace(req.Name),
		Category:     partnerdomain.Category(strings.TrimSpace(req.Category)),
		Email:        trimOptionalString(req.Email),
		ReferralCode: trimOptionalString(req.ReferralCode),
		IsActive:     req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPartners(c *gin.Context) {
	var query struct {
		Category string `form:"category"`
		IsActive string `form:"is_active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isActive, err := parseOptionalBool(query.IsActive)
	if err != nil {
		AbortWithError(c, newValidationError("is_active", "invalid_is_active", "invalid is_active"))
		return
	}

	resp, err := s.partnerSvc.List(c.Request.Context(), partnerdomain.ListRequest{
		Category: partnerdomain.Category(strings.TrimSpace(query.Category)),
		IsActive: isActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPartnerByID(c *gin.Context) {
	resp, err := s.partnerSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePartner(c *gin.Context) {
	var req updatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var category *partnerdomain.Category
	if req.Category != nil {
		trimmed := partnerdomain.Category(strings.TrimSpace(*req.Category))
		category = &trimmed
	}

	resp, err := s.partnerSvc.Update(c.Request.Context(), partnerdomain.UpdateRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		Name:     trimOptionalString(req.Name),
		Category: category,
		Email:    trimOptionalString(req.Email),
		IsActive: req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivatePartner(c *gin.Context) {
	resp, err := s.partnerSvc.Deactivate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
