package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	ratedomain "github.com/smallbiznis/partnerledger/internal/commissionrate/domain"
)

type createRateRequest struct {
	TripCategory string           `json:"trip_category"`
	Percentage   *decimal.Decimal `json:"percentage"`
	IsActive     *bool            `json:"is_active"`
}

type updateRateRequest struct {
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
	IsActive   *bool            `json:"is_active,omitempty"`
}

func (s *Server) CreateRate(c *gin.Context) {
	var req createRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Percentage == nil {
		AbortWithError(c, newValidationError("percentage", "required", "percentage is required"))
		return
	}

	resp, err := s.rateSvc.Create(c.Request.Context(), ratedomain.CreateRequest{
		PartnerID:    strings.TrimSpace(c.Param("id")),
		TripCategory: strings.TrimSpace(req.TripCategory),
		Percentage:   *req.Percentage,
		IsActive:     req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListRates(c *gin.Context) {
	activeOnly, err := parseOptionalBool(c.Query("active_only"))
	if err != nil {
		AbortWithError(c, newValidationError("active_only", "invalid_active_only", "invalid active_only"))
		return
	}

	resp, err := s.rateSvc.List(c.Request.Context(), ratedomain.ListRequest{
		PartnerID:  strings.TrimSpace(c.Param("id")),
		ActiveOnly: activeOnly != nil && *activeOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateRate(c *gin.Context) {
	var req updateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateSvc.Update(c.Request.Context(), ratedomain.UpdateRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		Percentage: req.Percentage,
		IsActive:   req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateRate(c *gin.Context) {
	resp, err := s.rateSvc.Deactivate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
