package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	payoutdomain "github.com/smallbiznis/partnerledger/internal/payout/domain"
)

const reasonNoEligibleCommissions = "no_eligible_commissions"

type generatePayoutRequest struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

func (s *Server) GeneratePayout(c *gin.Context) {
	var req generatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	start, err := parseOptionalTime(req.PeriodStart, false)
	if err != nil || start == nil {
		AbortWithError(c, newValidationError("period_start", "invalid_period_start", "invalid period_start"))
		return
	}
	end, err := parseOptionalTime(req.PeriodEnd, true)
	if err != nil || end == nil {
		AbortWithError(c, newValidationError("period_end", "invalid_period_end", "invalid period_end"))
		return
	}

	resp, err := s.payoutSvc.GeneratePayout(c.Request.Context(), payoutdomain.GenerateRequest{
		PartnerID:   strings.TrimSpace(c.Param("id")),
		PeriodStart: *start,
		PeriodEnd:   *end,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil, "reason": reasonNoEligibleCommissions})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPayouts(c *gin.Context) {
	resp, err := s.payoutSvc.List(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPayoutByID(c *gin.Context) {
	resp, err := s.payoutSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
