package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	commissiondomain "github.com/smallbiznis/partnerledger/internal/commission/domain"
	obscontext "github.com/smallbiznis/partnerledger/internal/observability/context"
)

const (
	bookingHookActor = "booking"

	reasonNoPartnerOrRate = "no_partner_or_rate"
	reasonNoCommission    = "no_commission"
)

type createBookingCommissionRequest struct {
	BookingID     string          `json:"booking_id"`
	BookingAmount decimal.Decimal `json:"booking_amount"`
	TripCategory  string          `json:"trip_category"`
	Currency      string          `json:"currency"`
	ReferralCode  string          `json:"referral_code"`
	TravelerName  string          `json:"traveler_name"`
	TripTitle     string          `json:"trip_title"`
	DepartureDate string          `json:"departure_date"`
	TravelerCount int             `json:"traveler_count"`
}

type transitionBookingCommissionRequest struct {
	Status string `json:"status"`
}

type markPaidRequest struct {
	PaymentReference *string `json:"payment_reference"`
}

// CreateBookingCommission is the booking confirmation hook. Soft outcomes
// answer 200 with a null payload so the caller never blocks on them.
func (s *Server) CreateBookingCommission(c *gin.Context) {
	var req createBookingCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	departure, err := parseOptionalTime(req.DepartureDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("departure_date", "invalid_departure_date", "invalid departure_date"))
		return
	}

	ctx := withDefaultActor(c, bookingHookActor)
	resp, err := s.commissionSvc.CreateCommission(ctx, commissiondomain.CreateRequest{
		BookingID:     strings.TrimSpace(req.BookingID),
		BookingAmount: req.BookingAmount,
		TripCategory:  strings.TrimSpace(req.TripCategory),
		Currency:      strings.TrimSpace(req.Currency),
		ReferralCode:  strings.TrimSpace(req.ReferralCode),
		Booking: commissiondomain.BookingDetails{
			TravelerName:  strings.TrimSpace(req.TravelerName),
			TripTitle:     strings.TrimSpace(req.TripTitle),
			DepartureDate: departure,
			TravelerCount: req.TravelerCount,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil, "reason": reasonNoPartnerOrRate})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) TransitionBookingCommission(c *gin.Context) {
	var req transitionBookingCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	target, ok := commissiondomain.ParseStatus(req.Status)
	if !ok {
		AbortWithError(c, commissiondomain.ErrInvalidStatus)
		return
	}

	ctx := withDefaultActor(c, bookingHookActor)
	resp, err := s.commissionSvc.Transition(ctx, c.Param("booking_id"), target)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil, "reason": reasonNoCommission})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBookingCommission(c *gin.Context) {
	resp, err := s.commissionSvc.GetByBookingID(c.Request.Context(), c.Param("booking_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCommissions(c *gin.Context) {
	var query struct {
		PartnerID string `form:"partner_id"`
		Status    string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.commissionSvc.List(c.Request.Context(), commissiondomain.ListRequest{
		PartnerID: strings.TrimSpace(query.PartnerID),
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCommissionByID(c *gin.Context) {
	resp, err := s.commissionSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCommissionHistory(c *gin.Context) {
	resp, err := s.commissionSvc.History(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkCommissionPaid(c *gin.Context) {
	// the body is optional; an empty one reads as io.EOF
	var req markPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.commissionSvc.MarkPaid(c.Request.Context(), commissiondomain.MarkPaidRequest{
		ID:               strings.TrimSpace(c.Param("id")),
		PaymentReference: trimOptionalString(req.PaymentReference),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// withDefaultActor keeps an X-Actor supplied by the caller and falls back to
// the given actor otherwise.
func withDefaultActor(c *gin.Context, actor string) context.Context {
	ctx := c.Request.Context()
	if obscontext.ActorFromContext(ctx) != "" {
		return ctx
	}
	return obscontext.WithActor(ctx, actor)
}
