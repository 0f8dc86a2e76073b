package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	commissiondomain "github.com/smallbiznis/partnerledger/internal/commission/domain"
	notificationdomain "github.com/smallbiznis/partnerledger/internal/notification/domain"
	notificationservice "github.com/smallbiznis/partnerledger/internal/notification/service"
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
	"go.uber.org/zap"
)

// notify hands the new-commission message to the dispatcher. Nothing here
// may fail the creation that already committed.
func (s *Service) notify(ctx context.Context, partner *partnerdomain.Partner, commission *commissiondomain.Commission, booking commissiondomain.BookingDetails) {
	if s.dispatcher == nil || !partner.HasContact() {
		return
	}

	log := s.log.With(
		zap.String("commission_id", commission.ID.String()),
		zap.String("partner_id", partner.ID.String()),
	)

	pendingCount, pendingSum, err := s.pendingTotals(ctx, partner)
	if err != nil {
		log.Warn("load pending commission totals for notification", zap.Error(err))
	}

	payload := notificationdomain.CommissionPayload{
		PartnerName:            partner.Name,
		BookingID:              commission.BookingID,
		TravelerName:           strings.TrimSpace(booking.TravelerName),
		TripTitle:              strings.TrimSpace(booking.TripTitle),
		TravelerCount:          booking.TravelerCount,
		BookingAmount:          commission.BookingAmount.StringFixed(2),
		CommissionRate:         commission.CommissionRate.String(),
		CommissionAmount:       commission.CommissionAmount.StringFixed(2),
		Currency:               commission.Currency,
		TripCategory:           commission.TripCategory.String(),
		PendingCommissionCount: pendingCount,
		PendingCommissionSum:   pendingSum.StringFixed(2),
	}
	if booking.DepartureDate != nil {
		payload.DepartureDate = booking.DepartureDate.Format(notificationdomain.DepartureDateLayout)
	}

	msg := notificationdomain.Message{
		ID:           notificationdomain.NewMessageID(),
		CommissionID: commission.ID,
		PartnerID:    partner.ID,
		To:           strings.TrimSpace(*partner.Email),
		Subject:      notificationservice.CommissionSubject(payload),
		Payload:      payload,
	}
	if !s.dispatcher.Enqueue(ctx, msg) {
		log.Warn("commission notification not queued", zap.String("message_id", msg.ID))
		return
	}
	s.metrics.RecordNotification(ctx, "queued")
}

func (s *Service) pendingTotals(ctx context.Context, partner *partnerdomain.Partner) (int64, decimal.Decimal, error) {
	rows, err := s.repo.TotalsByStatus(ctx, s.db, partner.ID, []commissiondomain.Status{commissiondomain.StatusPending})
	if err != nil {
		return 0, decimal.Zero, err
	}

	for _, row := range rows {
		if row.Status == commissiondomain.StatusPending {
			return row.CommissionCount, row.CommissionAmount, nil
		}
	}
	return 0, decimal.Zero, nil
}
