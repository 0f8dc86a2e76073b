package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/smallbiznis/partnerledger/internal/commission/domain"
	ratedomain "github.com/smallbiznis/partnerledger/internal/commissionrate/domain"
	"github.com/smallbiznis/partnerledger/internal/clock"
	"github.com/smallbiznis/partnerledger/internal/config"
	notificationdomain "github.com/smallbiznis/partnerledger/internal/notification/domain"
	obscontext "github.com/smallbiznis/partnerledger/internal/observability/context"
	obsmetrics "github.com/smallbiznis/partnerledger/internal/observability/metrics"
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
	"github.com/smallbiznis/partnerledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const systemActor = "system"

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       commissiondomain.Repository
	Selector   partnerdomain.Selector
	Rates      ratedomain.Resolver
	Dispatcher notificationdomain.Dispatcher  `optional:"true"`
	Policy     *config.CommissionConfigHolder `optional:"true"`
	Metrics    *obsmetrics.Metrics            `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       commissiondomain.Repository
	selector   partnerdomain.Selector
	rates      ratedomain.Resolver
	dispatcher notificationdomain.Dispatcher
	policy     *config.CommissionConfigHolder
	metrics    *obsmetrics.Metrics
}

func NewService(p Params) commissiondomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("commission.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		selector:   p.Selector,
		rates:      p.Rates,
		dispatcher: p.Dispatcher,
		policy:     p.Policy,
		metrics:    p.Metrics,
	}
}

func (s *Service) CreateCommission(ctx context.Context, req commissiondomain.CreateRequest) (*commissiondomain.Commission, error) {
	bookingID := strings.TrimSpace(req.BookingID)
	if bookingID == "" {
		return nil, commissiondomain.ErrInvalidBookingID
	}
	if !commissiondomain.ValidBookingAmount(req.BookingAmount) {
		return nil, commissiondomain.ErrInvalidAmount
	}

	policy := s.policy.Get()
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = policy.DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, commissiondomain.ErrInvalidCurrency
	}

	log := s.log.With(
		zap.String("booking_id", bookingID),
		zap.String("trip_category", req.TripCategory),
	)

	partner, err := s.selector.SelectCreditPartner(ctx, partnerdomain.Attribution{ReferralCode: req.ReferralCode})
	if err != nil {
		return nil, err
	}
	if partner == nil {
		log.Info("no active credit partner, commission skipped")
		s.metrics.RecordCommissionSkipped(ctx, "no_partner")
		return nil, nil
	}

	rate, err := s.rates.ResolveRate(ctx, partner.ID, req.TripCategory)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		log.Info("no active commission rate, commission skipped", zap.String("partner_id", partner.ID.String()))
		s.metrics.RecordCommissionSkipped(ctx, "no_rate")
		return nil, nil
	}
	// a resolved rate implies a known category
	category, _ := tripcategory.Parse(req.TripCategory)

	now := s.clock.Now()
	commission := &commissiondomain.Commission{
		ID:               s.genID.Generate(),
		PartnerID:        partner.ID,
		BookingID:        bookingID,
		BookingAmount:    req.BookingAmount,
		CommissionRate:   *rate,
		CommissionAmount: commissiondomain.ComputeAmount(req.BookingAmount, *rate),
		Currency:         currency,
		TripCategory:     category,
		TripTitle:        optionalString(req.Booking.TripTitle),
		Status:           commissiondomain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, commission); err != nil {
			return err
		}
		return s.repo.InsertStatusEvent(ctx, tx, s.statusEvent(ctx, commission.ID, nil, commissiondomain.StatusPending, now))
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			log.Warn("commission already exists for booking")
			return nil, commissiondomain.ErrDuplicateCommission
		}
		return nil, err
	}

	log.Info("commission created",
		zap.String("commission_id", commission.ID.String()),
		zap.String("partner_id", partner.ID.String()),
		zap.String("commission_amount", commission.CommissionAmount.String()),
	)
	s.metrics.RecordCommissionCreated(ctx, category.String())

	if policy.Notifications.Enabled {
		s.notify(ctx, partner, commission, req.Booking)
	}

	return commission, nil
}

func (s *Service) Transition(ctx context.Context, bookingID string, target commissiondomain.Status) (*commissiondomain.Commission, error) {
	if target != commissiondomain.StatusEligible && target != commissiondomain.StatusVoided {
		return nil, commissiondomain.ErrInvalidStatus
	}
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, commissiondomain.ErrInvalidBookingID
	}

	commission, err := s.repo.FindByBookingID(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if commission == nil {
		s.log.Debug("no commission for booking, transition ignored", zap.String("booking_id", bookingID))
		return nil, nil
	}

	if err := s.applyTransition(ctx, commission, target, nil); err != nil {
		return nil, err
	}
	return commission, nil
}

func (s *Service) MarkPaid(ctx context.Context, req commissiondomain.MarkPaidRequest) (*commissiondomain.Commission, error) {
	commission, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	paidAt := s.clock.Now()
	update := &commissiondomain.StatusUpdate{
		PaidAt:           &paidAt,
		PaymentReference: optionalString(derefString(req.PaymentReference)),
	}
	if err := s.applyTransition(ctx, commission, commissiondomain.StatusPaid, update); err != nil {
		return nil, err
	}
	return commission, nil
}

// applyTransition moves commission to target with a compare-and-set update
// and records the status event in the same transaction. On success the
// commission is updated in place.
func (s *Service) applyTransition(ctx context.Context, commission *commissiondomain.Commission, target commissiondomain.Status, extra *commissiondomain.StatusUpdate) error {
	from := commission.Status
	if from.Terminal() {
		return fmt.Errorf("%w: commission is already %s", commissiondomain.ErrInvalidTransition, from)
	}
	if !commissiondomain.CanTransition(from, target) {
		return fmt.Errorf("%w: %s -> %s", commissiondomain.ErrInvalidTransition, from, target)
	}

	now := s.clock.Now()
	update := commissiondomain.StatusUpdate{
		ID:        commission.ID,
		From:      from,
		To:        target,
		UpdatedAt: now,
	}
	if extra != nil {
		update.PaidAt = extra.PaidAt
		update.PaymentReference = extra.PaymentReference
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := s.repo.UpdateStatus(ctx, tx, update)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("%w: status changed concurrently", commissiondomain.ErrInvalidTransition)
		}
		return s.repo.InsertStatusEvent(ctx, tx, s.statusEvent(ctx, commission.ID, &from, target, now))
	})
	if err != nil {
		return err
	}

	commission.Status = target
	commission.UpdatedAt = now
	if update.PaidAt != nil {
		commission.PaidAt = update.PaidAt
	}
	if update.PaymentReference != nil {
		commission.PaymentReference = update.PaymentReference
	}

	s.log.Info("commission status changed",
		zap.String("commission_id", commission.ID.String()),
		zap.String("booking_id", commission.BookingID),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(target)),
	)
	s.metrics.RecordCommissionTransition(ctx, string(from), string(target))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*commissiondomain.Commission, error) {
	commissionID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || commissionID == 0 {
		return nil, commissiondomain.ErrInvalidID
	}

	commission, err := s.repo.FindByID(ctx, s.db, commissionID)
	if err != nil {
		return nil, err
	}
	if commission == nil {
		return nil, commissiondomain.ErrNotFound
	}
	return commission, nil
}

func (s *Service) GetByBookingID(ctx context.Context, bookingID string) (*commissiondomain.Commission, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, commissiondomain.ErrInvalidBookingID
	}

	commission, err := s.repo.FindByBookingID(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if commission == nil {
		return nil, commissiondomain.ErrNotFound
	}
	return commission, nil
}

func (s *Service) List(ctx context.Context, req commissiondomain.ListRequest) ([]commissiondomain.Commission, error) {
	var filter commissiondomain.ListFilter

	if raw := strings.TrimSpace(req.PartnerID); raw != "" {
		partnerID, err := snowflake.ParseString(raw)
		if err != nil || partnerID == 0 {
			return nil, commissiondomain.ErrInvalidPartner
		}
		filter.PartnerID = partnerID
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, ok := commissiondomain.ParseStatus(raw)
		if !ok {
			return nil, commissiondomain.ErrInvalidStatus
		}
		filter.Statuses = []commissiondomain.Status{status}
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []commissiondomain.Commission{}
	}
	return items, nil
}

func (s *Service) History(ctx context.Context, id string) ([]commissiondomain.StatusEvent, error) {
	commission, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	events, err := s.repo.ListStatusEvents(ctx, s.db, commission.ID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []commissiondomain.StatusEvent{}
	}
	return events, nil
}

func (s *Service) statusEvent(ctx context.Context, commissionID snowflake.ID, from *commissiondomain.Status, to commissiondomain.Status, at time.Time) *commissiondomain.StatusEvent {
	actor := strings.TrimSpace(obscontext.ActorFromContext(ctx))
	if actor == "" {
		actor = systemActor
	}
	return &commissiondomain.StatusEvent{
		ID:           s.genID.Generate(),
		CommissionID: commissionID,
		FromStatus:   from,
		ToStatus:     to,
		Actor:        actor,
		OccurredAt:   at,
	}
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
