package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/partnerledger/internal/clock"
	commissiondomain "github.com/smallbiznis/partnerledger/internal/commission/domain"
	commissionrepo "github.com/smallbiznis/partnerledger/internal/commission/repository"
	commissionservice "github.com/smallbiznis/partnerledger/internal/commission/service"
	ratedomain "github.com/smallbiznis/partnerledger/internal/commissionrate/domain"
	raterepo "github.com/smallbiznis/partnerledger/internal/commissionrate/repository"
	rateservice "github.com/smallbiznis/partnerledger/internal/commissionrate/service"
	"github.com/smallbiznis/partnerledger/internal/config"
	notificationdomain "github.com/smallbiznis/partnerledger/internal/notification/domain"
	obscontext "github.com/smallbiznis/partnerledger/internal/observability/context"
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
	partnerrepo "github.com/smallbiznis/partnerledger/internal/partner/repository"
	partnerservice "github.com/smallbiznis/partnerledger/internal/partner/service"
	"github.com/smallbiznis/partnerledger/internal/testutil"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeDispatcher struct {
	mu       sync.Mutex
	messages []notificationdomain.Message
}

func (d *fakeDispatcher) Enqueue(ctx context.Context, msg notificationdomain.Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
	return true
}

func (d *fakeDispatcher) sent() []notificationdomain.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notificationdomain.Message(nil), d.messages...)
}

type fixture struct {
	db         *gorm.DB
	svc        commissiondomain.Service
	partners   partnerdomain.Repository
	rates      ratedomain.Repository
	node       *snowflake.Node
	clk        *clock.FakeClock
	dispatcher *fakeDispatcher
}

func newFixture(t *testing.T, policy config.CommissionConfig) fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	partners := partnerrepo.NewRepository(db)
	rates := raterepo.NewRepository(db)
	holder := config.NewStaticCommissionConfig(policy)
	dispatcher := &fakeDispatcher{}

	svc := commissionservice.NewService(commissionservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  commissionrepo.Provide(),
		Selector: partnerservice.NewSelector(partnerservice.SelectorParams{
			Log:    zap.NewNop(),
			Repo:   partners,
			Policy: holder,
		}),
		Rates:      rateservice.NewResolver(zap.NewNop(), rates),
		Dispatcher: dispatcher,
		Policy:     holder,
	})

	return fixture{
		db:         db,
		svc:        svc,
		partners:   partners,
		rates:      rates,
		node:       node,
		clk:        clk,
		dispatcher: dispatcher,
	}
}

func (f fixture) seedPartner(t *testing.T, name string, category partnerdomain.Category, email *string) *partnerdomain.Partner {
	t.Helper()

	partner := &partnerdomain.Partner{
		ID:           f.node.Generate(),
		Name:         name,
		Category:     category,
		Email:        email,
		ReferralCode: name,
		IsActive:     true,
		CreatedAt:    f.clk.Now(),
		UpdatedAt:    f.clk.Now(),
	}
	require.NoError(t, f.partners.Create(context.Background(), partner))
	return partner
}

func (f fixture) seedRate(t *testing.T, partnerID snowflake.ID, category tripcategory.Category, pct string) {
	t.Helper()

	require.NoError(t, f.rates.Create(context.Background(), &ratedomain.CommissionRate{
		ID:           f.node.Generate(),
		PartnerID:    partnerID,
		TripCategory: category,
		Percentage:   decimal.RequireFromString(pct),
		IsActive:     true,
		CreatedAt:    f.clk.Now(),
		UpdatedAt:    f.clk.Now(),
	}))
}

func strPtr(v string) *string { return &v }

func bookingRequest(bookingID, amount, category string) commissiondomain.CreateRequest {
	return commissiondomain.CreateRequest{
		BookingID:     bookingID,
		BookingAmount: decimal.RequireFromString(amount),
		TripCategory:  category,
	}
}

func TestCommissionLifecycleFromBookingToPaid(t *testing.T) {
	f := newFixture(t, config.DefaultCommissionConfig())
	ctx := obscontext.WithActor(context.Background(), "booking-hook")
	partner := f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, nil)
	f.seedRate(t, partner.ID, tripcategory.Kilimanjaro, "10")

	created, err := f.svc.CreateCommission(ctx, bookingRequest("BK-4000", "4000", "kilimanjaro"))
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, partner.ID, created.PartnerID)
	assert.Equal(t, commissiondomain.StatusPending, created.Status)
	assert.Equal(t, "USD", created.Currency)
	assert.True(t, created.CommissionRate.Equal(decimal.NewFromInt(10)))
	assert.True(t, created.CommissionAmount.Equal(decimal.NewFromInt(400)), created.CommissionAmount.String())

	f.clk.Advance(24 * time.Hour)
	eligible, err := f.svc.Transition(ctx, "BK-4000", commissiondomain.StatusEligible)
	require.NoError(t, err)
	require.NotNil(t, eligible)
	assert.Equal(t, commissiondomain.StatusEligible, eligible.Status)

	f.clk.Advance(24 * time.Hour)
	paid, err := f.svc.MarkPaid(ctx, commissiondomain.MarkPaidRequest{
		ID:               created.ID.String(),
		PaymentReference: strPtr(" WIRE-77 "),
	})
	require.NoError(t, err)
	assert.Equal(t, commissiondomain.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(f.clk.Now()))
	require.NotNil(t, paid.PaymentReference)
	assert.Equal(t, "WIRE-77", *paid.PaymentReference)

	stored, err := f.svc.GetByBookingID(ctx, "BK-4000")
	require.NoError(t, err)
	assert.Equal(t, commissiondomain.StatusPaid, stored.Status)
	require.NotNil(t, stored.PaidAt)
	assert.True(t, stored.PaidAt.Equal(f.clk.Now()))
	assert.True(t, stored.CommissionAmount.Equal(decimal.NewFromInt(400)))

	history, err := f.svc.History(ctx, created.ID.String())
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, commissiondomain.StatusPending, history[0].ToStatus)
	require.NotNil(t, history[1].FromStatus)
	assert.Equal(t, commissiondomain.StatusPending, *history[1].FromStatus)
	assert.Equal(t, commissiondomain.StatusEligible, history[1].ToStatus)
	assert.Equal(t, commissiondomain.StatusPaid, history[2].ToStatus)
	for _, event := range history {
		assert.Equal(t, "booking-hook", event.Actor)
	}
}

func TestCreateCommissionKeepsFullPrecision(t *testing.T) {
	f := newFixture(t, config.DefaultCommissionConfig())
	partner := f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, nil)
	f.seedRate(t, partner.ID, tripcategory.Safari, "12.5")

	created, err := f.svc.CreateCommission(context.Background(), bookingRequest("BK-PREC", "1234.57", "Safari"))
	require.NoError(t, err)
	require.NotNil(t, created)

	expected := decimal.RequireFromString("154.32125")
	assert.True(t, created.CommissionAmount.Equal(expected), created.CommissionAmount.String())
	assert.Equal(t, tripcategory.Safari, created.TripCategory)

	stored, err := f.svc.Get(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.CommissionAmount.Equal(expected), stored.CommissionAmount.String())
}

func TestCreateCommissionRejectsAmountBeyondStoredScale(t *testing.T) {
	f := newFixture(t, config.DefaultCommissionConfig())
	ctx := context.Background()
	partner := f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, nil)
	f.seedRate(t, partner.ID, tripcategory.Safari, "10")

	got, err := f.svc.CreateCommission(ctx, bookingRequest("BK-SCALE", "100.123456", "safari"))
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidAmount)
	assert.Nil(t, got)

	_, err = f.svc.GetByBookingID(ctx, "BK-SCALE")
	assert.ErrorIs(t, err, commissiondomain.ErrNotFound)

	// trailing zeros past the stored scale do not change the value
	created, err := f.svc.CreateCommission(ctx, bookingRequest("BK-SCALE", "100.123400", "safari"))
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, created.CommissionAmount.Equal(decimal.RequireFromString("10.01234")), created.CommissionAmount.String())

	stored, err := f.svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.CommissionAmount.Equal(commissiondomain.ComputeAmount(stored.BookingAmount, stored.CommissionRate)))
}

func TestCreateCommissionRejectsDuplicateBooking(t *testing.T) {
	f := newFixture(t, config.DefaultCommissionConfig())
	ctx := context.Background()
	partner := f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, nil)
	f.seedRate(t, partner.ID, tripcategory.Zanzibar, "8")

	_, err := f.svc.CreateCommission(ctx, bookingRequest("BK-DUP", "900", "zanzibar"))
	require.NoError(t, err)

	again, err := f.svc.CreateCommission(ctx, bookingRequest("BK-DUP", "900", "zanzibar"))
	assert.ErrorIs(t, err, commissiondomain.ErrDuplicateCommission)
	assert.Nil(t, again)

	items, err := f.svc.List(ctx, commissiondomain.ListRequest{PartnerID: partner.ID.String()})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestConcurrentCreationYieldsSingleCommission(t *testing.T) {
	f := newFixture(t, config.DefaultCommissionConfig())
	partner := f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, nil)
	f.seedRate(t, partner.ID, tripcategory.Kilimanjaro, "10")

	const attempts = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		created    int
		duplicates int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := f.svc.CreateCommission(context.Background(), bookingRequest("BK-RACE", "4000", "kilimanjaro"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && c != nil:
				created++
			case err != nil && assert.ErrorIs(t, err, commissiondomain.ErrDuplicateCommission):
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, duplicates)

	var count int64
	require.NoError(t, f.db.Raw(`SELECT COUNT(*) FROM commissions WHERE booking_id = ?`, "BK-RACE").Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateCommissionSoftOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("no active marketing partner", func(t *testing.T) {
		f := newFixture(t, config.DefaultCommissionConfig())
		agent := f.seedPartner(t, "kibo-agent", partnerdomain.CategoryAgent, nil)
		f.seedRate(t, agent.ID, tripcategory.Kilimanjaro, "10")

		got, err := f.svc.CreateCommission(ctx, bookingRequest("BK-1", "4000", "kilimanjaro"))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("no rate for category", func(t *testing.T) {
		f := newFixture(t, config.DefaultCommissionConfig())
		partner := f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, nil)
		f.seedRate(t, partner.ID, tripcategory.Kilimanjaro, "10")

		got, err := f.svc.CreateCommission(ctx, bookingRequest("BK-DAY", "150", "daytrip"))
		require.NoError(t, err)
		assert.Nil(t, got)

		_, err = f.svc.GetByBookingID(ctx, "BK-DAY")
		assert.ErrorIs(t, err, commissiondomain.ErrNotFound)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := newFixture(t, config.DefaultCommissionConfig())
		partner := f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, nil)
		f.seedRate(t, partner.ID, tripcategory.Kilimanjaro, "10")

		got, err := f.svc.CreateCommission(ctx, bookingRequest("BK-CRUISE", "150", "cruise"))
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestCreateCommissionValidation(t *testing.T) {
	f := newFixture(t, config.DefaultCommissionConfig())
	ctx := context.Background()

	_, err := f.svc.CreateCommission(ctx, bookingRequest(" ", "10", "safari"))
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidBookingID)

	_, err = f.svc.CreateCommission(ctx, bookingRequest("BK-ZERO", "0", "safari"))
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidAmount)

	_, err = f.svc.CreateCommission(ctx, bookingRequest("BK-NEG", "-25", "safari"))
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidAmount)

	req := bookingRequest("BK-CUR", "10", "safari")
	req.Currency = "dollars"
	_, err = f.svc.CreateCommission(ctx, req)
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidCurrency)
}

func TestReferralCodeCreditsReferringPartner(t *testing.T) {
	f := newFixture(t, config.DefaultCommissionConfig())
	ctx := context.Background()
	marketing := f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, nil)
	agent := f.seedPartner(t, "kibo-agent", partnerdomain.CategoryAgent, nil)
	f.seedRate(t, marketing.ID, tripcategory.Safari, "10")
	f.seedRate(t, agent.ID, tripcategory.Safari, "15")

	req := bookingRequest("BK-REF", "2000", "safari")
	req.ReferralCode = "kibo-agent"
	req.Currency = "eur"
	got, err := f.svc.CreateCommission(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, agent.ID, got.PartnerID)
	assert.Equal(t, "EUR", got.Currency)
	assert.True(t, got.CommissionAmount.Equal(decimal.NewFromInt(300)))
}

func TestTransitionRules(t *testing.T) {
	f := newFixture(t, config.DefaultCommissionConfig())
	ctx := context.Background()
	partner := f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, nil)
	f.seedRate(t, partner.ID, tripcategory.Kilimanjaro, "10")

	created, err := f.svc.CreateCommission(ctx, bookingRequest("BK-CANCEL", "4000", "kilimanjaro"))
	require.NoError(t, err)

	_, err = f.svc.MarkPaid(ctx, commissiondomain.MarkPaidRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidTransition)
	assert.ErrorContains(t, err, "pending -> paid")

	voided, err := f.svc.Transition(ctx, "BK-CANCEL", commissiondomain.StatusVoided)
	require.NoError(t, err)
	assert.Equal(t, commissiondomain.StatusVoided, voided.Status)

	_, err = f.svc.Transition(ctx, "BK-CANCEL", commissiondomain.StatusEligible)
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidTransition)
	assert.ErrorContains(t, err, "commission is already voided")

	_, err = f.svc.Transition(ctx, "BK-CANCEL", commissiondomain.StatusVoided)
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidTransition)

	stored, err := f.svc.GetByBookingID(ctx, "BK-CANCEL")
	require.NoError(t, err)
	assert.Equal(t, commissiondomain.StatusVoided, stored.Status)

	_, err = f.svc.Transition(ctx, "BK-CANCEL", commissiondomain.StatusPaid)
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidStatus)

	none, err := f.svc.Transition(ctx, "BK-UNKNOWN", commissiondomain.StatusEligible)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCreateCommissionQueuesNotification(t *testing.T) {
	f := newFixture(t, config.DefaultCommissionConfig())
	ctx := context.Background()
	partner := f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, strPtr("partner@timeless.example"))
	f.seedRate(t, partner.ID, tripcategory.Kilimanjaro, "10")

	_, err := f.svc.CreateCommission(ctx, bookingRequest("BK-A", "1000", "kilimanjaro"))
	require.NoError(t, err)

	departure := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)
	req := bookingRequest("BK-B", "4000", "kilimanjaro")
	req.Booking = commissiondomain.BookingDetails{
		TravelerName:  "Amina Juma",
		TripTitle:     "7-Day Machame Route",
		DepartureDate: &departure,
		TravelerCount: 2,
	}
	created, err := f.svc.CreateCommission(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, created.TripTitle)
	assert.Equal(t, "7-Day Machame Route", *created.TripTitle)

	sent := f.dispatcher.sent()
	require.Len(t, sent, 2)

	msg := sent[1]
	assert.Equal(t, "partner@timeless.example", msg.To)
	assert.Equal(t, created.ID, msg.CommissionID)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, notificationdomain.CommissionPayload{
		PartnerName:            "timeless-marketing",
		BookingID:              "BK-B",
		TravelerName:           "Amina Juma",
		TripTitle:              "7-Day Machame Route",
		DepartureDate:          "July 4, 2026",
		TravelerCount:          2,
		BookingAmount:          "4000.00",
		CommissionRate:         "10",
		CommissionAmount:       "400.00",
		Currency:               "USD",
		TripCategory:           "kilimanjaro",
		PendingCommissionCount: 2,
		PendingCommissionSum:   "500.00",
	}, msg.Payload)
}

func TestNotificationSkippedWithoutContactOrWhenDisabled(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, config.DefaultCommissionConfig())
	partner := f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, nil)
	f.seedRate(t, partner.ID, tripcategory.Kilimanjaro, "10")
	_, err := f.svc.CreateCommission(ctx, bookingRequest("BK-NOMAIL", "1000", "kilimanjaro"))
	require.NoError(t, err)
	assert.Empty(t, f.dispatcher.sent())

	policy := config.DefaultCommissionConfig()
	policy.Notifications.Enabled = false
	f = newFixture(t, policy)
	partner = f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, strPtr("partner@timeless.example"))
	f.seedRate(t, partner.ID, tripcategory.Kilimanjaro, "10")
	_, err = f.svc.CreateCommission(ctx, bookingRequest("BK-QUIET", "1000", "kilimanjaro"))
	require.NoError(t, err)
	assert.Empty(t, f.dispatcher.sent())
}

func TestListValidatesFilters(t *testing.T) {
	f := newFixture(t, config.DefaultCommissionConfig())
	ctx := context.Background()
	partner := f.seedPartner(t, "timeless-marketing", partnerdomain.CategoryMarketing, nil)
	f.seedRate(t, partner.ID, tripcategory.Kilimanjaro, "10")

	_, err := f.svc.CreateCommission(ctx, bookingRequest("BK-1", "1000", "kilimanjaro"))
	require.NoError(t, err)
	_, err = f.svc.CreateCommission(ctx, bookingRequest("BK-2", "2000", "kilimanjaro"))
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, "BK-2", commissiondomain.StatusEligible)
	require.NoError(t, err)

	items, err := f.svc.List(ctx, commissiondomain.ListRequest{PartnerID: partner.ID.String(), Status: "ELIGIBLE"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "BK-2", items[0].BookingID)

	_, err = f.svc.List(ctx, commissiondomain.ListRequest{PartnerID: "nope"})
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidPartner)

	_, err = f.svc.List(ctx, commissiondomain.ListRequest{Status: "refunded"})
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidStatus)
}
