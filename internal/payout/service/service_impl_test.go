package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/partnerledger/internal/clock"
	commissiondomain "github.com/smallbiznis/partnerledger/internal/commission/domain"
	commissionrepo "github.com/smallbiznis/partnerledger/internal/commission/repository"
	payoutdomain "github.com/smallbiznis/partnerledger/internal/payout/domain"
	payoutrepo "github.com/smallbiznis/partnerledger/internal/payout/repository"
	payoutservice "github.com/smallbiznis/partnerledger/internal/payout/service"
	"github.com/smallbiznis/partnerledger/internal/testutil"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockLocker) Release(ctx context.Context, key, token string) error {
	return m.Called(key, token).Error(0)
}

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	partnerID snowflake.ID
	repo      commissiondomain.Repository
}

var march = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) fixture {
	t.Helper()

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	return fixture{
		db:        testutil.OpenDB(t),
		node:      node,
		partnerID: node.Generate(),
		repo:      commissionrepo.Provide(),
	}
}

func (f fixture) service(locker payoutdomain.RunLocker) payoutdomain.Service {
	return payoutservice.NewService(payoutservice.Params{
		DB:          f.db,
		Log:         zap.NewNop(),
		GenID:       f.node,
		Clock:       clock.NewFakeClock(time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)),
		Repo:        payoutrepo.NewRepository(f.db),
		Commissions: f.repo,
		Locker:      locker,
	})
}

func (f fixture) seed(t *testing.T, partnerID snowflake.ID, booking, amount string, status commissiondomain.Status, createdAt time.Time) {
	t.Helper()

	commissionAmount := decimal.RequireFromString(amount)
	require.NoError(t, f.repo.Insert(context.Background(), f.db, &commissiondomain.Commission{
		ID:               f.node.Generate(),
		PartnerID:        partnerID,
		BookingID:        booking,
		BookingAmount:    commissionAmount.Mul(decimal.NewFromInt(10)),
		CommissionRate:   decimal.NewFromInt(10),
		CommissionAmount: commissionAmount,
		Currency:         "USD",
		TripCategory:     tripcategory.Kilimanjaro,
		Status:           status,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}))
}

func (f fixture) statusOf(t *testing.T, booking string) commissiondomain.Status {
	t.Helper()

	c, err := f.repo.FindByBookingID(context.Background(), f.db, booking)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c.Status
}

func TestGeneratePayoutSumsEligibleCommissionsInWindow(t *testing.T) {
	f := newFixture(t)
	other := f.node.Generate()
	periodEnd := march.AddDate(0, 1, 0).Add(-time.Second)

	f.seed(t, f.partnerID, "BK-IN-1", "400", commissiondomain.StatusEligible, march.Add(24*time.Hour))
	f.seed(t, f.partnerID, "BK-IN-2", "125.5", commissiondomain.StatusEligible, march.Add(20*24*time.Hour))
	f.seed(t, f.partnerID, "BK-EDGE", "10", commissiondomain.StatusEligible, march)
	f.seed(t, f.partnerID, "BK-END", "4.5", commissiondomain.StatusEligible, periodEnd)
	f.seed(t, f.partnerID, "BK-PENDING", "300", commissiondomain.StatusPending, march.Add(48*time.Hour))
	f.seed(t, f.partnerID, "BK-VOID", "90", commissiondomain.StatusVoided, march.Add(48*time.Hour))
	f.seed(t, f.partnerID, "BK-PAID", "70", commissiondomain.StatusPaid, march.Add(48*time.Hour))
	f.seed(t, f.partnerID, "BK-FEB", "999", commissiondomain.StatusEligible, march.Add(-time.Hour))
	f.seed(t, f.partnerID, "BK-APR", "999", commissiondomain.StatusEligible, march.AddDate(0, 1, 0))
	f.seed(t, other, "BK-OTHER", "999", commissiondomain.StatusEligible, march.Add(24*time.Hour))

	svc := f.service(nil)
	payout, err := svc.GeneratePayout(context.Background(), payoutdomain.GenerateRequest{
		PartnerID:   f.partnerID.String(),
		PeriodStart: march,
		PeriodEnd:   periodEnd,
	})
	require.NoError(t, err)
	require.NotNil(t, payout)

	assert.Equal(t, int64(4), payout.CommissionCount)
	assert.True(t, payout.TotalAmount.Equal(decimal.RequireFromString("540")), payout.TotalAmount.String())
	assert.Equal(t, commissiondomain.StatusEligible, f.statusOf(t, "BK-END"))
	assert.Equal(t, payoutdomain.StatusPending, payout.Status)

	assert.Equal(t, commissiondomain.StatusEligible, f.statusOf(t, "BK-IN-1"))
	assert.Equal(t, commissiondomain.StatusEligible, f.statusOf(t, "BK-IN-2"))

	stored, err := svc.Get(context.Background(), payout.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(payout.TotalAmount))
	assert.True(t, stored.PeriodStart.Equal(march))

	items, err := svc.List(context.Background(), f.partnerID.String())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, payout.ID, items[0].ID)
}

func TestGeneratePayoutEmptySelectionCreatesNothing(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.partnerID, "BK-PENDING", "300", commissiondomain.StatusPending, march.Add(time.Hour))

	svc := f.service(nil)
	payout, err := svc.GeneratePayout(context.Background(), payoutdomain.GenerateRequest{
		PartnerID:   f.partnerID.String(),
		PeriodStart: march,
		PeriodEnd:   march.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	assert.Nil(t, payout)

	items, err := svc.List(context.Background(), f.partnerID.String())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGeneratePayoutValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil)
	ctx := context.Background()

	_, err := svc.GeneratePayout(ctx, payoutdomain.GenerateRequest{
		PartnerID:   f.partnerID.String(),
		PeriodStart: march,
		PeriodEnd:   march.Add(-time.Second),
	})
	assert.ErrorIs(t, err, payoutdomain.ErrInvalidPeriod)

	_, err = svc.GeneratePayout(ctx, payoutdomain.GenerateRequest{PartnerID: f.partnerID.String(), PeriodEnd: march})
	assert.ErrorIs(t, err, payoutdomain.ErrInvalidPeriod)

	_, err = svc.GeneratePayout(ctx, payoutdomain.GenerateRequest{PartnerID: "abc", PeriodStart: march, PeriodEnd: march})
	assert.ErrorIs(t, err, payoutdomain.ErrInvalidPartner)

	_, err = svc.Get(ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, payoutdomain.ErrNotFound)
}

func TestGeneratePayoutHonoursRunLock(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.partnerID, "BK-1", "400", commissiondomain.StatusEligible, march.Add(time.Hour))
	key := "payout:run:" + f.partnerID.String()
	req := payoutdomain.GenerateRequest{
		PartnerID:   f.partnerID.String(),
		PeriodStart: march,
		PeriodEnd:   march.AddDate(0, 1, 0),
	}

	busy := &mockLocker{}
	busy.On("TryLock", key).Return("", false, nil).Once()
	_, err := f.service(busy).GeneratePayout(context.Background(), req)
	assert.ErrorIs(t, err, payoutdomain.ErrPayoutInProgress)
	busy.AssertExpectations(t)
	busy.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)

	free := &mockLocker{}
	free.On("TryLock", key).Return("token-1", true, nil).Once()
	free.On("Release", key, "token-1").Return(nil).Once()
	payout, err := f.service(free).GeneratePayout(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, payout)
	free.AssertExpectations(t)
}
