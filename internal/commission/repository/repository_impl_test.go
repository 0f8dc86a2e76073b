package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	commissiondomain "github.com/smallbiznis/partnerledger/internal/commission/domain"
	commissionrepo "github.com/smallbiznis/partnerledger/internal/commission/repository"
	"github.com/smallbiznis/partnerledger/internal/testutil"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func insert(t *testing.T, db *gorm.DB, node *snowflake.Node, partnerID snowflake.ID, booking string, category tripcategory.Category, amount string, status commissiondomain.Status) {
	t.Helper()

	bookingAmount := decimal.RequireFromString(amount)
	rate := decimal.NewFromInt(10)
	now := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	require.NoError(t, commissionrepo.Provide().Insert(context.Background(), db, &commissiondomain.Commission{
		ID:               node.Generate(),
		PartnerID:        partnerID,
		BookingID:        booking,
		BookingAmount:    bookingAmount,
		CommissionRate:   rate,
		CommissionAmount: commissiondomain.ComputeAmount(bookingAmount, rate),
		Currency:         "USD",
		TripCategory:     category,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}))
}

func TestTotalsGroupedInQuery(t *testing.T) {
	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(6)
	require.NoError(t, err)
	repo := commissionrepo.Provide()
	ctx := context.Background()

	partnerID := node.Generate()
	other := node.Generate()
	insert(t, db, node, partnerID, "BK-1", tripcategory.Kilimanjaro, "1000", commissiondomain.StatusPending)
	insert(t, db, node, partnerID, "BK-2", tripcategory.Kilimanjaro, "3000", commissiondomain.StatusPending)
	insert(t, db, node, partnerID, "BK-3", tripcategory.Safari, "500", commissiondomain.StatusEligible)
	insert(t, db, node, partnerID, "BK-4", tripcategory.Safari, "700", commissiondomain.StatusVoided)
	insert(t, db, node, other, "BK-5", tripcategory.Safari, "9000", commissiondomain.StatusPending)

	all, err := repo.TotalsByStatus(ctx, db, partnerID, nil)
	require.NoError(t, err)
	byStatus := make(map[commissiondomain.Status]commissiondomain.StatusTotal)
	for _, row := range all {
		byStatus[row.Status] = row
	}
	require.Len(t, byStatus, 3)
	assert.Equal(t, int64(2), byStatus[commissiondomain.StatusPending].CommissionCount)
	assert.True(t, byStatus[commissiondomain.StatusPending].CommissionAmount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, int64(1), byStatus[commissiondomain.StatusEligible].CommissionCount)
	assert.True(t, byStatus[commissiondomain.StatusVoided].CommissionAmount.Equal(decimal.NewFromInt(70)))

	pending, err := repo.TotalsByStatus(ctx, db, partnerID, []commissiondomain.Status{commissiondomain.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, commissiondomain.StatusPending, pending[0].Status)

	categories, err := repo.TotalsByTripCategory(ctx, db, partnerID)
	require.NoError(t, err)
	byCategory := make(map[tripcategory.Category]commissiondomain.CategoryTotal)
	for _, row := range categories {
		byCategory[row.TripCategory] = row
	}
	require.Len(t, byCategory, 2)
	assert.Equal(t, int64(2), byCategory[tripcategory.Kilimanjaro].BookingCount)
	assert.True(t, byCategory[tripcategory.Kilimanjaro].BookingAmount.Equal(decimal.NewFromInt(4000)))
	assert.Equal(t, int64(1), byCategory[tripcategory.Safari].BookingCount)
	assert.True(t, byCategory[tripcategory.Safari].CommissionAmount.Equal(decimal.NewFromInt(50)))

	none, err := repo.TotalsByStatus(ctx, db, node.Generate(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
