package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/partnerledger/internal/clock"
	ratedomain "github.com/smallbiznis/partnerledger/internal/commissionrate/domain"
	raterepo "github.com/smallbiznis/partnerledger/internal/commissionrate/repository"
	rateservice "github.com/smallbiznis/partnerledger/internal/commissionrate/service"
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
	partnerrepo "github.com/smallbiznis/partnerledger/internal/partner/repository"
	"github.com/smallbiznis/partnerledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc      ratedomain.Service
	resolver ratedomain.Resolver
	repo     ratedomain.Repository
	node     *snowflake.Node
	partner  *partnerdomain.Partner
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC))
	partners := partnerrepo.NewRepository(db)
	partner := &partnerdomain.Partner{
		ID:           node.Generate(),
		Name:         "Timeless Marketing",
		Category:     partnerdomain.CategoryMarketing,
		ReferralCode: "timeless-marketing",
		IsActive:     true,
		CreatedAt:    clk.Now(),
		UpdatedAt:    clk.Now(),
	}
	require.NoError(t, partners.Create(context.Background(), partner))

	repo := raterepo.NewRepository(db)
	svc := rateservice.NewService(rateservice.Params{
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     repo,
		Partners: partners,
	})

	return fixture{
		svc:      svc,
		resolver: rateservice.NewResolver(zap.NewNop(), repo),
		repo:     repo,
		node:     node,
		partner:  partner,
	}
}

func TestCreateAndResolveRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rate, err := f.svc.Create(ctx, ratedomain.CreateRequest{
		PartnerID:    f.partner.ID.String(),
		TripCategory: " Kilimanjaro ",
		Percentage:   decimal.RequireFromString("12.5"),
	})
	require.NoError(t, err)
	assert.True(t, rate.IsActive)
	assert.Equal(t, "kilimanjaro", rate.TripCategory.String())

	pct, err := f.resolver.ResolveRate(ctx, f.partner.ID, "kilimanjaro")
	require.NoError(t, err)
	require.NotNil(t, pct)
	assert.True(t, pct.Equal(decimal.RequireFromString("12.5")), pct.String())
}

func TestResolveRateReturnsNoneForUnknownCategoryOrMissingRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, ratedomain.CreateRequest{
		PartnerID:    f.partner.ID.String(),
		TripCategory: "safari",
		Percentage:   decimal.NewFromInt(8),
		IsActive:     boolPtr(false),
	})
	require.NoError(t, err)

	pct, err := f.resolver.ResolveRate(ctx, f.partner.ID, "cruise")
	require.NoError(t, err)
	assert.Nil(t, pct)

	pct, err = f.resolver.ResolveRate(ctx, f.partner.ID, "safari")
	require.NoError(t, err)
	assert.Nil(t, pct)

	pct, err = f.resolver.ResolveRate(ctx, f.node.Generate(), "safari")
	require.NoError(t, err)
	assert.Nil(t, pct)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  ratedomain.CreateRequest
		err  error
	}{
		{
			name: "bad partner id",
			req:  ratedomain.CreateRequest{PartnerID: "x", TripCategory: "safari", Percentage: decimal.NewFromInt(5)},
			err:  ratedomain.ErrInvalidPartner,
		},
		{
			name: "unknown partner",
			req:  ratedomain.CreateRequest{PartnerID: f.node.Generate().String(), TripCategory: "safari", Percentage: decimal.NewFromInt(5)},
			err:  partnerdomain.ErrNotFound,
		},
		{
			name: "unknown category",
			req:  ratedomain.CreateRequest{PartnerID: f.partner.ID.String(), TripCategory: "cruise", Percentage: decimal.NewFromInt(5)},
			err:  ratedomain.ErrInvalidTripCategory,
		},
		{
			name: "negative percentage",
			req:  ratedomain.CreateRequest{PartnerID: f.partner.ID.String(), TripCategory: "safari", Percentage: decimal.NewFromInt(-1)},
			err:  ratedomain.ErrInvalidRate,
		},
		{
			name: "percentage above hundred",
			req:  ratedomain.CreateRequest{PartnerID: f.partner.ID.String(), TripCategory: "safari", Percentage: decimal.RequireFromString("100.01")},
			err:  ratedomain.ErrInvalidRate,
		},
		{
			name: "percentage beyond four decimals",
			req:  ratedomain.CreateRequest{PartnerID: f.partner.ID.String(), TripCategory: "safari", Percentage: decimal.RequireFromString("12.34567")},
			err:  ratedomain.ErrInvalidRate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestSecondActiveRateIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, ratedomain.CreateRequest{
		PartnerID:    f.partner.ID.String(),
		TripCategory: "zanzibar",
		Percentage:   decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, ratedomain.CreateRequest{
		PartnerID:    f.partner.ID.String(),
		TripCategory: "zanzibar",
		Percentage:   decimal.NewFromInt(15),
	})
	assert.ErrorIs(t, err, ratedomain.ErrDuplicateActiveRate)

	inactive, err := f.svc.Create(ctx, ratedomain.CreateRequest{
		PartnerID:    f.partner.ID.String(),
		TripCategory: "zanzibar",
		Percentage:   decimal.NewFromInt(15),
		IsActive:     boolPtr(false),
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, ratedomain.UpdateRequest{ID: inactive.ID.String(), IsActive: boolPtr(true)})
	assert.ErrorIs(t, err, ratedomain.ErrDuplicateActiveRate)

	_, err = f.svc.Deactivate(ctx, first.ID.String())
	require.NoError(t, err)

	activated, err := f.svc.Update(ctx, ratedomain.UpdateRequest{ID: inactive.ID.String(), IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	pct, err := f.resolver.ResolveRate(ctx, f.partner.ID, "zanzibar")
	require.NoError(t, err)
	require.NotNil(t, pct)
	assert.True(t, pct.Equal(decimal.NewFromInt(15)))
}

func TestUpdatePercentageAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rate, err := f.svc.Create(ctx, ratedomain.CreateRequest{
		PartnerID:    f.partner.ID.String(),
		TripCategory: "daytrip",
		Percentage:   decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	bad := decimal.NewFromInt(101)
	_, err = f.svc.Update(ctx, ratedomain.UpdateRequest{ID: rate.ID.String(), Percentage: &bad})
	assert.ErrorIs(t, err, ratedomain.ErrInvalidRate)

	tooFine := decimal.RequireFromString("7.123456")
	_, err = f.svc.Update(ctx, ratedomain.UpdateRequest{ID: rate.ID.String(), Percentage: &tooFine})
	assert.ErrorIs(t, err, ratedomain.ErrInvalidRate)

	next := decimal.RequireFromString("7.25")
	updated, err := f.svc.Update(ctx, ratedomain.UpdateRequest{ID: rate.ID.String(), Percentage: &next})
	require.NoError(t, err)
	assert.True(t, updated.Percentage.Equal(next))

	items, err := f.svc.List(ctx, ratedomain.ListRequest{PartnerID: f.partner.ID.String()})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Percentage.Equal(next))

	_, err = f.svc.Update(ctx, ratedomain.UpdateRequest{ID: f.node.Generate().String()})
	assert.ErrorIs(t, err, ratedomain.ErrNotFound)
}

func boolPtr(v bool) *bool { return &v }
