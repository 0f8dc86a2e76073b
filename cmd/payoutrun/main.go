package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/partnerledger/internal/clock"
	commissionrepo "github.com/smallbiznis/partnerledger/internal/commission/repository"
	"github.com/smallbiznis/partnerledger/internal/config"
	"github.com/smallbiznis/partnerledger/internal/observability"
	"github.com/smallbiznis/partnerledger/internal/partner"
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
	"github.com/smallbiznis/partnerledger/internal/payout"
	payoutdomain "github.com/smallbiznis/partnerledger/internal/payout/domain"
	"github.com/smallbiznis/partnerledger/internal/ratelimit"
	"github.com/smallbiznis/partnerledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var errInvalidPeriod = errors.New("invalid_period")

func main() {
	from := flag.String("from", "", "period start (YYYY-MM-DD), defaults to the first day of last month")
	to := flag.String("to", "", "period end (YYYY-MM-DD), defaults to the last day of last month")
	flag.Parse()

	var (
		log      *zap.Logger
		clk      clock.Clock
		partners partnerdomain.Service
		payouts  payoutdomain.Service
	)

	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		ratelimit.Module,
		partner.Module,
		fx.Provide(commissionrepo.Provide),
		payout.Module,
		fx.NopLogger,
		fx.Populate(&log, &clk, &partners, &payouts),
	)

	if !start(app, os.Stderr) {
		os.Exit(1)
	}

	code := 0
	periodStart, periodEnd, err := resolvePeriod(*from, *to, clk.Now())
	if err != nil {
		log.Error("invalid payout period", zap.String("from", *from), zap.String("to", *to), zap.Error(err))
		code = 2
	} else if err := runPayouts(context.Background(), log.Named("payout.run"), partners, payouts, periodStart, periodEnd); err != nil {
		code = 1
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	_ = app.Stop(stopCtx)
	os.Exit(code)
}

// start reports a failed startup on stderr; the zap logger may not exist yet.
func start(app *fx.App, stderr io.Writer) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(stderr, "payoutrun: start failed: %v\n", err)
		return false
	}
	return true
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}

// resolvePeriod defaults to the previous calendar month in UTC. The end
// bound is inclusive to the last nanosecond of its day.
func resolvePeriod(from, to string, now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := firstOfMonth.AddDate(0, -1, 0)
	end := firstOfMonth.Add(-time.Nanosecond)

	if from != "" {
		parsed, err := time.Parse(dateLayout, from)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidPeriod
		}
		start = parsed
	}
	if to != "" {
		parsed, err := time.Parse(dateLayout, to)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidPeriod
		}
		end = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errInvalidPeriod
	}
	return start, end, nil
}

// runPayouts generates one payout per active partner. A failing partner is
// logged and the run continues; the returned error reports that at least
// one partner failed.
func runPayouts(ctx context.Context, log *zap.Logger, partners partnerdomain.Service, payouts payoutdomain.Service, start, end time.Time) error {
	active := true
	items, err := partners.List(ctx, partnerdomain.ListRequest{IsActive: &active})
	if err != nil {
		log.Error("list active partners", zap.Error(err))
		return err
	}

	var (
		generated int
		failed    int
	)
	for _, p := range items {
		result, err := payouts.GeneratePayout(ctx, payoutdomain.GenerateRequest{
			PartnerID:   p.ID.String(),
			PeriodStart: start,
			PeriodEnd:   end,
		})
		if err != nil {
			failed++
			log.Error("generate payout", zap.String("partner_id", p.ID.String()), zap.Error(err))
			continue
		}
		if result != nil {
			generated++
		}
	}

	log.Info("payout run finished",
		zap.Time("period_start", start),
		zap.Time("period_end", end),
		zap.Int("partners", len(items)),
		zap.Int("generated", generated),
		zap.Int("failed", failed),
	)
	if failed > 0 {
		return errors.New("payout run had failures")
	}
	return nil
}
