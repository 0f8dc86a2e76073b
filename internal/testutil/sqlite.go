// Package testutil opens in-memory sqlite databases carrying the service schema.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Money columns are TEXT so decimals round-trip without float conversion.
var schema = []string{
	`CREATE TABLE partners (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		email TEXT,
		referral_code TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX ux_partners_referral_code ON partners(referral_code)`,
	`CREATE TABLE commission_rates (
		id BIGINT PRIMARY KEY,
		partner_id BIGINT NOT NULL,
		trip_category TEXT NOT NULL,
		percentage TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX ux_commission_rates_active ON commission_rates(partner_id, trip_category) WHERE is_active`,
	`CREATE TABLE commissions (
		id BIGINT PRIMARY KEY,
		partner_id BIGINT NOT NULL,
		booking_id TEXT NOT NULL,
		booking_amount TEXT NOT NULL,
		commission_rate TEXT NOT NULL,
		commission_amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		trip_category TEXT NOT NULL,
		trip_title TEXT,
		status TEXT NOT NULL,
		paid_at DATETIME,
		payment_reference TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX ux_commissions_booking_id ON commissions(booking_id)`,
	`CREATE INDEX ix_commissions_partner_status ON commissions(partner_id, status)`,
	`CREATE TABLE commission_status_events (
		id BIGINT PRIMARY KEY,
		commission_id BIGINT NOT NULL,
		from_status TEXT,
		to_status TEXT NOT NULL,
		actor TEXT NOT NULL,
		occurred_at DATETIME NOT NULL
	)`,
	`CREATE TABLE commission_payouts (
		id BIGINT PRIMARY KEY,
		partner_id BIGINT NOT NULL,
		period_start DATETIME NOT NULL,
		period_end DATETIME NOT NULL,
		commission_count INTEGER NOT NULL,
		total_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE commission_notifications (
		id TEXT PRIMARY KEY,
		commission_id BIGINT NOT NULL,
		partner_id BIGINT NOT NULL,
		recipient TEXT NOT NULL,
		subject TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		created_at DATETIME NOT NULL
	)`,
}

// OpenDB returns a fresh in-memory database with every table created.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
