package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("trip_category", "safari"),
		attribute.String("partner_id", "456"),
		attribute.String("booking_id", "bk_1"),
		attribute.String("reason", "no_rate"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "partner_id" || attr.Key == "booking_id" {
			t.Fatalf("unexpected high-cardinality label %s", attr.Key)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordCommissionCreated(context.Background(), "safari")
	m.RecordCommissionSkipped(context.Background(), "no_rate")
	m.RecordCommissionTransition(context.Background(), "pending", "eligible")
	m.RecordPayoutGenerated(context.Background())
	m.RecordNotification(context.Background(), "sent")
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "test"}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	m.RecordCommissionCreated(context.Background(), "kilimanjaro")
}
