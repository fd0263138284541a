package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestOrderMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.IncCreated()
	m.IncClaim(ClaimWon)
	m.IncClaim(ClaimLost)
	m.IncClaim(ClaimLost)
	m.IncTransition("confirmed", "preparing")
	m.IncVerification(VerificationInvalid)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "mtaani_orders_claims_total", "outcome", ClaimLost); err != nil || got != 2 {
		t.Fatalf("expected 2 lost claims, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "mtaani_orders_status_transitions_total", "to", "preparing"); err != nil || got != 1 {
		t.Fatalf("expected 1 transition, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "mtaani_payments_verifications_total", "outcome", VerificationInvalid); err != nil || got != 1 {
		t.Fatalf("expected 1 invalid verification, got %f err=%v", got, err)
	}
	created := findMetricFamily(mfs, "mtaani_orders_created_total")
	if created == nil || created.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatal("expected created counter of 1")
	}
}

func TestOrderMetricsNilSafe(t *testing.T) {
	var m *OrderMetrics
	m.IncCreated()
	m.IncClaim(ClaimWon)
	NewOrderMetrics(nil).IncVerification(VerificationPaid)
}
