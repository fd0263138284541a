package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics counts order lifecycle and payment verification outcomes.
type OrderMetrics struct {
	created       prometheus.Counter
	claims        *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	verifications *prometheus.CounterVec
}

// Claim outcomes.
const (
	ClaimWon  = "won"
	ClaimLost = "lost"
)

// Verification outcomes.
const (
	VerificationPaid      = "paid"
	VerificationInvalid   = "invalid"
	VerificationExpired   = "expired"
	VerificationExhausted = "exhausted"
)

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Orders created from carts.",
	})
	claims := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "claims_total",
		Help:      "Dealer claim attempts by outcome.",
	}, []string{"outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "status_transitions_total",
		Help:      "Accepted order status transitions.",
	}, []string{"from", "to"})
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "verifications_total",
		Help:      "Payment code verification attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(created, claims, transitions, verifications)
	return &OrderMetrics{
		created:       created,
		claims:        claims,
		transitions:   transitions,
		verifications: verifications,
	}
}

// IncCreated counts a committed order creation.
func (m *OrderMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

// IncClaim counts a claim attempt with the given outcome.
func (m *OrderMetrics) IncClaim(outcome string) {
	if m == nil || m.claims == nil {
		return
	}
	m.claims.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncTransition counts an accepted status transition.
func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncVerification counts a verification attempt with the given outcome.
func (m *OrderMetrics) IncVerification(outcome string) {
	if m == nil || m.verifications == nil {
		return
	}
	m.verifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}
