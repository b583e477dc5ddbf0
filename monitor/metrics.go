package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommissionPayouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commission_payouts_total",
			Help: "Number of commission transactions written per level",
		},
		[]string{"level"},
	)

	CommissionAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commission_amount_total",
			Help: "Sum of commissions paid per level in minor units",
		},
		[]string{"level"},
	)

	PaymentEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_events_total",
			Help: "Payment events handled by result (processed, replayed, failed)",
		},
		[]string{"result"},
	)

	BalanceUpdateConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "balance_update_conflicts_total",
			Help: "Units of work retried because of a concurrent balance update",
		},
	)

	ReferralCodesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_codes_issued_total",
			Help: "Referral codes created",
		},
	)

	MembershipsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "memberships_created_total",
			Help: "Creators placed in the referral forest",
		},
	)

	APIWriteRequestQueue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "api_write_requests_in_flight",
			Help: "Write requests currently being served",
		},
		[]string{},
	)

	RequestDelay = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of write requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
