package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuctionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctions_created_total",
		Help: "Total number of auctions created",
	})

	BidsPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bids_placed_total",
		Help: "Total number of bids accepted into the ledger",
	})

	BidsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bids_rejected_total",
		Help: "Total number of rejected bid attempts",
	}, []string{"reason"})

	BidArbitrationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bid_arbitration_latency_seconds",
		Help:    "Latency of the leader cache compare-and-swap",
		Buckets: prometheus.DefBuckets,
	})

	NegotiationTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "negotiation_transitions_total",
		Help: "Total number of post-close negotiation transitions",
	}, []string{"transition"})

	NegotiationConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "negotiation_conflicts_total",
		Help: "Total number of negotiation transitions lost to a concurrent update",
	})

	AuctionsResetTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctions_reset_total",
		Help: "Total number of admin auction resets",
	})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of email notifications attempted",
	}, []string{"kind", "outcome"})

	InvoicesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoices_generated_total",
		Help: "Total number of invoice documents generated",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
