package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "submissions_started_total",
		Help: "The total number of submission jobs started",
	}, []string{"platform", "backend"})

	SubmissionsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "submissions_finished_total",
		Help: "The total number of submission jobs reaching a terminal phase",
	}, []string{"platform", "phase"}) // phase: completed, failed

	SubmissionsJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "submissions_joined_total",
		Help: "Duplicate start requests joined onto an in-flight job",
	})

	SubmissionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "submission_duration_seconds",
		Help:    "Wall-clock duration of one submission job.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"platform"})

	BackendOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_operations_total",
		Help: "Automation backend operations by outcome",
	}, []string{"backend", "operation", "outcome"}) // outcome: ok, error

	VaultOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vault_operations_total",
		Help: "Session vault operations",
	}, []string{"operation"}) // store, get, refresh, delete, expired

	PollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "progress_polls_total",
		Help: "Progress poller requests by phase",
	}, []string{"phase"}) // fast, slow, manual
)
