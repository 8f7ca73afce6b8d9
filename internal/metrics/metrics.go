package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResumeAnalyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_analyses_total",
			Help: "Total number of resume analyses by outcome",
		},
		[]string{"format", "outcome"},
	)

	ATSScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_ats_score",
			Help:    "Distribution of ATS scores for the selected role",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	GitHubLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "github_lookups_total",
			Help: "Total number of GitHub profile lookups by outcome",
		},
		[]string{"outcome"},
	)

	GitHubLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "github_lookup_duration_seconds",
			Help: "Duration of a full GitHub profile fetch cycle in seconds",
		},
	)

	HistorySaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_saves_total",
			Help: "Total number of history save attempts by outcome",
		},
		[]string{"outcome"},
	)
)
