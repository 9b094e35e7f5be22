package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		workflowNodeRuns,
		workflowNodeSeconds,
		workflowRuns,
	)
}

var (
	workflowNodeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_node_runs_total",
			Help: "Executions per workflow node.",
		},
		[]string{"node"},
	)

	workflowNodeSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_node_seconds",
			Help:    "Wall time per workflow node execution.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"node"},
	)

	workflowRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_runs_total",
			Help: "Completed workflow runs by outcome (ok/error/not_resume).",
		},
		[]string{"outcome"},
	)
)

// ObserveNode counts a node execution and times it:
//
//	defer metrics.ObserveNode("retrieve")()
func ObserveNode(node string) func() {
	start := time.Now()
	workflowNodeRuns.WithLabelValues(node).Inc()
	return func() {
		workflowNodeSeconds.WithLabelValues(node).Observe(time.Since(start).Seconds())
	}
}

func IncWorkflowRun(outcome string) {
	workflowRuns.WithLabelValues(norm(outcome)).Inc()
}
