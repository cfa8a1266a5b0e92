package interact

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opLocate           = "locate"
	opLocateAll        = "locate_all"
	opWaitClickable    = "wait_clickable"
	opWaitURLChange    = "wait_url_change"
	opWaitForLoadState = "wait_load_state"
	opNavigate         = "navigate"
	opClick            = "click"
	opFill             = "fill"
	opTextOf           = "text_of"
	opAttributeOf      = "attribute_of"
	opInputValue       = "input_value"
	opExists           = "exists"
	opScrollToBottom   = "scroll_to_bottom"
)

var (
	metricOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pagewait",
		Subsystem: "interact",
		Name:      "operations_total",
		Help:      "Interaction helper calls by operation and outcome.",
	}, []string{"op", "outcome"})
	metricOperationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pagewait",
		Subsystem: "interact",
		Name:      "operation_seconds",
		Help:      "Wall-clock time spent in interaction helper calls.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"op"})
)

func observe(op string, start time.Time, err error) {
	metricOperations.WithLabelValues(op, outcome(err)).Inc()
	metricOperationSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNotFound(err):
		return "not_found"
	case IsNotInteractable(err):
		return "not_interactable"
	case IsStale(err):
		return "stale"
	case IsNavigationTimeout(err):
		return "navigation_timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
