package prom

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	debugctx "github.com/crmarques/reason/debugctx"
	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/metrics"
)

const namespace = "reason"

var _ metrics.Recorder = (*TextfileRecorder)(nil)

// TextfileRecorder keeps sync metrics in a private registry and writes them in
// the Prometheus text exposition format on Flush.
type TextfileRecorder struct {
	path        string
	registry    *prometheus.Registry
	statuses    *prometheus.GaugeVec
	actions     *prometheus.CounterVec
	remoteCalls *prometheus.CounterVec
}

func NewTextfileRecorder(path string) (*TextfileRecorder, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, faults.NewTypedError(faults.ValidationError, "metrics file path is required", nil)
	}

	recorder := &TextfileRecorder{
		path:     filepath.Clean(trimmed),
		registry: prometheus.NewRegistry(),
		statuses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records per kind and sync status from the last classification.",
		}, []string{"kind", "status"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_actions_total",
			Help:      "Pull and push actions per kind, operation and outcome.",
		}, []string{"kind", "operation", "outcome"}),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Remote calls per kind, operation and result.",
		}, []string{"kind", "operation", "result"}),
	}

	for _, collector := range []prometheus.Collector{recorder.statuses, recorder.actions, recorder.remoteCalls} {
		if err := recorder.registry.Register(collector); err != nil {
			return nil, faults.NewTypedError(faults.InternalError, "failed to register metrics collector", err)
		}
	}
	return recorder, nil
}

func (r *TextfileRecorder) Path() string {
	return r.path
}

func (r *TextfileRecorder) RecordStatus(kind string, status string, count int) {
	r.statuses.WithLabelValues(kind, status).Set(float64(count))
}

func (r *TextfileRecorder) RecordAction(kind string, operation string, outcome string) {
	r.actions.WithLabelValues(kind, operation, outcome).Inc()
}

func (r *TextfileRecorder) RecordRemoteCall(kind string, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.remoteCalls.WithLabelValues(kind, operation, result).Inc()
}

func (r *TextfileRecorder) Flush(ctx context.Context) error {
	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return faults.NewTypedError(faults.InternalError, "failed to write metrics file", err)
	}
	debugctx.Printf(ctx, "metrics written path=%q", r.path)
	return nil
}
