package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cvBuilder/internal/export"
)

var (
	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvbuilder",
			Name:      "exports_total",
			Help:      "PDF 导出总数（按结果）。",
		},
		[]string{"result"},
	)

	exportStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cvbuilder",
			Name:      "export_stage_duration_seconds",
			Help:      "导出各阶段耗时分布（秒）。",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	exportFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvbuilder",
			Name:      "export_failures_total",
			Help:      "导出失败次数（按阶段）。",
		},
		[]string{"stage"},
	)

	exportsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cvbuilder",
			Name:      "exports_in_progress",
			Help:      "当前正在执行的导出数量。",
		},
	)

	exportsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cvbuilder",
			Name:      "exports_rejected_total",
			Help:      "因同一会话已有导出而被拒绝的请求数。",
		},
	)
)

// ExportObserver 将导出流水线事件记录为 Prometheus 指标。
type ExportObserver struct{}

// ExportStarted 实现 export.Observer。
func (ExportObserver) ExportStarted() {
	exportsInProgress.Inc()
}

// StageCompleted 实现 export.Observer。
func (ExportObserver) StageCompleted(stage export.Stage, d time.Duration, err error) {
	exportStageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
	if err != nil {
		exportFailuresTotal.WithLabelValues(string(stage)).Inc()
	}
}

// ExportFinished 实现 export.Observer。
func (ExportObserver) ExportFinished(err error) {
	exportsInProgress.Dec()
	result := "success"
	if err != nil {
		result = "failure"
	}
	exportsTotal.WithLabelValues(result).Inc()
}

// ExportRejected 记录一次被拒绝的并发导出。
func ExportRejected() {
	exportsRejectedTotal.Inc()
}
