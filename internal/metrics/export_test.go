package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"cvBuilder/internal/export"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric type")
	return 0
}

func TestExportObserverRecordsOutcome(t *testing.T) {
	var obs ExportObserver
	beforeOK := value(t, exportsTotal.WithLabelValues("success"))
	beforeFail := value(t, exportsTotal.WithLabelValues("failure"))
	beforeCapture := value(t, exportFailuresTotal.WithLabelValues(string(export.StageCapture)))

	obs.ExportStarted()
	if got := value(t, exportsInProgress); got != 1 {
		t.Fatalf("expected 1 in progress got %v", got)
	}
	obs.StageCompleted(export.StageCapture, 10*time.Millisecond, nil)
	obs.ExportFinished(nil)

	obs.ExportStarted()
	obs.StageCompleted(export.StageCapture, time.Millisecond, errors.New("boom"))
	obs.ExportFinished(errors.New("boom"))

	if got := value(t, exportsInProgress); got != 0 {
		t.Fatalf("expected 0 in progress got %v", got)
	}
	if got := value(t, exportsTotal.WithLabelValues("success")) - beforeOK; got != 1 {
		t.Fatalf("expected 1 success got %v", got)
	}
	if got := value(t, exportsTotal.WithLabelValues("failure")) - beforeFail; got != 1 {
		t.Fatalf("expected 1 failure got %v", got)
	}
	if got := value(t, exportFailuresTotal.WithLabelValues(string(export.StageCapture))) - beforeCapture; got != 1 {
		t.Fatalf("expected 1 capture failure got %v", got)
	}
}

var _ export.Observer = ExportObserver{}
