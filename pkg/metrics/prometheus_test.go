package metrics

import (
	"testing"

	"DialMeter/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordCycle("carbon", models.KindOK)
	r.RecordCycle("carbon", models.KindOK)
	r.RecordCycle("carbon", models.KindFetch)
	r.RecordCommand("carbon", 90, 5150)

	if got := testutil.ToFloat64(r.cyclesTotal.WithLabelValues("carbon", "ok")); got != 2 {
		t.Fatalf("expected 2 ok cycles, got %v", got)
	}
	if got := testutil.ToFloat64(r.lastDuty.WithLabelValues("carbon")); got != 5150 {
		t.Fatalf("expected duty 5150, got %v", got)
	}
}
