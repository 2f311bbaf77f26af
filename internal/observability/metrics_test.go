package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestDatasetCollectorRecordsQueries(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewDatasetCollector(reg)
	if err != nil {
		t.Fatalf("NewDatasetCollector: %v", err)
	}

	collector.RecordBodyQuery("Sun", OutcomeOK)
	collector.RecordBodyQuery("Sun", OutcomeOK)
	collector.RecordBodyQuery("Pluto", OutcomeUnsupported)
	collector.RecordHouseSystem(OutcomeUndefined)

	if got := testutil.ToFloat64(collector.BodyQueries.WithLabelValues("Sun", OutcomeOK)); got != 2 {
		t.Fatalf("ephemref_body_queries_total{Sun,ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.BodyQueries.WithLabelValues("Pluto", OutcomeUnsupported)); got != 1 {
		t.Fatalf("ephemref_body_queries_total{Pluto,unsupported} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.HouseSystems.WithLabelValues(OutcomeUndefined)); got != 1 {
		t.Fatalf("ephemref_house_systems_total{undefined} = %v, want 1", got)
	}
}

func TestDatasetCollectorRecordsBuild(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewDatasetCollector(reg)
	if err != nil {
		t.Fatalf("NewDatasetCollector: %v", err)
	}

	collector.RecordBuild(20*time.Millisecond, 7)

	if got := testutil.ToFloat64(collector.Records); got != 7 {
		t.Fatalf("ephemref_dataset_records = %v, want 7", got)
	}
	if count := histogramSampleCount(t, reg, "ephemref_build_duration_seconds", nil); count != 1 {
		t.Fatalf("ephemref_build_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *DatasetCollector
	c.RecordBodyQuery("Sun", OutcomeOK)
	c.RecordHouseSystem(OutcomeOK)
	c.RecordBuild(time.Second, 1)
}

func TestRegisteringTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewDatasetCollector(reg)
	if err != nil {
		t.Fatalf("first NewDatasetCollector: %v", err)
	}
	second, err := NewDatasetCollector(reg)
	if err != nil {
		t.Fatalf("second NewDatasetCollector: %v", err)
	}

	first.RecordBodyQuery("Moon", OutcomeOK)
	if got := testutil.ToFloat64(second.BodyQueries.WithLabelValues("Moon", OutcomeOK)); got != 1 {
		t.Fatalf("second collector should share counters, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewDatasetCollector(reg)
	if err != nil {
		t.Fatalf("NewDatasetCollector: %v", err)
	}
	collector.RecordBodyQuery("Mars", OutcomeOK)
	collector.RecordHouseSystem(OutcomeOK)
	collector.RecordBuild(time.Millisecond, 3)

	path := filepath.Join(t.TempDir(), "ephemref.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}

	for _, metric := range []string{
		"ephemref_body_queries_total",
		"ephemref_house_systems_total",
		"ephemref_build_duration_seconds",
		"ephemref_dataset_records 3",
	} {
		if !strings.Contains(string(raw), metric) {
			t.Fatalf("expected %q in metrics output:\n%s", metric, raw)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
