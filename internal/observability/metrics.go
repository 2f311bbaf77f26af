package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DatasetCollector bundles Prometheus metrics for reference dataset builds.
type DatasetCollector struct {
	gatherer prometheus.Gatherer

	BodyQueries    *prometheus.CounterVec
	HouseSystems   *prometheus.CounterVec
	BuildDurations prometheus.Histogram
	Records        prometheus.Gauge
}

// NewDatasetCollector registers dataset metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewDatasetCollector(reg prometheus.Registerer) (*DatasetCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	queries, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ephemref_body_queries_total",
		Help: "Provider queries issued by dataset builds, labeled by body and outcome.",
	}, []string{"body", "outcome"}), "ephemref_body_queries_total")
	if err != nil {
		return nil, err
	}

	houses, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ephemref_house_systems_total",
		Help: "House system computations, labeled by outcome.",
	}, []string{"outcome"}), "ephemref_house_systems_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ephemref_build_duration_seconds",
		Help:    "Wall time of complete dataset builds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}), "ephemref_build_duration_seconds")
	if err != nil {
		return nil, err
	}

	records, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ephemref_dataset_records",
		Help: "Number of date records in the most recent dataset build.",
	}), "ephemref_dataset_records")
	if err != nil {
		return nil, err
	}

	return &DatasetCollector{
		gatherer:       gatherer,
		BodyQueries:    queries,
		HouseSystems:   houses,
		BuildDurations: durations,
		Records:        records,
	}, nil
}

// RecordBodyQuery counts one provider query.
func (c *DatasetCollector) RecordBodyQuery(body, outcome string) {
	if c == nil || c.BodyQueries == nil {
		return
	}
	c.BodyQueries.WithLabelValues(body, outcome).Inc()
}

// RecordHouseSystem counts one house system computation.
func (c *DatasetCollector) RecordHouseSystem(outcome string) {
	if c == nil || c.HouseSystems == nil {
		return
	}
	c.HouseSystems.WithLabelValues(outcome).Inc()
}

// RecordBuild observes a finished build.
func (c *DatasetCollector) RecordBuild(d time.Duration, records int) {
	if c == nil {
		return
	}
	if c.BuildDurations != nil {
		c.BuildDurations.Observe(d.Seconds())
	}
	if c.Records != nil {
		c.Records.Set(float64(records))
	}
}

// WriteTextfile writes the collector's registry in the node_exporter
// textfile format, for batch runs that exit before any scrape.
func (c *DatasetCollector) WriteTextfile(path string) error {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
