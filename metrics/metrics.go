// Package metrics exposes Prometheus instrumentation over Directory
// container sizes and request outcomes, following the Describe/Collect
// pattern used elsewhere in the pack for deriving gauges from live state
// rather than pushing updates on every mutation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opencds/icd/directory"
	"github.com/opencds/icd/wire"
)

// Metrics bundles a private registry with the collectors it serves. It is
// scraped over /metrics by the transport layer via promhttp.
type Metrics struct {
	Registry *prometheus.Registry

	requestsTotal     *prometheus.CounterVec
	syncContactsTotal *prometheus.CounterVec
}

// New builds a Metrics bound to dir's live state.
func New(dir *directory.Directory) *Metrics {
	reg := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "icd",
		Name:      "requests_total",
		Help:      "Requests handled, labeled by endpoint and result code.",
	}, []string{"endpoint", "result"})

	syncContactsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "icd",
		Name:      "sync_contacts_total",
		Help:      "Contact identifiers processed by sync requests, labeled by mode.",
	}, []string{"mode"})

	reg.MustRegister(
		requestsTotal,
		syncContactsTotal,
		newStatsCollector(dir),
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry:          reg,
		requestsTotal:     requestsTotal,
		syncContactsTotal: syncContactsTotal,
	}
}

// ObserveRequest records one handled request for endpoint, labeled with
// the result code the client received.
func (m *Metrics) ObserveRequest(endpoint string, result wire.Result) {
	m.requestsTotal.WithLabelValues(endpoint, result.String()).Inc()
}

// ObserveSync records n contact identifiers processed by a sync of the
// given mode ("full" or "incremental").
func (m *Metrics) ObserveSync(mode string, n int) {
	if n == 0 {
		return
	}
	m.syncContactsTotal.WithLabelValues(mode).Add(float64(n))
}

// statsCollector derives gauges from a live Directory snapshot on every
// scrape, rather than tracking running counters that could drift from
// actual container sizes.
type statsCollector struct {
	dir *directory.Directory

	registeredUsers *prometheus.Desc
	deltaAdded      *prometheus.Desc
	deltaRemoved    *prometheus.Desc
	bucketUsers     *prometheus.Desc
}

func newStatsCollector(dir *directory.Directory) *statsCollector {
	return &statsCollector{
		dir: dir,
		registeredUsers: prometheus.NewDesc(
			"icd_registered_users", "Number of currently registered users.", nil, nil),
		deltaAdded: prometheus.NewDesc(
			"icd_delta_added_users", "Users registered within the current delta window.", nil, nil),
		deltaRemoved: prometheus.NewDesc(
			"icd_delta_removed_users", "Users unregistered within the current delta window.", nil, nil),
		bucketUsers: prometheus.NewDesc(
			"icd_bucket_users", "Users with stored leaky-bucket state (drained entries included until swept), by bucket.", []string{"bucket"}, nil),
	}
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.registeredUsers
	ch <- c.deltaAdded
	ch <- c.deltaRemoved
	ch <- c.bucketUsers
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.dir.Stats()
	ch <- prometheus.MustNewConstMetric(c.registeredUsers, prometheus.GaugeValue, float64(stats.RegisteredUsers))
	ch <- prometheus.MustNewConstMetric(c.deltaAdded, prometheus.GaugeValue, float64(stats.DeltaAddedUsers))
	ch <- prometheus.MustNewConstMetric(c.deltaRemoved, prometheus.GaugeValue, float64(stats.DeltaRemovedUsers))
	ch <- prometheus.MustNewConstMetric(c.bucketUsers, prometheus.GaugeValue, float64(stats.FullBucketUsers), "full")
	ch <- prometheus.MustNewConstMetric(c.bucketUsers, prometheus.GaugeValue, float64(stats.IncrementalBucketUsers), "incremental")
}
