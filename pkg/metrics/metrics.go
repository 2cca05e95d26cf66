package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

const Subsystem = "quitsmart"

var HistogramBuckets = []float64{
	// fast responses (0 - 500ms)
	5, 10, 25, 50, 75, 100, 150, 200, 300, 400, 500,
	// medium (500ms - 2s)
	750, 1000, 1500, 2000,
	// slow (2s - 15s)
	3000, 5000, 10000, 15000,
}

// Metric is a definition for the name, description, type, and label set of
// a collector. MetricCollector is filled once registered.
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates a prometheus.Collector based on Metric.Type.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "counter":
		return prometheus.NewCounter(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	case "gauge_vec":
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets}, m.Args)
	case "summary_vec":
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	}
	return nil
}

var (
	MetricsBusinessProcess = &Metric{
		ID:          "bpDur",
		Name:        "bp_dur",
		Description: "business process latency in milliseconds",
		Type:        "histogram_vec",
		Args:        []string{"type", "subtype"},
	}
	MetricsAchievementUnlocked = &Metric{
		ID:          "achUnlock",
		Name:        "achievement_unlocked_total",
		Description: "Achievements unlocked, partitioned by category.",
		Type:        "counter_vec",
		Args:        []string{"category"},
	}
	MetricsStageAdvance = &Metric{
		ID:          "stageAdv",
		Name:        "stage_advance_total",
		Description: "Stage transitions, partitioned by target stage and whether the target was the defined successor.",
		Type:        "counter_vec",
		Args:        []string{"to", "off_sequence"},
	}
	MetricsSubscriptionUpgrade = &Metric{
		ID:          "subUpgrade",
		Name:        "subscription_upgrade_total",
		Description: "Subscription upgrades, partitioned by tier and result.",
		Type:        "counter_vec",
		Args:        []string{"tier", "result"},
	}
	MetricsActiveSubscriptions = &Metric{
		ID:          "subActive",
		Name:        "subscription_active",
		Description: "Active subscriptions per tier at the last snapshot.",
		Type:        "gauge_vec",
		Args:        []string{"tier"},
	}
)

var businessMetrics = []*Metric{
	MetricsBusinessProcess,
	MetricsAchievementUnlocked,
	MetricsStageAdvance,
	MetricsSubscriptionUpgrade,
	MetricsActiveSubscriptions,
}

// Business exposes the domain counters to services. A zero-value or nil
// *Business is a no-op so services can be built without a registry in tests.
type Business struct {
	process  *prometheus.HistogramVec
	unlocked *prometheus.CounterVec
	advance  *prometheus.CounterVec
	upgrade  *prometheus.CounterVec
	active   *prometheus.GaugeVec
}

// NewBusiness builds the domain collectors and registers them on reg.
// A nil reg skips registration.
func NewBusiness(reg prometheus.Registerer) (*Business, error) {
	b := &Business{}
	for _, def := range businessMetrics {
		c := NewMetric(def, Subsystem)
		if reg != nil {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
		def.MetricCollector = c
		switch def {
		case MetricsBusinessProcess:
			b.process = c.(*prometheus.HistogramVec)
		case MetricsAchievementUnlocked:
			b.unlocked = c.(*prometheus.CounterVec)
		case MetricsStageAdvance:
			b.advance = c.(*prometheus.CounterVec)
		case MetricsSubscriptionUpgrade:
			b.upgrade = c.(*prometheus.CounterVec)
		case MetricsActiveSubscriptions:
			b.active = c.(*prometheus.GaugeVec)
		}
	}
	return b, nil
}

func (b *Business) ObserveProcess(typ, subtype string, start time.Time) {
	if b == nil || b.process == nil {
		return
	}
	b.process.WithLabelValues(typ, subtype).Observe(MillisecondsSince(start))
}

func (b *Business) AchievementUnlocked(category string) {
	if b == nil || b.unlocked == nil {
		return
	}
	b.unlocked.WithLabelValues(category).Inc()
}

func (b *Business) StageAdvanced(to string, offSequence bool) {
	if b == nil || b.advance == nil {
		return
	}
	label := "false"
	if offSequence {
		label = "true"
	}
	b.advance.WithLabelValues(to, label).Inc()
}

func (b *Business) SubscriptionUpgraded(tier, result string) {
	if b == nil || b.upgrade == nil {
		return
	}
	b.upgrade.WithLabelValues(tier, result).Inc()
}

func (b *Business) SetActiveSubscriptions(tier string, n int) {
	if b == nil || b.active == nil {
		return
	}
	b.active.WithLabelValues(tier).Set(float64(n))
}

// MillisecondsSince returns elapsed milliseconds as float64.
func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

const (
	RefererKey = "X-Referer"
)

func newBusinessDefault() (*Business, error) {
	return NewBusiness(prometheus.DefaultRegisterer)
}

var Module = fx.Options(
	fx.Provide(newBusinessDefault),
)
