package calculator

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/teapotsmashers/calcd/internal/calc"
)

// Metric instruments, initialized once via InitMetrics().
var (
	evalCounter   metric.Int64Counter
	evalHistogram metric.Float64Histogram
	errorCounter  metric.Int64Counter
	resultGauge   metric.Float64Gauge
)

// InitMetrics registers the OTel instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	evalCounter, err = meter.Int64Counter("calculator.evaluations.total",
		metric.WithDescription("Total number of expressions evaluated, by outcome kind"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return fmt.Errorf("creating evaluations counter: %w", err)
	}

	evalHistogram, err = meter.Float64Histogram("calculator.evaluation.duration",
		metric.WithDescription("Duration of normalize, evaluate and format in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating evaluation histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of rejected calculator requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The value of the last successful evaluation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}

// RegisterCollectors exposes the session's history size and angle mode on a
// Prometheus registry.
func RegisterCollectors(reg prometheus.Registerer, s *Session) error {
	historyEntries := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "calculator",
		Name:      "history_entries",
		Help:      "Number of calculations currently kept in the history log.",
	}, func() float64 {
		return float64(s.HistoryLen())
	})

	if err := reg.Register(historyEntries); err != nil {
		return fmt.Errorf("registering history gauge: %w", err)
	}

	if err := reg.Register(&angleModeCollector{session: s}); err != nil {
		return fmt.Errorf("registering angle mode collector: %w", err)
	}
	return nil
}

var angleModeDesc = prometheus.NewDesc(
	"calculator_angle_mode_info",
	"Active angle mode of the calculator session; the mode label carries the value.",
	[]string{"mode"}, nil,
)

// angleModeCollector reports 1 for the active mode and 0 for the others.
type angleModeCollector struct {
	session *Session
}

func (c *angleModeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- angleModeDesc
}

func (c *angleModeCollector) Collect(ch chan<- prometheus.Metric) {
	active := c.session.AngleMode()
	for _, m := range []calc.AngleMode{calc.Degrees, calc.Radians, calc.Gradians} {
		v := 0.0
		if m == active {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(angleModeDesc, prometheus.GaugeValue, v, m.String())
	}
}
