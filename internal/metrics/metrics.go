// Package metrics exports frame statistics of clockless controllers to
// Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tinygo-org/ledstrip/clockless"
)

const namespace = "clockless"

// Frames implements clockless.Observer.
type Frames struct {
	frames prometheus.Counter
	leds   prometheus.Counter
	busy   prometheus.Histogram
	idle   prometheus.Histogram
}

var _ clockless.Observer = (*Frames)(nil)

// New registers the collectors of one strip with reg.
func New(reg prometheus.Registerer, strip string) *Frames {
	f := promauto.With(reg)
	labels := prometheus.Labels{"strip": strip}
	return &Frames{
		frames: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "frames_total",
			Help:        "Frames sent to the strip.",
			ConstLabels: labels,
		}),
		leds: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "leds_total",
			Help:        "LED values sent to the strip.",
			ConstLabels: labels,
		}),
		busy: f.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "frame_seconds",
			Help:        "Time a frame held the data line, with interrupts masked.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(10e-6, 4, 8),
		}),
		idle: f.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "latch_wait_seconds",
			Help:        "Time spent waiting out the latch interval before a frame.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 8),
		}),
	}
}

func (f *Frames) ObserveFrame(leds int, busy, idle time.Duration) {
	f.frames.Inc()
	f.leds.Add(float64(leds))
	f.busy.Observe(busy.Seconds())
	f.idle.Observe(idle.Seconds())
}
