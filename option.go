package openvend

import (
	"time"

	"github.com/openvend/openvend/logger"
	"github.com/openvend/openvend/metrics"
)

type Option func(*Vendor)

func WithLogger(l logger.Logger) Option {
	return func(v *Vendor) {
		v.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(v *Vendor) {
		v.metrics = r
	}
}

// WithClock overrides the timestamp source. Deterministic tests only.
func WithClock(now func() time.Time) Option {
	return func(v *Vendor) {
		v.clock = now
	}
}
