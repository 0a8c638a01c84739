package repository

import "time"

// Option applies a configuration option to the TreapDecisionStore.
type Option func(*TreapDecisionStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *TreapDecisionStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
