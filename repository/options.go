package repository

// Option defines a functional option for configuring a Repository.
type Option func(*Repository) error

// WithLogger sets the logger for the Repository.
//
// Debug level: mapping and store calls with timing
// Info level: saved, deleted and published entities, concurrency conflicts
// Warn level: non-critical issues like events that stay uncommitted
// Error level: failures that cause an operation to fail.
func WithLogger(logger Logger) Option {
	return func(r *Repository) error {
		r.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, used in addition to the plain Logger.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(r *Repository) error {
		r.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for operation durations, counts, and conflicts.
func WithMetrics(collector MetricsCollector) Option {
	return func(r *Repository) error {
		r.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector; every public operation runs in its own span.
func WithTracing(collector TracingCollector) Option {
	return func(r *Repository) error {
		r.tracingCollector = collector
		return nil
	}
}
