// Package oteladapters implements the repository observability interfaces on top of OpenTelemetry.
//
// Use NewMetricsCollector, NewTracingCollector and NewSlogBridgeLogger (or NewOTelLogger) to plug a
// configured OpenTelemetry SDK into repository.New via WithMetrics, WithTracing and WithContextualLogger.
package oteladapters
