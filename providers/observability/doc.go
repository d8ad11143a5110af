// Package observability defines the tracing, metrics and logging interfaces
// shared by the copilot façade, the provider adapters and the HTTP bridge.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into one injectable
// dependency. The façade attaches the active [Provider] and [Span] to the
// request context with [ContextWithObserver] and [ContextWithSpan] so adapters
// deep in the call stack can enrich them through [ObserverFromContext] and
// [SpanFromContext] without changing their signatures.
//
// Concrete backends live in sub-packages: slogobs logs everything through
// log/slog and promobs exports counters and histograms to Prometheus.
// semconv.go holds the attribute, span, event and metric names.
package observability
