package ai

import (
	"context"

	"github.com/leofalp/sqlcopilot/providers/observability"
)

// TraceRequest enriches the span and observer carried by ctx with the
// outbound call about to be made. It is a no-op when neither is present.
func TraceRequest(ctx context.Context, provider ProviderName, endpoint string, config Config, stream bool) {
	attrs := []observability.Attribute{
		observability.String(observability.AttrProvider, string(provider)),
		observability.String(observability.AttrEndpoint, endpoint),
		observability.String(observability.AttrModel, config.Model),
		observability.Bool(observability.AttrStream, stream),
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventRequestStart)
		span.SetAttributes(attrs...)
	}
	if observer := observability.ObserverFromContext(ctx); observer != nil {
		observer.Trace(ctx, "provider preparing request", append(attrs,
			observability.Int(observability.AttrMaxTokens, config.MaxTokens),
			observability.Float64(observability.AttrTemperature, config.Temperature),
		)...)
	}
}
