package copilot

import (
	"context"

	"github.com/leofalp/sqlcopilot/internal/utils"
	"github.com/leofalp/sqlcopilot/providers/ai"
	"github.com/leofalp/sqlcopilot/providers/observability"
)

// NewObservabilityMiddleware creates a MiddlewareConfig that records a span,
// request metrics and log events for every provider call.
//
// Both the span and the observer are injected into the context before next
// runs, so adapters can attach events through ai.TraceRequest. For streams
// the completion metrics are deferred until the iterator is drained, fails
// or is abandoned.
//
// [New] prepends it to the chain when [WithObserver] is given, so it sees
// the final outcome of every other middleware.
func NewObservabilityMiddleware(observer observability.Provider) MiddlewareConfig {
	return MiddlewareConfig{
		Send:   buildObsSend(observer),
		Stream: buildObsStream(observer),
	}
}

func buildObsSend(observer observability.Provider) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request Request) (string, error) {
			provider := string(request.Config.Provider)

			ctx, span := observer.StartSpan(ctx, observability.SpanCallAPI,
				observability.String(observability.AttrProvider, provider),
				observability.String(observability.AttrModel, request.Config.Model),
			)
			ctx = observability.ContextWithSpan(ctx, span)
			ctx = observability.ContextWithObserver(ctx, observer)

			observer.Debug(ctx, "provider send",
				observability.String(observability.AttrProvider, provider),
				observability.Int(observability.AttrPromptLength, len(request.Prompt)),
			)

			watch := utils.StartStopwatch()
			text, err := next(ctx, request)
			watch.Stop()
			span.AddEvent(observability.EventRequestEnd)

			if err != nil {
				recordObsFailure(ctx, span, observer, err, watch, provider, false, "provider send failed")
				return "", err
			}

			recordObsSuccess(ctx, span, observer, watch, provider, false, len(text), 0)
			return text, nil
		}
	}
}

func buildObsStream(observer observability.Provider) StreamMiddleware {
	return func(next StreamFunc) StreamFunc {
		return func(ctx context.Context, request Request) (*ai.TextStream, error) {
			provider := string(request.Config.Provider)

			ctx, span := observer.StartSpan(ctx, observability.SpanCallAPIStream,
				observability.String(observability.AttrProvider, provider),
				observability.String(observability.AttrModel, request.Config.Model),
			)
			ctx = observability.ContextWithSpan(ctx, span)
			ctx = observability.ContextWithObserver(ctx, observer)

			observer.Debug(ctx, "provider stream",
				observability.String(observability.AttrProvider, provider),
				observability.Int(observability.AttrPromptLength, len(request.Prompt)),
			)

			watch := utils.StartStopwatch()
			stream, err := next(ctx, request)
			if err != nil {
				watch.Stop()
				recordObsFailure(ctx, span, observer, err, watch, provider, true, "provider stream failed")
				return nil, err
			}

			return wrapStreamWithObservability(ctx, stream, span, observer, watch, provider), nil
		}
	}
}

// wrapStreamWithObservability forwards every piece unchanged and records the
// outcome once the stream ends, errors or is abandoned by the caller.
func wrapStreamWithObservability(
	ctx context.Context,
	stream *ai.TextStream,
	span observability.Span,
	observer observability.Provider,
	watch *utils.Stopwatch,
	provider string,
) *ai.TextStream {
	iteratorFunc := func(yield func(string, error) bool) {
		chunks := 0
		length := 0

		for piece, err := range stream.Iter() {
			if err != nil {
				watch.Stop()
				recordObsFailure(ctx, span, observer, err, watch, provider, true, "provider stream failed")
				yield("", err)
				return
			}

			if chunks == 0 {
				span.AddEvent(observability.EventFirstChunk,
					observability.Duration(observability.AttrDuration, watch.Lap()),
				)
			}
			chunks++
			length += len(piece)
			observer.Counter(observability.MetricStreamChunks).Add(ctx, 1,
				observability.String(observability.AttrProvider, provider),
			)

			if !yield(piece, nil) {
				watch.Stop()
				span.SetStatus(observability.StatusOK, "provider stream abandoned")
				span.End()

				observer.Info(ctx, "provider stream abandoned",
					observability.String(observability.AttrProvider, provider),
					observability.Int(observability.AttrChunkCount, chunks),
					observability.Duration(observability.AttrDuration, watch.Elapsed()),
				)
				return
			}
		}

		watch.Stop()
		span.AddEvent(observability.EventStreamEnd)
		recordObsSuccess(ctx, span, observer, watch, provider, true, length, chunks)
	}

	return ai.NewTextStream(iteratorFunc)
}

func recordObsFailure(
	ctx context.Context,
	span observability.Span,
	observer observability.Provider,
	err error,
	watch *utils.Stopwatch,
	provider string,
	stream bool,
	message string,
) {
	span.RecordError(err)
	if code := ai.StatusCode(err); code != 0 {
		span.SetAttributes(observability.Int(observability.AttrHTTPStatusCode, code))
	}
	span.SetStatus(observability.StatusError, message)
	span.End()

	observer.Error(ctx, message,
		observability.Error(err),
		observability.String(observability.AttrProvider, provider),
		observability.Duration(observability.AttrDuration, watch.Elapsed()),
	)

	observer.Counter(observability.MetricRequestCount).Add(ctx, 1,
		observability.String(observability.AttrProvider, provider),
		observability.Bool(observability.AttrStream, stream),
		observability.String(observability.AttrOutcome, "error"),
	)
}

func recordObsSuccess(
	ctx context.Context,
	span observability.Span,
	observer observability.Provider,
	watch *utils.Stopwatch,
	provider string,
	stream bool,
	length int,
	chunks int,
) {
	elapsed := watch.Elapsed()

	observer.Histogram(observability.MetricRequestDuration).Record(ctx, elapsed.Seconds(),
		observability.String(observability.AttrProvider, provider),
		observability.Bool(observability.AttrStream, stream),
	)
	observer.Counter(observability.MetricRequestCount).Add(ctx, 1,
		observability.String(observability.AttrProvider, provider),
		observability.Bool(observability.AttrStream, stream),
		observability.String(observability.AttrOutcome, "success"),
	)

	attrs := []observability.Attribute{
		observability.String(observability.AttrProvider, provider),
		observability.Int(observability.AttrResponseLength, length),
		observability.Duration(observability.AttrDuration, elapsed),
	}
	if stream {
		attrs = append(attrs, observability.Int(observability.AttrChunkCount, chunks))
	}

	span.SetAttributes(attrs...)
	span.SetStatus(observability.StatusOK, "")
	span.End()

	message := "provider send completed"
	if stream {
		message = "provider stream completed"
	}
	observer.Info(ctx, message, attrs...)
}
