package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/sqlcopilot/core/copilot"
	"github.com/leofalp/sqlcopilot/internal/utils"
	"github.com/leofalp/sqlcopilot/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs the provider, model and duration.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the prompt length, the response length and the
	// number of streamed chunks. This is the recommended default.
	LogLevelStandard

	// LogLevelVerbose adds the prompt and the response text, each truncated
	// to 500 characters.
	//
	// WARNING: DO NOT use LogLevelVerbose in production. Prompts may contain
	// schema names or data the user did not mean to write to a log file.
	LogLevelVerbose
)

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// NewLoggingMiddleware creates a MiddlewareConfig that emits structured slog
// entries before and after every provider call. For streams the completion
// entry is emitted once the iterator is drained, fails or is abandoned.
//
// The logger parameter must not be nil. Use slog.Default() if you have not
// configured a custom logger.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) copilot.MiddlewareConfig {
	return copilot.MiddlewareConfig{
		Send:   buildSendLogging(logger, level),
		Stream: buildStreamLogging(logger, level),
	}
}

func buildSendLogging(logger *slog.Logger, level LogLevel) copilot.Middleware {
	return func(next copilot.SendFunc) copilot.SendFunc {
		return func(ctx context.Context, request copilot.Request) (string, error) {
			logger.InfoContext(ctx, "copilot send", buildRequestAttrs(request, level)...)

			start := time.Now()
			text, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "copilot send failed", buildErrorAttrs(request, elapsed, err)...)
				return "", err
			}

			attrs := buildBaseAttrs(request)
			attrs = append(attrs, slog.Duration("duration", elapsed))
			if level >= LogLevelStandard {
				attrs = append(attrs, slog.Int("response_length", len(text)))
			}
			if level >= LogLevelVerbose {
				attrs = append(attrs, slog.String("response_content", utils.TruncateString(text, truncateLen)))
			}
			logger.InfoContext(ctx, "copilot send completed", attrs...)

			return text, nil
		}
	}
}

func buildStreamLogging(logger *slog.Logger, level LogLevel) copilot.StreamMiddleware {
	return func(next copilot.StreamFunc) copilot.StreamFunc {
		return func(ctx context.Context, request copilot.Request) (*ai.TextStream, error) {
			logger.InfoContext(ctx, "copilot stream", buildRequestAttrs(request, level)...)

			start := time.Now()
			stream, err := next(ctx, request)
			if err != nil {
				logger.ErrorContext(ctx, "copilot stream failed", buildErrorAttrs(request, time.Since(start), err)...)
				return nil, err
			}

			return wrapStreamWithLogging(ctx, stream, logger, request, level, start), nil
		}
	}
}

// wrapStreamWithLogging returns a TextStream that forwards every piece and
// logs a completion, abandonment or error entry at the end.
func wrapStreamWithLogging(
	ctx context.Context,
	stream *ai.TextStream,
	logger *slog.Logger,
	request copilot.Request,
	level LogLevel,
	start time.Time,
) *ai.TextStream {
	iteratorFunc := func(yield func(string, error) bool) {
		chunks := 0
		length := 0

		for piece, err := range stream.Iter() {
			if err != nil {
				logger.ErrorContext(ctx, "copilot stream failed", buildErrorAttrs(request, time.Since(start), err)...)
				yield("", err)
				return
			}

			chunks++
			length += len(piece)

			if !yield(piece, nil) {
				attrs := buildBaseAttrs(request)
				attrs = append(attrs,
					slog.Duration("duration", time.Since(start)),
					slog.Int("chunks", chunks),
				)
				logger.InfoContext(ctx, "copilot stream abandoned", attrs...)
				return
			}
		}

		attrs := buildBaseAttrs(request)
		attrs = append(attrs, slog.Duration("duration", time.Since(start)))
		if level >= LogLevelStandard {
			attrs = append(attrs,
				slog.Int("chunks", chunks),
				slog.Int("response_length", length),
			)
		}
		logger.InfoContext(ctx, "copilot stream completed", attrs...)
	}

	return ai.NewTextStream(iteratorFunc)
}

func buildBaseAttrs(request copilot.Request) []any {
	return []any{
		slog.String("provider", string(request.Config.Provider)),
		slog.String("model", request.Config.Model),
	}
}

func buildRequestAttrs(request copilot.Request, level LogLevel) []any {
	attrs := buildBaseAttrs(request)

	if level >= LogLevelStandard {
		attrs = append(attrs, slog.Int("prompt_length", len(request.Prompt)))
	}
	if level >= LogLevelVerbose {
		attrs = append(attrs, slog.String("prompt", utils.TruncateString(request.Prompt, truncateLen)))
	}

	return attrs
}

func buildErrorAttrs(request copilot.Request, elapsed time.Duration, err error) []any {
	attrs := buildBaseAttrs(request)
	attrs = append(attrs,
		slog.Duration("duration", elapsed),
		slog.String("error", err.Error()),
	)
	if code := ai.StatusCode(err); code != 0 {
		attrs = append(attrs, slog.Int("status_code", code))
	}
	return attrs
}
