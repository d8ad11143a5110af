package copilot

import (
	"context"
	"strings"
	"testing"

	"github.com/leofalp/sqlcopilot/providers/ai"
)

// callRecorder records the order in which middlewares run.
type callRecorder struct {
	order *[]string
	name  string
}

func (rec *callRecorder) config(withStream bool) MiddlewareConfig {
	cfg := MiddlewareConfig{
		Send: func(next SendFunc) SendFunc {
			return func(ctx context.Context, request Request) (string, error) {
				*rec.order = append(*rec.order, rec.name)
				return next(ctx, request)
			}
		},
	}
	if withStream {
		cfg.Stream = func(next StreamFunc) StreamFunc {
			return func(ctx context.Context, request Request) (*ai.TextStream, error) {
				*rec.order = append(*rec.order, rec.name+"-stream")
				return next(ctx, request)
			}
		}
	}
	return cfg
}

func TestBuildSendChain_EmptyMiddlewares(t *testing.T) {
	base := func(_ context.Context, request Request) (string, error) {
		return "echo:" + request.Prompt, nil
	}

	text, err := buildSendChain(base, nil)(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "echo:hi" {
		t.Fatalf("text = %q", text)
	}
}

func TestBuildSendChain_OutermostFirst(t *testing.T) {
	var order []string
	first := &callRecorder{order: &order, name: "first"}
	second := &callRecorder{order: &order, name: "second"}

	base := func(_ context.Context, _ Request) (string, error) {
		order = append(order, "base")
		return "", nil
	}

	chain := buildSendChain(base, []MiddlewareConfig{first.config(false), second.config(false)})
	if _, err := chain(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strings.Join(order, ","); got != "first,second,base" {
		t.Fatalf("order = %s", got)
	}
}

func TestBuildStreamChain_SkipsNilStream(t *testing.T) {
	var order []string
	first := &callRecorder{order: &order, name: "first"}
	second := &callRecorder{order: &order, name: "second"}

	base := func(_ context.Context, _ Request) (*ai.TextStream, error) {
		order = append(order, "base")
		return ai.NewSingleChunkStream("x"), nil
	}

	chain := buildStreamChain(base, []MiddlewareConfig{first.config(false), second.config(true)})
	stream, err := chain(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, _ := stream.Collect()
	if text != "x" {
		t.Fatalf("text = %q", text)
	}

	if got := strings.Join(order, ","); got != "second-stream,base" {
		t.Fatalf("order = %s", got)
	}
}

func TestWithMiddleware_WrapsManagerCalls(t *testing.T) {
	ctx := context.Background()
	var order []string
	rec := &callRecorder{order: &order, name: "outer"}

	fake := &fakeAdapter{name: ai.ProviderOpenAI, text: "SELECT 1", chunks: []string{"SELECT", " 1"}}
	manager, _ := newTestManager(t, fake)
	manager = New(manager.store, WithAdapter(fake), WithMiddleware(rec.config(true)))

	if err := manager.SetConfig(ctx, ai.Config{Provider: ai.ProviderOpenAI}); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if _, err := manager.CallAPI(ctx, "q"); err != nil {
		t.Fatalf("CallAPI: %v", err)
	}
	if err := manager.CallAPIStream(ctx, "q", func(string) {}); err != nil {
		t.Fatalf("CallAPIStream: %v", err)
	}

	if got := strings.Join(order, ","); got != "outer,outer-stream" {
		t.Fatalf("order = %s", got)
	}
}
