package copilot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/leofalp/sqlcopilot/providers/ai"
	"github.com/leofalp/sqlcopilot/providers/ai/aliyun"
	"github.com/leofalp/sqlcopilot/providers/ai/claude"
	"github.com/leofalp/sqlcopilot/providers/ai/custom"
	"github.com/leofalp/sqlcopilot/providers/ai/openai"
	"github.com/leofalp/sqlcopilot/providers/kv"
	"github.com/leofalp/sqlcopilot/providers/observability"
)

// ConfigKey is the store key of the persisted provider record.
const ConfigKey = "apiConfig"

const (
	translationTestPrompt = "你好世界"
	sqlTestPrompt         = "Generate a simple SELECT statement"
)

var (
	// ErrInvalidConfig wraps every validation failure returned by SetConfig.
	ErrInvalidConfig = errors.New("invalid API configuration")

	// ErrUnknownProvider is returned when no adapter is registered for the
	// configured provider.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Manager is safe for concurrent use. The cached record is guarded by an
// RWMutex because the HTTP bridge serves requests in parallel.
type Manager struct {
	store       kv.Store
	validate    *validator.Validate
	observer    observability.Provider
	middlewares []MiddlewareConfig

	send   SendFunc
	stream StreamFunc

	mu       sync.RWMutex
	adapters map[ai.ProviderName]ai.Adapter
	cached   *ai.Config
}

// New returns a Manager persisting its configuration in store, with one
// default adapter per provider.
func New(store kv.Store, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		adapters: map[ai.ProviderName]ai.Adapter{
			ai.ProviderOpenAI: openai.New(),
			ai.ProviderClaude: claude.New(),
			ai.ProviderAliyun: aliyun.New(),
			ai.ProviderCustom: custom.New(),
		},
	}

	for _, opt := range opts {
		opt(m)
	}

	middlewares := m.middlewares
	if m.observer != nil {
		middlewares = append([]MiddlewareConfig{NewObservabilityMiddleware(m.observer)}, middlewares...)
	}

	m.send = buildSendChain(m.sendOnce, middlewares)
	m.stream = buildStreamChain(m.sendStream, middlewares)

	return m
}

// Register installs adapter for name, replacing any previous one.
func (m *Manager) Register(name ai.ProviderName, adapter ai.Adapter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adapters[name] = adapter
}

// Provider returns the adapter registered for name.
func (m *Manager) Provider(name ai.ProviderName) (ai.Adapter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	adapter, ok := m.adapters[name]
	return adapter, ok
}

// GetConfig returns the cached record, loading it from the store on a miss.
// It returns (nil, nil) when no configuration was ever saved. A record
// without a provider is read as custom.
func (m *Manager) GetConfig(ctx context.Context) (*ai.Config, error) {
	m.mu.RLock()
	cached := m.cached
	m.mu.RUnlock()

	if cached != nil {
		if span := observability.SpanFromContext(ctx); span != nil {
			span.AddEvent(observability.EventConfigCached)
		}
		config := *cached
		return &config, nil
	}

	var config ai.Config
	err := kv.GetJSON(ctx, m.store, ConfigKey, &config)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if config.Provider == "" {
		config.Provider = ai.ProviderCustom
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventConfigLoaded,
			observability.String(observability.AttrProvider, string(config.Provider)),
		)
	}

	m.mu.Lock()
	m.cached = &config
	m.mu.Unlock()

	result := config
	return &result, nil
}

// SetConfig fills defaults into config, validates it, persists it and then
// replaces the cache. Nothing is written when validation fails.
func (m *Manager) SetConfig(ctx context.Context, config ai.Config) error {
	config = config.Normalized()

	if err := m.validate.StructCtx(ctx, config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := kv.SetJSON(ctx, m.store, ConfigKey, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	m.mu.Lock()
	m.cached = &config
	m.mu.Unlock()

	return nil
}

// ClearCache drops the cached record so the next GetConfig reads the store.
func (m *Manager) ClearCache() {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
}

// CallAPI sends prompt to the configured provider and returns the extracted
// text. It fails with ai.ErrConfigMissing when nothing was configured.
func (m *Manager) CallAPI(ctx context.Context, prompt string) (string, error) {
	config, err := m.requireConfig(ctx)
	if err != nil {
		return "", err
	}
	return m.send(ctx, Request{Prompt: prompt, Config: config})
}

// CallAPIStream sends prompt with streaming enabled and calls onChunk for
// every text piece, in order. It returns once the transport closes, with the
// first mid-stream error if any.
func (m *Manager) CallAPIStream(ctx context.Context, prompt string, onChunk func(chunk string)) error {
	config, err := m.requireConfig(ctx)
	if err != nil {
		return err
	}

	stream, err := m.stream(ctx, Request{Prompt: prompt, Config: config})
	if err != nil {
		return err
	}
	return stream.Each(onChunk)
}

// ValidateConfig performs a real call with a canned prompt and reports
// whether any text came back. Failures are logged, never returned.
func (m *Manager) ValidateConfig(ctx context.Context, config ai.Config) (ok bool) {
	config = config.Normalized()

	prompt := sqlTestPrompt
	if config.IsTranslation() {
		prompt = translationTestPrompt
	}

	if m.observer != nil {
		var span observability.Span
		ctx, span = m.observer.StartSpan(ctx, observability.SpanValidateConfig,
			observability.String(observability.AttrProvider, string(config.Provider)),
		)
		defer func() {
			span.SetAttributes(observability.Bool(observability.AttrStatus, ok))
			span.End()
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			m.logWarn(ctx, "config validation panicked", observability.String(observability.AttrError, fmt.Sprint(r)))
			ok = false
		}
	}()

	text, err := m.send(ctx, Request{Prompt: prompt, Config: config})
	if err != nil {
		m.logWarn(ctx, "config validation failed",
			observability.String(observability.AttrProvider, string(config.Provider)),
			observability.Error(err),
		)
		return false
	}
	return text != ""
}

func (m *Manager) requireConfig(ctx context.Context) (ai.Config, error) {
	config, err := m.GetConfig(ctx)
	if err != nil {
		return ai.Config{}, err
	}
	if config == nil {
		return ai.Config{}, ai.ErrConfigMissing
	}
	return config.Normalized(), nil
}

func (m *Manager) adapterFor(name ai.ProviderName) (ai.Adapter, error) {
	adapter, ok := m.Provider(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return adapter, nil
}

func (m *Manager) sendOnce(ctx context.Context, request Request) (string, error) {
	adapter, err := m.adapterFor(request.Config.Provider)
	if err != nil {
		return "", err
	}
	return adapter.SendOnce(ctx, request.Prompt, request.Config)
}

func (m *Manager) sendStream(ctx context.Context, request Request) (*ai.TextStream, error) {
	adapter, err := m.adapterFor(request.Config.Provider)
	if err != nil {
		return nil, err
	}
	return adapter.SendStream(ctx, request.Prompt, request.Config)
}

func (m *Manager) logWarn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	if m.observer != nil {
		m.observer.Warn(ctx, msg, attrs...)
	}
}
