package observability

// Attribute keys, span names, events and metric names shared by every
// component, so logs and metrics from different layers line up.

// --- Provider call attributes ---

const (
	// AttrProvider is the configured provider name ("openai", "aliyun", ...)
	AttrProvider = "copilot.provider"

	// AttrModel is the model sent upstream (empty for custom endpoints)
	AttrModel = "copilot.model"

	// AttrEndpoint is the upstream URL without query string
	AttrEndpoint = "copilot.endpoint"

	// AttrStream is true for streaming calls
	AttrStream = "copilot.stream"

	// AttrPromptLength is the prompt length in bytes
	AttrPromptLength = "copilot.prompt.length"

	// AttrResponseLength is the length of the final text in bytes
	AttrResponseLength = "copilot.response.length"

	// AttrChunkCount is the number of pieces forwarded to the caller
	AttrChunkCount = "copilot.stream.chunks"

	// AttrMaxTokens is the completion budget sent upstream
	AttrMaxTokens = "copilot.max_tokens" // #nosec G101 -- not a credential

	// AttrTemperature is the sampling temperature sent upstream
	AttrTemperature = "copilot.temperature"

	// AttrOutcome is "success" or "error", used as a metric label
	AttrOutcome = "outcome"
)

// --- HTTP attributes ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
	AttrHTTPRoute            = "http.route"
)

// --- Store, history and messaging attributes ---

const (
	AttrStoreKey      = "store.key"
	AttrStoreBackend  = "store.backend"
	AttrHistoryID     = "history.id"
	AttrHistoryCount  = "history.count"
	AttrMessageAction = "message.action"
	AttrSubscribers   = "message.subscribers"
)

// --- General attributes ---

const (
	AttrError             = "error"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Span names ---

const (
	SpanCallAPI        = "copilot.call_api"
	SpanCallAPIStream  = "copilot.call_api_stream"
	SpanValidateConfig = "copilot.validate_config"
	SpanHTTPRequest    = "http.server.request"
)

// --- Event names ---

const (
	EventRequestStart  = "provider.request.start"
	EventRequestEnd    = "provider.request.end"
	EventFirstChunk    = "provider.stream.first_chunk"
	EventStreamEnd     = "provider.stream.end"
	EventConfigCached  = "config.cache.hit"
	EventConfigLoaded  = "config.store.loaded"
	EventHistoryAppend = "history.append"
)

// --- Metric names ---

const (
	// MetricRequestCount counts façade calls by provider, mode and outcome
	MetricRequestCount = "sqlcopilot.request.count"

	// MetricRequestDuration is the façade call duration in seconds
	MetricRequestDuration = "sqlcopilot.request.duration"

	// MetricStreamChunks counts streamed pieces delivered to callers
	MetricStreamChunks = "sqlcopilot.stream.chunks"

	// MetricMessagesDispatched counts runtime messages by action and outcome
	MetricMessagesDispatched = "sqlcopilot.messages.dispatched"

	// MetricHTTPRequests counts bridge requests by route and status
	MetricHTTPRequests = "sqlcopilot.http.requests"
)
