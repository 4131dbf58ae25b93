package models

// Message is a single conversational turn in the openai-style role/content
// format. All vendors convert from this format, never to it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is a fully composed request for one send. Constructed fresh per
// invocation, never reused.
type Payload struct {
	// PromptText is the final composed user turn
	PromptText string
	// UseTools instructs the backend to make its configured external tools
	// available for this single call. Ignored by backends without tool support.
	UseTools bool
	// PriorTurns is a snapshot of the conversation so far, empty when chat
	// mode is inactive
	PriorTurns []Message
}

// CompletionEvent is one event from a completions stream. It's either a
// string (text chunk), an error, a NoopEvent or a StopEvent.
type CompletionEvent any

// NoopEvent are stream events which carry no information, such as keepalives
// or chunks without choices
type NoopEvent struct{}

// StopEvent marks graceful end of stream
type StopEvent struct{}

type ProviderKind string

const (
	// OpenAICompatible targets any chat-completions endpoint speaking the
	// openai REST dialect. No tool support, optional bearer auth.
	OpenAICompatible ProviderKind = "openai-compatible"
	// NativeWithTools targets the vendor-native endpoint. Requires an auth
	// token and may enable server-side tools per request.
	NativeWithTools ProviderKind = "native"
)

// BackendConfig describes where and how to reach the model backend. Supplied
// by the host, read-only to the pipeline.
type BackendConfig struct {
	BaseURL   string       `json:"base_url"`
	Provider  ProviderKind `json:"provider"`
	AuthToken string       `json:"auth_token"`
	Model     string       `json:"model"`
	// SystemPrompt is prepended by the vendor on every request. It is not
	// part of the conversation history.
	SystemPrompt string `json:"system_prompt"`
	// RequireToolKeyword gates tool use on the USETOOLS marker. When false,
	// tools are enabled for every request on backends that support them.
	RequireToolKeyword bool `json:"require_tool_keyword"`
	// ToolIDs is a comma separated list of backend-side tool integrations
	// to enable when a request asks for tools
	ToolIDs string `json:"tool_ids"`
}
