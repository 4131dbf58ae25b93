// Package native talks to the vendor-native chat endpoint. Unlike the
// openai-compatible route it requires an auth token and can enable
// backend-side tool integrations (web search and friends) per request.
package native

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/promptdeck/promptdeck/internal/models"
)

const chatPath = "/api/v1/chat"

const defaultMaxTokens = 1024

type Completer struct {
	Model        string
	MaxTokens    int
	SystemPrompt string
	url          string
	authToken    string
	toolIDs      []string
	client       *http.Client
	debug        bool
}

// New builds a native completer. The auth token is mandatory for this
// provider.
func New(cfg models.BackendConfig) (*Completer, error) {
	if cfg.AuthToken == "" {
		return nil, errors.New("auth token required for native provider")
	}
	endpoint, err := endpointFrom(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	c := &Completer{
		Model:        cfg.Model,
		MaxTokens:    defaultMaxTokens,
		SystemPrompt: cfg.SystemPrompt,
		url:          endpoint,
		authToken:    cfg.AuthToken,
		toolIDs:      splitToolIDs(cfg.ToolIDs),
		client:       &http.Client{},
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		c.debug = true
	}
	return c, nil
}

// endpointFrom keeps only scheme and host of the base URL and appends the
// native chat path
func endpointFrom(baseURL string) (string, error) {
	if baseURL == "" {
		return "", errors.New("base URL for native provider not configured")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("malformed base URL: '%v'", baseURL)
	}
	return fmt.Sprintf("%v://%v%v", parsed.Scheme, parsed.Host, chatPath), nil
}

func splitToolIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

type integration struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type request struct {
	Model        string           `json:"model"`
	Messages     []models.Message `json:"messages"`
	MaxTokens    int              `json:"max_tokens"`
	Stream       bool             `json:"stream"`
	System       string           `json:"system,omitempty"`
	Integrations []integration    `json:"integrations,omitempty"`
}

// buildRequest keeps the turn history structured, the system prompt rides in
// its own field. Tool integrations are attached only when the payload asks
// for them.
func (c *Completer) buildRequest(payload models.Payload, stream bool) request {
	msgs := make([]models.Message, 0, len(payload.PriorTurns)+1)
	msgs = append(msgs, payload.PriorTurns...)
	msgs = append(msgs, models.Message{Role: "user", Content: payload.PromptText})

	reqData := request{
		Model:     c.Model,
		Messages:  msgs,
		MaxTokens: c.MaxTokens,
		Stream:    stream,
		System:    c.SystemPrompt,
	}
	if payload.UseTools && len(c.toolIDs) > 0 {
		for _, id := range c.toolIDs {
			reqData.Integrations = append(reqData.Integrations, integration{Type: "plugin", ID: id})
		}
	}
	return reqData
}
