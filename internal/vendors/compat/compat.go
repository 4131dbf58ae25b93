// Package compat talks to any backend speaking the openai chat-completions
// REST dialect, locally hosted or remote. It has no tool support, so the
// payload's UseTools flag is ignored.
package compat

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/promptdeck/promptdeck/internal/models"
)

const chatCompletionsPath = "/v1/chat/completions"

type Completer struct {
	Model        string
	SystemPrompt string
	url          string
	apiKey       string
	client       *http.Client
	debug        bool
}

// New builds a completer for the configured base URL. Auth is an optional
// bearer token.
func New(cfg models.BackendConfig) (*Completer, error) {
	endpoint, err := normalizeURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	c := &Completer{
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		url:          endpoint,
		apiKey:       cfg.AuthToken,
		client:       &http.Client{},
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		c.debug = true
	}
	return c, nil
}

// normalizeURL appends the chat-completions path when the base URL has no
// path. An explicit path is used as-is, with a warning if it doesn't look
// like a chat-completions endpoint.
func normalizeURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", errors.New("base URL for openai-compatible provider not configured")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("malformed base URL: '%v'", baseURL)
	}
	path := strings.TrimRight(parsed.Path, "/")
	if path == "" {
		return strings.TrimRight(baseURL, "/") + chatCompletionsPath, nil
	}
	if !strings.HasSuffix(path, chatCompletionsPath) {
		ancli.PrintWarn("using provided URL as-is: '" + baseURL + "', ensure it's a chat completions endpoint\n")
	}
	return baseURL, nil
}

// messages prepends the system prompt and prior turns to the composed user
// turn, so the backend receives structured conversational context
func (c *Completer) messages(payload models.Payload) []models.Message {
	msgs := make([]models.Message, 0, len(payload.PriorTurns)+2)
	if c.SystemPrompt != "" {
		msgs = append(msgs, models.Message{Role: "system", Content: c.SystemPrompt})
	}
	msgs = append(msgs, payload.PriorTurns...)
	msgs = append(msgs, models.Message{Role: "user", Content: payload.PromptText})
	return msgs
}
