package compat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/promptdeck/promptdeck/internal/models"
)

var dataPrefix = []byte("data: ")

type request struct {
	Model    string           `json:"model"`
	Messages []models.Message `json:"messages"`
	Stream   bool             `json:"stream,omitempty"`
}

type chatCompletionChunk struct {
	Id      string   `json:"id"`
	Object  string   `json:"object"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

type choice struct {
	Index        int    `json:"index"`
	Delta        delta  `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

type delta struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// StreamCompletions sends the payload and returns a channel of completion
// events in receipt order. The channel closes when the stream terminates or
// ctx is cancelled.
func (c *Completer) StreamCompletions(ctx context.Context, payload models.Payload) (chan models.CompletionEvent, error) {
	req, err := c.createRequest(ctx, payload, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, &models.BackendUnavailableError{Cause: err}
	}
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		return nil, &models.BackendProtocolError{Status: res.StatusCode, Body: string(body)}
	}
	return c.handleStreamResponse(ctx, res), nil
}

func (c *Completer) createRequest(ctx context.Context, payload models.Payload, stream bool) (*http.Request, error) {
	reqData := request{
		Model:    c.Model,
		Messages: c.messages(payload),
		Stream:   stream,
	}
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %v", c.apiKey))
	}
	if stream {
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Connection", "keep-alive")
	}
	return req, nil
}

func (c *Completer) handleStreamResponse(ctx context.Context, res *http.Response) chan models.CompletionEvent {
	outChan := make(chan models.CompletionEvent)
	go func() {
		br := bufio.NewReader(res.Body)
		defer func() {
			res.Body.Close()
			close(outChan)
		}()
		for {
			if ctx.Err() != nil {
				return
			}
			token, err := br.ReadBytes('\n')
			if err != nil {
				// Cancellation is not an error, abandoned streams resolve
				// silently
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					select {
					case outChan <- fmt.Errorf("failed to read line: %w", err):
					case <-ctx.Done():
					}
				}
				return
			}
			ev := c.handleStreamChunk(token)
			if _, isNoop := ev.(models.NoopEvent); isNoop {
				continue
			}
			select {
			case outChan <- ev:
			case <-ctx.Done():
				return
			}
			if _, isStop := ev.(models.StopEvent); isStop {
				return
			}
		}
	}()
	return outChan
}

func (c *Completer) handleStreamChunk(token []byte) models.CompletionEvent {
	token = bytes.TrimPrefix(token, dataPrefix)
	token = bytes.TrimSpace(token)
	if len(token) == 0 {
		return models.NoopEvent{}
	}
	if string(token) == "[DONE]" {
		return models.StopEvent{}
	}

	if c.debug {
		ancli.PrintOK(fmt.Sprintf("token: %+v\n", string(token)))
	}
	var chunk chatCompletionChunk
	if err := json.Unmarshal(token, &chunk); err != nil {
		// Keepalives and other non-JSON lines are expected
		return models.NoopEvent{}
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
		return models.NoopEvent{}
	}
	return chunk.Choices[0].Delta.Content
}
