package native

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/promptdeck/promptdeck/internal/models"
)

type contentDelta struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"delta"`
}

// StreamCompletions sends the payload and streams the reply. The native
// protocol frames the stream as 'event: <type>' lines, each followed by a
// 'data: <json>' line.
func (c *Completer) StreamCompletions(ctx context.Context, payload models.Payload) (chan models.CompletionEvent, error) {
	req, err := c.createHTTPRequest(ctx, payload, true)
	if err != nil {
		return nil, fmt.Errorf("failed to construct request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &models.BackendUnavailableError{Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &models.BackendProtocolError{Status: resp.StatusCode, Body: string(body)}
	}
	return c.handleStreamResponse(ctx, resp), nil
}

func (c *Completer) createHTTPRequest(ctx context.Context, payload models.Payload, stream bool) (*http.Request, error) {
	jsonData, err := json.Marshal(c.buildRequest(payload, stream))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %v", c.authToken))
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	return req, nil
}

func (c *Completer) handleStreamResponse(ctx context.Context, resp *http.Response) chan models.CompletionEvent {
	outChan := make(chan models.CompletionEvent)
	go func() {
		br := bufio.NewReader(resp.Body)
		defer func() {
			resp.Body.Close()
			close(outChan)
		}()
		for {
			if ctx.Err() != nil {
				return
			}
			token, err := br.ReadString('\n')
			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					select {
					case outChan <- models.CompletionEvent(fmt.Errorf("failed to read line: %w", err)):
					case <-ctx.Done():
					}
				}
				return
			}
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			text, err := c.handleToken(br, token)
			if err != nil {
				if errors.Is(err, io.EOF) {
					select {
					case outChan <- models.StopEvent{}:
					case <-ctx.Done():
					}
					return
				}
				select {
				case outChan <- models.CompletionEvent(fmt.Errorf("failed to handle token: %w", err)):
				case <-ctx.Done():
				}
				return
			}
			if text != "" {
				select {
				case outChan <- models.CompletionEvent(text):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return outChan
}

// handleToken dispatches on the event type. message_stop ends the stream,
// content_delta carries text, everything else is skipped along with its
// data line.
func (c *Completer) handleToken(br *bufio.Reader, token string) (string, error) {
	eventTok, eventType, found := strings.Cut(token, " ")
	if !found {
		return "", fmt.Errorf("unexpected token: '%v', expected format: 'event: <event>'", token)
	}
	if eventTok != "event:" {
		return "", fmt.Errorf("unexpected token, want: 'event:', got: '%v'", eventTok)
	}
	eventType = strings.TrimSpace(eventType)
	if c.debug {
		ancli.PrintOK(fmt.Sprintf("event type: '%v'\n", eventType))
	}
	switch eventType {
	case "message_stop":
		return "", io.EOF
	case "content_delta":
		deltaToken, err := br.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read content_delta: %w", err)
		}
		return c.textFromDeltaToken(deltaToken)
	}

	// Jump down one line to set up the next event
	br.ReadString('\n')
	return "", nil
}

func (c *Completer) textFromDeltaToken(deltaToken string) (string, error) {
	dataTok, deltaJSON, found := strings.Cut(strings.TrimSpace(deltaToken), " ")
	if !found || dataTok != "data:" {
		return "", fmt.Errorf("unexpected delta token, want: 'data: <json>', got: '%v'", deltaToken)
	}
	var delta contentDelta
	if err := json.Unmarshal([]byte(deltaJSON), &delta); err != nil {
		return "", fmt.Errorf("failed to unmarshal delta: '%v', err: %w", deltaJSON, err)
	}
	return delta.Delta.Text, nil
}
