package compat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/promptdeck/promptdeck/internal/models"
)

type batchResponse struct {
	Choices []struct {
		Message models.Message `json:"message"`
	} `json:"choices"`
	// Fallback fields some local runtimes use instead of choices
	Text     string `json:"text"`
	Response string `json:"response"`
}

// Complete sends the payload without streaming and returns the whole reply
func (c *Completer) Complete(ctx context.Context, payload models.Payload) (string, error) {
	req, err := c.createRequest(ctx, payload, false)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	res, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", context.Canceled
		}
		return "", &models.BackendUnavailableError{Cause: err}
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &models.BackendUnavailableError{Cause: err}
	}
	if res.StatusCode != http.StatusOK {
		return "", &models.BackendProtocolError{Status: res.StatusCode, Body: string(body)}
	}

	if c.debug {
		ancli.PrintOK(fmt.Sprintf("raw response: %v\n", string(body)))
	}
	var parsed batchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &models.BackendProtocolError{Status: res.StatusCode, Body: string(body)}
	}
	if len(parsed.Choices) > 0 && parsed.Choices[0].Message.Content != "" {
		return parsed.Choices[0].Message.Content, nil
	}
	if parsed.Text != "" {
		return parsed.Text, nil
	}
	if parsed.Response != "" {
		return parsed.Response, nil
	}
	return "", &models.BackendProtocolError{Status: res.StatusCode, Body: string(body)}
}
