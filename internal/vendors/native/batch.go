package native

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/promptdeck/promptdeck/internal/models"
)

type outputItem struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type batchResponse struct {
	Output []outputItem `json:"output"`
	// Fallback fields for older server versions
	Content  string `json:"content"`
	Text     string `json:"text"`
	Response string `json:"response"`
}

// Complete sends the payload without streaming and returns the whole reply
func (c *Completer) Complete(ctx context.Context, payload models.Payload) (string, error) {
	req, err := c.createHTTPRequest(ctx, payload, false)
	if err != nil {
		return "", fmt.Errorf("failed to construct request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", context.Canceled
		}
		return "", &models.BackendUnavailableError{Cause: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.BackendUnavailableError{Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &models.BackendProtocolError{Status: resp.StatusCode, Body: string(body)}
	}

	if c.debug {
		ancli.PrintOK(fmt.Sprintf("raw response: %v\n", string(body)))
	}
	var parsed batchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &models.BackendProtocolError{Status: resp.StatusCode, Body: string(body)}
	}
	if text := extractContent(parsed); text != "" {
		return text, nil
	}
	return "", &models.BackendProtocolError{Status: resp.StatusCode, Body: string(body)}
}

// extractContent prefers the last message item of the output, then the first
// item with content, then the flat fallback fields
func extractContent(parsed batchResponse) string {
	for i := len(parsed.Output) - 1; i >= 0; i-- {
		if parsed.Output[i].Type == "message" && parsed.Output[i].Content != "" {
			return parsed.Output[i].Content
		}
	}
	if len(parsed.Output) > 0 && parsed.Output[0].Content != "" {
		return parsed.Output[0].Content
	}
	if parsed.Content != "" {
		return parsed.Content
	}
	if parsed.Text != "" {
		return parsed.Text
	}
	return parsed.Response
}
