// Package gateway hides the backend protocol variance behind one capability
// interface. The vendor is picked once from configuration, never by runtime
// type inspection.
package gateway

import (
	"context"
	"fmt"

	"github.com/promptdeck/promptdeck/internal/models"
	"github.com/promptdeck/promptdeck/internal/vendors/compat"
	"github.com/promptdeck/promptdeck/internal/vendors/native"
)

// Backend is what every vendor must provide: a streaming and a batch route
// for one composed payload. Both surface BackendUnavailableError for
// transport failures and BackendProtocolError for non-success responses.
type Backend interface {
	StreamCompletions(ctx context.Context, payload models.Payload) (chan models.CompletionEvent, error)
	Complete(ctx context.Context, payload models.Payload) (string, error)
}

// New selects the vendor implementation for the configured provider kind
func New(cfg models.BackendConfig) (Backend, error) {
	switch cfg.Provider {
	case models.OpenAICompatible:
		return compat.New(cfg)
	case models.NativeWithTools:
		return native.New(cfg)
	default:
		return nil, fmt.Errorf("unknown provider kind: '%v'", cfg.Provider)
	}
}
