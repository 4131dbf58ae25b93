// Package core ties the pipeline together: recipes in, composed payloads
// through the configured backend, replies out via the sink.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/promptdeck/promptdeck/internal/gateway"
	"github.com/promptdeck/promptdeck/internal/models"
	"github.com/promptdeck/promptdeck/internal/prompt"
	"github.com/promptdeck/promptdeck/internal/recipe"
	"github.com/promptdeck/promptdeck/internal/router"
	"github.com/promptdeck/promptdeck/internal/session"
)

type Config struct {
	Backend models.BackendConfig
	Stream  bool
}

type App struct {
	backend   gateway.Backend
	assembler prompt.Assembler
	store     *recipe.Store
	session   *session.Session
	router    *router.Router
	stream    bool
	debug     bool
}

func New(cfg Config) (*App, error) {
	backend, err := gateway.New(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("failed to setup backend: %w", err)
	}
	return &App{
		backend:   backend,
		assembler: prompt.Assembler{RequireToolKeyword: cfg.Backend.RequireToolKeyword},
		store:     recipe.NewStore(),
		session:   session.New(),
		router:    router.New(),
		stream:    cfg.Stream,
		debug:     misc.Truthy(os.Getenv("DEBUG")),
	}, nil
}

// ReloadCatalogue re-parses the recipe document and swaps it in. In-flight
// requests keep the payload they were composed with.
func (a *App) ReloadCatalogue(doc string) []recipe.Warning {
	warnings := a.store.Reload(doc)
	if a.debug {
		ancli.PrintOK(fmt.Sprintf("catalogue reloaded, %v recipes, %v warnings\n", a.store.Catalogue().Len(), len(warnings)))
	}
	return warnings
}

func (a *App) Catalogue() *recipe.Catalogue {
	return a.store.Catalogue()
}

func (a *App) Session() *session.Session {
	return a.session
}

// SetChatMode toggles chat mode. Both transitions clear the conversation.
func (a *App) SetChatMode(on bool) {
	a.session.SetActive(on)
}

// CancelActive aborts the in-flight request, if any
func (a *App) CancelActive() {
	a.router.CancelActive()
}

// InvokeRecipe runs the named recipe against the captured text. A recipe
// invocation always leaves chat mode first, so its reply is standalone.
func (a *App) InvokeRecipe(ctx context.Context, name, capturedText string, sink router.Sink) error {
	r, ok := a.store.Get(name)
	if !ok {
		return &models.InvalidInvocationError{
			Reason: fmt.Sprintf("unknown recipe: '%v', available: %v", name, strings.Join(a.store.Catalogue().Names(), ", ")),
		}
	}
	a.session.SetActive(false)
	payload, err := a.assembler.Assemble(&r, "", capturedText, nil)
	if err != nil {
		return err
	}
	_, _, err = a.send(ctx, payload, sink)
	return err
}

// InvokeFreeform sends an ad hoc instruction. When chat mode is active the
// conversation so far rides along, and a delivered reply extends it.
func (a *App) InvokeFreeform(ctx context.Context, instruction, capturedText string, sink router.Sink) error {
	payload, err := a.assembler.Assemble(nil, instruction, capturedText, a.session.Turns())
	if err != nil {
		return err
	}
	full, delivered, err := a.send(ctx, payload, sink)
	if err != nil {
		return err
	}
	if delivered {
		a.session.AddExchange(payload.PromptText, full)
	}
	return nil
}

// send routes one payload through the backend. Cancellation resolves
// silently, backend errors reach the sink exactly once.
func (a *App) send(ctx context.Context, payload models.Payload, sink router.Sink) (string, bool, error) {
	ctx, gen := a.router.Begin(ctx)
	if a.debug {
		ancli.PrintOK(fmt.Sprintf("sending payload: %v\n", debug.IndentedJsonFmt(payload)))
	}
	if a.stream {
		events, err := a.backend.StreamCompletions(ctx, payload)
		if err != nil {
			return a.fail(gen, err, sink)
		}
		return a.router.Stream(ctx, gen, events, sink)
	}
	full, err := a.backend.Complete(ctx, payload)
	if err != nil {
		return a.fail(gen, err, sink)
	}
	return full, a.router.Batch(gen, full, sink), nil
}

func (a *App) fail(gen uint64, err error, sink router.Sink) (string, bool, error) {
	if errors.Is(err, context.Canceled) {
		return "", false, nil
	}
	a.router.Fail(gen, err, sink)
	return "", false, err
}
