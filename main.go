package main

import (
	"context"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
)

const usage = `promptdeck - clipboard recipes for local and remote language models

Captured text comes from the command line, or from stdin when piped.

Usage: promptdeck [flags] <command>

Flags:
  -rd, -recipes string    Path to a recipe document, overriding the one in the config dir.
  -r, -raw bool           Print the whole reply at once instead of streaming.

Commands:
  h|help                   Display this help message
  v|version                Display build version
  l|list                   List the recipe catalogue
  r|run <recipe> [text]    Run a catalogued recipe on the given or piped text
  q|query <instruction>    Send a freeform instruction, piped text is appended
  c|chat <instruction>     Converse with the model. The session persists between invocations
  reset                    Clear the persisted chat session

Examples:
  - promptdeck list
  - promptdeck run Summarize "The sky is blue because of Rayleigh scattering."
  - git diff | promptdeck run Summarize
  - promptdeck query "USETOOLS: What's the weather like in Tokyo?"
  - promptdeck chat "Let's talk about Go concurrency."
  - promptdeck reset

Configuration lives in backend.json and recipes.md under the config dir,
os.UserConfigDir()/.promptdeck, overridable via PROMPTDECK_CONFIG_HOME.
`

func main() {
	ancli.SetupSlog()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { shutdown.Monitor(cancel) }()
	exitCode := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	cancel()
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK("bye bye!\n")
	}
	os.Exit(exitCode)
}
