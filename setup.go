package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/promptdeck/promptdeck/internal/core"
	"github.com/promptdeck/promptdeck/internal/models"
	"github.com/promptdeck/promptdeck/internal/recipe"
	"github.com/promptdeck/promptdeck/internal/session"
	"github.com/promptdeck/promptdeck/internal/utils"
)

const (
	backendConfigFile = "backend.json"
	recipeFile        = "recipes.md"
	sessionFile       = "session.json"
)

var defaultBackendConfig = models.BackendConfig{
	BaseURL:      "http://localhost:1234",
	Provider:     models.OpenAICompatible,
	Model:        "openai/gpt-oss-20b",
	SystemPrompt: "You are a helpful assistant.",
}

const defaultRecipeDoc = `# General

**Summarize**: Summarize the following text:

**Explain**: Explain the following text in simple terms:

**Fix grammar**: Correct the grammar and spelling of the following text, keep the meaning:

# Research

**Fact check**: USETOOLS: Fact check the following statement:
`

// cliSink prints the reply to the terminal. In streaming mode the chunks
// arrive as they are produced and completion just terminates the line.
type cliSink struct {
	out      io.Writer
	streamed bool
}

func (c *cliSink) OnChunk(text string) {
	fmt.Fprint(c.out, text)
}

func (c *cliSink) OnComplete(full string) {
	if c.streamed {
		fmt.Fprintln(c.out)
		return
	}
	fmt.Fprintln(c.out, full)
}

func (c *cliSink) OnError(err error) {
	ancli.PrintErr(fmt.Sprintf("%v\n", err))
}

func run(ctx context.Context, args []string, stdin io.Reader, out io.Writer) int {
	flagSet := flag.NewFlagSet("promptdeck", flag.ContinueOnError)
	flagSet.SetOutput(out)
	recipesShort := flagSet.String("rd", "", "Path to a recipe document, overriding the one in the config dir. Mutually exclusive with recipes flag.")
	recipesLong := flagSet.String("recipes", "", "Path to a recipe document, overriding the one in the config dir. Mutually exclusive with rd flag.")
	rawShort := flagSet.Bool("r", false, "Set to true to print the whole reply at once instead of streaming.")
	rawLong := flagSet.Bool("raw", false, "Set to true to print the whole reply at once instead of streaming.")
	flagSet.Usage = func() { fmt.Fprint(out, usage) }
	if err := flagSet.Parse(args); err != nil {
		return 1
	}
	rest := flagSet.Args()
	recipesPath, err := utils.ReturnNonDefault(*recipesShort, *recipesLong, "")
	if err != nil {
		ancli.PrintErr("flags -rd and -recipes are mutually exclusive\n")
		return 1
	}
	raw := *rawShort || *rawLong
	mode := "help"
	if len(rest) > 0 {
		mode = rest[0]
	}

	switch mode {
	case "h", "help":
		fmt.Fprint(out, usage)
		return 0
	case "v", "version":
		printVersion(out)
		return 0
	}

	configDir, err := utils.ConfigDir()
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("failed to find config dir: %v\n", err))
		return 1
	}
	app, err := setup(configDir, recipesPath, !raw)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("failed to setup: %v\n", err))
		return 1
	}
	sessionPath := filepath.Join(configDir, sessionFile)
	sink := &cliSink{out: out, streamed: !raw}

	switch mode {
	case "l", "list":
		printCatalogue(out, app.Catalogue())
		return 0
	case "reset":
		if err := session.Discard(sessionPath); err != nil {
			ancli.PrintErr(fmt.Sprintf("failed to clear session: %v\n", err))
			return 1
		}
		ancli.Okf("chat session cleared\n")
		return 0
	case "r", "run":
		if len(rest) < 2 {
			ancli.PrintErr("missing recipe name, usage: promptdeck run <recipe> [text]\n")
			return 1
		}
		// A recipe reply is standalone, any ongoing conversation ends here
		if err := session.Discard(sessionPath); err != nil {
			ancli.PrintWarn(fmt.Sprintf("failed to clear session: %v\n", err))
		}
		if err := app.InvokeRecipe(ctx, rest[1], capturedText(rest[2:], stdin), sink); err != nil {
			reportInvocationErr(err)
			return 1
		}
		return 0
	case "q", "query":
		if len(rest) < 2 {
			ancli.PrintErr("missing instruction, usage: promptdeck query <instruction>\n")
			return 1
		}
		if err := app.InvokeFreeform(ctx, strings.Join(rest[1:], " "), capturedText(nil, stdin), sink); err != nil {
			reportInvocationErr(err)
			return 1
		}
		return 0
	case "c", "chat":
		if len(rest) < 2 {
			ancli.PrintErr("missing instruction, usage: promptdeck chat <instruction>\n")
			return 1
		}
		loaded, err := session.Load(sessionPath)
		if err != nil {
			ancli.PrintErr(fmt.Sprintf("failed to load session: %v\n", err))
			return 1
		}
		app.Session().Restore(loaded.Turns())
		if err := app.InvokeFreeform(ctx, strings.Join(rest[1:], " "), "", sink); err != nil {
			reportInvocationErr(err)
			return 1
		}
		if err := session.Save(sessionPath, app.Session()); err != nil {
			ancli.PrintWarn(fmt.Sprintf("failed to save session: %v\n", err))
		}
		return 0
	default:
		ancli.PrintErr(fmt.Sprintf("unknown command: '%v'\n", mode))
		fmt.Fprint(out, usage)
		return 1
	}
}

// setup loads the backend config and the recipe document, then builds the
// pipeline. Parse warnings are surfaced but never fatal.
func setup(configDir, recipesOverride string, stream bool) (*core.App, error) {
	backendCfg, err := utils.LoadConfigFromFile(configDir, backendConfigFile, &defaultBackendConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load backend config: %w", err)
	}
	app, err := core.New(core.Config{Backend: backendCfg, Stream: stream})
	if err != nil {
		return nil, err
	}
	doc, err := loadRecipeDoc(configDir, recipesOverride)
	if err != nil {
		return nil, err
	}
	for _, warning := range app.ReloadCatalogue(doc) {
		ancli.PrintWarn(warning.String() + "\n")
	}
	return app, nil
}

func loadRecipeDoc(configDir, override string) (string, error) {
	if override != "" {
		b, err := os.ReadFile(override)
		if err != nil {
			return "", fmt.Errorf("failed to read recipe document: %w", err)
		}
		return string(b), nil
	}
	path := filepath.Join(configDir, recipeFile)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, []byte(defaultRecipeDoc), 0o644); err != nil {
			return "", fmt.Errorf("failed to write default recipe document: %w", err)
		}
		ancli.Okf("created default recipe document at: '%v'\n", path)
		return defaultRecipeDoc, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read recipe document: %w", err)
	}
	return string(b), nil
}

// capturedText prefers argv text over piped stdin. An interactive stdin is
// never read, so a bare invocation doesn't hang waiting for input.
func capturedText(args []string, stdin io.Reader) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	if f, ok := stdin.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return ""
		}
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func printCatalogue(out io.Writer, c *recipe.Catalogue) {
	if c.Len() == 0 {
		fmt.Fprintln(out, "no recipes found")
		return
	}
	for _, g := range c.Groups {
		if g.Heading != "" {
			fmt.Fprintf(out, "%v %v\n", strings.Repeat("#", g.Level), g.Heading)
		}
		for _, r := range g.Recipes {
			marker := ""
			if r.RequiresTools {
				marker = " [tools]"
			}
			fmt.Fprintf(out, "  %v%v: %v\n", r.Name, marker, r.Instruction)
		}
	}
}

func printVersion(out io.Writer) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Fprintln(out, "version: unknown")
		return
	}
	fmt.Fprintf(out, "version: %v\n", bi.Main.Version)
}

// reportInvocationErr prints errors that never reached the sink. Backend
// failures were already surfaced by the sink's OnError.
func reportInvocationErr(err error) {
	var invalid *models.InvalidInvocationError
	if errors.As(err, &invalid) {
		ancli.PrintErr(fmt.Sprintf("%v\n", invalid))
	}
}
