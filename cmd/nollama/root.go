package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spetersoncode/nollama"
	"github.com/spetersoncode/nollama/client"
	"github.com/spetersoncode/nollama/internal/config"
	"github.com/spetersoncode/nollama/internal/exchange"
	"github.com/spetersoncode/nollama/internal/logging"
	"github.com/spetersoncode/nollama/internal/render"
	"github.com/spetersoncode/nollama/internal/repl"
	"github.com/spetersoncode/nollama/internal/retry"
	"github.com/spetersoncode/nollama/internal/selector"
	"github.com/spetersoncode/nollama/internal/tokens"
	"github.com/spetersoncode/nollama/model"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// flags holds command line overrides. They take precedence over the
// environment and configuration files.
type flags struct {
	stream   bool
	noStream bool
	provider string
	model    string
	envFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&flags{})
}

func newRootCmdWith(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nollama",
		Short: "Chat with hosted LLMs from the terminal",
		Long: `nollama is a terminal chat client for OpenAI, Anthropic and Google Gemini.
Responses are streamed and rendered as markdown.

Commands at the prompt:
  clear      clear the screen and start a new conversation
  model      choose another model from the current provider
  provider   choose another provider and model
  quit       leave (also exit, q, Ctrl+C or Ctrl+D)

API keys are read from the environment or from ~/.nollama:
  OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY (or GEMINI_API_KEY)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, f)
		},
	}

	cmd.PersistentFlags().StringVar(&f.envFile, "env-file", "", "credential file to read instead of ~/.nollama")
	cmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&f.stream, "stream", true, "stream responses as they are generated")
	cmd.Flags().BoolVar(&f.noStream, "no-stream", false, "wait for complete responses")
	cmd.Flags().StringVarP(&f.provider, "provider", "p", "", "provider to use (openai, anthropic, google)")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "model to use")

	cmd.AddCommand(newModelsCmd(f), newVersionCmd())
	return cmd
}

// loadConfig resolves and validates configuration with flag overrides
// applied.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	src := config.DefaultSources()
	if f.envFile != "" {
		if _, err := os.Stat(f.envFile); err != nil {
			return nil, fmt.Errorf("env file: %w", err)
		}
		src.CredentialFile = f.envFile
	}

	cfg, err := config.Load(src)
	if err != nil {
		return nil, err
	}

	if f.provider != "" {
		cfg.Provider = f.provider
	}
	if f.model != "" {
		cfg.Model = f.model
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if cmd.Flags().Changed("stream") {
		cfg.Stream = f.stream
	}
	if f.noStream {
		cfg.Stream = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app is the set of long-lived objects shared by the commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	client *client.Client
	close  func()
}

// newApp starts logging and builds the model client. Client events are
// drained into the log until ctx ends.
func newApp(ctx context.Context, cfg *config.Config) *app {
	logger, closer, err := logging.Init(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	events := make(chan client.Event, 64)
	go logging.DrainEvents(ctx, logger, events)

	policy := retry.Default().WithAttempts(cfg.MaxRetries)
	var opts []client.ClientOption
	if cfg.SystemPrompt != "" {
		opts = append(opts, client.WithDefaultSystem(cfg.SystemPrompt))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, client.WithDefaultMaxTokens(cfg.MaxTokens))
	}

	c := client.New(client.Config{
		APIKeys:       cfg.APIKeys(),
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		Retry:         &policy,
		Events:        events,
	}, opts...)

	return &app{
		cfg:    cfg,
		logger: logger,
		client: c,
		close: func() {
			if err := closer.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: closing log: %v\n", err)
			}
		},
	}
}

func runChat(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(ctx, cfg)
	defer a.close()

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	interactive := isTerminal(in) && isTerminal(out)
	reader, sel := inputs(in, out, cfg.HistoryFile, interactive)
	defer func() {
		if err := reader.Close(); err != nil {
			a.logger.Warn("saving input history", slog.String("error", err.Error()))
		}
	}()

	m, err := chooseModel(ctx, cfg, a.client, sel, interactive)
	if err != nil {
		if errors.Is(err, selector.ErrCanceled) || ctx.Err() != nil {
			return nil
		}
		return err
	}

	terminal := render.New(out)
	controller, err := repl.New(repl.Config{
		Reader:    reader,
		Exchanger: exchange.New(a.client, terminal, exchange.WithLogger(a.logger)),
		Display:   terminal,
		Catalog:   a.client,
		Selector:  sel,
		Estimator: tokens.New(a.logger),
		Providers: cfg.Configured(),
		Model:     m,
		Stream:    cfg.Stream,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}
	return controller.Run(ctx)
}

// inputs picks the line reader and selector for the session: line editing
// and a list picker on a terminal, plain line input otherwise.
func inputs(in io.Reader, out io.Writer, historyFile string, interactive bool) (repl.LineReader, selector.Selector) {
	if interactive {
		return repl.NewLinerReader(historyFile), selector.NewList(in, out)
	}

	br := bufio.NewReader(in)
	return repl.NewPlainReader(br, out), selector.NewNumbered(br, out)
}

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// chooseModel resolves the starting provider and model from configuration,
// asking the user for whatever is not set. A known model id picks its own
// provider. Without a terminal the provider's default model is used rather
// than consuming piped input as a menu answer.
func chooseModel(ctx context.Context, cfg *config.Config, catalog repl.ModelCatalog, sel selector.Selector, interactive bool) (nollama.Model, error) {
	configured := cfg.Configured()
	known, isKnown := model.Lookup(cfg.Model)

	var p nollama.Provider
	switch {
	case cfg.Provider != "":
		parsed, err := nollama.ParseProvider(cfg.Provider)
		if err != nil {
			return nollama.Model{}, err
		}
		p = parsed
	case cfg.Model != "" && isKnown:
		p = known.Provider()
		if !slices.Contains(configured, p) {
			return nollama.Model{}, fmt.Errorf("model %s is served by %s, which has no API key configured", cfg.Model, p.DisplayName())
		}
	case len(configured) == 1:
		p = configured[0]
	default:
		chosen, err := repl.SelectProvider(ctx, sel, configured)
		if err != nil {
			return nollama.Model{}, err
		}
		p = chosen
	}

	if cfg.Model != "" {
		return nollama.Model{Provider: p, ID: cfg.Model}, nil
	}
	// A compatible endpoint is unlikely to serve the catalog default.
	compatible := p == nollama.ProviderOpenAI && cfg.OpenAIBaseURL != ""
	if !interactive && !compatible {
		if def, ok := model.Default(p); ok {
			return def.Model(), nil
		}
	}
	return repl.SelectModel(ctx, sel, catalog, p)
}
