// Package app provides the IWAC chat server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kart-io/iwac-chat/cmd/iwac-chat/app/options"
	chatsvc "github.com/kart-io/iwac-chat/internal/chat"
	"github.com/kart-io/iwac-chat/pkg/infra/app"
)

// commandDesc is the description of the command.
const commandDesc = `IWAC Chat Service

Question answering over the Islam West Africa Collection (IWAC).

This server provides:
  - Keyword extraction and TF-IDF retrieval over the document corpus
  - Grounded answers with numbered source citations
  - Corpus reload from a JSON file or a SQL database
  - Support for multiple LLM providers (Anthropic, OpenAI, Ollama)`

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	return app.NewApp(
		app.WithName(chatsvc.Name),
		app.WithShortDescription("IWAC chat service"),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
		app.WithCommands(newAskCommand(opts)),
	)
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := setupSignalContext()

		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		// Run the server with signal context for graceful shutdown
		return server.Run(ctx)
	}
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
// A second signal exits immediately.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
