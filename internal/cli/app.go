// Package cli implements the formcloud command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcloud/internal/config"
	"github.com/goliatone/go-formcloud/internal/httpapi"
	"github.com/goliatone/go-formcloud/pkg/catalog"
	"github.com/goliatone/go-formcloud/pkg/flash"
	"github.com/goliatone/go-formcloud/pkg/logging"
	"github.com/goliatone/go-formcloud/pkg/orchestrator"
	"github.com/goliatone/go-formcloud/pkg/render"
	"github.com/goliatone/go-formcloud/pkg/renderers/tui"
	"github.com/goliatone/go-formcloud/pkg/renderers/vanilla"
	"github.com/goliatone/go-formcloud/pkg/store"
)

// Option customises the command line, mostly for tests.
type Option func(*App)

// WithPromptDriver replaces the survey prompts.
func WithPromptDriver(driver tui.PromptDriver) Option {
	return func(a *App) {
		a.driver = driver
	}
}

// WithStore uses s instead of the store named by the configuration. The
// caller keeps ownership of s.
func WithStore(s store.Store) Option {
	return func(a *App) {
		a.store = s
	}
}

// App is the state shared by the commands once configuration is loaded.
type App struct {
	configFile string
	driver     tui.PromptDriver
	store      store.Store

	cfg     *config.Config
	orch    *orchestrator.Orchestrator
	closers []io.Closer
}

func newApp(opts ...Option) *App {
	a := &App{}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// setup loads configuration, logging, forms and the store.
func (a *App) setup(cmd *cobra.Command) error {
	options := config.DefaultOptions()
	options.ConfigFile = a.configFile
	options.Flags = cmd.Flags()
	cfg, err := config.Load(options)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCloser, err := logging.Configure(cfg.Log)
	if err != nil {
		return fmt.Errorf("cli: configure logging: %w", err)
	}
	a.closers = append(a.closers, logCloser)
	logger := logging.Default()
	if cfg.ConfigFile != "" {
		logger.Debug().Str("file", cfg.ConfigFile).Msg("config loaded")
	}

	ctx := cmd.Context()
	forms, err := catalog.LoadDir(ctx, cfg.FormsDir, catalog.WithLogger(logger))
	if err != nil {
		return err
	}

	records := a.store
	if records == nil {
		records, err = config.OpenStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, records)
	}

	if a.driver == nil {
		a.driver = tui.NewSurveyDriver(cmd.OutOrStdout())
	}
	registry, err := a.renderers(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	opts := []orchestrator.Option{
		orchestrator.WithCatalog(forms),
		orchestrator.WithStore(records),
		orchestrator.WithRegistry(registry),
		orchestrator.WithFlash(flash.New(flash.WithDelay(cfg.FlashDuration))),
	}
	if cfg.HashPasswords {
		opts = append(opts, orchestrator.WithPasswordHashing(cfg.PasswordCost))
	}
	a.orch = orchestrator.New(opts...)
	return nil
}

func (a *App) renderers(out io.Writer) (*render.Registry, error) {
	registry := render.NewRegistry()
	pages, err := vanilla.New(vanilla.WithStylesheet(httpapi.StylesheetURL))
	if err != nil {
		return nil, err
	}
	terminal, err := tui.New(tui.WithPromptDriver(a.driver), tui.WithOutput(out))
	if err != nil {
		return nil, err
	}
	for _, r := range []render.Renderer{pages, terminal} {
		if err := registry.Register(r); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// teardown releases the store and the log file.
func (a *App) teardown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// confirm asks prompt through the prompt driver.
func (a *App) confirm(ctx context.Context, prompt string) (bool, error) {
	return a.driver.Confirm(ctx, tui.ConfirmConfig{Message: prompt})
}

// Execute runs the command line with os.Args.
func Execute(ctx context.Context, opts ...Option) error {
	return NewRootCommand(opts...).ExecuteContext(ctx)
}
