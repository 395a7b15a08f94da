package app

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"goa.design/clue/log"

	"github.com/Rorical/TermTwin/internal/config"
	"github.com/Rorical/TermTwin/internal/core"
	"github.com/Rorical/TermTwin/internal/dispatcher"
	"github.com/Rorical/TermTwin/internal/eventbus"
	"github.com/Rorical/TermTwin/internal/logging"
	"github.com/Rorical/TermTwin/internal/models"
	"github.com/Rorical/TermTwin/ui/components"
)

// Options override the saved configuration for one run.
type Options struct {
	Profile string // profile to use instead of the active one
	Debug   bool
}

// Application manages the complete application lifecycle
type Application struct {
	ctx        context.Context
	config     *config.Config
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.ChatService
	model      *AppModel
	closeLog   func() error
	stopOnce   sync.Once
}

type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
	markdown   *components.Markdown
}

func NewApplication(opts Options) (*Application, error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewApplicationWithConfig(context.Background(), cfg, opts)
}

// NewApplicationWithConfig wires the core and the UI around an already
// loaded configuration.
func NewApplicationWithConfig(ctx context.Context, cfg *config.Config, opts Options) (*Application, error) {
	if opts.Profile != "" {
		if err := cfg.UseProfile(opts.Profile); err != nil {
			return nil, err
		}
	}

	ctx, closeLog, err := logging.Setup(ctx, logging.Options{
		File:  cfg.LogPath(),
		Debug: opts.Debug || cfg.Logging.Debug,
	})
	if err != nil {
		return nil, err
	}

	// Create event bus
	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		log.Error(ctx, e, log.KV{K: "op", V: e.Operation})
	})

	// Create dispatcher
	disp := dispatcher.NewEventDispatcher(eb)

	// Initialize chat service (always create, handles invalid config internally)
	chatService, err := core.NewChatService(ctx, cfg, eb)
	if err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "failed to initialize chat service"})
		closeLog()
		return nil, fmt.Errorf("failed to initialize chat service: %w", err)
	}
	log.Info(ctx,
		log.KV{K: "msg", V: "application ready"},
		log.KV{K: "profile", V: cfg.ActiveProfile},
		log.KV{K: "backend", V: chatService.IsReady()})

	// Create app model
	model := &AppModel{
		appModel:   models.NewAppModel(chatService.IsReady()),
		dispatcher: disp,
		markdown:   components.NewMarkdown("dark"),
	}

	return &Application{
		ctx:        ctx,
		config:     cfg,
		eventBus:   eb,
		dispatcher: disp,
		service:    chatService,
		model:      model,
		closeLog:   closeLog,
	}, nil
}

func (app *Application) Start() error {
	// Start background services
	app.dispatcher.Start()
	app.service.Start() // Always start since service is always created

	// Run UI
	p := tea.NewProgram(app.model, tea.WithAltScreen())
	_, err := p.Run()
	if err != nil {
		log.Error(app.ctx, err, log.KV{K: "msg", V: "ui exited with error"})
	}

	return err
}

// Stop is safe to call more than once.
func (app *Application) Stop() {
	app.stopOnce.Do(func() {
		app.service.Stop()    // Always exists
		app.dispatcher.Stop() // Always exists
		app.eventBus.Close()  // Always exists
		if err := app.closeLog(); err != nil {
			fmt.Printf("Failed to close log file: %v\n", err)
		}
	})
}

// Service exposes the core for headless use.
func (app *Application) Service() *core.ChatService {
	return app.service
}

func (app *Application) Dispatcher() *dispatcher.EventDispatcher {
	return app.dispatcher
}

func (app *Application) EventBus() *eventbus.EventBus {
	return app.eventBus
}

func (app *Application) Context() context.Context {
	return app.ctx
}
