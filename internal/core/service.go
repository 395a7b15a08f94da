package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"goa.design/clue/log"

	"github.com/Rorical/TermTwin/internal/commands"
	"github.com/Rorical/TermTwin/internal/config"
	"github.com/Rorical/TermTwin/internal/eventbus"
	"github.com/Rorical/TermTwin/internal/models"
	"github.com/Rorical/TermTwin/internal/portfolio"
	"github.com/Rorical/TermTwin/internal/sse"
	"github.com/Rorical/TermTwin/internal/stream"
	"github.com/Rorical/TermTwin/internal/typewriter"
)

const (
	inboxSize  = 256
	retryDelay = 50 * time.Millisecond

	busyMessage      = "Please wait for the current response to finish"
	cancelledMessage = "Request cancelled"
)

// ChatService owns the conversation. All state changes happen on its event
// loop; network work runs on goroutines that post results back to the loop.
type ChatService struct {
	client    *sse.Client // nil when the active profile is not configured
	portfolio *portfolio.Client
	config    *config.Config
	state     *ChatState
	eventBus  *eventbus.EventBus

	sessionID string
	userIP    string

	ctx    context.Context
	cancel context.CancelFunc
	inbox  chan func()
	wg     sync.WaitGroup
	done   chan struct{}

	started      bool
	dirty        bool
	retryPending bool
}

// NewChatService creates a ChatService regardless of config validity
// This ensures we always have a service to manage state
func NewChatService(ctx context.Context, cfg *config.Config, eb *eventbus.EventBus) (*ChatService, error) {
	noise := stream.DefaultNoiseFilter()
	if len(cfg.Stream.NoisePatterns) > 0 {
		var err error
		noise, err = stream.NewNoiseFilter(cfg.Stream.NoisePatterns)
		if err != nil {
			return nil, fmt.Errorf("invalid stream.noise_patterns: %w", err)
		}
	}

	profile := cfg.Current()
	var client *sse.Client
	// Only create the stream client if config is valid
	if cfg.IsValid() {
		client = sse.NewClient(sse.Options{
			BaseURL:        profile.BaseURL,
			Path:           profile.StreamPath,
			Mode:           sse.Mode(profile.Mode),
			Headers:        profile.Headers,
			ConnectTimeout: cfg.ConnectTimeout(),
			IdleTimeout:    cfg.IdleTimeout(),
		}, stream.NewParser(noise))
	}

	ctx, cancel := context.WithCancel(ctx)
	service := &ChatService{
		client: client, // May be nil if config invalid
		portfolio: portfolio.NewClient(portfolio.Options{
			BaseURL:     profile.BaseURL,
			ContactURL:  profile.ContactURL,
			ResumeURL:   profile.ResumeURL,
			IPLookupURL: cfg.IPLookupURL,
			Headers:     profile.Headers,
		}),
		config:    cfg,
		eventBus:  eb,
		sessionID: strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		userIP:    portfolio.FallbackIP,
		ctx:       ctx,
		cancel:    cancel,
		inbox:     make(chan func(), inboxSize),
		done:      make(chan struct{}),
	}

	pacing := typewriter.DefaultPacing()
	pacing.Speed = cfg.Typing.Speed
	pacing.NaturalVariation = cfg.Typing.NaturalVariation
	pacing.Seed = uint64(time.Now().UnixNano())

	service.state = NewChatState(StateOptions{
		Scheduler:     loopScheduler{post: service.post},
		Pacing:        pacing,
		InitStepDelay: cfg.InitDelay(),
		OnChange:      func() { service.dirty = true },
	})

	// Add welcome screen with better formatting
	service.addWelcomeMessages(cfg)

	return service, nil
}

// Start runs the core logic in a goroutine
func (cs *ChatService) Start() {
	// Send initial state to UI immediately
	cs.pushStateToUI()

	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()
		ip := cs.portfolio.LookupIP(cs.ctx)
		cs.post(func() { cs.userIP = ip })
	}()

	cs.started = true
	go cs.eventLoop()
}

// Stop cancels in-flight work and waits for the event loop to exit.
func (cs *ChatService) Stop() {
	cs.cancel()
	if cs.started {
		<-cs.done
	}
	cs.wg.Wait()
}

func (cs *ChatService) IsReady() bool {
	return cs.client != nil
}

// SessionID is sent with every stream request.
func (cs *ChatService) SessionID() string {
	return cs.sessionID
}

func (cs *ChatService) eventLoop() {
	defer close(cs.done)
	defer cs.state.Shutdown()

	for {
		select {
		case <-cs.ctx.Done():
			return
		case event, ok := <-cs.eventBus.UIToCore():
			if !ok {
				return
			}
			cs.handleUIEvent(event)
		case fn := <-cs.inbox:
			fn()
		}
		if cs.dirty {
			cs.pushStateToUI()
		}
	}
}

// post runs fn on the event loop. It gives up once the service stops.
func (cs *ChatService) post(fn func()) {
	select {
	case cs.inbox <- fn:
	case <-cs.ctx.Done():
	}
}

func (cs *ChatService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SendMessageEvent:
		cs.processMessage(e.Message)
	case eventbus.CancelTurnEvent:
		if cs.state.Abort(cancelledMessage) {
			log.Info(cs.ctx, log.KV{K: "msg", V: "turn cancelled by user"})
		}
	case eventbus.ContactSubmitEvent:
		cs.submitContact(e)
	}
}

func (cs *ChatService) processMessage(userMessage string) {
	input := strings.TrimSpace(userMessage)
	if input == "" {
		return
	}
	if cs.state.IsStreaming() {
		cs.state.SetError(busyMessage)
		return
	}
	cs.state.ClearError()

	if reply := commands.Process(input, cs.commandContext()); reply != nil {
		cs.handleLocalReply(input, *reply)
		return
	}

	// If no stream client, explain how to configure one
	if cs.client == nil {
		cs.state.AddLocalExchange(input, models.NewSystemMessage(
			"No backend configured. Run: termtwin profile add <name>", models.StatusError))
		return
	}

	turn := cs.state.StartTurn(cs.ctx, input)
	if turn == nil {
		return
	}
	cs.startStream(turn)
}

func (cs *ChatService) commandContext() commands.Context {
	return commands.Context{UserIP: cs.userIP, SessionID: cs.sessionID, Now: time.Now()}
}

func (cs *ChatService) handleLocalReply(input string, reply models.Message) {
	action := commands.ActionFor(reply)
	log.Debug(cs.ctx, log.KV{K: "msg", V: "local command"}, log.KV{K: "action", V: action.String()})

	switch action {
	case commands.ActionClearScreen:
		cs.state.Clear()
	case commands.ActionContactForm:
		cs.state.AddLocalExchange(input, models.NewSystemMessage(">> Opening secure contact channel...", models.StatusCompleted))
		cs.sendToUI(eventbus.OpenContactFormEvent{})
	case commands.ActionResumeDownload:
		cs.state.AddLocalExchange(input, models.NewSystemMessage(">> Initiating download sequence for resume...", models.StatusCompleted))
		cs.downloadResume()
	default:
		cs.state.AddLocalExchange(input, reply)
	}
}

// startStream opens the chat stream for turn on its own goroutine. Events are
// applied on the loop in arrival order.
func (cs *ChatService) startStream(turn *Turn) {
	turnID, input, ctx := turn.ID, turn.Input, turn.Context()
	log.Info(ctx, log.KV{K: "msg", V: "turn started"}, log.KV{K: "turn", V: turnID})

	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()
		err := cs.client.Stream(ctx, cs.sessionID, input, func(ev stream.Event) {
			cs.post(func() { cs.state.Apply(turnID, ev) })
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error(ctx, err, log.KV{K: "msg", V: "chat stream failed"}, log.KV{K: "turn", V: turnID})
		}
		cs.post(func() { cs.state.EndStream(turnID, err) })
	}()
}

func (cs *ChatService) submitContact(e eventbus.ContactSubmitEvent) {
	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()
		err := cs.portfolio.SubmitContact(cs.ctx, e.Email, e.Message)
		if err != nil {
			log.Warn(cs.ctx, log.KV{K: "msg", V: "contact submission failed"}, log.KV{K: "err", V: err.Error()})
		}
		cs.post(func() {
			if err != nil {
				cs.state.AddSystemMessage("Contact failed: "+err.Error(), models.StatusError)
			} else {
				cs.state.AddSystemMessage(">> Message sent. I'll get back to you within 24 hours.", models.StatusCompleted)
			}
			cs.sendToUI(eventbus.ContactResultEvent{Err: err})
		})
	}()
}

func (cs *ChatService) downloadResume() {
	dir := cs.config.DownloadPath()
	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()
		path, err := cs.portfolio.DownloadResume(cs.ctx, dir)
		cs.post(func() {
			if err != nil {
				log.Warn(cs.ctx, log.KV{K: "msg", V: "resume download failed"}, log.KV{K: "err", V: err.Error()})
				cs.state.AddSystemMessage("Download failed: "+err.Error(), models.StatusError)
				return
			}
			cs.state.AddSystemMessage(">> Resume saved to "+path, models.StatusCompleted)
		})
	}()
}

func (cs *ChatService) sendToUI(event eventbus.CoreEvent) {
	if err := cs.eventBus.SendToUI(event); err != nil {
		log.Warn(cs.ctx, log.KV{K: "msg", V: "dropped core event"}, log.KV{K: "err", V: err.Error()})
	}
}

// pushStateToUI sends a full snapshot. Messages mutate in place while
// streaming, so partial updates would go stale.
func (cs *ChatService) pushStateToUI() {
	err := cs.eventBus.SendToUI(eventbus.StateUpdateEvent{
		Messages:    cs.state.Messages(),
		IsStreaming: cs.state.IsStreaming(),
		Error:       cs.state.LastError(),
	})
	if err == nil {
		cs.dirty = false
		return
	}

	// Keep the state dirty and try again shortly
	cs.dirty = true
	if errors.Is(err, eventbus.ErrBusClosed) || cs.retryPending {
		return
	}
	cs.retryPending = true
	time.AfterFunc(retryDelay, func() {
		cs.post(func() { cs.retryPending = false })
	})
}

func (cs *ChatService) addWelcomeMessages(cfg *config.Config) {
	welcome := func(content string) {
		cs.state.AddSystemMessage(content, models.StatusCompleted)
	}

	// Welcome header
	welcome("-- TERMTWIN --")

	// Profile information with status
	if cfg.IsValid() {
		welcome(fmt.Sprintf("Active Profile: %s [OK]", cfg.ActiveProfile))
		welcome("Ask me anything, or type 'help' for local commands")
	} else {
		welcome(fmt.Sprintf("Active Profile: %s [NOT CONFIGURED]", cfg.ActiveProfile))
		welcome("Configure your profile to start chatting:\n• Run: termtwin profile add <name>\n• Or edit: ~/.termtwin/config.json")
	}

	welcome("Controls: Enter to send, Esc to cancel a reply, Ctrl+C to exit")
}
