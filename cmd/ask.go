package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rorical/TermTwin/internal/app"
	"github.com/Rorical/TermTwin/internal/commands"
	"github.com/Rorical/TermTwin/internal/config"
	"github.com/Rorical/TermTwin/internal/dispatcher"
	"github.com/Rorical/TermTwin/internal/eventbus"
	"github.com/Rorical/TermTwin/internal/models"
)

var noTyping bool

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask one question and print the reply",
	Long: `Send a single message through the same pipeline as the chat app and
print the reply as it is typed. Local commands such as ls or whoami work too.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if noTyping {
			cfg.Typing.Speed = 0
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		application, err := app.NewApplicationWithConfig(ctx, cfg, appOptions())
		if err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		defer application.Stop()

		application.Service().Start()
		return ask(ctx, application.Dispatcher(), application.EventBus(), strings.Join(args, " "), cmd.OutOrStdout())
	},
}

// ask sends message and writes the reply to out as it grows. Cancelling ctx
// cancels the turn.
func ask(ctx context.Context, disp *dispatcher.EventDispatcher, eb *eventbus.EventBus, message string, out io.Writer) error {
	// The first snapshot carries the welcome screen; the reply follows it
	event, ok := disp.Next(context.Background())
	if !ok {
		return errors.New("chat service stopped")
	}
	baseline := 0
	if state, isState := event.(eventbus.StateUpdateEvent); isState {
		baseline = len(state.Messages)
	}

	if err := eb.SendToCore(eventbus.SendMessageEvent{Message: message}); err != nil {
		return err
	}

	// A resume download reports its result in a second system message
	replies := 1
	if local := commands.Process(message, commands.Context{}); local != nil &&
		commands.ActionFor(*local) == commands.ActionResumeDownload {
		replies = 2
	}
	next := baseline + 1

	printed := 0
	cancelled := false
	for {
		waitCtx := ctx
		if cancelled {
			waitCtx = context.Background()
		}
		event, ok := disp.Next(waitCtx)
		if !ok {
			if ctx.Err() != nil && !cancelled {
				cancelled = true
				if err := eb.SendToCore(eventbus.CancelTurnEvent{}); err != nil {
					return err
				}
				continue
			}
			return errors.New("chat service stopped")
		}

		switch e := event.(type) {
		case eventbus.OpenContactFormEvent:
			fmt.Fprintln(out, "The contact form needs the interactive client: run termtwin")
			return nil
		case eventbus.StateUpdateEvent:
			if len(e.Messages) == 0 {
				// clear
				return nil
			}
			if len(e.Messages) <= baseline+1 {
				continue
			}
			reply := e.Messages[len(e.Messages)-1]
			if reply.Role == models.System {
				for ; next < len(e.Messages); next++ {
					if msg := e.Messages[next]; msg.Status != models.StatusError {
						fmt.Fprintln(out, msg.Content)
					}
				}
				if len(e.Messages) < baseline+1+replies {
					continue
				}
				if reply.Status == models.StatusError {
					return errors.New(reply.Content)
				}
				return nil
			}
			if len(reply.Content) > printed {
				fmt.Fprint(out, reply.Content[printed:])
				printed = len(reply.Content)
			}
			if e.IsStreaming || !reply.Status.Terminal() {
				continue
			}
			if printed > 0 {
				fmt.Fprintln(out)
			}
			if reply.Status == models.StatusError {
				return errors.New(orDefault(e.Error, "Stream error"))
			}
			return nil
		}
	}
}

func init() {
	askCmd.Flags().BoolVar(&noTyping, "no-typing", false, "print the reply without the typing animation")
	rootCmd.AddCommand(askCmd)
}
