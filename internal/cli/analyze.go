package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/affinity/internal/adapter/memory"
	"github.com/pscheid92/affinity/internal/app"
	"github.com/pscheid92/affinity/internal/character"
	"github.com/pscheid92/affinity/internal/engine"
	"github.com/spf13/cobra"
)

// replyPrefix marks a line as the character's reply rather than a user message.
const replyPrefix = "> "

type analyzeOptions struct {
	affection  int
	windowSize int
	full       bool
}

// analyzedTurn is one output line of the analyze command.
type analyzedTurn struct {
	Turn   int                `json:"turn"`
	Text   string             `json:"text"`
	Facts  engine.PromptFacts `json:"facts"`
	Output *engine.Output     `json:"output,omitempty"`
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze [message...]",
		Short: "Analyze messages as successive turns of one conversation",
		Long: `Analyze messages as successive turns of one conversation and print one JSON line per user turn.

Without arguments, messages are read from standard input, one per line.
Messages starting with "> " are recorded as character replies and are not analyzed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.affection < 0 || opts.affection > 100 {
				return fmt.Errorf("--affection must be between 0 and 100")
			}
			if opts.windowSize < 5 || opts.windowSize > 100 {
				return fmt.Errorf("--window must be between 5 and 100")
			}

			messages := args
			if len(messages) == 0 {
				var err error
				if messages, err = readMessages(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			profile, err := loadProfile()
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), profile, messages, opts)
		},
	}
	cmd.Flags().IntVar(&opts.affection, "affection", 15, "starting affection (0-100)")
	cmd.Flags().IntVar(&opts.windowSize, "window", 10, "number of turns kept as context (5-100)")
	cmd.Flags().BoolVar(&opts.full, "full", false, "include the full engine output")
	return cmd
}

func readMessages(r io.Reader) ([]string, error) {
	var messages []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		messages = append(messages, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return messages, nil
}

// runAnalyze drives the messages through an in-memory session so the window and affection
// evolve exactly as they would on the server.
func runAnalyze(ctx context.Context, w io.Writer, profile *character.CompiledProfile, messages []string, opts analyzeOptions) error {
	clock := clockwork.NewRealClock()
	svc := app.NewService(
		memory.NewStore(clock, 0),
		engine.New(profile, engine.DefaultOptions(), nil),
		clock,
		app.Settings{WindowSize: opts.windowSize, DefaultAffection: opts.affection},
	)

	session, err := svc.CreateSession(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	turn := 0
	for _, msg := range messages {
		if reply, ok := strings.CutPrefix(msg, replyPrefix); ok {
			if _, err := svc.RecordReply(ctx, session.ID, reply); err != nil {
				return fmt.Errorf("failed to record reply %q: %w", reply, err)
			}
			continue
		}

		outcome, err := svc.ProcessMessage(ctx, session.ID, msg)
		if err != nil {
			return fmt.Errorf("failed to analyze %q: %w", msg, err)
		}
		turn++

		line := analyzedTurn{Turn: turn, Text: msg, Facts: outcome.Facts}
		if opts.full {
			line.Output = &outcome.Output
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}
