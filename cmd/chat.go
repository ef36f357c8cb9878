package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/fitmin/internal/coach"
	"github.com/joescharf/fitmin/internal/models"
	"github.com/joescharf/fitmin/internal/output"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk with the AI fitness coach",
	Long: `Start an interactive conversation with the coach. The coach remembers
earlier messages until you leave. Type /history to reprint the
conversation, /quit (or press Ctrl-D) to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return chatRun(cmd.Context(), newTranscript(cmd.Context()), os.Stdin)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the coach a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return askRun(cmd.Context(), newTranscript(cmd.Context()), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
}

const chatPrompt = "> "

func chatRun(ctx context.Context, tr *coach.Transcript, in io.Reader) error {
	ui.Info("Coach is ready. /history shows the conversation, /quit leaves.")

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(ui.Out, chatPrompt)
		if !sc.Scan() {
			fmt.Fprintln(ui.Out)
			return sc.Err()
		}
		line := sc.Text()

		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		case "/history":
			printTurns(tr.Turns())
			continue
		}

		replies, err := tr.SendAsync(ctx, line)
		if errors.Is(err, coach.ErrEmptyMessage) {
			continue
		}
		if err != nil {
			return err
		}

		ui.VerboseLog("coach is thinking...")
		printTurn(<-replies)
	}
}

func askRun(ctx context.Context, tr *coach.Transcript, question string) error {
	reply, err := tr.Send(ctx, question)
	if err != nil {
		return err
	}
	fmt.Fprintln(ui.Out, reply.Text)
	return nil
}

func printTurns(turns []models.Turn) {
	if len(turns) == 0 {
		ui.Info("No messages yet")
		return
	}
	for _, t := range turns {
		printTurn(t)
	}
}

func printTurn(t models.Turn) {
	if t.Role == models.RoleModel {
		fmt.Fprintf(ui.Out, "%s %s\n", output.Green("coach:"), t.Text)
		return
	}
	fmt.Fprintf(ui.Out, "%s %s\n", output.Cyan("you:"), t.Text)
}
