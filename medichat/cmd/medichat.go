// Command-line interface entrypoint for the medichat terminal chat
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"medichat/medichat/config"
	"medichat/medichat/controllers"
	"medichat/medichat/services/llm"
	"medichat/medichat/sources/history"
	"medichat/medichat/sources/session"
	"medichat/medichat/utils/color"
	"medichat/medichat/utils/logging"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"
)

const resetCommand = "/reset"

func main() {
	args := os.Args[1:]
	if len(args) < 1 || args[0] != "chat" {
		fmt.Println("medichat CLI usage:")
		fmt.Println("  medichat chat   # Chat with the health assistant in this terminal")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError("config error: "+err.Error()))
		os.Exit(1)
	}
	if err := logging.InitLogger(cfg.LogDir); err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError("logger error: "+err.Error()))
		os.Exit(1)
	}
	defer logging.Sync()

	provider, err := llm.NewProvider(cfg.LLMProvider, cfg.OpenAIBaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError(err.Error()))
		os.Exit(1)
	}
	if info, err := os.Stdout.Stat(); err == nil && info.Mode()&os.ModeCharDevice == 0 {
		color.Disable()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	manager := controllers.NewSessionManager(provider, history.NewStore(cfg.Model.MaxHistory), cfg.Model, cfg.DefaultAPIKey, cfg.ProviderTimeout)
	sessionID := session.NewSessionID()
	logging.AppLogger.Info("terminal chat started", zap.String("session_id", sessionID), zap.String("provider", cfg.LLMProvider))

	if err := runREPL(ctx, os.Stdin, os.Stdout, manager, sessionID); err != nil {
		logging.ErrorLogger.Error("terminal chat input error", zap.Error(err))
		os.Exit(1)
	}
}

// runREPL reads one question per line until EOF, exit, quit or ctx ends.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, manager *controllers.SessionManager, sessionID string) error {
	fmt.Fprintln(out, color.ColorInfo("Medical chatbot ready. Ask a health question."))
	fmt.Fprintln(out, color.ColorInfo("Type '/reset' to start over or 'exit' to quit."))
	fmt.Fprintln(out)

	lines, readErr := readLines(ctx, in)
	for {
		fmt.Fprint(out, color.ColorPrompt("You: "))
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return <-readErr
			}
			line = strings.TrimSpace(l)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, color.ColorInfo("Goodbye!"))
			return nil
		case resetCommand:
			manager.Reset(sessionID)
			fmt.Fprintln(out, color.ColorInfo("Conversation cleared."))
			continue
		}

		fmt.Fprintln(out, color.ColorThinking("Bot thinking..."))
		answer, err := manager.Ask(ctx, sessionID, line, "")
		if err != nil {
			fmt.Fprintln(out, color.ColorError("Error: "+err.Error()))
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		fmt.Fprintln(out, color.ColorBotResponse("Bot: ")+answer)
		fmt.Fprintln(out)
	}
}

// readLines scans in on its own goroutine so a blocked read never holds up
// cancellation. The error channel yields the scanner error once lines closes.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}
