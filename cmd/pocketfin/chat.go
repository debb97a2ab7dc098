package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pocketfin/pocketfin/internal/config"
	"github.com/pocketfin/pocketfin/internal/engine"
	"github.com/pocketfin/pocketfin/internal/llm"
	"github.com/pocketfin/pocketfin/internal/store"
)

// runChat is an interactive terminal loop over the same engine the HTTP and
// MCP surfaces use. Handy for trying prompts against a local database.
func runChat(args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	userID := fs.String("user", "local", "user id to record under")
	premium := fs.Bool("premium", false, "grant this user a premium subscription first")
	dbPath := fs.String("db", "", "path to the SQLite database")
	cfgPath := fs.String("config", "", "path to config.yaml")
	fs.Parse(args)

	a, err := setup(config.ResolveOptions{ConfigPath: *cfgPath, CLIDBPath: *dbPath})
	if err != nil {
		return err
	}
	defer a.cleanup()

	ctx := context.Background()
	if *premium {
		err := a.store.SetSubscription(ctx, *userID, store.PlanPremium, "active")
		if err != nil {
			return fmt.Errorf("granting premium: %w", err)
		}
	}

	fmt.Printf("pocketfin chat (user=%s, premium=%t). Type 'exit' to quit.\n", *userID, *premium)

	var history []llm.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		history = append(history, llm.Message{Role: llm.RoleUser, Content: line})
		res, err := a.engine.HandleTurn(ctx, engine.TurnRequest{
			Messages: history,
			UserID:   *userID,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			history = history[:len(history)-1]
			continue
		}

		fmt.Println(res.ReplyText)
		if res.CreatedRecordID != "" {
			fmt.Printf("  [saved %s %s]\n", res.CreatedRecordType, res.CreatedRecordID)
		}
		if res.RequiresUpgrade {
			fmt.Println("  [premium required]")
		}
		history = append(history, llm.Message{Role: llm.RoleAssistant, Content: res.ReplyText})
	}
	return scanner.Err()
}
