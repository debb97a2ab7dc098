package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pocketfin/pocketfin/internal/api"
	"github.com/pocketfin/pocketfin/internal/config"
	"github.com/pocketfin/pocketfin/internal/engine"
	"github.com/pocketfin/pocketfin/internal/llm"
	"github.com/pocketfin/pocketfin/internal/mcp"
	"github.com/pocketfin/pocketfin/internal/store"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := runMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "chat":
		if err := runChat(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "config":
		if err := runConfig(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "--version", "-v":
		fmt.Printf("pocketfin %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pocketfin - personal finance chat assistant

Usage:
  pocketfin serve  [--listen :8080] [--db path] [--config path] [--model name]
  pocketfin mcp    [--db path] [--config path] [--model name]
  pocketfin chat   [--user id] [--premium] [--db path] [--config path]
  pocketfin config [--config path]
  pocketfin version

Environment:
  POCKETFIN_DB, POCKETFIN_LISTEN, POCKETFIN_LLM, POCKETFIN_MODEL,
  POCKETFIN_CURRENCY, POCKETFIN_LOG_FILE, POCKETFIN_LOG_LEVEL,
  OPENAI_API_KEY, OPENROUTER_API_KEY`)
}

// app bundles everything a subcommand needs after wiring.
type app struct {
	cfg     config.ResolvedConfig
	log     *slog.Logger
	store   store.Store
	engine  *engine.Engine
	cleanup func()
}

func setup(opts config.ResolveOptions) (*app, error) {
	// Missing .env is fine; explicit env still wins.
	_ = godotenv.Load()

	cfg, err := config.ResolveConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile.Value, config.ParseLevel(cfg.LogLevel.Value))

	st, err := store.NewStore(store.StoreConfig{DBPath: cfg.DBPath.Value})
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening store at %s: %w", cfg.DBPath.Value, err)
	}

	provider, err := llm.NewProvider(cfg.LLMConfig())
	if err != nil {
		st.Close()
		closeLog()
		return nil, err
	}

	eng := engine.New(st, provider, logger, engine.Options{
		Model:           cfg.LLMModel.Value,
		DefaultCurrency: cfg.Currency.Value,
	})

	return &app{
		cfg:    cfg,
		log:    logger,
		store:  st,
		engine: eng,
		cleanup: func() {
			st.Close()
			closeLog()
		},
	}, nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	listen := fs.String("listen", "", "address to listen on")
	dbPath := fs.String("db", "", "path to the SQLite database")
	cfgPath := fs.String("config", "", "path to config.yaml")
	model := fs.String("model", "", "completion model")
	fs.Parse(args)

	a, err := setup(config.ResolveOptions{
		ConfigPath: *cfgPath,
		CLIDBPath:  *dbPath,
		CLIListen:  *listen,
		CLIModel:   *model,
	})
	if err != nil {
		return err
	}
	defer a.cleanup()

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr.Value,
		Handler:           api.NewServer(a.engine, a.log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", srv.Addr, "db", a.cfg.DBPath.Value)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		a.log.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

func runMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	dbPath := fs.String("db", "", "path to the SQLite database")
	cfgPath := fs.String("config", "", "path to config.yaml")
	model := fs.String("model", "", "completion model")
	fs.Parse(args)

	a, err := setup(config.ResolveOptions{
		ConfigPath: *cfgPath,
		CLIDBPath:  *dbPath,
		CLIModel:   *model,
	})
	if err != nil {
		return err
	}
	defer a.cleanup()

	srv := mcp.NewServer(mcp.ServerConfig{
		Engine:  a.engine,
		Store:   a.store,
		Version: version,
	})
	a.log.Info("mcp server on stdio", "db", a.cfg.DBPath.Value)
	return mcp.ServeStdio(srv)
}

func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config.yaml")
	fs.Parse(args)

	resolved, err := config.ResolveConfig(config.ResolveOptions{ConfigPath: *cfgPath})
	if err != nil {
		return err
	}
	// Keys are redacted; only their provenance is shown.
	for name, v := range resolved.APIKeys {
		v.Value = "(set)"
		resolved.APIKeys[name] = v
	}
	out, err := json.MarshalIndent(resolved, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
