package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/swiftcart/internal/cart"
	"github.com/zombor/swiftcart/internal/detect"
	"github.com/zombor/swiftcart/internal/pos"
	"github.com/zombor/swiftcart/internal/suggest"
	"github.com/zombor/swiftcart/internal/vision"
	"github.com/zombor/swiftcart/internal/voice"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("swiftcart")
	var (
		port         = fs.IntLong("port", 8080, "HTTP server port")
		dbPath       = fs.StringLong("db", "swiftcart.db", "Database file path")
		providerType = fs.StringLong("provider", "gemini", "AI provider: 'gemini' or 'ollama'")
		geminiKey    = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel  = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL    = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel  = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, bakllava, qwen2-vl)")
		authUser     = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass     = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion  = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("SWIFTCART"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := cart.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize AI provider based on type
	var provider vision.Provider
	switch *providerType {
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini provider...", "model", *geminiModel)
		provider, err = vision.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama provider...", "url", *ollamaURL, "model", *ollamaModel)
		provider, err = vision.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid provider type", "type", *providerType, "valid", "gemini or ollama")
		os.Exit(1)
	}
	defer provider.Close()

	// Initialize the cart and the components around it
	store := cart.NewStore(db)

	gate := detect.NewGate(0)
	workflow := detect.NewWorkflow(gate, provider, store)

	simulator := detect.NewSimulator(detect.SimulatorConfig{
		OnDetect: store.Add,
	})
	defer simulator.Stop()

	refresher := suggest.NewRefresher(suggest.Config{
		Store:     store,
		Suggester: provider,
	})

	// No server-side speech hardware; the demo page synthesizes responses
	assistant := voice.NewAssistant(store, nil, nil)

	// Initialize server
	basicAuth := pos.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := pos.NewServer(pos.Deps{
		Store:     store,
		Simulator: simulator,
		Workflow:  workflow,
		Refresher: refresher,
		Assistant: assistant,
	}, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
