// Package main provides the keep headless binary. It wires the knowledge
// stores, safety guard, removal router, and tools together, executes a
// single XML tool call supplied on the command line or stdin, and prints
// the result as JSON for scripting.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/entrhq/keep/pkg/agent/tools"
	appconfig "github.com/entrhq/keep/pkg/config"
	"github.com/entrhq/keep/pkg/knowledge/audit"
	"github.com/entrhq/keep/pkg/knowledge/memory"
	"github.com/entrhq/keep/pkg/knowledge/remove"
	"github.com/entrhq/keep/pkg/knowledge/search"
	"github.com/entrhq/keep/pkg/knowledge/tier2"
	"github.com/entrhq/keep/pkg/llm/openai"
	"github.com/entrhq/keep/pkg/logging"
	"github.com/entrhq/keep/pkg/security/vault"
	knowledgetools "github.com/entrhq/keep/pkg/tools/knowledge"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	ConfigFile  string
	Call        string
	SetVault    string
	DataDir     string
	Timeout     time.Duration
	Tagging     bool
	Expand      bool
	ShowVersion bool
}

// toolResult is the JSON shape printed for every executed tool call.
type toolResult struct {
	Success  bool                   `json:"success"`
	Message  string                 `json:"message,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("keep v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		cancel()
		log.Printf("Execution failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.APIKey, "api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key (optional, enables query expansion and commit messages)")
	flag.StringVar(&config.BaseURL, "base-url", os.Getenv("OPENAI_BASE_URL"), "OpenAI API base URL")
	flag.StringVar(&config.Model, "model", "", "LLM model to use")
	flag.StringVar(&config.ConfigFile, "config", "", "Path to configuration file (defaults to ~/.keep/config.json)")
	flag.StringVar(&config.Call, "call", "", "XML tool call to execute (reads stdin when empty)")
	flag.StringVar(&config.SetVault, "set-vault", "", "Set and verify the vault root directory, then exit")
	flag.StringVar(&config.DataDir, "data-dir", "", "Directory for tier2 and memory stores (defaults to ~/.keep)")
	flag.DurationVar(&config.Timeout, "timeout", time.Minute, "Execution timeout")
	flag.BoolVar(&config.Tagging, "tag", false, "Tag audit commits for vault removals")
	flag.BoolVar(&config.Expand, "expand", false, "Expand search queries through the LLM provider")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "keep - personal knowledge store\n\n")
		fmt.Fprintf(os.Stderr, "Usage: keep [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Configure the vault root\n")
		fmt.Fprintf(os.Stderr, "  keep -set-vault ~/vault\n\n")
		fmt.Fprintf(os.Stderr, "  # Remove a vault file\n")
		fmt.Fprintf(os.Stderr, "  keep -call '<tool><tool_name>remove_knowledge</tool_name><arguments><identifier>vault::notes/old.md</identifier><confirm>true</confirm></arguments></tool>'\n\n")
		fmt.Fprintf(os.Stderr, "  # Search the vault, reading the tool call from stdin\n")
		fmt.Fprintf(os.Stderr, "  echo '<tool><tool_name>search_vault</tool_name><arguments><query>gardening</query></arguments></tool>' | keep\n\n")
	}

	flag.Parse()
	return config
}

// run wires the stores and tools and executes a single tool call
func run(ctx context.Context, cliConfig *CLIConfig) error {
	// A logging failure falls back to stderr; it never blocks execution.
	logger, _ := logging.NewLogger("keep")
	defer logger.Close()

	store, err := appconfig.NewFileStore(cliConfig.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to open config store: %w", err)
	}
	manager, err := appconfig.NewManager(store)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cliConfig.SetVault != "" {
		absRoot, absErr := filepath.Abs(cliConfig.SetVault)
		if absErr != nil {
			return fmt.Errorf("failed to resolve vault root: %w", absErr)
		}
		if setErr := manager.SetVaultRoot(absRoot, true); setErr != nil {
			return fmt.Errorf("failed to set vault root: %w", setErr)
		}
		fmt.Printf("Vault root set to %s\n", absRoot)
		return nil
	}

	dataDir := cliConfig.DataDir
	if dataDir == "" {
		homeDir, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return fmt.Errorf("failed to get user home directory: %w", homeErr)
		}
		dataDir = filepath.Join(homeDir, ".keep")
	}

	t2, err := tier2.NewStore(filepath.Join(dataDir, "tier2"))
	if err != nil {
		return fmt.Errorf("failed to open tier2 store: %w", err)
	}
	mem, err := memory.NewStore(filepath.Join(dataDir, "memory"))
	if err != nil {
		return fmt.Errorf("failed to open memory store: %w", err)
	}

	// The LLM provider is optional: without an API key, search runs
	// literally and audit commits use the deterministic message format.
	var provider *openai.Provider
	if cliConfig.APIKey != "" {
		providerOpts := []openai.ProviderOption{}
		if cliConfig.Model != "" {
			providerOpts = append(providerOpts, openai.WithModel(cliConfig.Model))
		}
		if cliConfig.BaseURL != "" {
			providerOpts = append(providerOpts, openai.WithBaseURL(cliConfig.BaseURL))
		}
		provider, err = openai.NewProvider(cliConfig.APIKey, providerOpts...)
		if err != nil {
			return fmt.Errorf("failed to create LLM provider: %w", err)
		}
	}

	recorderOpts := []audit.RecorderOption{}
	if cliConfig.Tagging {
		recorderOpts = append(recorderOpts, audit.WithTagging())
	}
	if provider != nil {
		recorderOpts = append(recorderOpts, audit.WithProvider(provider))
	}
	recorder := audit.NewRecorder(manager, recorderOpts...)

	router := remove.NewRouter(manager, t2, mem, recorder)

	registry := map[string]tools.Tool{}
	register := func(tool tools.Tool) { registry[tool.Name()] = tool }
	register(knowledgetools.NewRemoveTool(router))
	register(knowledgetools.NewStoreMemoryTool(mem))
	register(knowledgetools.NewWriteDocumentTool(t2))
	register(knowledgetools.NewReadDocumentTool(t2))

	// Search needs a verified vault root; register it only when one is
	// configured so the other tools work without a vault.
	if root, rootErr := manager.VerifiedVaultRoot(); rootErr == nil {
		guard, guardErr := vault.NewGuard(root)
		if guardErr != nil {
			return fmt.Errorf("failed to create vault guard: %w", guardErr)
		}
		var expander *search.Expander
		if cliConfig.Expand && provider != nil {
			expander = search.NewExpander(provider)
		}
		register(knowledgetools.NewSearchVaultTool(search.NewSearcher(guard), expander))
	}

	callText := cliConfig.Call
	if callText == "" {
		input, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			return fmt.Errorf("failed to read tool call from stdin: %w", readErr)
		}
		callText = string(input)
	}

	toolCall, _, err := tools.ParseToolCall(callText)
	if err != nil {
		return fmt.Errorf("invalid tool call: %w", err)
	}

	tool, ok := registry[toolCall.ToolName]
	if !ok {
		return fmt.Errorf("unknown tool %q", toolCall.ToolName)
	}

	if cliConfig.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cliConfig.Timeout)
		defer cancel()
	}

	logger.Infof("executing tool %s", toolCall.ToolName)
	message, metadata, err := tool.Execute(ctx, toolCall.GetArgumentsXML())

	result := toolResult{Success: err == nil, Message: message, Metadata: metadata}
	if err != nil {
		result.Error = err.Error()
		logger.Warnf("tool %s failed: %v", toolCall.ToolName, err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if encErr := encoder.Encode(result); encErr != nil {
		return fmt.Errorf("failed to encode result: %w", encErr)
	}

	if err != nil {
		return fmt.Errorf("tool execution failed: %w", err)
	}
	return nil
}
