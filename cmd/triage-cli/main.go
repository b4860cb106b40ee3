package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/domains"
	"github.com/mikey/inbox-triage/internal/factory"
	"github.com/mikey/inbox-triage/internal/logging"
)

var (
	// Mode flags
	userID    = flag.String("user", "me", "User id (mailbox) to triage")
	limit     = flag.Int("limit", 0, "Maximum records to return (0 uses the configured default)")
	category  = flag.String("category", "", "Only return one category (urgent, waiting_for_reply, action_items, newsletters, invoices, clients, normal)")
	trigger   = flag.Bool("trigger", false, "Kick off a background classification pass instead of reading the inbox")
	inputFile = flag.String("file", "", "Classify a single raw email file instead of reading the inbox (use - for stdin)")

	// LLM provider flags
	provider    = flag.String("provider", "bedrock", "LLM provider (bedrock, gemini, openai)")
	maxTokens   = flag.Int("max-tokens", 100, "Maximum tokens for LLM response")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum email body size to send to LLM")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Store and source flags
	storeType    = flag.String("store", "memory", "Classification store (memory, sqlite, mysql)")
	sqlitePath   = flag.String("sqlite-path", "triage.db", "SQLite database path")
	sourceCreds  = flag.String("source-credentials", "", "Credentials file for the Gmail source")
	sourceQuery  = flag.String("query", "in:inbox", "Message source query")
	contactsOff  = flag.Bool("no-contacts", false, "Disable the contacts directory lookup")
	contactCreds = flag.String("contacts-credentials", "", "Credentials file for the contacts directory")

	// Output flags
	jsonOut    = flag.Bool("json", false, "Print results as JSON")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := buildConfig(logger)
	ctx := context.Background()

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build triage engine", zap.Error(err))
	}

	switch {
	case *inputFile != "":
		classifyFile(ctx, engine, logger)
	case *trigger:
		engine.service.TriggerBackgroundClassification(*userID, *limit)
		logger.Info("Background classification triggered", zap.String("user_id", *userID))
		engine.runner.Wait()
	default:
		readInbox(ctx, engine, logger)
	}
}

// engine bundles the wired service with the pieces the CLI drives directly.
type engine struct {
	service *core.TriageService
	runner  *core.BackgroundRunner
}

func buildConfig(logger *zap.Logger) *config.Config {
	if *configFile != "" {
		cfg, err := config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file",
			zap.String("file", cfg.GetViper().ConfigFileUsed()))
		return cfg
	}

	v := config.NewEmptyViper()
	v.Set("llm.provider", *provider)
	v.Set("bedrock.region", *bedrockRegion)
	v.Set("bedrock.model_id", *bedrockModelID)
	v.Set("bedrock.max_tokens", *maxTokens)
	v.Set("bedrock.max_body_size", *maxBodySize)
	v.Set("gemini.api_key", *geminiAPIKey)
	v.Set("gemini.model_name", *geminiModelName)
	v.Set("gemini.max_tokens", *maxTokens)
	v.Set("gemini.max_body_size", *maxBodySize)
	v.Set("openai.api_key", *openaiAPIKey)
	v.Set("openai.model_name", *openaiModelName)
	v.Set("openai.max_tokens", *maxTokens)
	v.Set("openai.max_body_size", *maxBodySize)
	v.Set("store.type", *storeType)
	v.Set("store.sqlite_path", *sqlitePath)
	v.Set("source.credentials_file", *sourceCreds)
	v.Set("source.query", *sourceQuery)
	v.Set("contacts.enabled", !*contactsOff)
	v.Set("contacts.credentials_file", *contactCreds)
	return config.NewFromViper(v)
}

func buildEngine(cfg *config.Config, logger *zap.Logger) (*engine, error) {
	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()

	oracle, err := factory.NewLLMFactory(cfg, logger, textProcessor).CreateClassifier()
	if err != nil {
		return nil, fmt.Errorf("create semantic oracle: %w", err)
	}

	classificationStore, err := factory.NewStoreFactory(cfg, logger).CreateStore()
	if err != nil {
		return nil, fmt.Errorf("create classification store: %w", err)
	}

	source, err := factory.NewSourceFactory(cfg, logger).CreateSource()
	if err != nil {
		return nil, fmt.Errorf("create message source: %w", err)
	}

	directory, err := factory.NewContactsFactory(cfg, logger).CreateDirectory()
	if err != nil {
		return nil, fmt.Errorf("create contacts directory: %w", err)
	}

	senderCfg := cfg.GetSender()
	matcher := domains.NewMatcher(senderCfg.CriticalDomains, senderCfg.BillingDomains, senderCfg.BulkDomains, logger)
	cache := core.NewReputationCache(directory, logger)
	senderScorer := core.NewSenderScorer(cache, matcher, logger)
	semanticScorer := core.NewSemanticScorer(oracle, logger)
	classifier := core.NewClassifier(senderScorer, semanticScorer, textProcessor, logger)

	triageCfg := cfg.GetTriage()
	runner := core.NewBackgroundRunner(triageCfg.BackgroundWorkers, logger)
	service := core.NewTriageService(classifier, classificationStore, source, runner, logger, core.TriageOptions{
		Query:           cfg.GetSource().Query,
		BatchFloor:      triageCfg.BatchFloor,
		BatchCeiling:    triageCfg.BatchCeiling,
		GapFillPage:     int64(triageCfg.GapFillPage),
		GapFillCap:      triageCfg.GapFillCap,
		StaleRecheckCap: triageCfg.StaleRecheckCap,
		DefaultLimit:    triageCfg.DefaultLimit,
	})

	return &engine{service: service, runner: runner}, nil
}

// readInbox prints the grouped triage view for the user.
func readInbox(ctx context.Context, eng *engine, logger *zap.Logger) {
	inbox, err := eng.service.TriagedInbox(ctx, *userID, *limit, core.Category(*category))
	if err != nil {
		logger.Fatal("Triage failed", zap.Error(err))
	}

	if *jsonOut {
		printJSON(inbox)
		return
	}

	fmt.Printf("Triaged %d thread(s)\n", inbox.Total)
	for _, cat := range append(core.ScoredCategories(), core.CategoryNormal) {
		records := inbox.Categories[cat]
		if len(records) == 0 {
			continue
		}
		fmt.Printf("\n%s (%d):\n", cat, len(records))
		for _, rec := range records {
			marker := ""
			if rec.Stale() {
				marker = " [stale]"
			}
			fmt.Printf("  %-28s %s%s\n", truncate(rec.Sender, 28), truncate(rec.Subject, 60), marker)
		}
	}

	// Background units may still be running; let them land before exit.
	eng.runner.Wait()
}

// classifyFile classifies one raw RFC 5322 message from a file or stdin.
func classifyFile(ctx context.Context, eng *engine, logger *zap.Logger) {
	var reader io.Reader
	if *inputFile == "-" {
		reader = os.Stdin
	} else {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		reader = file
	}

	msg, err := mail.ReadMessage(bufio.NewReader(reader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		logger.Fatal("Failed to read email body", zap.Error(err))
	}

	email := &core.Email{
		ThreadID: msg.Header.Get("Message-Id"),
		Sender:   msg.Header.Get("From"),
		Subject:  msg.Header.Get("Subject"),
		Body:     string(body),
	}
	if email.ThreadID == "" {
		email.ThreadID = "local-" + strings.ReplaceAll(email.Subject, " ", "-")
	}

	record, err := eng.service.ClassifySingle(ctx, *userID, email)
	if err != nil {
		logger.Fatal("Classification failed", zap.Error(err))
	}

	if *jsonOut {
		printJSON(record)
		return
	}

	fmt.Printf("Category: %s\n", record.Category)
	fmt.Printf("Version:  %s\n", record.Version)
	fmt.Printf("Scores:   rules=%v sender=%v semantic=%v total=%v\n",
		record.Scores.Rules, record.Scores.Sender, record.Scores.Semantic, record.Scores.Total)
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
