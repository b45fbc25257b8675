package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/adapters/reputation"
	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/utils"
)

var (
	inputFile = flag.String("file", "", "Input message file (use stdin if not specified)")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog   = flag.Bool("json-log", false, "Output logs in JSON format")
	jsonOut   = flag.Bool("json", false, "Print the verdict as JSON instead of a report")

	// Reputation flags
	reputationEndpoint = flag.String("reputation-endpoint", "", "External URL-reputation endpoint (disabled if empty)")
	reputationTimeout  = flag.Duration("reputation-timeout", 5*time.Second, "Timeout for reputation lookups")

	maxMessageBytes = flag.Int("max-message-bytes", 65536, "Maximum message size to analyze")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Optional reputation client
	var reputationClient core.URLReputation
	if *reputationEndpoint != "" {
		reputationClient = reputation.NewHTTPClient(*reputationEndpoint, *reputationTimeout, logger)
		logger.Info("Using URL reputation endpoint", zap.String("endpoint", *reputationEndpoint))
	}

	// One-shot analysis needs no cache
	engine := core.NewEngine(core.DefaultTables())
	service := core.NewAnalyzerService(engine, nil, reputationClient, logger, false, 0)

	// Read message from file or stdin
	var reader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		reader = file
		logger.Info("Reading message from file", zap.String("file", *inputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading message from stdin")
	}

	rawBytes, err := io.ReadAll(reader)
	if err != nil {
		logger.Fatal("Failed to read message", zap.Error(err))
	}

	text := utils.NewTextProcessor(logger)
	raw := text.ProcessText(string(rawBytes), *maxMessageBytes)

	startTime := time.Now()
	verdict, err := service.AnalyzeMessage(context.Background(), raw)
	if err != nil {
		logger.Fatal("Failed to analyze message", zap.Error(err))
	}
	duration := time.Since(startTime)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(verdict); err != nil {
			logger.Fatal("Failed to encode verdict", zap.Error(err))
		}
		return
	}

	fmt.Printf("\n=== Message Summary ===\n")
	fmt.Printf("Length: %d bytes\n", len(raw))

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Safe: %t\n", verdict.IsSafe)
	fmt.Printf("Label: %s\n", verdict.Label)
	fmt.Printf("Risk score: %.1f\n", verdict.RiskScore)
	fmt.Printf("Intent: %s\n", verdict.Intent)
	if len(verdict.Signals) == 0 {
		fmt.Printf("Signals: none\n")
	} else {
		fmt.Printf("Signals:\n")
		for _, sig := range verdict.Signals {
			fmt.Printf("  [%s] %s: %s\n", sig.Severity, sig.Type, sig.Reason)
		}
	}
	fmt.Printf("Processing time: %v\n", duration)
}
