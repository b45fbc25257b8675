package filter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/core"
)

// CliFilter implements a command-line frontend for one-shot analysis
type CliFilter struct {
	service *core.AnalyzerService
	logger  *zap.Logger
	verbose bool
}

// NewCliFilter creates a new CLI frontend
func NewCliFilter(service *core.AnalyzerService, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// Process analyzes a message and prints a human-readable report
func (f *CliFilter) Process(ctx context.Context, raw string) (*core.Verdict, error) {
	fmt.Printf("\n=== Message Summary ===\n")
	fmt.Printf("Length: %d bytes\n", len(raw))

	if f.verbose {
		preview := raw
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nPreview:\n%s\n", preview)
	}

	fmt.Printf("\n=== Analysis ===\n")
	startTime := time.Now()
	verdict, err := f.service.AnalyzeMessage(ctx, raw)
	if err != nil {
		f.logger.Error("Failed to analyze message", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

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

	return verdict, nil
}

// Start is a no-op for the CLI frontend
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI frontend
func (f *CliFilter) Stop() error {
	return nil
}
