package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/adapters/reputation"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/core"
)

// ReputationFactory creates the external URL-reputation client
type ReputationFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewReputationFactory creates a new reputation factory
func NewReputationFactory(cfg *config.Config, logger *zap.Logger) *ReputationFactory {
	return &ReputationFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateURLReputation creates a reputation client, or returns nil when the
// integration is disabled
func (f *ReputationFactory) CreateURLReputation() (core.URLReputation, error) {
	if !f.cfg.GetBool("reputation.enabled") {
		return nil, nil
	}

	timeout, err := f.cfg.GetDuration("reputation.timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid reputation timeout: %w", err)
	}

	endpoint := f.cfg.GetString("reputation.endpoint")
	f.logger.Info("URL reputation integration enabled", zap.String("endpoint", endpoint))

	return reputation.NewHTTPClient(endpoint, timeout, f.logger), nil
}
