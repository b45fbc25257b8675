package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/adapters/filter"
	"github.com/phishguard/phishguard/internal/adapters/httpapi"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/ports"
	"github.com/phishguard/phishguard/internal/utils"
)

// FrontendFactory creates analysis frontends based on configuration
type FrontendFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.AnalyzerService
	text    *utils.TextProcessor
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.AnalyzerService,
	text *utils.TextProcessor,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		text:    text,
	}
}

// CreateMessageFilter creates a frontend based on the configuration
func (f *FrontendFactory) CreateMessageFilter() (ports.MessageFilter, error) {
	frontendType := f.cfg.GetString("server.frontend_type")

	switch frontendType {
	case "http":
		return httpapi.NewServer(
			f.service,
			f.text,
			f.logger,
			f.cfg.GetString("server.listen_address"),
			f.cfg.GetInt("server.max_message_bytes"),
		), nil
	case "smtp":
		return filter.NewSMTPFilter(
			f.service,
			f.text,
			f.logger,
			f.cfg.GetString("server.smtp.listen_address"),
			f.cfg.GetBool("server.smtp.block_scam"),
			f.cfg.GetString("server.smtp.headers.status"),
			f.cfg.GetString("server.smtp.headers.score"),
			f.cfg.GetString("server.smtp.headers.label"),
			f.cfg.GetString("server.smtp.upstream.address"),
			f.cfg.GetInt("server.smtp.upstream.port"),
			f.cfg.GetBool("server.smtp.upstream.enabled"),
			f.cfg.GetString("server.smtp.subject_prefix"),
			f.cfg.GetBool("server.smtp.modify_subject"),
			f.cfg.GetInt("server.max_message_bytes"),
		), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported frontend type: %s", frontendType)
	}
}
