// Package providers contains dependency injection providers for the feed server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelfeed/reelfeed-server/internal/config"
	"github.com/reelfeed/reelfeed-server/internal/logger"
)

// ProvideConfig returns a provider loading the configuration from args.
func ProvideConfig(args []string) func(do.Injector) (*config.Config, error) {
	return func(do.Injector) (*config.Config, error) {
		return config.Load(args)
	}
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting ReelFeed server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"upstream", cfg.Upstream.BaseURL,
		"sealed", len(cfg.Envelope.Key) > 0,
	)

	return log, nil
}
