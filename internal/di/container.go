// Package di provides dependency injection configuration for the feed server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/reelfeed/reelfeed-server/internal/api"
	"github.com/reelfeed/reelfeed-server/internal/config"
	"github.com/reelfeed/reelfeed-server/internal/di/providers"
	"github.com/reelfeed/reelfeed-server/internal/envelope"
	"github.com/reelfeed/reelfeed-server/internal/logger"
	"github.com/reelfeed/reelfeed-server/internal/provider"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments handed to the config loader.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig(args))
	do.Provide(injector, providers.ProvideLogger)

	// Feed layer
	do.Provide(injector, providers.ProvideUpstreamClient)
	do.Provide(injector, providers.ProvideRegistry)
	do.Provide(injector, providers.ProvideCodec)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.UpstreamClientHandle](injector)
	_ = do.MustInvoke[*provider.Registry](injector)
	_ = do.MustInvoke[*envelope.Codec](injector)
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	_ = do.MustInvoke[*api.Server](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	return nil
}
