package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelfeed/reelfeed-server/internal/config"
	"github.com/reelfeed/reelfeed-server/internal/envelope"
	"github.com/reelfeed/reelfeed-server/internal/logger"
	"github.com/reelfeed/reelfeed-server/internal/provider"
	"github.com/reelfeed/reelfeed-server/internal/provider/dramabox"
	"github.com/reelfeed/reelfeed-server/internal/provider/flickreels"
	"github.com/reelfeed/reelfeed-server/internal/provider/freereels"
	"github.com/reelfeed/reelfeed-server/internal/provider/melolo"
	"github.com/reelfeed/reelfeed-server/internal/provider/reelshort"
	"github.com/reelfeed/reelfeed-server/internal/upstream"
)

// UpstreamClientHandle wraps upstream.Client with Shutdownable.
type UpstreamClientHandle struct {
	*upstream.Client
}

// Shutdown implements do.Shutdownable.
func (h *UpstreamClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideUpstreamClient provides the rate limited upstream HTTP client.
func ProvideUpstreamClient(i do.Injector) (*UpstreamClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client, err := upstream.New(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
		RPS:     cfg.Upstream.RPS,
		Burst:   cfg.Upstream.Burst,
	}, log.Logger)
	if err != nil {
		return nil, err
	}
	return &UpstreamClientHandle{Client: client}, nil
}

// ProvideRegistry provides the registry of every provider adapter.
func ProvideRegistry(i do.Injector) (*provider.Registry, error) {
	client := do.MustInvoke[*UpstreamClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return NewRegistry(client, log)
}

// NewRegistry registers the dramabox, reelshort, freereels, melolo and
// flickreels adapters over one upstream getter.
func NewRegistry(client provider.Getter, log *logger.Logger) (*provider.Registry, error) {
	return provider.NewRegistry(
		dramabox.New(client, log.WithProvider(dramabox.Name).Logger),
		reelshort.New(client, log.WithProvider(reelshort.Name).Logger),
		freereels.New(client, log.WithProvider(freereels.Name).Logger),
		melolo.New(client, log.WithProvider(melolo.Name).Logger),
		flickreels.New(client, log.WithProvider(flickreels.Name).Logger),
	)
}

// ProvideCodec provides the envelope codec, sealing when a key is configured.
func ProvideCodec(i do.Injector) (*envelope.Codec, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return envelope.NewCodec(cfg.Envelope.Key)
}
