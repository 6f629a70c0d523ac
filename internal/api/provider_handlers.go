package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reelfeed/reelfeed-server/internal/provider"
)

func (s *Server) registerProviderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProviders",
		Method:      http.MethodGet,
		Path:        "/api/providers",
		Summary:     "List providers",
		Description: "Lists registered providers with their pagination kind and starting cursor",
		Tags:        []string{"Feed"},
	}, s.handleListProviders)
}

// ProvidersResponse lists the registered providers.
type ProvidersResponse struct {
	Providers []provider.Info `json:"providers" doc:"Registered providers, sorted by name"`
}

// ProvidersOutput wraps the provider list for Huma.
type ProvidersOutput struct {
	Body ProvidersResponse
}

func (s *Server) handleListProviders(_ context.Context, _ *struct{}) (*ProvidersOutput, error) {
	return &ProvidersOutput{Body: ProvidersResponse{Providers: s.registry.Infos()}}, nil
}
