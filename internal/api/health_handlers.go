package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server status and how it reaches the upstream aggregator",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status    string `json:"status" doc:"Overall status"`
	Providers int    `json:"providers" doc:"Number of registered providers"`
	Upstream  string `json:"upstream,omitempty" doc:"Upstream aggregator base URL"`
	Sealed    bool   `json:"sealed" doc:"Whether success payloads are sealed"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	return &HealthOutput{Body: HealthResponse{
		Status:    "healthy",
		Providers: len(s.registry.Names()),
		Upstream:  s.opts.UpstreamURL,
		Sealed:    s.codec.Sealing(),
	}}, nil
}
