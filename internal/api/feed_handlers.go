package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/reelfeed/reelfeed-server/internal/errors"
	"github.com/reelfeed/reelfeed-server/internal/feed"
	"github.com/reelfeed/reelfeed-server/internal/logger"
	"github.com/reelfeed/reelfeed-server/internal/provider"
)

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getForYou",
		Method:      http.MethodGet,
		Path:        "/api/{provider}/foryou",
		Summary:     "For-you listing page",
		Description: "Fetches one page of a provider's for-you listing, normalized to unified items. " +
			"Page-numbered providers read ?page, offset providers read ?offset.",
		Tags: []string{"Feed"},
	}, s.handleForYou)
}

// ForYouInput selects a provider and a cursor position.
type ForYouInput struct {
	Provider string `path:"provider" doc:"Provider name, e.g. dramabox or melolo"`
	Page     int    `query:"page" default:"1" doc:"Page number for page-numbered providers"`
	Offset   int    `query:"offset" default:"0" doc:"Offset for offset providers"`
}

// ForYouResponse is one normalized listing page. Page-numbered providers fill
// items and next_page, offset providers items and next_offset, and hinted
// offset providers books and next_offset.
type ForYouResponse struct {
	Items      []feed.Item `json:"items,omitzero" doc:"Unified items in upstream order"`
	Books      []feed.Item `json:"books,omitzero" doc:"Unified items, for providers that call them books"`
	HasMore    bool        `json:"has_more" doc:"Whether another page follows"`
	NextPage   *int        `json:"next_page,omitzero" doc:"Next page number when has_more is true"`
	NextOffset *int        `json:"next_offset,omitzero" doc:"Next offset"`
}

// ForYouOutput wraps the listing page for Huma.
type ForYouOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         ForYouResponse
}

func (s *Server) handleForYou(ctx context.Context, input *ForYouInput) (*ForYouOutput, error) {
	adapter, ok := s.registry.Get(input.Provider)
	if !ok {
		return nil, toStatusError(domainerrors.NotFoundf("unknown provider %q", input.Provider).
			WithDetails(map[string]any{"providers": s.registry.Names()}))
	}

	kind := adapter.Kind()
	value := input.Offset
	if kind == feed.KindPageNumber {
		value = input.Page
	}
	cursor := feed.FromParam(kind, value)

	page, err := adapter.FetchPage(ctx, cursor)
	if err != nil {
		var failure *provider.Failure
		if errors.As(err, &failure) {
			logger.From(s.logger).WithError(failure.Err).Warn("Upstream fetch failed",
				"provider", adapter.Name(),
				"cursor", cursor.String(),
				"status", failure.Status,
			)
		}
		return nil, toStatusError(err)
	}

	return &ForYouOutput{
		CacheControl: "no-store",
		Body:         renderPage(kind, page),
	}, nil
}

func renderPage(kind feed.Kind, page feed.Page) ForYouResponse {
	items := page.Items
	if items == nil {
		items = []feed.Item{}
	}
	out := ForYouResponse{HasMore: page.HasMore()}

	switch kind {
	case feed.KindPageNumber:
		out.Items = items
		if page.Next != nil {
			out.NextPage = &page.Next.Page
		}
	case feed.KindOffset:
		out.Items = items
		if page.Next != nil {
			out.NextOffset = &page.Next.Offset
		}
	case feed.KindOffsetWithHint:
		out.Books = items
		next := 0
		if page.Next != nil {
			next = page.Next.Offset
		}
		out.NextOffset = &next
	}
	return out
}
