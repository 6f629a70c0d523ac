// Package melolo adapts the Melolo "for you" listing. Books are spread over
// data.cell.cell_data[].books and an optional flat data.books, and the
// upstream says itself whether more pages follow.
//
// Melolo never fails: any upstream or transport error becomes an empty,
// final page.
package melolo

import (
	"context"
	"errors"
	"log/slog"

	domainerrors "github.com/reelfeed/reelfeed-server/internal/errors"
	"github.com/reelfeed/reelfeed-server/internal/feed"
	"github.com/reelfeed/reelfeed-server/internal/logger"
	"github.com/reelfeed/reelfeed-server/internal/provider"
	"github.com/reelfeed/reelfeed-server/internal/textutil"
	"github.com/reelfeed/reelfeed-server/internal/upstream"
)

// Name is the route and upstream path segment.
const Name = "melolo"

// Adapter fetches Melolo listing pages.
type Adapter struct {
	client provider.Getter
	logger *slog.Logger
}

// New creates a Melolo adapter.
func New(client provider.Getter, logger *slog.Logger) *Adapter {
	return &Adapter{client: client, logger: logger}
}

func (a *Adapter) Name() string    { return Name }
func (a *Adapter) Kind() feed.Kind { return feed.KindOffsetWithHint }

// FetchPage fetches the books at the cursor's offset.
func (a *Adapter) FetchPage(ctx context.Context, cursor feed.Cursor) (feed.Page, error) {
	resp, err := provider.Fetch[response](ctx, a.client, Name, a.Kind(), cursor, a.logger)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrUpstreamUnavailable) {
			return feed.Page{}, err
		}
		log := logger.From(a.logger).WithError(err)
		if ctx.Err() != nil {
			log.Debug("melolo fetch canceled, serving empty page", "cursor", cursor.Key())
		} else {
			log.Warn("melolo upstream failed, serving empty page", "cursor", cursor.Key())
		}
		return feed.Page{Cursor: cursor, Items: []feed.Item{}}, nil
	}

	data := resp.Data.Value
	cell := data.Cell.Value

	// Nested sections first, then the flat list; both are kept as-is.
	var books []book
	for _, section := range cell.CellData {
		books = append(books, section.Books...)
	}
	books = append(books, data.Books...)

	items := make([]feed.Item, 0, len(books))
	for _, b := range books {
		items = append(items, b.item())
	}
	return feed.NewPage(cursor, items, hint(data, cell)), nil
}

// hint prefers the top-level has_more / next_offset and falls back to the cell's.
func hint(data payload, cell cell) feed.Hint {
	var h feed.Hint
	switch {
	case data.HasMore.Set:
		h.HasMore = data.HasMore.Value.Truthy()
	case cell.HasMore.Set:
		h.HasMore = cell.HasMore.Value.Truthy()
	}
	switch {
	case data.NextOffset.Set:
		n := data.NextOffset.Value.Int()
		h.NextOffset = &n
	case cell.NextOffset.Set:
		n := cell.NextOffset.Value.Int()
		h.NextOffset = &n
	}
	return h
}

type response struct {
	Data upstream.Optional[payload] `json:"data"`
}

type payload struct {
	Cell       upstream.Optional[cell]            `json:"cell"`
	Books      upstream.List[book]                `json:"books"`
	HasMore    upstream.Optional[upstream.Scalar] `json:"has_more"`
	NextOffset upstream.Optional[upstream.Scalar] `json:"next_offset"`
}

type cell struct {
	CellData   upstream.List[section]             `json:"cell_data"`
	HasMore    upstream.Optional[upstream.Scalar] `json:"has_more"`
	NextOffset upstream.Optional[upstream.Scalar] `json:"next_offset"`
}

type section struct {
	Books upstream.List[book] `json:"books"`
}

type book struct {
	BookID      upstream.Scalar                `json:"book_id"`
	BookName    upstream.Scalar                `json:"book_name"`
	ThumbURL    upstream.Scalar                `json:"thumb_url"`
	SerialCount upstream.Scalar                `json:"serial_count"`
	Abstract    upstream.Scalar                `json:"abstract"`
	StatInfos   upstream.List[upstream.Scalar] `json:"stat_infos"`
}

func (b book) item() feed.Item {
	id := b.BookID.String()
	return feed.Item{
		ID:           id,
		Title:        textutil.Title(b.BookName.String()),
		Cover:        b.ThumbURL.String(),
		EpisodeCount: provider.Count(b.SerialCount),
		Extra:        provider.Extra(Name, id, b.Abstract.String(), provider.Strings(b.StatInfos)),
	}
}
