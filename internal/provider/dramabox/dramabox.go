// Package dramabox adapts the DramaBox "for you" listing: a page-numbered,
// top-level JSON array of books in camelCase.
package dramabox

import (
	"context"
	"log/slog"
	"strings"

	"github.com/reelfeed/reelfeed-server/internal/feed"
	"github.com/reelfeed/reelfeed-server/internal/provider"
	"github.com/reelfeed/reelfeed-server/internal/textutil"
	"github.com/reelfeed/reelfeed-server/internal/upstream"
)

// Name is the route and upstream path segment.
const Name = "dramabox"

const (
	popularColor = "#E52E2E"
	cornerColor  = "#e5a00d"
)

// Adapter fetches DramaBox listing pages.
type Adapter struct {
	client provider.Getter
	logger *slog.Logger
}

// New creates a DramaBox adapter.
func New(client provider.Getter, logger *slog.Logger) *Adapter {
	return &Adapter{client: client, logger: logger}
}

func (a *Adapter) Name() string    { return Name }
func (a *Adapter) Kind() feed.Kind { return feed.KindPageNumber }

// FetchPage fetches one page of books.
func (a *Adapter) FetchPage(ctx context.Context, cursor feed.Cursor) (feed.Page, error) {
	books, err := provider.Fetch[upstream.List[book]](ctx, a.client, Name, a.Kind(), cursor, a.logger)
	if err != nil {
		return feed.Page{}, err
	}

	items := make([]feed.Item, 0, len(books))
	for _, b := range books {
		items = append(items, b.item())
	}
	return feed.NewFilteredPage(cursor, items, feed.Hint{}), nil
}

type book struct {
	BookID       upstream.Scalar                `json:"bookId"`
	BookName     upstream.Scalar                `json:"bookName"`
	CoverWap     upstream.Scalar                `json:"coverWap"`
	Cover        upstream.Scalar                `json:"cover"`
	ChapterCount upstream.Scalar                `json:"chapterCount"`
	Introduction upstream.Scalar                `json:"introduction"`
	Tags         upstream.List[upstream.Scalar] `json:"tags"`
	Corner       upstream.Optional[corner]      `json:"corner"`
	RankVo       upstream.Optional[rank]        `json:"rankVo"`
}

type corner struct {
	Name  upstream.Scalar `json:"name"`
	Color upstream.Scalar `json:"color"`
}

type rank struct {
	HotCode upstream.Scalar `json:"hotCode"`
}

func (b book) item() feed.Item {
	id := b.BookID.String()
	it := feed.Item{
		ID:           id,
		Title:        textutil.Title(b.BookName.String()),
		Cover:        provider.FirstOf(b.CoverWap, b.Cover),
		EpisodeCount: provider.Count(b.ChapterCount),
		Extra:        provider.Extra(Name, id, b.Introduction.String(), provider.Strings(b.Tags)),
	}

	if c := b.Corner.Get(); c != nil && c.Name.String() != "" {
		color := provider.FirstOf(c.Color)
		if color == "" {
			color = cornerColor
		}
		// "Terpopuler" and friends are always red, whatever color upstream sends.
		if strings.Contains(strings.ToLower(c.Name.String()), "populer") {
			color = popularColor
		}
		it.TopLeftBadge = &feed.Badge{Text: c.Name.String(), Color: color}
	}
	if r := b.RankVo.Get(); r != nil && r.HotCode.String() != "" {
		it.TopRightBadge = &feed.Badge{Text: r.HotCode.String(), IsTransparent: true}
	}
	return it
}
