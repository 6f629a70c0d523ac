// Package reelshort adapts the ReelShort "for you" listing: page-numbered,
// books under data.lists in snake_case.
package reelshort

import (
	"context"
	"log/slog"

	"github.com/reelfeed/reelfeed-server/internal/feed"
	"github.com/reelfeed/reelfeed-server/internal/provider"
	"github.com/reelfeed/reelfeed-server/internal/textutil"
	"github.com/reelfeed/reelfeed-server/internal/upstream"
)

// Name is the route and upstream path segment.
const Name = "reelshort"

// Books that can start playing right away get this corner.
const (
	playableText  = "Boleh Ditonton"
	playableColor = "#FF4D4F"
)

// Adapter fetches ReelShort listing pages.
type Adapter struct {
	client provider.Getter
	logger *slog.Logger
}

// New creates a ReelShort adapter.
func New(client provider.Getter, logger *slog.Logger) *Adapter {
	return &Adapter{client: client, logger: logger}
}

func (a *Adapter) Name() string    { return Name }
func (a *Adapter) Kind() feed.Kind { return feed.KindPageNumber }

// FetchPage fetches one page of books.
func (a *Adapter) FetchPage(ctx context.Context, cursor feed.Cursor) (feed.Page, error) {
	resp, err := provider.Fetch[response](ctx, a.client, Name, a.Kind(), cursor, a.logger)
	if err != nil {
		return feed.Page{}, err
	}

	lists := resp.Data.Value.Lists
	items := make([]feed.Item, 0, len(lists))
	for _, b := range lists {
		items = append(items, b.item())
	}
	return feed.NewFilteredPage(cursor, items, feed.Hint{}), nil
}

type response struct {
	Data upstream.Optional[struct {
		Lists upstream.List[book] `json:"lists"`
	}] `json:"data"`
}

type book struct {
	BookID           upstream.Scalar                `json:"book_id"`
	BookTitle        upstream.Scalar                `json:"book_title"`
	BookPic          upstream.Scalar                `json:"book_pic"`
	ChapterCount     upstream.Scalar                `json:"chapter_count"`
	SpecialDesc      upstream.Scalar                `json:"special_desc"`
	StartPlayEpisode upstream.Scalar                `json:"start_play_episode"`
	Theme            upstream.List[upstream.Scalar] `json:"theme"`
}

func (b book) item() feed.Item {
	id := b.BookID.String()
	it := feed.Item{
		ID:           id,
		Title:        textutil.Title(b.BookTitle.String()),
		Cover:        b.BookPic.String(),
		EpisodeCount: provider.Count(b.ChapterCount),
		Extra:        provider.Extra(Name, id, b.SpecialDesc.String(), provider.Strings(b.Theme)),
	}
	if b.StartPlayEpisode.Truthy() {
		it.TopLeftBadge = &feed.Badge{Text: playableText, Color: playableColor}
	}
	return it
}
