// Package freereels adapts the FreeReels "for you" listing: offset-paginated,
// items under data.items, continuing while a page is non-empty.
package freereels

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reelfeed/reelfeed-server/internal/feed"
	"github.com/reelfeed/reelfeed-server/internal/provider"
	"github.com/reelfeed/reelfeed-server/internal/textutil"
	"github.com/reelfeed/reelfeed-server/internal/upstream"
)

// Name is the route and upstream path segment.
const Name = "freereels"

// Adapter fetches FreeReels listing pages.
type Adapter struct {
	client provider.Getter
	logger *slog.Logger
}

// New creates a FreeReels adapter.
func New(client provider.Getter, logger *slog.Logger) *Adapter {
	return &Adapter{client: client, logger: logger}
}

func (a *Adapter) Name() string    { return Name }
func (a *Adapter) Kind() feed.Kind { return feed.KindOffset }

// FetchPage fetches the items starting at the cursor's offset.
func (a *Adapter) FetchPage(ctx context.Context, cursor feed.Cursor) (feed.Page, error) {
	resp, err := provider.Fetch[response](ctx, a.client, Name, a.Kind(), cursor, a.logger)
	if err != nil {
		return feed.Page{}, err
	}

	entries := resp.Data.Value.Items
	items := make([]feed.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.item())
	}
	return feed.NewPage(cursor, items, feed.Hint{}), nil
}

type response struct {
	Data upstream.Optional[struct {
		Items upstream.List[entry] `json:"items"`
	}] `json:"data"`
}

type entry struct {
	Key          upstream.Scalar                `json:"key"`
	Title        upstream.Scalar                `json:"title"`
	Cover        upstream.Scalar                `json:"cover"`
	EpisodeCount upstream.Scalar                `json:"episode_count"`
	FollowCount  upstream.Scalar                `json:"follow_count"`
	Desc         upstream.Scalar                `json:"desc"`
	Content      upstream.List[upstream.Scalar] `json:"content_tags"`
}

func (e entry) item() feed.Item {
	id := e.Key.String()
	it := feed.Item{
		ID:           id,
		Title:        textutil.Title(e.Title.String()),
		Cover:        e.Cover.String(),
		EpisodeCount: provider.Count(e.EpisodeCount),
		Extra:        provider.Extra(Name, id, e.Desc.String(), provider.Strings(e.Content)),
	}
	if e.FollowCount.Truthy() {
		it.TopRightBadge = &feed.Badge{Text: thousands(e.FollowCount.Float()), IsTransparent: true}
	}
	return it
}

// thousands renders a follower count as "12.3k".
func thousands(n float64) string {
	return fmt.Sprintf("%.1fk", n/1000)
}
