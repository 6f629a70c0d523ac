// Package flickreels adapts the FlickReels "for you" listing: page-numbered,
// playlets under data.list. Rank section headers arrive as playlet_id 0 and
// are dropped with the other invalid entries.
package flickreels

import (
	"context"
	"log/slog"

	"github.com/reelfeed/reelfeed-server/internal/feed"
	"github.com/reelfeed/reelfeed-server/internal/provider"
	"github.com/reelfeed/reelfeed-server/internal/textutil"
	"github.com/reelfeed/reelfeed-server/internal/upstream"
)

// Name is the route and upstream path segment.
const Name = "flickreels"

const (
	placeholderTitle = "Untitled"
	statusOngoing    = "2"
	ongoingColor     = "#EAB308"
)

// Adapter fetches FlickReels listing pages.
type Adapter struct {
	client provider.Getter
	logger *slog.Logger
}

// New creates a FlickReels adapter.
func New(client provider.Getter, logger *slog.Logger) *Adapter {
	return &Adapter{client: client, logger: logger}
}

func (a *Adapter) Name() string    { return Name }
func (a *Adapter) Kind() feed.Kind { return feed.KindPageNumber }

// FetchPage fetches one page of playlets.
func (a *Adapter) FetchPage(ctx context.Context, cursor feed.Cursor) (feed.Page, error) {
	resp, err := provider.Fetch[response](ctx, a.client, Name, a.Kind(), cursor, a.logger)
	if err != nil {
		return feed.Page{}, err
	}

	list := resp.Data.Value.List
	items := make([]feed.Item, 0, len(list))
	for _, p := range list {
		items = append(items, p.item())
	}
	return feed.NewPage(cursor, items, feed.Hint{}), nil
}

type response struct {
	Data upstream.Optional[struct {
		List upstream.List[playlet] `json:"list"`
	}] `json:"data"`
}

type playlet struct {
	PlayletID upstream.Scalar                `json:"playlet_id"`
	Title     upstream.Scalar                `json:"title"`
	Cover     upstream.Scalar                `json:"cover"`
	UploadNum upstream.Scalar                `json:"upload_num"`
	HotNum    upstream.Scalar                `json:"hot_num"`
	Status    upstream.Scalar                `json:"status"`
	Introduce upstream.Scalar                `json:"introduce"`
	TagNames  upstream.List[upstream.Scalar] `json:"playlet_tag_name"`
}

func (p playlet) item() feed.Item {
	id := p.PlayletID.String()
	title := textutil.Title(p.Title.String())
	if title == placeholderTitle {
		title = ""
	}

	it := feed.Item{
		ID:           id,
		Title:        title,
		Cover:        p.Cover.String(),
		EpisodeCount: provider.Count(p.UploadNum),
		Extra:        provider.Extra(Name, id, p.Introduce.String(), provider.Strings(p.TagNames)),
	}
	if hot := p.HotNum.String(); hot != "" {
		it.TopRightBadge = &feed.Badge{Text: hot, IsTransparent: true}
	}
	if p.Status.String() == statusOngoing {
		it.TopLeftBadge = &feed.Badge{Text: "Ongoing", Color: ongoingColor}
	}
	return it
}
