package melolo

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfeed/reelfeed-server/internal/feed"
	"github.com/reelfeed/reelfeed-server/internal/provider/providertest"
)

func newAdapter(t *testing.T, h http.HandlerFunc) (*Adapter, *providertest.Upstream) {
	t.Helper()
	up, client := providertest.New(t, h)
	return New(client, slog.New(slog.DiscardHandler)), up
}

func bookJSON(id int) string {
	return `{"book_id":` + strconv.Itoa(id) + `,"book_name":"Book ` + strconv.Itoa(id) + `","thumb_url":"https://img.test/` + strconv.Itoa(id) + `.jpg","serial_count":` + strconv.Itoa(id*10) + `}`
}

func ids(p feed.Page) []string {
	out := make([]string, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.ID
	}
	return out
}

func TestFetchPage_FlattensSectionsInOrder(t *testing.T) {
	body := `{"data":{"cell":{"cell_data":[{"books":[` + bookJSON(1) + `]},{"books":[` + bookJSON(2) + `]}]}}}`
	a, up := newAdapter(t, providertest.JSON(http.StatusOK, body))

	page, err := a.FetchPage(context.Background(), feed.OffsetWithHint(0, true))
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, ids(page))
	assert.Equal(t, 20, page.Items[1].EpisodeCount)
	assert.Nil(t, page.Next, "no has_more means the listing ends")
	assert.Equal(t, []string{"offset=0"}, up.Queries())
}

func TestFetchPage_MergesFlatBooksWithoutDedup(t *testing.T) {
	body := `{"data":{
	  "cell":{"cell_data":[{"books":[` + bookJSON(1) + `,` + bookJSON(2) + `]},{"title":"banner"}]},
	  "books":[` + bookJSON(2) + `,` + bookJSON(3) + `],
	  "has_more":true,"next_offset":18}}`
	a, _ := newAdapter(t, providertest.JSON(http.StatusOK, body))

	page, err := a.FetchPage(context.Background(), feed.OffsetWithHint(0, true))
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "2", "3"}, ids(page))
	require.NotNil(t, page.Next)
	assert.Equal(t, feed.OffsetWithHint(18, true), *page.Next)
}

func TestFetchPage_HintFallsBackToCell(t *testing.T) {
	tests := []struct {
		name string
		data string
		want *feed.Cursor
	}{
		{
			name: "cell hint",
			data: `{"cell":{"cell_data":[],"has_more":true,"next_offset":"30"}}`,
			want: &feed.Cursor{Kind: feed.KindOffsetWithHint, Offset: 30, HasMore: true},
		},
		{
			name: "top level false wins over cell true",
			data: `{"has_more":false,"cell":{"has_more":true,"next_offset":30}}`,
			want: nil,
		},
		{
			name: "numeric has_more",
			data: `{"has_more":1,"next_offset":12}`,
			want: &feed.Cursor{Kind: feed.KindOffsetWithHint, Offset: 12, HasMore: true},
		},
		{
			name: "missing next_offset keeps offset",
			data: `{"has_more":true}`,
			want: &feed.Cursor{Kind: feed.KindOffsetWithHint, Offset: 6, HasMore: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newAdapter(t, providertest.JSON(http.StatusOK, `{"data":`+tt.data+`}`))

			page, err := a.FetchPage(context.Background(), feed.OffsetWithHint(6, true))
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Next)
		})
	}
}

func TestFetchPage_DegradesToEmpty(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusNotFound, http.StatusInternalServerError} {
		a, _ := newAdapter(t, providertest.JSON(status, `{"error":"down"}`))

		page, err := a.FetchPage(context.Background(), feed.OffsetWithHint(40, true))
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.NotNil(t, page.Items)
		assert.Nil(t, page.Next)
		assert.Equal(t, feed.OffsetWithHint(40, true), page.Cursor)
	}
}

func TestFetchPage_BadCursorStillErrors(t *testing.T) {
	a, up := newAdapter(t, providertest.JSON(http.StatusOK, `{}`))

	_, err := a.FetchPage(context.Background(), feed.PageNumber(1))
	assert.Error(t, err)
	assert.Empty(t, up.Requests())
}

func TestFetchPage_DegradeLogging(t *testing.T) {
	newLogged := func(t *testing.T) (*Adapter, *bytes.Buffer) {
		t.Helper()
		var buf bytes.Buffer
		_, client := providertest.New(t, providertest.JSON(http.StatusServiceUnavailable, `{"error":"down"}`))
		log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		return New(client, log), &buf
	}

	t.Run("upstream failure warns", func(t *testing.T) {
		a, buf := newLogged(t)

		_, err := a.FetchPage(context.Background(), feed.OffsetWithHint(0, true))
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"level":"WARN"`)
		assert.Contains(t, buf.String(), `"error":"melolo: upstream unavailable`)
	})

	t.Run("canceled caller logs at debug", func(t *testing.T) {
		a, buf := newLogged(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		page, err := a.FetchPage(ctx, feed.OffsetWithHint(0, true))
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Contains(t, buf.String(), `"level":"DEBUG"`)
		assert.NotContains(t, buf.String(), `"level":"WARN"`)
	})
}
