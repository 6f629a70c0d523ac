package reelshort

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfeed/reelfeed-server/internal/feed"
	"github.com/reelfeed/reelfeed-server/internal/provider"
	"github.com/reelfeed/reelfeed-server/internal/provider/providertest"
)

func TestFetchPage(t *testing.T) {
	body := `{"success":true,"data":{"lists":[
	  {"book_id":"65f1a","book_title":"  The  Alpha's Bride ","book_pic":"https://img.test/a.jpg","chapter_count":70,
	   "special_desc":"Werewolves.","start_play_episode":1,"theme":["Romance","  "]},
	  {"book_title":"missing id","book_pic":"https://img.test/b.jpg"},
	  {"book_id":"65f1c","book_title":"Second Chance","book_pic":"https://img.test/c.jpg","start_play_episode":0}
	]}}`
	up, client := providertest.New(t, providertest.JSON(http.StatusOK, body))
	a := New(client, slog.New(slog.DiscardHandler))

	page, err := a.FetchPage(context.Background(), feed.PageNumber(4))
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	first := page.Items[0]
	assert.Equal(t, "65f1a", first.ID)
	assert.Equal(t, "The Alpha's Bride", first.Title)
	assert.Equal(t, 70, first.EpisodeCount)
	assert.Equal(t, &feed.Badge{Text: "Boleh Ditonton", Color: "#FF4D4F"}, first.TopLeftBadge)
	assert.Equal(t, []string{"Romance"}, first.Extra["tags"])
	assert.Nil(t, page.Items[1].TopLeftBadge)

	require.NotNil(t, page.Next)
	assert.Equal(t, feed.PageNumber(5), *page.Next)
	assert.Equal(t, []string{"page=4"}, up.Queries())
}

func TestFetchPage_MissingListsEnds(t *testing.T) {
	_, client := providertest.New(t, providertest.JSON(http.StatusOK, `{"success":true,"data":{}}`))
	a := New(client, slog.New(slog.DiscardHandler))

	page, err := a.FetchPage(context.Background(), feed.PageNumber(2))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore())
}

func TestFetchPage_Failure(t *testing.T) {
	_, client := providertest.New(t, providertest.JSON(http.StatusNotFound, ``))
	a := New(client, slog.New(slog.DiscardHandler))

	_, err := a.FetchPage(context.Background(), feed.PageNumber(1))
	var f *provider.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "reelshort", f.Provider)
	assert.Equal(t, http.StatusNotFound, f.Status)
}

func TestFetchPage_NoValidBooksEnds(t *testing.T) {
	body := `{"data":{"lists":[{"book_title":"missing id","book_pic":"https://img.test/b.jpg"},{"book_id":"65f1d","book_title":"No cover"}]}}`
	_, client := providertest.New(t, providertest.JSON(http.StatusOK, body))
	a := New(client, slog.New(slog.DiscardHandler))

	page, err := a.FetchPage(context.Background(), feed.PageNumber(2))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Nil(t, page.Next)
}
