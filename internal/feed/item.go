// Package feed holds the provider-neutral listing model: unified items, typed
// pagination cursors, pages, and the rules that decide when a listing ends.
package feed

import "strings"

// Badge is a small decoration drawn over a cover corner.
type Badge struct {
	Text          string `json:"text"`
	Color         string `json:"color,omitzero"`
	IsTransparent bool   `json:"isTransparent,omitzero"`
}

// Item is one card in a listing, whatever provider it came from.
type Item struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Cover         string         `json:"cover"`
	EpisodeCount  int            `json:"episodeCount"`
	TopLeftBadge  *Badge         `json:"topLeftBadge,omitzero"`
	TopRightBadge *Badge         `json:"topRightBadge,omitzero"`
	Extra         map[string]any `json:"extra,omitzero"`
}

// Valid reports whether the item can be shown: it needs an id that is not a
// zero placeholder, a non-blank title and a cover.
func (it Item) Valid() bool {
	id := strings.TrimSpace(it.ID)
	if id == "" || id == "0" {
		return false
	}
	return strings.TrimSpace(it.Title) != "" && strings.TrimSpace(it.Cover) != ""
}

// Filter returns the valid items of in, preserving order. The result is never nil.
func Filter(in []Item) []Item {
	out := make([]Item, 0, len(in))
	for _, it := range in {
		if it.Valid() {
			out = append(out, it)
		}
	}
	return out
}

// Flatten concatenates the items of pages in fetch order.
func Flatten(pages []Page) []Item {
	n := 0
	for _, p := range pages {
		n += len(p.Items)
	}
	out := make([]Item, 0, n)
	for _, p := range pages {
		out = append(out, p.Items...)
	}
	return out
}
