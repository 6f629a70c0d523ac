package provider

import (
	"context"
	"fmt"
	"slices"
	"strings"

	domainerrors "github.com/reelfeed/reelfeed-server/internal/errors"
	"github.com/reelfeed/reelfeed-server/internal/feed"
)

// Info describes a registered adapter.
type Info struct {
	Name  string `json:"name" doc:"Provider route segment"`
	Kind  string `json:"kind" doc:"Pagination kind" enum:"page_number,offset,offset_with_hint"`
	Param string `json:"param" doc:"Query parameter carrying the cursor" enum:"page,offset"`
	Start int    `json:"start" doc:"First cursor value"`
}

// Registry is a read-only, name-indexed set of adapters.
type Registry struct {
	byName map[string]Adapter
	order  []string
}

// NewRegistry indexes adapters by lowercased name, rejecting blanks and duplicates.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{byName: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		if a == nil {
			return nil, fmt.Errorf("nil adapter")
		}
		name := normalize(a.Name())
		if name == "" {
			return nil, fmt.Errorf("adapter with empty name")
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("duplicate adapter %q", name)
		}
		r.byName[name] = a
		r.order = append(r.order, name)
	}
	slices.Sort(r.order)
	return r, nil
}

// Get looks an adapter up by name, case-insensitively.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.byName[normalize(name)]
	return a, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Infos describes every adapter, sorted by name.
func (r *Registry) Infos() []Info {
	out := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		a := r.byName[name]
		out = append(out, Info{
			Name:  name,
			Kind:  a.Kind().String(),
			Param: a.Kind().Param(),
			Start: feed.Initial(a.Kind()).Value(),
		})
	}
	return out
}

// FetchPage fetches a page from the named adapter in process. It lets the
// session controllers run without an API server in between.
func (r *Registry) FetchPage(ctx context.Context, name string, cursor feed.Cursor) (feed.Page, error) {
	a, ok := r.Get(name)
	if !ok {
		return feed.Page{}, domainerrors.NotFoundf("unknown provider %q", name)
	}
	return a.FetchPage(ctx, cursor)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
