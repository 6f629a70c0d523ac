package provider

import (
	"context"
	"log/slog"

	domainerrors "github.com/reelfeed/reelfeed-server/internal/errors"
	"github.com/reelfeed/reelfeed-server/internal/feed"
	log "github.com/reelfeed/reelfeed-server/internal/logger"
	"github.com/reelfeed/reelfeed-server/internal/textutil"
	"github.com/reelfeed/reelfeed-server/internal/upstream"
)

// Fetch checks cursor against kind, requests the listing page and decodes it
// into a T. A body that is not JSON at all is logged and yields the zero T so
// the page comes out empty. Upstream and transport errors are returned as *Failure.
func Fetch[T any](ctx context.Context, g Getter, name string, kind feed.Kind, cursor feed.Cursor, logger *slog.Logger) (T, error) {
	var out T
	if err := CheckCursor(kind, cursor); err != nil {
		return out, err
	}

	body, err := g.Get(ctx, name, Endpoint, Query(cursor))
	if err != nil {
		return out, Fail(name, err)
	}

	if err := upstream.Decode(body, &out); err != nil {
		malformed := domainerrors.MalformedPayload("unreadable upstream body").WithCause(err)
		log.From(logger).WithError(malformed).Warn("unreadable upstream body, treating page as empty",
			"provider", name,
			"cursor", cursor.Key(),
		)
		var zero T
		return zero, nil
	}
	return out, nil
}

// Count converts an upstream counter to a non-negative int.
func Count(s upstream.Scalar) int {
	return max(s.Int(), 0)
}

// FirstOf returns the first non-blank scalar.
func FirstOf(vals ...upstream.Scalar) string {
	for _, v := range vals {
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}

// Extra builds the passthrough bag: the detail link, plus the description and
// tags when the upstream had them.
func Extra(name, id, description string, tags []string) map[string]any {
	extra := map[string]any{"link": Link(name, id)}
	if d := textutil.Description(description); d != "" {
		extra["description"] = d
	}
	if len(tags) > 0 {
		extra["tags"] = tags
	}
	return extra
}

// Strings flattens a list of scalars, dropping blanks.
func Strings(list upstream.List[upstream.Scalar]) []string {
	var out []string
	for _, v := range list {
		if s := textutil.Title(v.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
