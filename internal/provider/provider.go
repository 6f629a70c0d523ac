// Package provider defines the contract every upstream listing adapter meets
// and the registry the API serves them from.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	domainerrors "github.com/reelfeed/reelfeed-server/internal/errors"
	"github.com/reelfeed/reelfeed-server/internal/feed"
	"github.com/reelfeed/reelfeed-server/internal/upstream"
)

// Adapter turns one upstream listing endpoint into unified pages.
type Adapter interface {
	// Name is the route segment and upstream path prefix, e.g. "melolo".
	Name() string
	// Kind is how the adapter paginates.
	Kind() feed.Kind
	// FetchPage fetches and normalizes the page at cursor. The cursor's kind
	// must match Kind.
	FetchPage(ctx context.Context, cursor feed.Cursor) (feed.Page, error)
}

// Getter fetches a raw upstream body. *upstream.Client implements it.
type Getter interface {
	Get(ctx context.Context, provider, endpoint string, query url.Values) ([]byte, error)
}

// Endpoint is the listing endpoint every adapter reads.
const Endpoint = "foryou"

// Query encodes cursor as the single pagination parameter upstreams expect.
func Query(cursor feed.Cursor) url.Values {
	return url.Values{cursor.Kind.Param(): {strconv.Itoa(cursor.Value())}}
}

// CheckCursor rejects cursors that do not belong to kind or are out of range.
func CheckCursor(kind feed.Kind, cursor feed.Cursor) error {
	if cursor.Kind != kind {
		return domainerrors.Validation(fmt.Sprintf("cursor kind %s does not match %s", cursor.Kind, kind))
	}
	if err := cursor.Validate(); err != nil {
		return domainerrors.Validation(err.Error())
	}
	return nil
}

// Link is the detail route a card points at.
func Link(provider, id string) string {
	return "/detail/" + provider + "/" + url.PathEscape(id)
}

// Failure is an upstream fetch that could not produce a page.
type Failure struct {
	Provider string
	Status   int
	Err      error
}

// Fail wraps err as a Failure, taking the status from an upstream response
// when there was one.
func Fail(provider string, err error) *Failure {
	return &Failure{Provider: provider, Status: upstream.StatusOf(err), Err: err}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: upstream unavailable (status %d): %v", f.Provider, f.Status, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is makes a Failure match errors.ErrUpstreamUnavailable.
func (f *Failure) Is(target error) bool {
	return target == domainerrors.ErrUpstreamUnavailable
}

// DomainError converts the failure to the coded error the API reports. The
// upstream status is passed through; transport failures are 500.
func (f *Failure) DomainError() *domainerrors.Error {
	status := f.Status
	if status < 400 {
		status = http.StatusInternalServerError
	}
	return domainerrors.UpstreamUnavailable("Failed to fetch data", status).WithCause(f.Err)
}
