// Package client talks to a running feed server. It opens response envelopes
// (sealed or not) and turns listing payloads back into feed pages, so a
// session.Controller can sit on top of it.
package client

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/reelfeed/reelfeed-server/internal/envelope"
	domainerrors "github.com/reelfeed/reelfeed-server/internal/errors"
	"github.com/reelfeed/reelfeed-server/internal/feed"
	"github.com/reelfeed/reelfeed-server/internal/id"
	"github.com/reelfeed/reelfeed-server/internal/provider"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 8 << 20
)

// Config configures a Client.
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:8080.
	BaseURL string
	Timeout time.Duration
	// Key opens sealed envelopes. Leave empty for a plaintext server.
	Key        []byte
	HTTPClient *http.Client
}

// Client is an HTTP client for the feed API.
type Client struct {
	base   *url.URL
	http   *http.Client
	codec  *envelope.Codec
	logger *slog.Logger
}

// Error is a failed API call, decoded from the error envelope.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// Is matches domain error sentinels by code, so callers can test
// errors.Is(err, errors.ErrUpstreamUnavailable).
func (e *Error) Is(target error) bool {
	var de *domainerrors.Error
	if domainerrors.As(target, &de) {
		return e.Code != "" && string(de.Code) == e.Code
	}
	return false
}

// New creates a client for cfg.BaseURL.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	codec, err := envelope.NewCodec(cfg.Key)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{base: base, http: hc, codec: codec, logger: logger}, nil
}

// Providers lists the providers the server serves.
func (c *Client) Providers(ctx context.Context) ([]provider.Info, error) {
	var out struct {
		Providers []provider.Info `json:"providers"`
	}
	if err := c.get(ctx, "/api/providers", nil, &out); err != nil {
		return nil, err
	}
	return out.Providers, nil
}

// listing is the payload of GET /api/{provider}/foryou.
type listing struct {
	Items      []feed.Item `json:"items"`
	Books      []feed.Item `json:"books"`
	HasMore    bool        `json:"has_more"`
	NextPage   *int        `json:"next_page"`
	NextOffset *int        `json:"next_offset"`
}

// FetchPage fetches the page of name's for-you listing at cursor.
func (c *Client) FetchPage(ctx context.Context, name string, cursor feed.Cursor) (feed.Page, error) {
	if err := cursor.Validate(); err != nil {
		return feed.Page{}, domainerrors.Validation(err.Error())
	}
	query := url.Values{cursor.Kind.Param(): {strconv.Itoa(cursor.Value())}}

	var l listing
	if err := c.get(ctx, "/api/"+url.PathEscape(name)+"/"+provider.Endpoint, query, &l); err != nil {
		return feed.Page{}, err
	}

	items := l.Items
	if items == nil {
		items = l.Books
	}
	items = feed.Filter(items)
	return feed.Page{
		Cursor:  cursor,
		Items:   items,
		Fetched: len(items),
		Next:    next(cursor, l, len(items)),
	}, nil
}

// next rebuilds the continuation from the payload's has_more and next fields.
func next(at feed.Cursor, l listing, n int) *feed.Cursor {
	if !l.HasMore {
		return nil
	}
	var c feed.Cursor
	switch at.Kind {
	case feed.KindPageNumber:
		if at.Page >= feed.MaxPages {
			return nil
		}
		page := at.Page + 1
		if l.NextPage != nil {
			page = *l.NextPage
		}
		c = feed.PageNumber(page)
	case feed.KindOffset:
		off := at.Offset + n
		if l.NextOffset != nil {
			off = *l.NextOffset
		}
		c = feed.Offset(off)
	case feed.KindOffsetWithHint:
		off := at.Offset
		if l.NextOffset != nil {
			off = *l.NextOffset
		}
		c = feed.OffsetWithHint(off, true)
	default:
		return nil
	}
	return &c
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()
	target := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if rid, err := id.Generate(id.PrefixRequest); err == nil {
		req.Header.Set("X-Request-Id", rid)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read %s: %w", target, err)
	}
	c.logger.Debug("api response", "url", target, "status", resp.StatusCode, "bytes", len(body), "took", time.Since(start))

	var raw envelope.Raw
	if err := json.Unmarshal(body, &raw); err != nil {
		return &Error{Status: resp.StatusCode, Message: "response is not an envelope: " + http.StatusText(resp.StatusCode)}
	}
	if !raw.Success || resp.StatusCode >= 400 {
		msg := raw.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Code: raw.Code, Message: msg}
	}
	if raw.Version != envelope.Version {
		return fmt.Errorf("unsupported envelope version %d", raw.Version)
	}
	return c.codec.Open(raw, out)
}
