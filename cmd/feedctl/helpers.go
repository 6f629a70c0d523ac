package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reelfeed/reelfeed-server/internal/client"
	"github.com/reelfeed/reelfeed-server/internal/di/providers"
	"github.com/reelfeed/reelfeed-server/internal/envelope"
	"github.com/reelfeed/reelfeed-server/internal/feed"
	"github.com/reelfeed/reelfeed-server/internal/logger"
	"github.com/reelfeed/reelfeed-server/internal/provider"
	"github.com/reelfeed/reelfeed-server/internal/session"
	"github.com/reelfeed/reelfeed-server/internal/upstream"
)

// Lipgloss styles used across commands.
var (
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray

	styleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true) // cyan bold
	styleTab      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8"))
	styleTabOn    = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("5")).Bold(true)

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")).
			MarginBottom(1)
)

const titleWidth = 42

// backend is where listings come from: a ReelFeed server or the in-process registry.
type backend interface {
	session.Fetcher
	Providers(ctx context.Context) ([]provider.Info, error)
}

// localBackend serves listings from the adapters directly.
type localBackend struct {
	*provider.Registry
}

func (b localBackend) Providers(context.Context) ([]provider.Info, error) {
	return b.Infos(), nil
}

// openBackend builds the backend selected by the global flags. The returned
// func releases it.
func openBackend() (backend, func(), error) {
	log := logger.New(logger.Config{
		Writer: os.Stderr,
		Level:  logger.ParseLevel(logLevel),
	})

	if local {
		up, err := upstream.New(upstream.Config{BaseURL: upstreamURL}, log.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("create upstream client: %w", err)
		}
		reg, err := providers.NewRegistry(up, log)
		if err != nil {
			up.Close()
			return nil, nil, err
		}
		return localBackend{Registry: reg}, up.Close, nil
	}

	key, err := envelope.ParseKey(keyHex)
	if err != nil {
		return nil, nil, err
	}
	c, err := client.New(client.Config{BaseURL: serverURL, Key: key}, log.Logger)
	if err != nil {
		return nil, nil, err
	}
	return c, func() {}, nil
}

// queries turns provider descriptions into session queries, in order.
func queries(infos []provider.Info) ([]session.Query, error) {
	out := make([]session.Query, 0, len(infos))
	for _, info := range infos {
		kind, err := feed.ParseKind(info.Kind)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", info.Name, err)
		}
		out = append(out, session.Query{Provider: info.Name, Kind: kind})
	}
	return out, nil
}

// findQuery returns the query for the named provider.
func findQuery(qs []session.Query, name string) (session.Query, bool) {
	for _, q := range qs {
		if strings.EqualFold(q.Provider, name) {
			return q, true
		}
	}
	return session.Query{}, false
}

// renderItem formats one listing row.
func renderItem(it feed.Item) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(titleWidth).MaxWidth(titleWidth).Render(it.Title))
	fmt.Fprintf(&b, " %4d eps", it.EpisodeCount)
	if it.TopLeftBadge != nil {
		b.WriteString(" " + badgeStyle(it.TopLeftBadge).Render(it.TopLeftBadge.Text))
	}
	if it.TopRightBadge != nil {
		b.WriteString(" " + badgeStyle(it.TopRightBadge).Render(it.TopRightBadge.Text))
	}
	return b.String()
}

func badgeStyle(b *feed.Badge) lipgloss.Style {
	if b.IsTransparent || b.Color == "" {
		return styleDim
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color)).Bold(true)
}
