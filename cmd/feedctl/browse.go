package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/reelfeed/reelfeed-server/internal/logger"
	"github.com/reelfeed/reelfeed-server/internal/session"
)

const (
	// prefetchRows is how close to the last row the selection gets before
	// the next page is requested.
	prefetchRows = 3

	// chromeRows is the height taken by tabs, status and help lines.
	chromeRows = 6

	defaultRows = 15
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [provider]",
		Short: "Scroll through listings interactively",
		Long: "Open an infinite list. Moving down near the end loads the next page,\n" +
			"r retries a failed page and tab switches provider.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			start := ""
			if len(args) == 1 {
				start = args[0]
			}
			return runBrowse(start)
		},
	}
}

func runBrowse(start string) error {
	b, closeFn, err := openBackend()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	infos, err := b.Providers(ctx)
	if err != nil {
		return fmt.Errorf("list providers: %w", err)
	}
	qs, err := queries(infos)
	if err != nil {
		return err
	}
	if len(qs) == 0 {
		return errors.New("server has no providers")
	}

	current := 0
	if start != "" {
		q, ok := findQuery(qs, start)
		if !ok {
			return fmt.Errorf("unknown provider %q", start)
		}
		for i := range qs {
			if qs[i] == q {
				current = i
			}
		}
	}

	cache := session.NewCache(b, session.DefaultStaleAfter, logger.Discard().Logger)
	defer cache.Close()

	p := tea.NewProgram(newBrowseModel(ctx, cache, qs, current), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

// fetchDoneMsg reports that a fetch of the given session finished.
type fetchDoneMsg struct {
	session string
	err     error
}

type browseModel struct {
	ctx     context.Context
	cache   *session.Cache
	queries []session.Query
	current int

	ctrl     *session.Controller
	snap     session.Snapshot
	selected int
	pending  bool
	rows     int
	spinner  spinner.Model
}

func newBrowseModel(ctx context.Context, cache *session.Cache, qs []session.Query, current int) browseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo
	ctrl := cache.Get(qs[current])
	return browseModel{
		ctx:     ctx,
		cache:   cache,
		queries: qs,
		current: current,
		ctrl:    ctrl,
		snap:    ctrl.Snapshot(),
		pending: true,
		rows:    defaultRows,
		spinner: s,
	}
}

func (m browseModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.rows = max(msg.Height-chromeRows, 1)
	case fetchDoneMsg:
		if msg.session == m.ctrl.ID() {
			m.pending = false
		}
		m.snap = m.ctrl.Snapshot()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.snap.Items)-1 {
			m.selected++
		}
		return m.maybeLoadMore()
	case "enter":
		return m.maybeLoadMore()
	case "r":
		if m.snap.State == session.StateError && !m.pending {
			m.pending = true
			return m, m.run(m.ctrl.Retry)
		}
	case "tab":
		m.current = (m.current + 1) % len(m.queries)
		m.ctrl = m.cache.Get(m.queries[m.current])
		m.snap = m.ctrl.Snapshot()
		m.selected = 0
		if m.snap.State == session.StateIdle {
			m.pending = true
			return m, m.load()
		}
		m.pending = m.snap.State == session.StateLoading || m.snap.State == session.StateLoadingMore
	}
	return m, nil
}

// maybeLoadMore requests the next page once the selection is near the end.
func (m browseModel) maybeLoadMore() (tea.Model, tea.Cmd) {
	if m.pending || m.snap.State != session.StateReady {
		return m, nil
	}
	if m.selected < len(m.snap.Items)-prefetchRows {
		return m, nil
	}
	m.pending = true
	return m, m.run(m.ctrl.LoadMore)
}

func (m browseModel) load() tea.Cmd {
	q := m.queries[m.current]
	return func() tea.Msg {
		ctrl, err := m.cache.Load(m.ctx, q)
		return fetchDoneMsg{session: ctrl.ID(), err: err}
	}
}

func (m browseModel) run(op func(context.Context) (bool, error)) tea.Cmd {
	id := m.ctrl.ID()
	return func() tea.Msg {
		_, err := op(m.ctx)
		return fetchDoneMsg{session: id, err: err}
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	tabs := make([]string, len(m.queries))
	for i, q := range m.queries {
		if i == m.current {
			tabs[i] = styleTabOn.Render(q.Provider)
		} else {
			tabs[i] = styleTab.Render(q.Provider)
		}
	}
	b.WriteString(strings.Join(tabs, " ") + "\n\n")

	items := m.snap.Items
	first := max(0, min(m.selected-m.rows/2, len(items)-m.rows))
	last := min(len(items), first+m.rows)
	for i := first; i < last; i++ {
		if i == m.selected {
			b.WriteString(styleSelected.Render("> ") + renderItem(items[i]) + "\n")
		} else {
			b.WriteString("  " + renderItem(items[i]) + "\n")
		}
	}

	b.WriteString("\n" + m.status() + "\n")
	b.WriteString(styleDim.Render("↑/↓ move · enter more · r retry · tab provider · q quit"))
	return b.String()
}

func (m browseModel) status() string {
	count := styleDim.Render(fmt.Sprintf("%d items · %d pages", len(m.snap.Items), m.snap.Pages))
	switch {
	case m.pending:
		return m.spinner.View() + styleDim.Render(" Loading... ") + count
	case m.snap.State == session.StateError:
		return styleError.Render("Error: "+m.snap.Err.Error()+" (press r to retry) ") + count
	case m.snap.State == session.StateExhausted || (m.snap.State == session.StateReady && !m.snap.HasNext):
		return styleInfo.Render("End of list ") + count
	default:
		return count
	}
}
