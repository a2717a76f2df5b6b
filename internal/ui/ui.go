package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/songdash/internal/formatter"
	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/session"
	"github.com/desertthunder/songdash/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	DashboardView
	PickerView
	FailedView
)

const (
	progressBuffer = 16
	labelWidth     = 18
)

// Loader fetches one snapshot, reporting progress on an optional channel.
type Loader interface {
	Load(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Snapshot, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	sess      *session.Session
	loader    Loader
	logger    *log.Logger
	width     int
	height    int
	selection models.FilterSelection
	dash      *session.Dashboard
	local     bool
	picking   models.Field
	picker    list.Model
	table     table.Model
	spinner   spinner.Model
	progress  tasks.ProgressUpdate
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model over sess, loading snapshots with loader.
func NewModel(ctx context.Context, sess *session.Session, loader Loader, logger *log.Logger) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.header

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Track", Width: 28},
			{Title: "Artist", Width: 20},
			{Title: "Genre", Width: 14},
			{Title: "Popularity", Width: 10},
			{Title: "Minutes", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return &Model{
		ctx:       ctx,
		view:      LoadingView,
		sess:      sess,
		loader:    loader,
		logger:    logger,
		selection: models.AllSelection(),
		table:     t,
		spinner:   s,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the first snapshot load.
func (m *Model) Init() tea.Cmd {
	return m.reload()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(5, m.height-22))
		if m.view == PickerView {
			m.picker.SetSize(m.pickerSize())
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != LoadingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
		case DashboardView:
			return m.handleDashboardKeys(msg)
		case PickerView:
			return m.handlePickerKeys(msg)
		case FailedView:
			return m.handleFailedKeys(msg)
		}
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case DashboardView:
		return m.renderDashboard()
	case PickerView:
		return m.renderPicker()
	case FailedView:
		return m.renderFailed()
	default:
		return ""
	}
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		p := msg.data.(progressUpdate)
		m.progress = p.update
		return m, waitForProgress(p.ch)

	case MsgSnapshotLoaded:
		r := msg.data.(snapshotLoaded)
		if !m.sess.Complete(r.ticket, r.snapshot, r.err) {
			m.logger.Debug("discarded stale snapshot", "ticket", r.ticket)
			return m, nil
		}
		if m.sess.State() == session.Failed {
			m.err = m.sess.Err()
			m.view = FailedView
			m.logger.Error("snapshot load failed", "error", m.err)
			return m, nil
		}
		m.err = nil
		m.view = DashboardView
		m.refresh()
		m.logger.Info("snapshot ready", "id", m.sess.Snapshot().ID)
	}
	return m, nil
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		return m, m.reload()
	case key.Matches(msg, m.keys.genre):
		m.openPicker(models.FieldGenre)
		return m, nil
	case key.Matches(msg, m.keys.artist):
		m.openPicker(models.FieldArtist)
		return m, nil
	case key.Matches(msg, m.keys.reset):
		m.selection = models.AllSelection()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.local):
		m.local = !m.local
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.back):
			m.view = DashboardView
			return m, nil
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.picker.SelectedItem().(facetItem); ok {
				m.selection = m.selection.With(m.picking, item.value)
				m.refresh()
			}
			m.view = DashboardView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) handleFailedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		return m, m.reload()
	}
	return m, nil
}

// reload begins a new load; any load still in flight becomes stale.
func (m *Model) reload() tea.Cmd {
	ch := make(chan tasks.ProgressUpdate, progressBuffer)
	return tea.Batch(m.startLoad(ch), waitForProgress(ch), m.spinner.Tick)
}

func (m *Model) startLoad(ch chan tasks.ProgressUpdate) tea.Cmd {
	ticket := m.sess.Begin()
	m.view = LoadingView
	m.progress = tasks.ProgressUpdate{Message: "Loading catalog..."}

	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		snap, err := loader.Load(ctx, ch)
		close(ch)
		return snapshotLoadedMsg(ticket, snap, err)
	}
}

func waitForProgress(ch <-chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressUpdateMsg(update, ch)
	}
}

func (m *Model) refresh() {
	dash, err := m.sess.Dashboard(m.selection)
	if err != nil {
		m.err = err
		m.view = FailedView
		return
	}
	m.dash = dash
	m.table.SetRows(tableRows(dash.View))
	m.table.SetCursor(0)
}

func (m *Model) pickerSize() (int, int) {
	return max(m.width-4, 30), max(m.height-6, 12)
}

func (m *Model) openPicker(f models.Field) {
	if m.dash == nil {
		return
	}
	set := m.dash.Facet(f)
	current := m.selection.Get(f)

	w, h := m.pickerSize()
	m.picker = list.New(facetItems(set, current), list.NewDefaultDelegate(), w, h)
	m.picker.Title = "Filter by " + string(f)
	if i := set.Index(current); i >= 0 {
		m.picker.Select(i)
	}
	m.picking = f
	m.view = PickerView
}

func tableRows(view models.FilteredView) []table.Row {
	rows := make([]table.Row, len(view.Shown))
	for i, r := range view.Shown {
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			formatter.Text(r.TrackName),
			formatter.Text(r.Artist),
			formatter.Text(r.Genre),
			formatter.Number(r.Popularity),
			formatter.Duration(r.DurationMs),
		}
	}
	return rows
}

func (m *Model) barWidth() int {
	if m.width == 0 {
		return 20
	}
	return min(max(m.width/2-labelWidth-12, 10), 40)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (m *Model) renderChart(title string, buckets []models.AggregateBucket) string {
	var b strings.Builder
	b.WriteString(styles.header.Render(title))
	b.WriteString("\n")

	if len(buckets) == 0 {
		b.WriteString(styles.help.Render("No data"))
		return b.String()
	}

	var peak float64
	for _, bucket := range buckets {
		peak = max(peak, bucket.Count)
	}

	width := m.barWidth()
	for _, bucket := range buckets {
		n := 0
		if peak > 0 {
			n = int(bucket.Count / peak * float64(width))
		}
		label := truncate(bucket.Label, labelWidth)
		fmt.Fprintf(&b, "%-*s %s %s\n", labelWidth, label, styles.bar.Render(strings.Repeat("█", n)), formatter.Number(&bucket.Count))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderLoading() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), m.progress.Message, helpView)
}

func (m *Model) renderFailed() string {
	banner := styles.banner.Render(fmt.Sprintf("Failed to load the catalog: %v", m.err))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.reload, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", banner, helpView)
}

func (m *Model) renderPicker() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n\n%s", m.picker.View(), helpView)
}

func (m *Model) renderDashboard() string {
	d := m.dash
	title := styles.title.Render("songdash")

	artists, genres, source := d.TopArtists, d.TopGenres, "catalog counts"
	if m.local {
		artists, genres, source = d.LocalTopArtists, d.LocalTopGenres, "snapshot counts"
	}
	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderChart("Top artists", artists),
		"    ",
		m.renderChart("Top genres", genres),
	)

	filters := fmt.Sprintf("Filters: %s  %s", formatter.Selection(d.Selection), styles.help.Render("("+source+")"))

	var tracks string
	if d.View.TotalMatched == 0 {
		tracks = styles.warn.Render("No data")
	} else {
		tracks = fmt.Sprintf("%s\n%s", styles.help.Render(formatter.Summary(d.View)), m.table.View())
	}

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.genre, m.keys.artist, m.keys.reset, m.keys.local, m.keys.reload, m.keys.quit,
	})

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s\n\n%s", title, charts, filters, tracks, helpView)
}
