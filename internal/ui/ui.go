package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/smartlist/internal/form"
	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/shared"
	"github.com/desertthunder/smartlist/internal/tasks"
)

// Pane identifies the focused half of the panel.
type Pane int

const (
	ConfigPane Pane = iota
	SyncPane
)

// ArtistLoader fetches the followed artists with their saved flags.
type ArtistLoader interface {
	Artists(ctx context.Context) ([]models.Artist, error)
}

// SourceFunc builds the event source for a sync over the given saved artist ids.
type SourceFunc func(ids []string) tasks.EventSource

// Options wires the panel's collaborators.
type Options struct {
	Loader    ArtistLoader
	Committer form.Committer
	Source    SourceFunc
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	opts    Options
	logger  *log.Logger
	pane    Pane
	loading bool
	cursor  int
	names   map[string]string
	form    *form.Controller
	sync    *tasks.Orchestrator
	synced  map[string]time.Time
	events  <-chan tasks.Event
	cancel  context.CancelFunc
	result  *tasks.Result
	err     error
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	width   int
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = styles.active

	return &Model{
		ctx:     ctx,
		opts:    opts,
		logger:  logger,
		loading: true,
		names:   map[string]string{},
		synced:  map[string]time.Time{},
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init fetches the artists and starts the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadArtists(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgArtistsLoaded:
		data := msg.data.(artistsLoaded)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			m.logger.Error("failed to load artists", "error", data.err)
			return m, nil
		}
		if err := m.setArtists(data.artists); err != nil {
			m.err = err
		}
		return m, nil

	case MsgSaveComplete:
		err, _ := msg.data.(error)
		m.form.Complete(err)
		if err == nil {
			m.form.Rebaseline()
			m.rebuildSync()
		}
		return m, nil

	case MsgSyncOpened:
		data := msg.data.(syncOpened)
		if data.token != m.sync.Session() {
			return m, nil
		}
		if data.err != nil {
			m.err = data.err
			m.finishSync(data.token)
			return m, nil
		}
		m.err = nil
		m.events = data.events
		return m, m.waitForEvent(data.token)

	case MsgSyncEvent:
		data := msg.data.(syncEvent)
		if data.token != m.sync.Session() {
			return m, nil
		}
		m.sync.Apply(data.token, data.event)
		return m, m.waitForEvent(data.token)

	case MsgSyncClosed:
		m.finishSync(msg.data.(string))
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	if m.form == nil {
		return m, nil
	}

	if key.Matches(msg, m.keys.tab) {
		if m.pane == ConfigPane {
			m.pane = SyncPane
		} else {
			m.pane = ConfigPane
		}
		return m, nil
	}

	if m.pane == SyncPane {
		if key.Matches(msg, m.keys.sync) {
			return m, m.startSync()
		}
		return m, nil
	}

	fields := m.form.Fields()
	switch {
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(fields)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.toggle):
		if m.cursor < len(fields) {
			fields[m.cursor].Toggle()
		}
	case key.Matches(msg, m.keys.reset):
		m.form.Reset()
	case key.Matches(msg, m.keys.save):
		return m, m.save()
	}
	return m, nil
}

// setArtists builds a fresh form and sync orchestrator from a listing.
func (m *Model) setArtists(artists []models.Artist) error {
	fields := make([]*form.ToggleField, 0, len(artists))
	for _, a := range artists {
		m.names[a.ID] = a.Name
		if a.LastUpdated != nil {
			m.synced[a.ID] = *a.LastUpdated
		}
		fields = append(fields, form.NewToggleField(a.ID, a.Name, a.Saved))
	}

	ctl, err := form.NewController(m.opts.Committer, fields...)
	if err != nil {
		return err
	}
	ctl.SetLogger(m.logger)

	m.form = ctl
	m.cursor = 0
	m.rebuildSync()
	return nil
}

// rebuildSync replaces the orchestrator with one over the currently saved artists. It is skipped while a session
// is open; the next save or reload picks up the change.
func (m *Model) rebuildSync() {
	if m.sync != nil && !m.sync.CanSync() {
		return
	}

	var ids []string
	for _, f := range m.form.Fields() {
		if f.Baseline() {
			ids = append(ids, f.ID())
		}
	}

	// driven step by step from Update, so the orchestrator never opens a source itself
	m.sync = tasks.NewOrchestrator(nil, ids...)
	m.sync.SetLogger(m.logger)
	for _, id := range ids {
		if ts, ok := m.synced[id]; ok {
			m.sync.SetLastUpdated(id, ts)
		}
	}
}

func (m *Model) save() tea.Cmd {
	payload, err := m.form.Begin()
	if err != nil {
		m.logger.Debug("save ignored", "reason", err)
		return nil
	}

	committer := m.opts.Committer
	return func() tea.Msg {
		if committer == nil {
			return saveCompleteMsg(fmt.Errorf("%w: no committer configured", shared.ErrMissingConfig))
		}
		return saveCompleteMsg(committer.Commit(m.ctx, payload))
	}
}

func (m *Model) startSync() tea.Cmd {
	token, err := m.sync.Begin()
	if err != nil {
		m.logger.Debug("sync ignored", "reason", err)
		return nil
	}

	var source tasks.EventSource
	if m.opts.Source != nil {
		source = m.opts.Source(m.sync.IDs())
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.result = nil

	return func() tea.Msg {
		if source == nil {
			return syncOpenedMsg(token, nil, fmt.Errorf("%w: no event source configured", shared.ErrMissingConfig))
		}
		events, err := source.Open(ctx)
		return syncOpenedMsg(token, events, err)
	}
}

// waitForEvent reads the next event of the open stream; a closed stream becomes [MsgSyncClosed].
func (m *Model) waitForEvent(token string) tea.Cmd {
	events := m.events
	return func() tea.Msg {
		if events == nil {
			return syncClosedMsg(token)
		}
		ev, ok := <-events
		if !ok {
			return syncClosedMsg(token)
		}
		return syncEventMsg(token, ev)
	}
}

func (m *Model) finishSync(token string) {
	if token != m.sync.Session() {
		return
	}

	res := m.sync.Finish(token)
	for _, id := range res.Completed {
		if p, ok := m.sync.Indicator(id); ok {
			m.synced[id] = p.LastUpdated()
		}
	}
	m.result = &res
	m.events = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) loadArtists() tea.Cmd {
	loader := m.opts.Loader
	return func() tea.Msg {
		if loader == nil {
			return artistsLoadedMsg(nil, fmt.Errorf("%w: no artist loader configured", shared.ErrMissingConfig))
		}
		artists, err := loader.Artists(m.ctx)
		return artistsLoadedMsg(artists, err)
	}
}

// View renders both panes with the focused one highlighted.
func (m *Model) View() string {
	title := styles.title.Render("Smartlist")
	if m.loading {
		return fmt.Sprintf("%s\n%s Loading artists...", title, m.spinner.View())
	}
	if m.form == nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	config, syncView := styles.pane, styles.pane
	keys := m.keys.syncKeys()
	if m.pane == ConfigPane {
		config = styles.focus
		keys = m.keys.configKeys()
	} else {
		syncView = styles.focus
	}

	body := config.Render(m.renderConfig()) + "\n" + syncView.Render(m.renderSync())
	if m.err != nil {
		body += "\n" + styles.err.Render(m.err.Error())
	}
	return fmt.Sprintf("%s\n%s\n\n%s", title, body, m.help.ShortHelpView(keys))
}

func (m *Model) renderConfig() string {
	var b strings.Builder
	b.WriteString(styles.active.Render("Artists to sync") + "\n\n")

	fields := m.form.Fields()
	if len(fields) == 0 {
		b.WriteString(styles.help.Render("No followed artists") + "\n")
	}
	for i, f := range fields {
		b.WriteString(renderToggleRow(f, m.pane == ConfigPane && i == m.cursor) + "\n")
	}

	b.WriteString("\n" + renderAction("Save (s)", m.form.CanSave()) + "  " + renderAction("Reset (r)", m.form.CanReset()))

	switch m.form.Status() {
	case form.StatusSaving:
		b.WriteString("  " + m.spinner.View() + " " + m.form.Message())
	case form.StatusSaved:
		b.WriteString("  " + styles.ok.Render(m.form.Message()))
	case form.StatusError:
		b.WriteString("  " + styles.err.Render(m.form.Message()))
	}
	return b.String()
}

func (m *Model) renderSync() string {
	var b strings.Builder
	b.WriteString(styles.active.Render("Sync status") + "\n\n")

	ids := m.sync.IDs()
	if len(ids) == 0 {
		b.WriteString(styles.help.Render("No saved artists") + "\n")
	}
	for _, id := range ids {
		p, _ := m.sync.Indicator(id)
		b.WriteString(m.renderIndicatorRow(m.names[id], p))
	}

	b.WriteString("\n" + renderAction("Sync (y)", m.sync.CanSync()))
	if m.result != nil {
		summary := fmt.Sprintf("  %d synced, %d failed", len(m.result.Completed), len(m.result.Failed)+len(m.result.Disconnected))
		if m.result.OK() {
			b.WriteString(styles.ok.Render(summary))
		} else {
			b.WriteString(styles.warn.Render(summary))
		}
	}
	return b.String()
}

func renderToggleRow(f *form.ToggleField, selected bool) string {
	cursor := "  "
	if selected {
		cursor = styles.active.Render("> ")
	}

	box := "[ ]"
	if f.Value() {
		box = "[x]"
	}

	row := fmt.Sprintf("%s%s %s", cursor, box, f.Name())
	if f.Dirty() {
		row += styles.warn.Render(" *")
	}
	if f.Disabled() {
		return styles.help.Render(row)
	}
	return row
}

func (m *Model) renderIndicatorRow(name string, p *tasks.ProgressIndicator) string {
	var b strings.Builder
	b.WriteString(name + "\n")

	if s := p.StatusText(); s != "" {
		switch p.State() {
		case tasks.StateError:
			b.WriteString("  " + styles.err.Render(s) + "\n")
		default:
			b.WriteString("  " + m.spinner.View() + " " + s + "\n")
		}
	}
	if s := p.LastUpdatedText(); s != "" {
		b.WriteString("  " + styles.help.Render(s) + "\n")
	}
	return b.String()
}

func renderAction(label string, enabled bool) string {
	if enabled {
		return styles.ok.Render(label)
	}
	return styles.help.Render(label)
}
