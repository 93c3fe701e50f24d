package monitor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/aiobridge/internal/server"
	"github.com/muurk/aiobridge/internal/store"
	"github.com/muurk/aiobridge/internal/ui"
)

// Messages for async operations
type connectedMsg struct{ feed *Feed }
type stateMsg struct{ msg server.Message }
type feedClosedMsg struct{ err error }

// keyMap defines key bindings for the monitor screen
type keyMap struct {
	Quit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit}}
}

var titleStyle = lipgloss.NewStyle().
	Foreground(ui.PrimaryColor).
	Bold(true)

// Model is the monitor screen state
type Model struct {
	url     string
	ctx     context.Context
	feed    *Feed
	states  map[string]server.Message
	updates int
	err     error
	closed  bool

	width   int
	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a monitor for the feed at url
func NewModel(ctx context.Context, url string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ui.PrimaryColor)

	return Model{
		url:     url,
		ctx:     ctx,
		states:  make(map[string]server.Message),
		width:   ui.GetTerminalWidth(),
		spinner: s,
		help:    help.New(),
		keys: keyMap{
			Quit: key.NewBinding(
				key.WithKeys("q", "esc", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
	}
}

// Init connects to the feed
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.connect)
}

func (m Model) connect() tea.Msg {
	feed, err := Connect(m.ctx, m.url)
	if err != nil {
		return feedClosedMsg{err: err}
	}
	return connectedMsg{feed: feed}
}

// waitForState reads the next update from feed
func waitForState(feed *Feed) tea.Cmd {
	return func() tea.Msg {
		msg, err := feed.Next()
		if err != nil {
			return feedClosedMsg{err: err}
		}
		return stateMsg{msg: msg}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			if m.feed != nil {
				_ = m.feed.Close()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case connectedMsg:
		m.feed = msg.feed
		return m, waitForState(m.feed)

	case stateMsg:
		m.states[msg.msg.Key] = msg.msg
		m.updates++
		return m, waitForState(m.feed)

	case feedClosedMsg:
		m.closed = true
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// gatewayConnected reports the published connection flag
func (m Model) gatewayConnected() bool {
	return m.states[store.KeyConnection].Value == store.BoolValue(true)
}

// View renders the screen
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("AIO BRIDGE MONITOR"))
	b.WriteString("  ")
	b.WriteString(ui.MutedStyle.Render(m.url))
	b.WriteString("\n\n")

	switch {
	case m.closed:
		b.WriteString(ui.ErrorMessageStyle.Render(fmt.Sprintf("%s feed closed: %v", ui.FailureMarker, m.err)))
	case m.feed == nil:
		b.WriteString(m.spinner.View() + " Connecting...")
	case m.gatewayConnected():
		b.WriteString(ui.SuccessTitleStyle.Render(ui.OnlineMarker + " gateway connected"))
	default:
		b.WriteString(ui.ErrorTitleStyle.Render(ui.OfflineMarker + " gateway not connected"))
	}
	b.WriteString("\n\n")

	if len(m.states) > 0 {
		b.WriteString(ui.RenderTable([]string{"KEY", "VALUE", "UPDATED"}, m.rows()))
		b.WriteString("\n\n")
	}

	b.WriteString(ui.MutedStyle.Render(fmt.Sprintf("%d updates", m.updates)))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// rows returns the state table sorted by key with the IR code highlighted
func (m Model) rows() [][]string {
	keys := make([]string, 0, len(m.states))
	for k := range m.states {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		s := m.states[k]
		value := s.Value
		if k == store.KeyReceivedIR {
			value = ui.HighlightStyle.Render(value)
		}
		rows = append(rows, []string{k, value, s.Time.Local().Format("15:04:05")})
	}
	return rows
}
