// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typesprint/internal/model"
	"github.com/verte-zerg/typesprint/internal/session"
)

const visibleLines = 3

// Model implements the Bubble Tea typing UI.
type Model struct {
	ctrl *session.Controller
	loop *loop
	log  *slog.Logger
	keys keyMap
	help help.Model

	width  int
	height int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	modalStyle       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#C89A3A")).
				Padding(1, 3)
	modalTitleStyle = lipgloss.NewStyle().Bold(true)
)

type keyMap struct {
	Mode15  key.Binding
	Mode30  key.Binding
	Mode60  key.Binding
	Endless key.Binding
	Restart key.Binding
	Dismiss key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Mode15:  key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "15s")),
		Mode30:  key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "30s")),
		Mode60:  key.NewBinding(key.WithKeys("f3"), key.WithHelp("f3", "60s")),
		Endless: key.NewBinding(key.WithKeys("f4"), key.WithHelp("f4", "endless")),
		Restart: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "restart")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "new test")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Mode15, k.Mode30, k.Mode60, k.Endless, k.Restart, k.Dismiss, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func (k keyMap) modeFor(msg tea.KeyMsg) (model.Mode, bool) {
	switch {
	case key.Matches(msg, k.Mode15):
		return 15, true
	case key.Matches(msg, k.Mode30):
		return 30, true
	case key.Matches(msg, k.Mode60):
		return 60, true
	case key.Matches(msg, k.Endless):
		return model.Endless, true
	default:
		return 0, false
	}
}

// NewModel constructs a typing TUI model. Scores stay local when scorer is nil
// or cfg.Offline is set.
func NewModel(cfg model.Config, dictionary []string, scorer session.Scorer, log *slog.Logger) *Model {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	lp := newLoop(scorer, cfg.ScoreTimeout)
	opts := []session.Option{
		session.WithWords(cfg.Words),
		session.WithLogger(log),
	}
	if cfg.Mode.Known() {
		opts = append(opts, session.WithMode(cfg.Mode))
	}
	if scorer != nil && !cfg.Offline {
		opts = append(opts, session.WithDispatcher(lp))
	}
	ctrl := session.New(lp, opts...)
	ctrl.Initialize(dictionary)

	keys := newKeyMap()
	keys.Dismiss.SetEnabled(false)
	return &Model{
		ctrl: ctrl,
		loop: lp,
		log:  log,
		keys: keys,
		help: help.New(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	case tickMsg:
		m.loop.fire(msg.id)
	case scoreMsg:
		msg.done(msg.resp, msg.err)
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.handleKey(msg)
	}
	m.keys.Dismiss.SetEnabled(m.ctrl.Phase() == session.Ended)
	return m, m.loop.drain()
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	if mode, ok := m.keys.modeFor(msg); ok {
		m.log.Debug("mode selected", "mode", mode.String())
		m.ctrl.SelectMode(mode)
		return
	}
	switch {
	case key.Matches(msg, m.keys.Restart), key.Matches(msg, m.keys.Dismiss):
		m.ctrl.Restart()
		return
	}
	switch msg.Type {
	case tea.KeyBackspace:
		m.ctrl.Backspace()
	case tea.KeySpace:
		m.typeRunes([]rune{' '})
	case tea.KeyEnter:
		m.typeRunes([]rune{'\n'})
	case tea.KeyRunes:
		if !msg.Alt {
			m.typeRunes(msg.Runes)
		}
	}
}

func (m *Model) typeRunes(runes []rune) {
	for _, r := range runes {
		if len(m.ctrl.Typed()) >= len(m.ctrl.Target()) {
			return
		}
		m.ctrl.Type(r)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := int(float64(m.width) * 0.70)
	var body string
	if m.ctrl.Phase() == session.Ended {
		body = m.renderResult()
	} else {
		body = m.renderText(contentWidth)
	}
	content := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), "", body)
	footer := footerStyle.Render(m.help.View(m.keys))
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	area := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return area + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	segments := []string{
		"Mode " + modeLabel(m.ctrl.Mode()),
		"Time " + m.ctrl.Clock(),
		fmt.Sprintf("WPM %d", m.ctrl.LiveWPM()),
	}
	return headerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderText(width int) string {
	target := m.ctrl.Target()
	if len(target) == 0 {
		return pendingStyle.Render("word list is empty")
	}
	cursorIndex := -1
	if n := len(m.ctrl.Typed()); n < len(target) {
		cursorIndex = n
	}
	// Leave a column for the space hanging at the end of a wrapped line.
	lines := wrapLines(buildStyledRunes(target, m.ctrl.States(), cursorIndex), width-1)
	start, end := visibleWindow(lines, visibleLines)
	return renderLines(lines[start:end])
}

func (m *Model) renderResult() string {
	res, ok := m.ctrl.Result()
	if !ok {
		return modalStyle.Render("saving score...")
	}
	rows := []string{
		modalTitleStyle.Render("Result"),
		"",
		fmt.Sprintf("WPM       %d", res.FinalWPM),
		fmt.Sprintf("Accuracy  %d%%", res.Accuracy),
		fmt.Sprintf("Max WPM   %d", res.MaxWPM),
	}
	return modalStyle.Render(strings.Join(rows, "\n"))
}

func modeLabel(mode model.Mode) string {
	if mode.Finite() {
		return mode.String() + "s"
	}
	return mode.String()
}
