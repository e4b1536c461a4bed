package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/junkshot/internal/config"
	"github.com/vovakirdan/junkshot/internal/storage"
)

// Scoreboard layout constants
const (
	minWidthForSidebar = 80 // Minimum width to show the profile sidebar
	sidebarWidth       = 24
	loadTimeout        = 3 * time.Second
)

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Reload key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Reload, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Reload},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "prev difficulty"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next difficulty"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// scoreRow is the best score of one difficulty.
type scoreRow struct {
	difficulty string
	score      int
	updatedAt  time.Time
}

// ScoreboardModel lists the best score of every difficulty.
type ScoreboardModel struct {
	deps        Deps
	rows        []scoreRow
	loadErr     error
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewScoreboardModel creates a scoreboard and loads the current bests.
func NewScoreboardModel(deps Deps, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		deps:        deps.withDefaults(),
		keys:        DefaultScoreboardKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	m.loadScores()
	return m
}

func (m *ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Difficulty", Width: 14},
		{Title: "Best", Width: 8},
		{Title: "Updated", Width: 18},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, min(len(m.deps.Config.Difficulties)+1, m.height-8))),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// loadScores fills one row per configured difficulty, zero when unplayed.
func (m *ScoreboardModel) loadScores() {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	names := m.deps.Config.Difficulties.Names()
	byName := make(map[string]scoreRow, len(names))
	m.loadErr = nil

	switch {
	case m.deps.Board != nil:
		stored, err := m.deps.Board.HighScores(ctx)
		if err != nil {
			m.loadErr = err
		}
		for _, hs := range stored {
			byName[hs.Difficulty] = scoreRow{difficulty: hs.Difficulty, score: hs.Score, updatedAt: hs.UpdatedAt}
		}
	case m.deps.Scores != nil:
		for _, name := range names {
			byName[name] = scoreRow{difficulty: name, score: m.deps.Scores.Best(ctx, name)}
		}
	}

	m.rows = make([]scoreRow, 0, len(names))
	for _, name := range names {
		row, ok := byName[name]
		if !ok {
			row = scoreRow{difficulty: name}
		}
		m.rows = append(m.rows, row)
	}
	m.updateTableRows()
}

func (m *ScoreboardModel) updateTableRows() {
	rows := make([]table.Row, len(m.rows))
	for i, r := range m.rows {
		updated := "-"
		if !r.updatedAt.IsZero() {
			updated = r.updatedAt.Local().Format("Jan 02 15:04")
		}
		rows[i] = table.Row{r.difficulty, fmt.Sprintf("%d", r.score), updated}
	}
	m.table.SetRows(rows)
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, nil
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil
		case key.Matches(msg, m.keys.Reload):
			m.loadScores()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		cursor := m.table.Cursor()
		m.table = m.createTable()
		m.updateTableRows()
		m.table.SetCursor(cursor)
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("HIGH SCORES"), m.width, 0))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	tableRendered := tableStyle.Render(m.table.View())

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tableRendered, "  ", m.renderSidebar()))
	} else {
		b.WriteString(tableRendered)
	}
	b.WriteString("\n")

	if m.loadErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		b.WriteString(errStyle.Render("Could not load scores: " + m.loadErr.Error()))
		b.WriteString("\n")
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// renderSidebar shows the profile of the highlighted difficulty.
func (m ScoreboardModel) renderSidebar() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return style.Render("No difficulty selected")
	}
	name := m.rows[cursor].difficulty
	p := m.deps.Config.Difficulties.Lookup(name)
	return style.Render(profileLines(name, p))
}

func profileLines(name string, p config.DifficultyProfile) string {
	movement := p.Movement
	if movement == "" {
		movement = "none"
	}
	return strings.Join([]string{
		strings.ToUpper(name),
		strings.Repeat("-", sidebarWidth-4),
		fmt.Sprintf("Grid      %dx%d", p.GridSize, p.GridSize),
		fmt.Sprintf("Movement  %s", movement),
		fmt.Sprintf("Time      %ds", p.TimeLimit),
		fmt.Sprintf("Lives     %d", p.Lives),
	}, "\n")
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool { return m.goingBack }

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool { return m.quitting }

var _ ScoreLister = (*storage.Store)(nil)
