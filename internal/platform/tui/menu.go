package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/junkshot/internal/config"
	"github.com/vovakirdan/junkshot/internal/core"
)

type menuKind int

const (
	menuPlay menuKind = iota
	menuScoreboard
	menuSettings
	menuQuit
)

// MenuItem is a selectable entry in the main menu.
type MenuItem struct {
	kind       menuKind
	Difficulty string
	Title      string
	Detail     string
}

// MenuModel is the Bubble Tea model for the difficulty picker.
type MenuModel struct {
	items          []MenuItem
	cursor         int
	width          int
	height         int
	config         core.RuntimeConfig
	keyMapper      *KeyMapper
	quitting       bool
	selected       *MenuItem
	openScoreboard bool
	openSettings   bool
}

// NewMenuModel creates the menu with the cursor on the stored difficulty.
func NewMenuModel(deps Deps, cfg core.RuntimeConfig) MenuModel {
	deps = deps.withDefaults()
	table := deps.Config.Difficulties

	stored := ""
	if deps.Prefs != nil {
		stored = deps.Prefs.StoredDifficulty()
	}

	items := make([]MenuItem, 0, len(table)+3)
	cursor := 0
	for _, name := range table.Names() {
		if name == stored {
			cursor = len(items)
		}
		items = append(items, MenuItem{
			kind:       menuPlay,
			Difficulty: name,
			Title:      strings.ToUpper(name[:1]) + name[1:],
			Detail:     describeProfile(table.Lookup(name)),
		})
	}
	items = append(items,
		MenuItem{kind: menuScoreboard, Title: "High scores"},
		MenuItem{kind: menuSettings, Title: "Settings"},
		MenuItem{kind: menuQuit, Title: "Quit"},
	)

	return MenuModel{
		items:     items,
		cursor:    cursor,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}
}

func describeProfile(p config.DifficultyProfile) string {
	movement := p.Movement
	if movement == "" || movement == "none" {
		movement = "static"
	}
	lives := "lives"
	if p.Lives == 1 {
		lives = "life"
	}
	return fmt.Sprintf("%dx%d grid, %s, %ds, %d %s", p.GridSize, p.GridSize, movement, p.TimeLimit, p.Lives, lives)
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
	}
	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case MenuActionScoreboard:
		m.openScoreboard = true
	case MenuActionSettings:
		m.openSettings = true
	case MenuActionSelect:
		item := m.items[m.cursor]
		switch item.kind {
		case menuPlay:
			m.selected = &item
		case menuScoreboard:
			m.openScoreboard = true
		case menuSettings:
			m.openSettings = true
		case menuQuit:
			m.quitting = true
		}
	}
	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("J U N K S H O T"), m.width, len("J U N K S H O T")))
	b.WriteString("\n\n")
	b.WriteString(centerText("Shoot the trash that matches the category", m.width, 0))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := cursor + item.Title
		if item.Detail != "" {
			line = fmt.Sprintf("%-16s %s", line, detailStyle.Render(item.Detail))
		}
		b.WriteString(centerText(line, m.width, 48))
		b.WriteString("\n")
		if item.kind == menuPlay && i+1 < len(m.items) && m.items[i+1].kind != menuPlay {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(centerText("Up/Down: Navigate  |  Enter: Select  |  Tab: Scores  |  O: Settings  |  Q: Quit", m.width, 0))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen difficulty entry, or nil.
func (m MenuModel) Selected() *MenuItem { return m.selected }

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool { return m.quitting }

// WantsScoreboard returns true if user requested the scoreboard.
func (m MenuModel) WantsScoreboard() bool { return m.openScoreboard }

// WantsSettings returns true if user requested the settings screen.
func (m MenuModel) WantsSettings() bool { return m.openSettings }

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig { return m.config }

// centerText centers text within width. visible overrides the measured
// width when text carries escape sequences; zero means measure text.
func centerText(text string, width, visible int) string {
	if visible <= 0 {
		visible = lipgloss.Width(text)
	}
	if visible >= width {
		return text
	}
	return strings.Repeat(" ", (width-visible)/2) + text
}
