package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/junkshot/internal/catalog"
	"github.com/vovakirdan/junkshot/internal/config"
	"github.com/vovakirdan/junkshot/internal/core"
	"github.com/vovakirdan/junkshot/internal/games/junkshot"
	"github.com/vovakirdan/junkshot/internal/prefs"
	"github.com/vovakirdan/junkshot/internal/storage"
)

// ScoreLister lists the stored best score of every difficulty.
type ScoreLister interface {
	HighScores(ctx context.Context) ([]storage.HighScore, error)
}

// Deps are the collaborators shared by every screen.
type Deps struct {
	Config  config.Config
	Catalog catalog.Source
	Scores  junkshot.HighScores
	Board   ScoreLister  // Optional; the scoreboard falls back to Scores
	Prefs   *prefs.Store // Optional
	Logger  *log.Logger

	// Context, when set, ends running games once cancelled.
	Context context.Context
}

func (d Deps) withDefaults() Deps {
	if d.Config.Difficulties == nil {
		d.Config = config.DefaultConfig()
	}
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	return d
}

func (d Deps) logger() *log.Logger {
	if d.Logger == nil {
		return log.New(io.Discard)
	}
	return d.Logger
}

// preferences avoids handing the session a typed nil.
func (d Deps) preferences() junkshot.DifficultyStore {
	if d.Prefs == nil {
		return nil
	}
	return d.Prefs
}

type screen int

const (
	screenMenu screen = iota
	screenGame
	screenScores
	screenSettings
)

// AppModel manages the full flow: menu, game, scoreboard and settings.
// It is the top-level model for both local play and SSH sessions.
type AppModel struct {
	deps       Deps
	config     core.RuntimeConfig
	settings   prefs.Settings
	current    screen
	menu       MenuModel
	game       *GameModel
	scoreboard ScoreboardModel
	settingsUI SettingsModel
	quitting   bool
}

// NewAppModel creates the app. A valid difficulty starts a game right
// away; anything else opens the menu.
func NewAppModel(deps Deps, cfg core.RuntimeConfig, difficulty string) AppModel {
	deps = deps.withDefaults()
	settings := prefs.DefaultSettings()
	if deps.Prefs != nil {
		settings = deps.Prefs.Load().Settings
	}
	m := AppModel{
		deps:     deps,
		config:   cfg,
		settings: settings,
		menu:     NewMenuModel(deps, cfg),
	}
	if deps.Config.Difficulties.Valid(difficulty) {
		m.startGame(difficulty)
	}
	return m
}

// Init initializes the app.
func (m AppModel) Init() tea.Cmd {
	if m.current == screenGame {
		return m.game.Init()
	}
	return m.menu.Init()
}

// startGame remembers the choice and prepares a game. The caller must
// run the game's Init.
func (m *AppModel) startGame(difficulty string) {
	if m.deps.Prefs != nil {
		if err := m.deps.Prefs.SetDifficulty(difficulty); err != nil {
			m.deps.Logger.Warn("could not store difficulty", "err", err)
		}
	}
	game := newGameModel(m.deps, m.config, difficulty, m.settings)
	m.game = &game
	m.current = screenGame
}

// Update handles messages for the app.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.current {
	case screenGame:
		return m.updateGame(msg)
	case screenScores:
		return m.updateScoreboard(msg)
	case screenSettings:
		return m.updateSettings(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		m.menu = menu
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.menu.WantsScoreboard():
		m.scoreboard = NewScoreboardModel(m.deps, m.config.ScreenW, m.config.ScreenH)
		m.current = screenScores
		return m, m.scoreboard.Init()
	case m.menu.WantsSettings():
		m.settingsUI = NewSettingsModel(m.deps.Prefs, m.config.ScreenW)
		m.settingsUI.settings = m.settings
		m.current = screenSettings
		return m, m.settingsUI.Init()
	case m.menu.Selected() != nil:
		m.config = m.menu.Config()
		m.startGame(m.menu.Selected().Difficulty)
		return m, m.game.Init()
	}
	return m, cmd
}

func (m AppModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	if game, ok := next.(GameModel); ok {
		m.game = &game
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		m.game = nil
		return m.backToMenu()
	}
	return m, cmd
}

func (m AppModel) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scoreboard.Update(msg)
	if sb, ok := next.(ScoreboardModel); ok {
		m.scoreboard = sb
	}
	if m.scoreboard.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scoreboard.IsGoingBack() {
		return m.backToMenu()
	}
	return m, cmd
}

func (m AppModel) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.settingsUI.Update(msg)
	if s, ok := next.(SettingsModel); ok {
		m.settingsUI = s
	}
	if m.settingsUI.IsDone() {
		m.settings = m.settingsUI.Settings()
		return m.backToMenu()
	}
	return m, cmd
}

func (m AppModel) backToMenu() (tea.Model, tea.Cmd) {
	m.menu = NewMenuModel(m.deps, m.config)
	m.current = screenMenu
	return m, m.menu.Init()
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.current {
	case screenGame:
		return m.game.View()
	case screenScores:
		return m.scoreboard.View()
	case screenSettings:
		return m.settingsUI.View()
	default:
		return m.menu.View()
	}
}

// Run starts the app in the local terminal.
func Run(deps Deps, cfg core.RuntimeConfig, difficulty string) error {
	p := tea.NewProgram(
		NewAppModel(deps, cfg, difficulty),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
