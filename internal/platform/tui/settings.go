package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/junkshot/internal/prefs"
)

const settingsStep = 5

// SettingsKeyMap defines the key bindings for the settings screen.
type SettingsKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Less key.Binding
	More key.Binding
	Save key.Binding
	Back key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k SettingsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Less, k.More, k.Save, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k SettingsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Less, k.More}, {k.Save, k.Back}}
}

// DefaultSettingsKeyMap returns default key bindings.
func DefaultSettingsKeyMap() SettingsKeyMap {
	return SettingsKeyMap{
		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "prev")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "next")),
		Less: key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("left/-", "decrease")),
		More: key.NewBinding(key.WithKeys("right", "l", "+", "="), key.WithHelp("right/+", "increase")),
		Save: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Back: key.NewBinding(key.WithKeys("esc", "b", "q"), key.WithHelp("esc", "back")),
	}
}

type settingField struct {
	label string
	value *int
}

// SettingsModel edits sensitivity and volumes.
type SettingsModel struct {
	store    *prefs.Store // Optional; nil keeps changes in memory
	settings prefs.Settings
	cursor   int
	bar      progress.Model
	help     help.Model
	keys     SettingsKeyMap
	width    int
	status   string
	done     bool
}

// NewSettingsModel loads current settings from store.
func NewSettingsModel(store *prefs.Store, width int) SettingsModel {
	settings := prefs.DefaultSettings()
	if store != nil {
		settings = store.Load().Settings
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = min(40, max(10, width-30))
	return SettingsModel{
		store:    store,
		settings: settings,
		bar:      bar,
		help:     help.New(),
		keys:     DefaultSettingsKeyMap(),
		width:    width,
	}
}

func (m *SettingsModel) fields() []settingField {
	return []settingField{
		{"Aim sensitivity", &m.settings.Sensitivity},
		{"Music volume", &m.settings.MusicVolume},
		{"Effects volume", &m.settings.SFXVolume},
	}
}

// Init initializes the settings model.
func (m SettingsModel) Init() tea.Cmd { return nil }

// Update handles messages for the settings screen.
func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		fields := m.fields()
		switch {
		case key.Matches(msg, m.keys.Up):
			m.cursor = (m.cursor + len(fields) - 1) % len(fields)
		case key.Matches(msg, m.keys.Down):
			m.cursor = (m.cursor + 1) % len(fields)
		case key.Matches(msg, m.keys.Less):
			m.adjust(-settingsStep)
		case key.Matches(msg, m.keys.More):
			m.adjust(settingsStep)
		case key.Matches(msg, m.keys.Save):
			m.save()
		case key.Matches(msg, m.keys.Back):
			m.done = true
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(40, max(10, msg.Width-30))
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m *SettingsModel) adjust(delta int) {
	f := m.fields()[m.cursor]
	*f.value = prefs.Clamp(float64(*f.value + delta))
	m.status = ""
}

func (m *SettingsModel) save() {
	if m.store == nil {
		m.status = "Settings apply to this session only."
		return
	}
	stored, err := m.store.SaveSettings(m.settings)
	if err != nil {
		m.status = "Save failed: " + err.Error()
		return
	}
	m.settings = stored
	m.status = "Saved."
}

// View renders the settings screen.
func (m SettingsModel) View() string {
	if m.done {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("SETTINGS"), m.width, 0))
	b.WriteString("\n\n")

	for i, f := range m.fields() {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-16s %s %3d\n", cursor, f.label, m.bar.ViewAs(float64(*f.value)/100), *f.value))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dim.Render(m.help.View(m.keys)))
	return b.String()
}

// Settings returns the edited values.
func (m SettingsModel) Settings() prefs.Settings { return m.settings }

// IsDone returns true once the user leaves the screen.
func (m SettingsModel) IsDone() bool { return m.done }
