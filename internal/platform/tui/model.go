package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/junkshot/internal/core"
	"github.com/vovakirdan/junkshot/internal/games/junkshot"
	"github.com/vovakirdan/junkshot/internal/loop"
	"github.com/vovakirdan/junkshot/internal/prefs"
)

const (
	flashDuration  = 600 * time.Millisecond
	muzzleDuration = 120 * time.Millisecond
	stopWait       = time.Second
	eventBuffer    = 128
)

// eventMsg carries a session event to the model.
type eventMsg struct {
	run *gameRun
	ev  junkshot.Event
}

// soundMsg carries a feedback cue.
type soundMsg struct {
	run   *gameRun
	sound junkshot.Sound
}

// musicMsg reports the background music state.
type musicMsg struct {
	run *gameRun
	on  bool
}

// gameRun owns one session and the loop it runs on.
type gameRun struct {
	loop    *loop.Loop
	session *junkshot.Session
	msgs    chan tea.Msg
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// termFeedback turns feedback cues into messages for the view.
type termFeedback struct {
	run      *gameRun
	settings prefs.Settings
}

func (f termFeedback) Play(sound junkshot.Sound) {
	if f.settings.SFXVolume > 0 {
		f.run.post(soundMsg{run: f.run, sound: sound})
	}
}

func (f termFeedback) StartMusic() { f.run.post(musicMsg{run: f.run, on: f.settings.MusicVolume > 0}) }
func (f termFeedback) StopMusic()  { f.run.post(musicMsg{run: f.run, on: false}) }

func (r *gameRun) post(msg tea.Msg) {
	select {
	case r.msgs <- msg:
	default:
	}
}

// listen waits for the next message from the run.
func (r *gameRun) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-r.msgs:
			return msg
		case <-r.done:
			return nil
		}
	}
}

func (r *gameRun) stop() {
	select {
	case <-r.done:
		return
	default:
	}
	if r.ctx.Err() == nil {
		r.session.Stop()
		select {
		case <-r.session.Done():
		case <-time.After(stopWait):
		}
	}
	r.cancel()
	r.loop.Close()
	close(r.done)
}

// GameModel runs one gallery session in the terminal.
type GameModel struct {
	deps       Deps
	config     core.RuntimeConfig
	difficulty string
	settings   prefs.Settings
	screen     *core.Screen
	keyMapper  *KeyMapper
	inputFrame core.InputFrame
	run        *gameRun

	aimX, aimY  float64
	flash       string
	flashColor  core.Color
	flashUntil  time.Time
	muzzleUntil time.Time
	music       bool
	summary     *junkshot.Summary

	quitting   bool
	backToMenu bool
}

// NewGameModel creates a game for difficulty using the stored settings.
// Nothing runs until Init.
func NewGameModel(deps Deps, cfg core.RuntimeConfig, difficulty string) GameModel {
	settings := prefs.DefaultSettings()
	if deps.Prefs != nil {
		settings = deps.Prefs.Load().Settings
	}
	return newGameModel(deps, cfg, difficulty, settings)
}

func newGameModel(deps Deps, cfg core.RuntimeConfig, difficulty string, settings prefs.Settings) GameModel {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	m := GameModel{
		deps:       deps.withDefaults(),
		config:     cfg,
		difficulty: difficulty,
		settings:   settings,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		keyMapper:  NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
		aimX:       0,
		aimY:       junkshot.BaseHeight,
	}
	m.run = m.newRun()
	return m
}

func (m GameModel) newRun() *gameRun {
	parent := m.deps.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	logger := m.deps.logger()
	run := &gameRun{
		loop:   loop.New(logger),
		msgs:   make(chan tea.Msg, eventBuffer),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	run.session = junkshot.NewSession(junkshot.Options{
		Scheduler:    run.loop,
		Catalog:      m.deps.Catalog,
		HighScores:   m.deps.Scores,
		Feedback:     termFeedback{run: run, settings: m.settings},
		Preferences:  m.deps.preferences(),
		Logger:       logger,
		Gameplay:     m.deps.Config.Gameplay,
		Difficulties: m.deps.Config.Difficulties,
		Seed:         m.config.Seed,
	})
	run.session.OnEvent(func(ev junkshot.Event) { run.post(eventMsg{run: run, ev: ev}) })
	return run
}

// Init starts the session and the redraw loop.
func (m GameModel) Init() tea.Cmd {
	go m.run.loop.Run(m.run.ctx)
	m.run.session.Start(m.run.ctx, m.difficulty)
	return tea.Batch(m.run.listen(), tickCmd(m.config.TickRate))
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil
	case TickMsg:
		return m.handleTick()
	case eventMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.handleEvent(msg.ev)
		return m, m.run.listen()
	case soundMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.handleSound(msg.sound)
		return m, m.run.listen()
	case musicMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.music = msg.on
		return m, m.run.listen()
	}
	return m, nil
}

func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.run.stop()
		m.quitting = true
		return m, tea.Quit
	}
	if m.inputFrame.Has(core.ActionBack) && (m.summary != nil || m.run.session.Snapshot().Paused) {
		m.run.stop()
		m.backToMenu = true
	}
	return m, nil
}

func (m GameModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.aimX, m.aimY = newViewport(m.screen.Width(), m.screen.Height()).toWorld(msg.X, msg.Y)
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		m.inputFrame.Set(core.ActionFire)
	}
	return m, nil
}

// aimStep is how far one key press moves the crosshair.
func (m GameModel) aimStep() float64 {
	return 0.1 + 0.4*float64(m.settings.Sensitivity)/100
}

func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	if m.backToMenu || m.quitting {
		return m, nil
	}

	if m.summary == nil {
		select {
		case <-m.run.session.Done():
			summary := m.run.session.Summary()
			m.summary = &summary
		default:
		}
	}

	if m.summary != nil {
		if m.inputFrame.Has(core.ActionRestart) {
			m.run.stop()
			m.summary = nil
			m.flash = ""
			m.config.Seed = time.Now().UnixNano()
			m.run = m.newRun()
			m.inputFrame.Clear()
			cmd := m.Init()
			return m, cmd
		}
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	step := m.aimStep()
	if m.inputFrame.Has(core.ActionAimLeft) {
		m.aimX -= step
	}
	if m.inputFrame.Has(core.ActionAimRight) {
		m.aimX += step
	}
	if m.inputFrame.Has(core.ActionAimUp) {
		m.aimY += step
	}
	if m.inputFrame.Has(core.ActionAimDown) {
		m.aimY -= step
	}
	m.aimX, m.aimY = clampAim(m.aimX, m.aimY)

	if m.inputFrame.Has(core.ActionPause) {
		if m.run.session.Snapshot().Paused {
			m.run.session.Resume()
		} else {
			m.run.session.Pause()
		}
	}
	if m.inputFrame.Has(core.ActionFire) {
		m.run.session.Shoot(junkshot.AimRay(m.aimX, m.aimY))
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

func (m *GameModel) setFlash(text string, c core.Color) {
	m.flash = text
	m.flashColor = c
	m.flashUntil = time.Now().Add(flashDuration)
}

func (m *GameModel) handleEvent(ev junkshot.Event) {
	switch e := ev.(type) {
	case junkshot.ShotResolved:
		switch {
		case !e.Outcome.Hit:
			m.setFlash("Missed.", core.ColorGray)
		case e.Outcome.IsCorrect:
			m.setFlash(fmt.Sprintf("+ %s", e.Outcome.Target.Name), core.ColorBrightGreen)
		default:
			m.setFlash(fmt.Sprintf("x %s is %s", e.Outcome.Target.Name, e.Outcome.Target.Category), core.ColorBrightRed)
		}
	case junkshot.RoundEnded:
		switch e.Reason {
		case junkshot.ReasonCleared:
			m.setFlash(fmt.Sprintf("Round %d cleared!", e.Round), core.ColorBrightYellow)
		case junkshot.ReasonTimeout:
			m.setFlash("Out of time.", core.ColorOrange)
		}
	case junkshot.GameOver:
		summary := e.Summary
		m.summary = &summary
	}
}

func (m *GameModel) handleSound(s junkshot.Sound) {
	if s == junkshot.SoundGunshot {
		m.muzzleUntil = time.Now().Add(muzzleDuration)
	}
}

// View renders the gallery.
func (m GameModel) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}
	m.draw(m.run.session.Snapshot(), m.run.session.Scene().Targets(), time.Now())
	return RenderScreen(m.screen)
}

func (m GameModel) draw(st junkshot.State, targets []junkshot.PlacedTarget, now time.Time) {
	s := m.screen
	s.Clear()
	w, h := s.Width(), s.Height()
	vp := newViewport(w, h)

	lives := strings.Repeat("♥", max(0, st.Lives))
	hud := fmt.Sprintf(" %s  R%d  Score %d  Best %d  %s  %ds", strings.ToUpper(st.Difficulty), st.Round, st.Score, st.HighScore, lives, st.TimeRemaining)
	if m.music {
		hud += "  ♪"
	}
	s.DrawTextColored(0, 0, hud, core.ColorBrightWhite)
	if st.Category != "" {
		label := "Shoot: " + strings.ToUpper(st.Category)
		s.DrawTextColored(w-len(label)-1, 0, label, core.ColorCyan)
	}

	for _, pt := range targets {
		r := vp.targetRect(pt)
		s.DrawBox(r, core.ColorWhite)
		name := pt.Target.Name
		if inner := r.W - 2; inner > 0 && len(name) > inner {
			name = name[:inner]
		}
		s.DrawTextColored(r.X+(r.W-len(name))/2, r.Y+r.H/2, name, core.ColorBrightWhite)
	}

	if st.Phase == junkshot.PhaseAwaitingPrompt && st.Prompt != "" {
		s.DrawTextCentered(vp.area.Y+vp.area.H/2, st.Prompt, core.ColorBrightYellow)
	}

	cx, cy := vp.toScreen(m.aimX, m.aimY)
	crossColor := core.ColorBrightRed
	if !st.InputEnabled {
		crossColor = core.ColorGray
	}
	cross := '+'
	if now.Before(m.muzzleUntil) {
		cross = '*'
	}
	s.SetColored(cx, cy, cross, crossColor)

	if m.flash != "" && now.Before(m.flashUntil) {
		s.DrawTextCentered(h-2, m.flash, m.flashColor)
	}
	if st.Paused {
		s.DrawTextCentered(vp.area.Y+vp.area.H/2, "PAUSED - p resume, b menu", core.ColorBrightYellow)
	}
	if m.summary != nil {
		m.drawSummary(vp)
	}
	s.DrawTextCentered(h-1, "arrows aim  space fire  p pause  q quit", core.ColorGray)
}

func (m GameModel) drawSummary(vp viewport) {
	s := m.screen
	sum := m.summary
	lines := []string{
		"GAME OVER",
		"",
		fmt.Sprintf("Score: %d", sum.Score),
		fmt.Sprintf("Best:  %d", sum.HighScore),
		fmt.Sprintf("Rounds: %d", sum.Rounds),
	}
	if sum.NewBest {
		lines = append(lines, "", "New best!")
	}
	lines = append(lines, "", "r replay  b menu  q quit")

	boxW := 30
	boxH := len(lines) + 2
	r := core.NewRect((s.Width()-boxW)/2, vp.area.Y+max(0, (vp.area.H-boxH)/2), boxW, boxH)
	s.DrawRect(r, ' ', core.ColorDefault)
	s.DrawBox(r, core.ColorBrightYellow)
	for i, line := range lines {
		c := core.ColorBrightWhite
		if i == 0 || line == "New best!" {
			c = core.ColorBrightYellow
		}
		s.DrawTextColored(r.X+(boxW-len(line))/2, r.Y+1+i, line, c)
	}
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool { return m.quitting }

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool { return m.backToMenu }

// Summary returns the final result once the game is over.
func (m GameModel) Summary() *junkshot.Summary { return m.summary }
