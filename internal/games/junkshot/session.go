package junkshot

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vovakirdan/junkshot/internal/catalog"
	"github.com/vovakirdan/junkshot/internal/config"
	"github.com/vovakirdan/junkshot/internal/core"
	"github.com/vovakirdan/junkshot/internal/countdown"
	"github.com/vovakirdan/junkshot/internal/highscore"
	"github.com/vovakirdan/junkshot/internal/loop"
)

// submitTimeout bounds the final score upload.
const submitTimeout = 5 * time.Second

// Phase is the orchestration state of a Session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingPrompt
	PhaseTargetsActive
	PhaseRoundResolved
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingPrompt:
		return "awaiting_prompt"
	case PhaseTargetsActive:
		return "targets_active"
	case PhaseRoundResolved:
		return "round_resolved"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// HighScores reads and records the best score per difficulty.
// Implementations swallow their own failures.
type HighScores interface {
	Best(ctx context.Context, difficulty string) int
	Submit(ctx context.Context, difficulty string, score int) highscore.SaveResult
}

// DifficultyStore exposes a persisted difficulty choice.
type DifficultyStore interface {
	StoredDifficulty() string
}

// Options configures a Session.
type Options struct {
	Scheduler    loop.Scheduler
	Catalog      catalog.Source
	HighScores   HighScores
	Feedback     Feedback
	Preferences  DifficultyStore // Optional
	Logger       *log.Logger
	Gameplay     config.Gameplay
	Difficulties config.DifficultyTable
	Seed         int64 // 0 picks a time-based seed
}

// State is a point-in-time copy of a session for renderers.
type State struct {
	ID               string                   `json:"id"`
	Difficulty       string                   `json:"difficulty"`
	Profile          config.DifficultyProfile `json:"profile"`
	Score            int                      `json:"score"`
	Lives            int                      `json:"lives"`
	TimeRemaining    int                      `json:"timeRemaining"`
	Category         string                   `json:"category"`
	Prompt           string                   `json:"prompt,omitempty"`
	CorrectRemaining int                      `json:"correctRemaining"`
	RoundActive      bool                     `json:"roundActive"`
	InputEnabled     bool                     `json:"inputEnabled"`
	Paused           bool                     `json:"paused"`
	GameOver         bool                     `json:"gameOver"`
	HighScore        int                      `json:"highScore"`
	Round            int                      `json:"round"`
	Phase            Phase                    `json:"phase"`
	Reason           Reason                   `json:"reason,omitempty"`
}

// Session orchestrates one game from difficulty selection to game over.
type Session struct {
	id       string
	opts     Options
	sched    loop.Scheduler
	logger   *log.Logger
	feedback Feedback
	rng      *rand.Rand

	ledger   *Ledger
	timer    *countdown.Timer
	scene    *Scene
	resolver *ShotResolver

	// Loop-owned state.
	ctx              context.Context
	difficulty       string
	profile          config.DifficultyProfile
	pool             []catalog.Item
	poolLoaded       bool
	phase            Phase
	round            int
	category         string
	correctRemaining int
	roundActive      bool
	paused           bool
	inputHeld        bool     // input was enabled when the game paused
	held             []func() // round steps that came due while paused
	clockRunning     bool     // the countdown should run when not paused
	gameOver         bool
	reason           Reason
	finished         bool
	highScore        int
	pending          []loop.Cancel

	mu        sync.RWMutex
	snap      State
	summary   Summary
	observers []func(Event)
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession wires a session. Nothing runs until Start.
func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Feedback == nil {
		opts.Feedback = NopFeedback{}
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Embedded{}
	}
	if opts.Difficulties == nil {
		opts.Difficulties = config.DefaultDifficulties()
	}
	opts.Gameplay = opts.Gameplay.Normalize()
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		id:       uuid.NewString(),
		opts:     opts,
		sched:    opts.Scheduler,
		logger:   opts.Logger,
		feedback: opts.Feedback,
		rng:      rand.New(rand.NewSource(seed)),
		ctx:      context.Background(),
		done:     make(chan struct{}),
	}
	s.logger = s.logger.With("session", s.id[:8])
	s.ledger = NewLedger(s.logger)
	s.timer = countdown.New(s.sched, s.logger)
	s.scene = NewScene(s.sched.Now)
	s.resolver = NewShotResolver(s.scene, s.feedback, s.sched.Now, opts.Gameplay.ShotCooldown, s.logger)

	s.ledger.OnScore(func(score int) { s.emit(ScoreChanged{Score: score}) })
	s.ledger.OnLives(func(lives int) { s.emit(LivesChanged{Lives: lives}) })
	s.timer.OnTick(func(remaining int) { s.emit(TimeChanged{Remaining: remaining}) })
	s.timer.OnFinish(s.guard(s.onTimerFinish))
	s.publish()
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Scene exposes the target registry for renderers.
func (s *Session) Scene() *Scene { return s.scene }

// Done is closed once the game is over.
func (s *Session) Done() <-chan struct{} { return s.done }

// Summary returns the final result. Valid after Done is closed.
func (s *Session) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// OnEvent registers an observer. Observers run on the loop and must not block.
func (s *Session) OnEvent(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Start begins the game. requested is used when no valid difficulty is
// stored in preferences. Cancelling ctx stops the session.
func (s *Session) Start(ctx context.Context, requested string) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.sched.Post(s.guard(func() { s.begin(ctx, requested) }))

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				s.Stop()
			case <-s.done:
			}
		}()
	}
}

// Shoot fires along ray.
func (s *Session) Shoot(ray core.Ray) {
	s.sched.Post(s.guard(func() { s.handleShot(ray) }))
}

// Pause freezes the countdown and input.
func (s *Session) Pause() {
	s.sched.Post(s.guard(s.pause))
}

// Resume undoes Pause.
func (s *Session) Resume() {
	s.sched.Post(s.guard(s.resume))
}

// Stop ends the session without submitting a score.
func (s *Session) Stop() {
	s.sched.Post(s.guard(func() { s.endGame(ReasonQuit) }))
}

// ResolveDifficulty picks the stored preference, then requested, then the default.
func (s *Session) ResolveDifficulty(requested string) string {
	table := s.opts.Difficulties
	if s.opts.Preferences != nil {
		if stored := s.opts.Preferences.StoredDifficulty(); table.Valid(stored) {
			return stored
		}
	}
	if table.Valid(requested) {
		return requested
	}
	return config.DefaultDifficulty
}

func (s *Session) begin(ctx context.Context, requested string) {
	if s.phase != PhaseIdle {
		return
	}
	s.ctx = ctx
	s.difficulty = s.ResolveDifficulty(requested)
	s.profile = s.opts.Difficulties.Lookup(s.difficulty)
	s.phase = PhaseAwaitingPrompt
	s.logger.Info("game starting", "difficulty", s.difficulty, "grid", s.profile.GridSize, "time", s.profile.TimeLimit, "lives", s.profile.Lives)

	s.ledger.Init(s.profile)
	s.timer.Reset(s.profile.TimeLimit)

	difficulty := s.difficulty
	best := 0
	s.offLoop(func() {
		if s.opts.HighScores != nil {
			best = s.opts.HighScores.Best(ctx, difficulty)
		}
	}, func() {
		if s.gameOver {
			return
		}
		s.highScore = max(s.highScore, best)
		s.emit(HighScoreLoaded{HighScore: s.highScore})

		s.feedback.StartMusic()
		if s.opts.Gameplay.TimerScope == config.TimerScopeSession {
			s.startClock()
		}
		s.startRound()
	})
}

// startRound loads the pool if needed and announces the next category.
func (s *Session) startRound() {
	if s.gameOver {
		return
	}
	if !s.poolLoaded {
		s.loadPool(s.startRound)
		return
	}

	s.round++
	categories := s.opts.Gameplay.Categories
	s.category = categories[s.rng.Intn(len(categories))]
	s.correctRemaining = 0
	s.resolver.SetCategory(s.category)
	s.roundActive = true
	s.phase = PhaseAwaitingPrompt

	if s.opts.Gameplay.TimerScope == config.TimerScopeRound {
		s.startClock()
	}

	s.logger.Debug("round started", "round", s.round, "category", s.category)
	s.emit(RoundStarted{Round: s.round, Category: s.category, Prompt: promptText(s.category)})
	s.schedule(s.opts.Gameplay.PromptDuration, s.spawnRound)
}

// loadPool fetches the catalog off the loop once per session. A failure
// leaves the pool empty so rounds fall back to placeholder targets.
func (s *Session) loadPool(then func()) {
	ctx := s.ctx
	var (
		items []catalog.Item
		err   error
	)
	s.offLoop(func() {
		items, err = s.opts.Catalog.Load(ctx)
	}, func() {
		if err != nil {
			s.logger.Warn("catalog unavailable, using placeholder targets", "err", err)
			items = nil
		} else {
			s.logger.Debug("catalog loaded", "items", len(items))
		}
		s.pool = items
		s.poolLoaded = true
		then()
	})
}

func (s *Session) spawnRound() {
	if !s.roundActive || s.gameOver {
		return
	}

	targets := BuildRoundTargets(s.pool, s.category, s.profile.GridSize, s.rng)
	s.correctRemaining = 0
	for _, t := range targets {
		if t.IsCorrect {
			s.correctRemaining++
		}
	}
	s.scene.Spawn(targets, s.profile)
	s.phase = PhaseTargetsActive

	s.logger.Debug("targets spawned", "round", s.round, "targets", len(targets), "correct", s.correctRemaining)
	s.emit(TargetsSpawned{Round: s.round, Targets: s.scene.Targets(), CorrectRemaining: s.correctRemaining})
	s.schedule(s.opts.Gameplay.SpawnSettle, s.enableInput)
}

func (s *Session) enableInput() {
	if !s.roundActive || s.gameOver {
		return
	}
	s.resolver.Enable()
	s.emit(InputEnabled{Round: s.round})

	if s.correctRemaining == 0 {
		s.completeRound(ReasonCleared)
	}
}

func (s *Session) handleShot(ray core.Ray) {
	if !s.roundActive || s.gameOver {
		return
	}
	outcome, ok := s.resolver.Resolve(ray)
	if !ok {
		return
	}

	if outcome.Hit && outcome.IsCorrect {
		s.correctRemaining = max(0, s.correctRemaining-1)
	}
	s.emit(ShotResolved{Outcome: outcome, CorrectRemaining: s.correctRemaining})
	if !outcome.Hit {
		return
	}

	if outcome.IsCorrect {
		s.ledger.AddPoints(float64(s.opts.Gameplay.PointsPerHit))
		if s.correctRemaining == 0 {
			s.feedback.Play(SoundRoundClear)
			s.completeRound(ReasonCleared)
		}
		return
	}

	// A wrong target costs a life but the round goes on.
	if s.ledger.DeductLife() <= 0 {
		s.endGame(ReasonLives)
	}
}

func (s *Session) onTimerFinish() {
	if s.gameOver {
		return
	}
	if s.opts.Gameplay.TimerScope == config.TimerScopeSession {
		s.endGame(ReasonTime)
		return
	}
	if !s.roundActive {
		return
	}
	if s.opts.Gameplay.TimeoutPolicy == config.TimeoutDeductLife {
		if s.ledger.DeductLife() <= 0 {
			s.endGame(ReasonLives)
			return
		}
	}
	s.completeRound(ReasonTimeout)
}

// completeRound ends the active round. Calls after the round is resolved
// are ignored.
func (s *Session) completeRound(reason Reason) {
	if !s.roundActive {
		return
	}
	s.roundActive = false
	s.cancelPending()
	s.resolver.Disable()
	s.inputHeld = false
	s.scene.Clear()
	if s.opts.Gameplay.TimerScope == config.TimerScopeRound {
		s.stopClock()
	}
	if !s.gameOver {
		s.phase = PhaseRoundResolved
	}

	s.logger.Debug("round ended", "round", s.round, "reason", reason, "score", s.ledger.Score())
	s.emit(RoundEnded{Round: s.round, Reason: reason})

	if !s.gameOver {
		s.sched.Post(s.guard(s.startRound))
	}
}

// endGame is terminal. Only the first call has any effect.
func (s *Session) endGame(reason Reason) {
	if s.gameOver {
		return
	}
	s.gameOver = true
	s.reason = reason
	s.phase = PhaseGameOver

	s.completeRound(reason)
	s.cancelPending()
	s.stopClock()
	s.feedback.StopMusic()
	s.resolver.Disable()
	s.scene.Clear()

	final := s.ledger.Score()
	s.logger.Info("game over", "reason", reason, "score", final, "difficulty", s.difficulty)

	// Quitting, or quitting before a difficulty was chosen, records nothing.
	if reason == ReasonQuit || s.difficulty == "" || s.opts.HighScores == nil {
		s.finish(final, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), submitTimeout)
	difficulty := s.difficulty
	var res highscore.SaveResult
	s.offLoop(func() {
		defer cancel()
		res = s.opts.HighScores.Submit(ctx, difficulty, final)
	}, func() {
		s.logger.Debug("score submitted", "updated", res.Updated, "stored", res.Score)
		s.finish(final, res.Updated)
	})
}

func (s *Session) finish(final int, updated bool) {
	if s.finished {
		return
	}
	s.finished = true
	defer s.closeOnce.Do(func() { close(s.done) })

	previous := s.highScore
	s.highScore = max(s.highScore, final)
	summary := Summary{
		Difficulty: s.difficulty,
		Score:      final,
		HighScore:  s.highScore,
		Rounds:     s.round,
		Reason:     s.reason,
		NewBest:    updated || (final > previous && final > 0),
	}

	s.mu.Lock()
	s.summary = summary
	s.mu.Unlock()

	s.emit(GameOver{Summary: summary})
}

func (s *Session) pause() {
	if s.gameOver || s.paused {
		return
	}
	s.paused = true
	s.timer.Pause()
	s.inputHeld = s.resolver.Enabled()
	s.resolver.Disable()
	s.emit(PauseChanged{Paused: true})
}

func (s *Session) resume() {
	if s.gameOver || !s.paused {
		return
	}
	s.paused = false
	if s.clockRunning {
		s.timer.Resume()
	}
	if s.inputHeld && s.roundActive {
		s.resolver.Enable()
	}
	s.inputHeld = false
	s.emit(PauseChanged{Paused: false})

	held := s.held
	s.held = nil
	for _, fn := range held {
		if s.paused || s.gameOver {
			return
		}
		fn()
	}
}

// startClock restarts the countdown at the full limit. While paused the
// timer is only reset; resume starts it.
func (s *Session) startClock() {
	s.clockRunning = true
	if s.paused {
		s.timer.Reset(s.profile.TimeLimit)
		return
	}
	s.timer.Start(s.profile.TimeLimit)
}

func (s *Session) stopClock() {
	s.clockRunning = false
	s.timer.Pause()
}

// offLoop runs work off the loop and afterwards posts then back onto it.
// A panicking work function is logged and then still runs.
func (s *Session) offLoop(work func(), then func()) {
	s.sched.Go(func() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Warn("background task panicked", "panic", r)
				}
			}()
			work()
		}()
		s.sched.Post(s.guard(then))
	})
}

// schedule runs fn after d unless the round ends first. A step that
// comes due while paused waits for resume.
func (s *Session) schedule(d time.Duration, fn func()) {
	s.pending = append(s.pending, s.sched.After(d, s.guard(func() {
		if s.paused {
			s.held = append(s.held, fn)
			return
		}
		fn()
	})))
}

func (s *Session) cancelPending() {
	for _, cancel := range s.pending {
		cancel()
	}
	s.pending = nil
	s.held = nil
}

// guard wraps a loop step so a panic ends the game instead of the loop.
func (s *Session) guard(fn func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("game step panicked", "panic", r)
				s.fail(fmt.Errorf("panic: %v", r))
			}
		}()
		fn()
	}
}

func (s *Session) fail(err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("game over after failure panicked", "panic", r, "cause", err)
			s.closeOnce.Do(func() { close(s.done) })
		}
	}()
	if s.gameOver {
		// Failed while shutting down: report what we have.
		s.finish(s.ledger.Score(), false)
		return
	}
	s.endGame(ReasonError)
}

func (s *Session) emit(ev Event) {
	s.publish()

	s.mu.RLock()
	observers := append([]func(Event){}, s.observers...)
	s.mu.RUnlock()

	for _, fn := range observers {
		safeNotify(s.logger, ev.Kind(), func() { fn(ev) })
	}
}

func (s *Session) publish() {
	st := State{
		ID:               s.id,
		Difficulty:       s.difficulty,
		Profile:          s.profile,
		Score:            s.ledger.Score(),
		Lives:            s.ledger.Lives(),
		TimeRemaining:    s.timer.Remaining(),
		Category:         s.category,
		CorrectRemaining: s.correctRemaining,
		RoundActive:      s.roundActive,
		InputEnabled:     s.resolver.Enabled(),
		Paused:           s.paused,
		GameOver:         s.gameOver,
		HighScore:        s.highScore,
		Round:            s.round,
		Phase:            s.phase,
		Reason:           s.reason,
	}
	if s.phase == PhaseAwaitingPrompt && s.category != "" {
		st.Prompt = promptText(s.category)
	}

	s.mu.Lock()
	s.snap = st
	s.mu.Unlock()
}
