package junkshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/junkshot/internal/catalog"
	"github.com/vovakirdan/junkshot/internal/config"
	"github.com/vovakirdan/junkshot/internal/core"
	"github.com/vovakirdan/junkshot/internal/highscore"
	"github.com/vovakirdan/junkshot/internal/loop"
)

type staticCatalog struct {
	items []catalog.Item
	err   error
	loads int
}

func (c *staticCatalog) Load(context.Context) ([]catalog.Item, error) {
	c.loads++
	return c.items, c.err
}

type fakeScores struct {
	best      int
	submitted []int
}

func (f *fakeScores) Best(context.Context, string) int { return f.best }

func (f *fakeScores) Submit(_ context.Context, _ string, score int) highscore.SaveResult {
	f.submitted = append(f.submitted, score)
	if score > f.best {
		f.best = score
		return highscore.SaveResult{Updated: true, Score: score}
	}
	return highscore.SaveResult{Score: f.best}
}

type storedDifficulty string

func (s storedDifficulty) StoredDifficulty() string { return string(s) }

type panicFeedback struct{ NopFeedback }

func (panicFeedback) Play(s Sound) {
	if s == SoundGunshot {
		panic("speaker on fire")
	}
}

type harness struct {
	t        *testing.T
	session  *Session
	sched    *loop.Manual
	scores   *fakeScores
	catalog  *staticCatalog
	feedback *recordingFeedback
	events   []Event
}

// organicPool yields 3 correct and 6 incorrect targets on an easy grid.
func organicPool() []catalog.Item {
	return []catalog.Item{
		{ID: "peel", Category: "organic"},
		{ID: "core", Category: "organic"},
		{ID: "shell", Category: "organic"},
		{ID: "cup", Category: "inorganic"},
		{ID: "wrap", Category: "inorganic"},
		{ID: "straw", Category: "inorganic"},
		{ID: "can", Category: "recyclable"},
		{ID: "jar", Category: "recyclable"},
		{ID: "battery", Category: "hazardous"},
	}
}

func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		sched:    loop.NewManual(),
		scores:   &fakeScores{},
		catalog:  &staticCatalog{items: organicPool()},
		feedback: &recordingFeedback{},
	}
	gameplay := config.DefaultGameplay()
	gameplay.Categories = []string{"organic"}
	opts := Options{
		Scheduler:    h.sched,
		Catalog:      h.catalog,
		HighScores:   h.scores,
		Feedback:     h.feedback,
		Gameplay:     gameplay,
		Difficulties: config.DefaultDifficulties(),
		Seed:         3,
	}
	if mutate != nil {
		mutate(&opts)
	}
	h.session = NewSession(opts)
	h.session.OnEvent(func(e Event) { h.events = append(h.events, e) })
	return h
}

// startRoundWithInput starts the game and runs through the prompt and
// spawn settle of the first round.
func (h *harness) startRoundWithInput(difficulty string) {
	h.t.Helper()
	h.session.Start(context.Background(), difficulty)
	h.sched.Flush()
	h.sched.Advance(2*time.Second + 300*time.Millisecond)
	if !h.session.Snapshot().InputEnabled {
		h.t.Fatalf("input not enabled after settle: %+v", h.session.Snapshot())
	}
}

func (h *harness) shootAt(target PlacedTarget) {
	h.session.Shoot(core.RayThrough(Camera, target.Position))
	h.sched.Advance(200 * time.Millisecond)
}

func (h *harness) targets(correct bool) []PlacedTarget {
	var out []PlacedTarget
	for _, p := range h.session.Scene().Targets() {
		if p.Target.IsCorrect == correct {
			out = append(out, p)
		}
	}
	return out
}

func eventsOf[T Event](h *harness) []T {
	var out []T
	for _, e := range h.events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestSessionStartsFirstRound(t *testing.T) {
	h := newHarness(t, nil)
	h.session.Start(context.Background(), "easy")
	h.sched.Flush()

	st := h.session.Snapshot()
	if st.Phase != PhaseAwaitingPrompt || st.Round != 1 || st.Category != "organic" {
		t.Fatalf("snapshot = %+v, expected round 1 awaiting prompt", st)
	}
	if st.Lives != 3 || st.TimeRemaining != 60 || st.Score != 0 {
		t.Errorf("snapshot = %+v, expected easy profile values", st)
	}
	if st.Prompt != "Shoot all the ORGANIC trash!" {
		t.Errorf("Prompt = %q", st.Prompt)
	}
	if !h.feedback.music {
		t.Error("music not started")
	}

	// Shots during the prompt are ignored.
	h.session.Shoot(AimRay(0, 1.5))
	h.sched.Advance(time.Second)
	if n := len(eventsOf[ShotResolved](h)); n != 0 {
		t.Errorf("%d shots resolved during prompt, expected 0", n)
	}

	h.sched.Advance(time.Second)
	if h.session.Scene().Len() != 9 {
		t.Fatalf("scene has %d targets after prompt, expected 9", h.session.Scene().Len())
	}
	if h.session.Snapshot().InputEnabled {
		t.Error("input enabled before spawn settle")
	}
	h.sched.Advance(300 * time.Millisecond)
	if !h.session.Snapshot().InputEnabled {
		t.Error("input not enabled after spawn settle")
	}
	if h.catalog.loads != 1 {
		t.Errorf("catalog loaded %d times, expected 1", h.catalog.loads)
	}
}

func TestSessionClearingRoundAdvances(t *testing.T) {
	h := newHarness(t, nil)
	h.startRoundWithInput("easy")

	correct := h.targets(true)
	if len(correct) != 3 {
		t.Fatalf("%d correct targets, expected 3", len(correct))
	}
	for _, tg := range correct {
		h.shootAt(tg)
	}

	st := h.session.Snapshot()
	if st.Score != 300 {
		t.Errorf("Score = %d, expected 300", st.Score)
	}
	ended := eventsOf[RoundEnded](h)
	if len(ended) != 1 || ended[0].Reason != ReasonCleared {
		t.Fatalf("round ended events = %+v, expected one cleared", ended)
	}
	if st.Round != 2 || st.Phase != PhaseAwaitingPrompt {
		t.Errorf("snapshot = %+v, expected round 2 prompt", st)
	}
	if h.feedback.count(SoundRoundClear) != 1 {
		t.Errorf("round-clear cues = %d, expected 1", h.feedback.count(SoundRoundClear))
	}
	if h.catalog.loads != 1 {
		t.Errorf("catalog loaded %d times, expected once per session", h.catalog.loads)
	}
	if st.TimeRemaining != 60 {
		t.Errorf("TimeRemaining = %d, expected round timer reset", st.TimeRemaining)
	}
}

func TestSessionWrongTargetsEndGame(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Seed = 11 })
	h.scores.best = 50
	h.startRoundWithInput("easy")

	correct := h.targets(true)
	h.shootAt(correct[0]) // 100 points
	wrong := h.targets(false)[0]
	for i := 0; i < 3; i++ {
		h.shootAt(wrong)
	}

	select {
	case <-h.session.Done():
	default:
		t.Fatal("session not done after losing all lives")
	}
	sum := h.session.Summary()
	if sum.Reason != ReasonLives || sum.Score != 100 || sum.HighScore != 100 || !sum.NewBest {
		t.Errorf("Summary() = %+v", sum)
	}
	if len(h.scores.submitted) != 1 || h.scores.submitted[0] != 100 {
		t.Errorf("submitted = %v, expected [100]", h.scores.submitted)
	}
	if h.session.Scene().Len() != 0 {
		t.Error("scene not cleared at game over")
	}
	if h.feedback.stopped == 0 {
		t.Error("music not stopped at game over")
	}
	if n := len(eventsOf[GameOver](h)); n != 1 {
		t.Errorf("game over events = %d, expected 1", n)
	}

	// Terminal: further input changes nothing.
	before := len(h.events)
	h.shootAt(correct[1])
	h.session.Stop()
	h.sched.Advance(time.Minute)
	if len(h.events) != before {
		t.Errorf("events after game over: %v", h.events[before:])
	}
}

func TestSessionHighScoreKeepsPrevious(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.Difficulties = config.DefaultDifficulties()
	})
	h.scores.best = 900
	h.startRoundWithInput("hard")

	if h.session.Snapshot().HighScore != 900 {
		t.Errorf("HighScore = %d, expected loaded 900", h.session.Snapshot().HighScore)
	}
	h.shootAt(h.targets(false)[0]) // hard has one life

	sum := h.session.Summary()
	if sum.HighScore != 900 || sum.NewBest || sum.Reason != ReasonLives {
		t.Errorf("Summary() = %+v, expected previous best kept", sum)
	}
}

func TestSessionTimeoutDeductsLife(t *testing.T) {
	h := newHarness(t, nil)
	h.startRoundWithInput("easy")

	h.sched.Advance(60*time.Second - 2300*time.Millisecond)
	st := h.session.Snapshot()
	if st.Lives != 2 {
		t.Errorf("Lives = %d, expected 2 after timeout", st.Lives)
	}
	ended := eventsOf[RoundEnded](h)
	if len(ended) != 1 || ended[0].Reason != ReasonTimeout {
		t.Fatalf("round ended = %+v, expected timeout", ended)
	}
	if st.Round != 2 || st.TimeRemaining != 60 {
		t.Errorf("snapshot = %+v, expected round 2 with fresh timer", st)
	}

	// Two more timeouts exhaust the lives.
	h.sched.Advance(120 * time.Second)
	if sum := h.session.Summary(); sum.Reason != ReasonLives {
		t.Errorf("Summary().Reason = %q, expected lives", sum.Reason)
	}
}

func TestSessionTimeoutFailRoundKeepsLives(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Gameplay.TimeoutPolicy = config.TimeoutFailRound })
	h.startRoundWithInput("hard")

	h.sched.Advance(30 * time.Second)
	st := h.session.Snapshot()
	if st.Lives != 1 || st.GameOver {
		t.Errorf("snapshot = %+v, expected lives kept", st)
	}
	if st.Round != 2 {
		t.Errorf("Round = %d, expected next round", st.Round)
	}
}

func TestSessionScopedTimerEndsGame(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Gameplay.TimerScope = config.TimerScopeSession })
	h.startRoundWithInput("hard")

	// Hard targets move, so aim at fresh positions every shot.
	for i := 0; i < 32 && len(h.targets(true)) > 0; i++ {
		h.shootAt(h.targets(true)[0])
	}
	if h.session.Snapshot().Round != 2 {
		t.Fatalf("Round = %d, expected 2", h.session.Snapshot().Round)
	}

	h.sched.Advance(30 * time.Second)
	sum := h.session.Summary()
	if sum.Reason != ReasonTime {
		t.Errorf("Summary().Reason = %q, expected time", sum.Reason)
	}
	if sum.Score == 0 || len(h.scores.submitted) != 1 {
		t.Errorf("summary %+v submitted %v", sum, h.scores.submitted)
	}
}

func TestSessionStopDoesNotSubmit(t *testing.T) {
	h := newHarness(t, nil)
	h.startRoundWithInput("easy")

	h.session.Stop()
	h.sched.Flush()

	select {
	case <-h.session.Done():
	default:
		t.Fatal("session not done after Stop")
	}
	if h.session.Summary().Reason != ReasonQuit {
		t.Errorf("Reason = %q, expected quit", h.session.Summary().Reason)
	}
	if len(h.scores.submitted) != 0 {
		t.Errorf("submitted %v on quit", h.scores.submitted)
	}
	if h.sched.Pending() != 0 {
		t.Errorf("%d timers still scheduled after Stop", h.sched.Pending())
	}
}

func TestSessionContextCancelStops(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	h.session.Start(ctx, "easy")
	h.sched.Flush()

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.sched.Flush()
		select {
		case <-h.session.Done():
			if h.session.Summary().Reason != ReasonQuit {
				t.Errorf("Reason = %q, expected quit", h.session.Summary().Reason)
			}
			return
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatal("session did not stop after context cancel")
}

func TestSessionEmptyCatalogUsesPlaceholders(t *testing.T) {
	h := newHarness(t, nil)
	h.catalog.err = errors.New("offline")
	h.startRoundWithInput("easy")

	placed := h.session.Scene().Targets()
	if len(placed) != 9 {
		t.Fatalf("%d targets, expected 9 placeholders", len(placed))
	}
	for _, p := range placed {
		if !p.Target.IsCorrect || p.Target.Image != PlaceholderImage {
			t.Errorf("target %+v is not a placeholder", p.Target)
		}
	}

	// The failed load is not retried next round.
	for _, p := range placed {
		h.shootAt(p)
	}
	if h.session.Snapshot().Round != 2 || h.catalog.loads != 1 {
		t.Errorf("round=%d loads=%d, expected round 2 and a single load", h.session.Snapshot().Round, h.catalog.loads)
	}
}

func TestSessionRoundWithoutCorrectTargetsClears(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Gameplay.Categories = []string{"hazardous"} })
	h.catalog.items = []catalog.Item{{ID: "peel", Category: "organic"}, {ID: "cup", Category: "inorganic"}}
	h.session.Start(context.Background(), "easy")
	h.sched.Flush()
	h.sched.Advance(2300 * time.Millisecond)

	ended := eventsOf[RoundEnded](h)
	if len(ended) != 1 || ended[0].Reason != ReasonCleared {
		t.Fatalf("round ended = %+v, expected immediate clear", ended)
	}
	if h.session.Snapshot().Score != 0 {
		t.Error("empty round awarded points")
	}
}

func TestSessionPauseFreezesTimerAndInput(t *testing.T) {
	h := newHarness(t, nil)
	h.startRoundWithInput("easy")
	before := h.session.Snapshot().TimeRemaining

	h.session.Pause()
	h.sched.Advance(10 * time.Second)
	st := h.session.Snapshot()
	if !st.Paused || st.TimeRemaining != before || st.InputEnabled {
		t.Errorf("paused snapshot = %+v, expected frozen", st)
	}
	h.shootAt(h.targets(true)[0])
	if st := h.session.Snapshot(); st.Score != 0 {
		t.Error("shot accepted while paused")
	}

	h.session.Resume()
	h.sched.Advance(time.Second)
	st = h.session.Snapshot()
	if st.Paused || !st.InputEnabled || st.TimeRemaining != before-1 {
		t.Errorf("resumed snapshot = %+v", st)
	}
}

func TestSessionPanicEndsWithError(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Feedback = panicFeedback{} })
	h.startRoundWithInput("easy")

	h.shootAt(h.targets(true)[0])

	select {
	case <-h.session.Done():
	default:
		t.Fatal("session not done after panic")
	}
	if h.session.Summary().Reason != ReasonError {
		t.Errorf("Reason = %q, expected error", h.session.Summary().Reason)
	}
}

func TestSessionDebouncesRapidShots(t *testing.T) {
	h := newHarness(t, nil)
	h.startRoundWithInput("easy")

	correct := h.targets(true)
	h.session.Shoot(core.RayThrough(Camera, correct[0].Position))
	h.session.Shoot(core.RayThrough(Camera, correct[1].Position))
	h.sched.Flush()

	if n := len(eventsOf[ShotResolved](h)); n != 1 {
		t.Errorf("resolved %d shots, expected 1", n)
	}
	if h.session.Snapshot().Score != 100 {
		t.Errorf("Score = %d, expected 100", h.session.Snapshot().Score)
	}
}

func TestResolveDifficulty(t *testing.T) {
	tests := []struct {
		name      string
		stored    DifficultyStore
		requested string
		expected  string
	}{
		{"stored wins", storedDifficulty("hard"), "easy", "hard"},
		{"invalid stored skipped", storedDifficulty("nightmare"), "intermediate", "intermediate"},
		{"no preferences", nil, "hard", "hard"},
		{"nothing valid", storedDifficulty(""), "bogus", "easy"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession(Options{Scheduler: loop.NewManual(), Preferences: tc.stored})
			if got := s.ResolveDifficulty(tc.requested); got != tc.expected {
				t.Errorf("ResolveDifficulty(%q) = %q, expected %q", tc.requested, got, tc.expected)
			}
		})
	}
}

func TestSessionPauseAfterClearingShotHoldsNextRound(t *testing.T) {
	h := newHarness(t, nil)
	h.startRoundWithInput("easy")

	correct := h.targets(true)
	for _, tg := range correct[:len(correct)-1] {
		h.shootAt(tg)
	}
	last := correct[len(correct)-1]
	h.session.Shoot(core.RayThrough(Camera, last.Position))
	h.session.Pause()
	h.sched.Flush()

	h.sched.Advance(5 * time.Second)
	st := h.session.Snapshot()
	if !st.Paused || st.Round != 2 || st.TimeRemaining != 60 {
		t.Fatalf("snapshot = %+v, expected round 2 frozen at 60", st)
	}
	if st.Lives != 3 || h.session.Scene().Len() != 0 {
		t.Errorf("lives %d scene %d while paused, expected 3 and empty", st.Lives, h.session.Scene().Len())
	}

	h.session.Resume()
	h.sched.Advance(time.Second)
	st = h.session.Snapshot()
	if st.Paused || st.TimeRemaining != 59 {
		t.Errorf("resumed snapshot = %+v, expected clock running", st)
	}
	if h.session.Scene().Len() != 9 {
		t.Errorf("scene has %d targets after resume, expected 9", h.session.Scene().Len())
	}
	if !st.InputEnabled {
		t.Error("input not enabled after resume and settle")
	}
}

func TestSessionPauseBeforeFirstRound(t *testing.T) {
	h := newHarness(t, nil)
	h.session.Start(context.Background(), "easy")
	h.session.Pause()
	h.sched.Flush()

	h.sched.Advance(5 * time.Second)
	st := h.session.Snapshot()
	if !st.Paused || st.TimeRemaining != 60 || st.Lives != 3 {
		t.Fatalf("snapshot = %+v, expected frozen first round", st)
	}
	if n := len(eventsOf[TargetsSpawned](h)); n != 0 {
		t.Errorf("%d spawns while paused, expected 0", n)
	}

	h.session.Resume()
	h.sched.Advance(2 * time.Second)
	st = h.session.Snapshot()
	if st.TimeRemaining != 58 || h.session.Scene().Len() != 9 {
		t.Errorf("snapshot = %+v scene %d, expected running round", st, h.session.Scene().Len())
	}
}

func TestSessionCompleteRoundTwiceAppliesOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.startRoundWithInput("easy")
	before := h.session.Snapshot()

	h.sched.Post(func() {
		h.session.completeRound(ReasonCleared)
		h.session.completeRound(ReasonCleared)
	})
	h.sched.Flush()

	if n := len(eventsOf[RoundEnded](h)); n != 1 {
		t.Errorf("round ended events = %d, expected 1", n)
	}
	if n := len(eventsOf[RoundStarted](h)); n != 2 {
		t.Errorf("round started events = %d, expected 2", n)
	}
	st := h.session.Snapshot()
	if st.Round != 2 || st.Score != before.Score || st.Lives != before.Lives {
		t.Errorf("snapshot = %+v, expected round 2 with ledger unchanged", st)
	}
}

func TestSessionFinalHitRacesTimer(t *testing.T) {
	tests := []struct {
		name     string
		hitFirst bool
		reason   Reason
		lives    int
		score    int
	}{
		{name: "hit before last tick", hitFirst: true, reason: ReasonCleared, lives: 3, score: 300},
		{name: "last tick before hit", hitFirst: false, reason: ReasonTimeout, lives: 2, score: 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.startRoundWithInput("easy")

			correct := h.targets(true)
			h.shootAt(correct[0])
			h.shootAt(correct[1])
			// The round clock started at zero and runs out at 60s.
			h.sched.Advance(60*time.Second - 2700*time.Millisecond - 100*time.Millisecond)

			ray := core.RayThrough(Camera, correct[2].Position)
			if tt.hitFirst {
				h.session.Shoot(ray)
			} else {
				h.sched.After(150*time.Millisecond, func() { h.session.Shoot(ray) })
			}
			h.sched.Advance(300 * time.Millisecond)

			ended := eventsOf[RoundEnded](h)
			if len(ended) != 1 || ended[0].Reason != tt.reason {
				t.Fatalf("round ended = %+v, expected one %s", ended, tt.reason)
			}
			st := h.session.Snapshot()
			if st.Lives != tt.lives || st.Score != tt.score || st.Round != 2 {
				t.Errorf("snapshot = %+v, expected lives %d score %d", st, tt.lives, tt.score)
			}
		})
	}
}
