package junkshot

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/junkshot/internal/core"
)

// ShotOutcome describes one accepted shot.
type ShotOutcome struct {
	Hit       bool        `json:"hit"`
	IsCorrect bool        `json:"isCorrect"`
	Target    *TargetSpec `json:"target,omitempty"`
}

// ShotResolver turns rays into hit/miss outcomes against the scene.
type ShotResolver struct {
	scene    *Scene
	feedback Feedback
	now      func() time.Time
	cooldown time.Duration
	logger   *log.Logger

	enabled  bool
	category string
	lastShot time.Time
	fired    bool
}

// NewShotResolver creates a disabled resolver.
func NewShotResolver(scene *Scene, feedback Feedback, now func() time.Time, cooldown time.Duration, logger *log.Logger) *ShotResolver {
	if feedback == nil {
		feedback = NopFeedback{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ShotResolver{scene: scene, feedback: feedback, now: now, cooldown: cooldown, logger: logger}
}

// SetCategory sets the category hits are judged against.
func (r *ShotResolver) SetCategory(category string) { r.category = category }

// Enable starts accepting shots.
func (r *ShotResolver) Enable() { r.enabled = true }

// Disable drops all further shots until Enable.
func (r *ShotResolver) Disable() { r.enabled = false }

// Enabled reports whether shots are accepted.
func (r *ShotResolver) Enabled() bool { return r.enabled }

// Resolve fires a shot along ray. ok is false when the shot was dropped
// because input is disabled or the cooldown has not elapsed.
func (r *ShotResolver) Resolve(ray core.Ray) (ShotOutcome, bool) {
	if !r.enabled {
		return ShotOutcome{}, false
	}
	now := r.now()
	if r.fired && now.Sub(r.lastShot) < r.cooldown {
		return ShotOutcome{}, false
	}
	r.fired = true
	r.lastShot = now

	r.feedback.Play(SoundGunshot)

	obj, hit := r.scene.Raycast(ray, RayRange)
	if !hit {
		r.feedback.Play(SoundMiss)
		return ShotOutcome{}, true
	}
	target, ok := r.scene.Resolve(obj)
	if !ok {
		r.logger.Warn("hit object has no registered target", "object", obj.ID)
		r.feedback.Play(SoundMiss)
		return ShotOutcome{}, true
	}

	correct := Matches(target.Item(), r.category)
	if correct {
		r.feedback.Play(SoundHit)
		r.scene.Remove(target.ID)
	} else {
		r.feedback.Play(SoundMiss)
	}
	r.logger.Debug("shot resolved", "target", target.ID, "category", target.Category, "expected", r.category, "correct", correct)
	return ShotOutcome{Hit: true, IsCorrect: correct, Target: target}, true
}
