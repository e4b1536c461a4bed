package junkshot

import (
	"math"
	"testing"
	"time"

	"github.com/vovakirdan/junkshot/internal/config"
	"github.com/vovakirdan/junkshot/internal/core"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func specs(n int) []TargetSpec {
	out := make([]TargetSpec, n)
	for i := range out {
		out[i] = TargetSpec{ID: string(rune('a' + i)), Category: "organic", IsCorrect: true}
	}
	return out
}

func TestSceneGridLayout(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewScene(clock.Now)
	s.Spawn(specs(9), config.LookupDifficulty(config.DifficultyEasy))

	placed := s.Targets()
	if len(placed) != 9 {
		t.Fatalf("Targets() len = %d, expected 9", len(placed))
	}

	tests := []struct {
		index   int
		x, y, z float64
	}{
		{0, -1.5, 1.5, -5},
		{1, 0, 1.5, -5},
		{5, 1.5, 3, -4.75},
		{6, -1.5, 4.5, -4.5},
	}
	for _, tc := range tests {
		p := placed[tc.index].Position
		if math.Abs(p.X-tc.x) > 1e-9 || math.Abs(p.Y-tc.y) > 1e-9 || math.Abs(p.Z-tc.z) > 1e-9 {
			t.Errorf("target %d at %+v, expected (%v, %v, %v)", tc.index, p, tc.x, tc.y, tc.z)
		}
	}
}

func TestSceneRaycastResolvesToRoot(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewScene(clock.Now)
	s.Spawn(specs(9), config.LookupDifficulty(config.DifficultyEasy))

	obj, ok := s.Raycast(AimRay(0, 1.5), RayRange)
	if !ok {
		t.Fatal("expected center shot to hit")
	}
	if obj.Parent == nil {
		t.Error("raycast should return a child collider")
	}
	target, ok := s.Resolve(obj)
	if !ok || target.ID != "b" {
		t.Errorf("Resolve() = %v, %v, expected target b", target, ok)
	}

	if _, ok := s.Raycast(AimRay(0.75, 1.5), RayRange); ok {
		t.Error("shot between columns should miss")
	}
}

func TestSceneRaycastPicksNearest(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewScene(clock.Now)
	s.Spawn(specs(9), config.LookupDifficulty(config.DifficultyEasy))

	// Looking straight down the z axis through column 1: rows sit at
	// different heights, so only the lowest row is on this line.
	ray := core.Ray{Origin: core.V3(0, 1.5, 4), Dir: core.V3(0, 0, -1)}
	obj, ok := s.Raycast(ray, RayRange)
	if !ok {
		t.Fatal("expected hit")
	}
	target, _ := s.Resolve(obj)
	if target.ID != "b" {
		t.Errorf("hit %s, expected b", target.ID)
	}
	if obj.ID != "b/image" {
		t.Errorf("nearest collider = %s, expected the image in front of the outline", obj.ID)
	}
}

func TestSceneRemoveAndClear(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewScene(clock.Now)
	s.Spawn(specs(9), config.LookupDifficulty(config.DifficultyEasy))

	obj, _ := s.Raycast(AimRay(0, 1.5), RayRange)
	if !s.Remove("b") {
		t.Fatal("Remove(b) = false")
	}
	if s.Remove("b") {
		t.Error("second Remove(b) should report false")
	}
	if _, ok := s.Raycast(AimRay(0, 1.5), RayRange); ok {
		t.Error("removed target still hittable")
	}
	if _, ok := s.Resolve(obj); ok {
		t.Error("removed target still resolvable")
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d, expected 0", s.Len())
	}
}

func TestSceneZigzagMotion(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewScene(clock.Now)
	profile := config.LookupDifficulty(config.DifficultyHard) // speed 1 -> 4s half period
	s.Spawn(specs(16), profile)

	row0 := s.Targets()[1] // base x = -0.75
	row1 := s.Targets()[5]
	if math.Abs(row0.Position.X-(-0.75-0.75)) > 1e-9 {
		t.Errorf("row 0 starts at x=%v, expected -1.5", row0.Position.X)
	}
	if math.Abs(row1.Position.X-(-0.75+0.75)) > 1e-9 {
		t.Errorf("row 1 starts at x=%v, expected 0 (opposite direction)", row1.Position.X)
	}

	clock.t = clock.t.Add(4 * time.Second)
	if x := s.Targets()[1].Position.X; math.Abs(x-0) > 1e-9 {
		t.Errorf("row 0 after half period at x=%v, expected 0", x)
	}
	clock.t = clock.t.Add(2 * time.Second)
	if x := s.Targets()[1].Position.X; math.Abs(x-(-0.75)) > 1e-9 {
		t.Errorf("row 0 on the way back at x=%v, expected -0.75", x)
	}

	// Slow targets never take less than the minimum duration.
	p := &placement{amplitude: 1, halfPeriod: MoveDurationMin}
	if got := p.position(MoveDurationMin / 2).X; math.Abs(got) > 1e-9 {
		t.Errorf("midpoint x = %v, expected 0", got)
	}
}
