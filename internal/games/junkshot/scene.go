package junkshot

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/vovakirdan/junkshot/internal/config"
	"github.com/vovakirdan/junkshot/internal/core"
)

// Gallery geometry.
const (
	ColumnGap    = 1.5
	RowGap       = 1.5
	BaseHeight   = 1.5
	BaseDistance = -5.0
	RowDepthStep = 0.25
	TargetHalf   = 0.45 // Half-size of the 0.9 scaled target image
	OutlineHalf  = 0.5

	MoveAmplitude    = 0.75
	MoveDurationBase = 4 * time.Second
	MoveDurationMin  = 1200 * time.Millisecond

	// RayRange is how far a shot travels.
	RayRange = 100.0
)

// Camera is the shooter's eye position.
var Camera = core.V3(0, 1.2, 4)

// AimRay returns the shot ray from the camera through point (x, y) on the
// front row plane.
func AimRay(x, y float64) core.Ray {
	return core.RayThrough(Camera, core.V3(x, y, BaseDistance))
}

// Object is a node in the scene graph. Box is local to the root's position.
type Object struct {
	ID      string
	Parent  *Object
	Box     core.AABB
	Visible bool
}

// PlacedTarget is a renderer's view of a target at a given instant.
type PlacedTarget struct {
	Target   TargetSpec `json:"target"`
	Row      int        `json:"row"`
	Col      int        `json:"col"`
	Position core.Vec3  `json:"position"`
	Half     float64    `json:"half"`
}

type placement struct {
	root       *Object
	spec       TargetSpec
	row, col   int
	base       core.Vec3
	amplitude  float64 // signed; zero when static
	halfPeriod time.Duration
	colliders  []*Object
}

// position returns the root's world position at elapsed time since spawn.
// Moving targets sweep linearly from base-amplitude to base+amplitude and back.
func (p *placement) position(elapsed time.Duration) core.Vec3 {
	if p.amplitude == 0 || p.halfPeriod <= 0 {
		return p.base
	}
	cycle := float64(elapsed % (2 * p.halfPeriod))
	half := float64(p.halfPeriod)
	frac := cycle / half
	if frac > 1 {
		frac = 2 - frac
	}
	return p.base.Add(core.V3(-p.amplitude+2*p.amplitude*frac, 0, 0))
}

// Scene is the registry of live targets. It is safe for concurrent use so
// renderers can read it while the session mutates it.
type Scene struct {
	mu        sync.RWMutex
	now       func() time.Time
	spawnedAt time.Time
	byRoot    map[*Object]*placement
	order     []*placement
}

// NewScene creates an empty scene reading time from now.
func NewScene(now func() time.Time) *Scene {
	if now == nil {
		now = time.Now
	}
	return &Scene{now: now, byRoot: make(map[*Object]*placement)}
}

// Spawn replaces the scene contents with targets laid out on the profile's grid.
func (s *Scene) Spawn(targets []TargetSpec, profile config.DifficultyProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	s.spawnedAt = s.now()

	grid := max(1, profile.GridSize)
	offset := float64(grid-1) / 2
	halfPeriod := time.Duration(0)
	if profile.MovementSpeed > 0 {
		halfPeriod = max(MoveDurationMin, time.Duration(float64(MoveDurationBase)/profile.MovementSpeed))
	}

	for i, t := range targets {
		row, col := i/grid, i%grid
		root := &Object{ID: t.ID, Visible: true}
		p := &placement{
			root: root,
			spec: t,
			row:  row,
			col:  col,
			base: core.V3(
				(float64(col)-offset)*ColumnGap,
				BaseHeight+float64(row)*RowGap,
				BaseDistance+float64(row)*RowDepthStep,
			),
			halfPeriod: halfPeriod,
		}
		if halfPeriod > 0 {
			p.amplitude = MoveAmplitude
			if row%2 == 1 {
				p.amplitude = -MoveAmplitude
			}
		}
		origin := core.Vec3{}
		p.colliders = []*Object{
			{ID: t.ID + "/image", Parent: root, Box: core.BoxAround(origin, TargetHalf, TargetHalf, 0.01), Visible: true},
			{ID: t.ID + "/outline", Parent: root, Box: core.BoxAround(core.V3(0, 0, -0.01), OutlineHalf, OutlineHalf, 0.01), Visible: true},
		}
		s.byRoot[root] = p
		s.order = append(s.order, p)
	}
}

// Raycast returns the nearest visible collider hit by ray within maxDist.
func (s *Scene) Raycast(ray core.Ray, maxDist float64) (*Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elapsed := s.now().Sub(s.spawnedAt)
	var (
		best     *Object
		bestDist = math.Inf(1)
	)
	for _, p := range s.order {
		if !p.root.Visible {
			continue
		}
		pos := p.position(elapsed)
		for _, c := range p.colliders {
			if !c.Visible {
				continue
			}
			d, ok := c.Box.Translate(pos).IntersectRay(ray, maxDist)
			if ok && d < bestDist {
				best, bestDist = c, d
			}
		}
	}
	return best, best != nil
}

// Resolve walks obj's parents up to a registered target root.
func (s *Scene) Resolve(obj *Object) (*TargetSpec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for o := obj; o != nil; o = o.Parent {
		if p, ok := s.byRoot[o]; ok {
			spec := p.spec
			return &spec, true
		}
	}
	return nil, false
}

// Remove unregisters the target with the given ID.
func (s *Scene) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.order {
		if p.spec.ID != id {
			continue
		}
		p.root.Visible = false
		delete(s.byRoot, p.root)
		s.order = append(s.order[:i], s.order[i+1:]...)
		return true
	}
	return false
}

// Clear removes every target.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Scene) reset() {
	for _, p := range s.order {
		p.root.Visible = false
	}
	s.byRoot = make(map[*Object]*placement)
	s.order = nil
}

// Len returns the number of live targets.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Targets returns the live targets at their current positions, in grid order.
func (s *Scene) Targets() []PlacedTarget {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elapsed := s.now().Sub(s.spawnedAt)
	out := make([]PlacedTarget, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, PlacedTarget{
			Target:   p.spec,
			Row:      p.row,
			Col:      p.col,
			Position: p.position(elapsed),
			Half:     TargetHalf,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}
