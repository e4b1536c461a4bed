package tui

import (
	"math"

	"github.com/vovakirdan/junkshot/internal/core"
	"github.com/vovakirdan/junkshot/internal/games/junkshot"
)

// Visible window of the front target plane, in world units.
const (
	worldMinX = -3.6
	worldMaxX = 3.6
	worldMinY = 0.6
	worldMaxY = 6.9
)

// viewport maps the front target plane onto the terminal play area.
// Row 0 holds the HUD and the last two rows hold status and help.
type viewport struct {
	area core.Rect
}

func newViewport(width, height int) viewport {
	return viewport{area: core.NewRect(0, 1, max(1, width), max(1, height-3))}
}

func (v viewport) scaleX() float64 { return float64(v.area.W) / (worldMaxX - worldMinX) }
func (v viewport) scaleY() float64 { return float64(v.area.H) / (worldMaxY - worldMinY) }

// toScreen converts a point on the front plane to a cell.
func (v viewport) toScreen(x, y float64) (int, int) {
	sx := v.area.X + int(math.Round((x-worldMinX)*v.scaleX()))
	sy := v.area.Y + int(math.Round((worldMaxY-y)*v.scaleY()))
	return sx, sy
}

// toWorld converts a cell back to the front plane.
func (v viewport) toWorld(sx, sy int) (float64, float64) {
	x := worldMinX + float64(sx-v.area.X)/v.scaleX()
	y := worldMaxY - float64(sy-v.area.Y)/v.scaleY()
	return clampAim(x, y)
}

func clampAim(x, y float64) (float64, float64) {
	return core.ClampF(x, worldMinX, worldMaxX), core.ClampF(y, worldMinY, worldMaxY)
}

// project returns where p appears on the front plane as seen from the
// camera, plus the apparent scale factor. Aiming at the returned point
// sends the shot ray through p.
func project(p core.Vec3) (x, y, scale float64) {
	cam := junkshot.Camera
	depth := cam.Z - p.Z
	if depth <= 0 {
		return p.X, p.Y, 1
	}
	scale = (cam.Z - junkshot.BaseDistance) / depth
	return cam.X + (p.X-cam.X)*scale, cam.Y + (p.Y-cam.Y)*scale, scale
}

// targetRect is the on-screen box of a placed target.
func (v viewport) targetRect(pt junkshot.PlacedTarget) core.Rect {
	x, y, scale := project(pt.Position)
	cx, cy := v.toScreen(x, y)
	halfW := max(1, int(pt.Half*scale*v.scaleX()))
	halfH := max(1, int(pt.Half*scale*v.scaleY()))
	return core.NewRect(cx-halfW, cy-halfH, 2*halfW+1, 2*halfH+1)
}
