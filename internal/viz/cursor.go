package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/livingcore/internal/render"
)

const (
	cursorFrequency = 8.0
	cursorDamping   = 0.7
	outlineRadius   = 3.0
)

// Cursor is a dot that snaps to the pointer and an outline that follows it
// on a spring. Coordinates are canvas sub-pixels.
type Cursor struct {
	spring  harmonica.Spring
	X, Y    float64 // dot
	OX, OY  float64 // outline
	vx, vy  float64
	Visible bool
}

func NewCursor(fps int) *Cursor {
	return &Cursor{spring: harmonica.NewSpring(harmonica.FPS(fps), cursorFrequency, cursorDamping)}
}

// MoveTo places the dot. The first move also places the outline so it does
// not fly in from the corner.
func (c *Cursor) MoveTo(x, y float64) {
	if !c.Visible {
		c.OX, c.OY = x, y
	}
	c.X, c.Y = x, y
	c.Visible = true
}

// Update advances the outline one frame toward the dot.
func (c *Cursor) Update() {
	c.OX, c.vx = c.spring.Update(c.OX, c.vx, c.X)
	c.OY, c.vy = c.spring.Update(c.OY, c.vy, c.Y)
}

// Lag is the distance between the outline and the dot.
func (c *Cursor) Lag() float64 { return math.Hypot(c.X-c.OX, c.Y-c.OY) }

// Draw overlays the cursor onto the canvas.
func (c *Cursor) Draw(cv *render.Canvas, col colorful.Color) {
	if !c.Visible {
		return
	}
	cv.SetColor(int(c.X), int(c.Y), col)
	for i := 0; i < 12; i++ {
		a := float64(i) / 12 * 2 * math.Pi
		cv.SetColor(int(math.Round(c.OX+outlineRadius*math.Cos(a))), int(math.Round(c.OY+outlineRadius*math.Sin(a)*2)), col)
	}
}
