// Package gui opens a raylib window onto the living core.
package gui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/livingcore/internal/audio"
	"github.com/san-kum/livingcore/internal/core"
	"github.com/san-kum/livingcore/internal/input"
	"github.com/san-kum/livingcore/internal/logging"
	"github.com/san-kum/livingcore/internal/ticker"
	"go.uber.org/zap"
)

const (
	wheelStep = 100.0
	tiltStep  = 5.0
)

type App struct {
	Core   *core.Core
	Window *Window
	Title  string
	FPS    int

	// Audio, when set, takes the mute and track keys.
	Audio *audio.Controls

	relay       *ticker.Relay
	scrollY     float64
	beta, gamma float64
	onScreen    bool
	logger      *zap.Logger
}

// NewApp wires a core that was built with w as its renderer.
func NewApp(c *core.Core, w *Window, logger *zap.Logger) *App {
	a := &App{
		Core:   c,
		Window: w,
		Title:  "livingcore",
		FPS:    60,
		relay:  ticker.NewRelay(),
		logger: logging.OrNop(logger),
	}
	c.Attach(a.relay)
	w.Overlay = a.drawHUD
	return a
}

func initWindow(width, height int, title string, fps int) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(width), int32(height), title)
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

// Run opens the window and blocks until it is closed.
func (a *App) Run() {
	vp := a.Core.Input().Viewport()
	initWindow(vp.Width, vp.Height, a.Title, a.FPS)
	defer rl.CloseWindow()
	a.logger.Info("window open", zap.Int("width", vp.Width), zap.Int("height", vp.Height))

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			break
		}
		a.Update()
		a.relay.Fire(time.Now())
	}
}

// Update feeds this frame's window events to the input aggregator.
func (a *App) Update() {
	in := a.Core.Input()

	if rl.IsWindowResized() {
		a.Core.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
	}

	on := rl.IsCursorOnScreen()
	if on {
		m := rl.GetMousePosition()
		in.PointerMove(float64(m.X), float64(m.Y))
		if !a.onScreen && a.Audio != nil {
			a.Audio.Hover()
		}
	}
	a.onScreen = on

	if on && rl.IsMouseButtonPressed(rl.MouseLeftButton) && a.Audio != nil {
		a.Audio.Click()
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.scrollY = max(0, a.scrollY-float64(wheel)*wheelStep)
		in.Scroll(a.scrollY)
	}

	tilted := false
	if rl.IsKeyPressed(rl.KeyUp) {
		a.beta -= tiltStep
		tilted = true
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		a.beta += tiltStep
		tilted = true
	}
	if rl.IsKeyPressed(rl.KeyLeft) {
		a.gamma -= tiltStep
		tilted = true
	}
	if rl.IsKeyPressed(rl.KeyRight) {
		a.gamma += tiltStep
		tilted = true
	}
	if rl.IsKeyPressed(rl.KeyZero) {
		a.beta, a.gamma = 0, 0
		tilted = true
	}
	if tilted {
		in.Orientation(input.OrientationEvent{Beta: a.beta, Gamma: a.gamma, HasBeta: true, HasGamma: true})
	}

	if rl.IsKeyPressed(rl.KeyF) {
		in.SetFinePointer(!in.Viewport().FinePointer)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.Core.Rebuild(a.Core.Field().Len())
	}
	if a.Audio != nil {
		if rl.IsKeyPressed(rl.KeyM) {
			a.Audio.ToggleMute()
		}
		if rl.IsKeyPressed(rl.KeyN) {
			a.Audio.Next()
		}
		if rl.IsKeyPressed(rl.KeyP) {
			a.Audio.Prev()
		}
	}
}

func (a *App) drawHUD() {
	st := a.Core.LastStats()
	rl.DrawText("LIVING CORE", 20, 20, 20, ColAccent)
	rl.DrawText(fmt.Sprintf("%d points  %d fps", a.Core.Field().Len(), rl.GetFPS()), 20, 46, 10, ColText)

	repel := "repulsion off"
	if st.RepulsionActive {
		repel = fmt.Sprintf("repulsion on  %d repelled", st.Repelled)
	}
	rl.DrawText(repel, 20, 62, 10, ColText)
	rl.DrawText(fmt.Sprintf("scroll %.1f", st.ScrollVelocity), 20, 78, 10, ColText)

	if a.Audio != nil && a.Audio.Ambient != nil {
		ambient := a.Audio.Ambient
		audioState := "OFFLINE"
		if !ambient.Muted() {
			audioState = "ONLINE"
		}
		h := int32(rl.GetScreenHeight())
		rl.DrawText("AUDIO SYSTEM: "+audioState, 20, h-56, 10, ColText)
		if ambient.Current() > 0 {
			rl.DrawText(ambient.NowPlaying()+"  "+ambient.Label(), 20, h-40, 10, ColTextDim)
		}
	}
}
