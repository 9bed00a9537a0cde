package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/livingcore/internal/audio"
	"github.com/san-kum/livingcore/internal/core"
	"github.com/san-kum/livingcore/internal/frame"
	"github.com/san-kum/livingcore/internal/input"
	"github.com/san-kum/livingcore/internal/logging"
	"github.com/san-kum/livingcore/internal/render"
	"github.com/san-kum/livingcore/internal/ticker"
	"go.uber.org/zap"
)

const (
	// CellWidth and CellHeight are the assumed pixel size of a terminal
	// cell, used to turn cell coordinates into viewport pixels.
	CellWidth  = 8
	CellHeight = 16

	historyCapacity = 300
	wheelStep       = 100.0
	tiltStep        = 5.0
	defaultFPS      = 60
)

type TickMsg time.Time

// ParamsMsg swaps the integrator parameters, e.g. after a config reload.
type ParamsMsg frame.Params

type Options struct {
	Core     *core.Core
	Terminal *render.Terminal
	Sounds   *audio.SoundManager
	Ambient  *audio.System
	Variant  string
	Theme    Theme
	FPS      int
	GIFPath  string
	Logger   *zap.Logger

	// Controls takes the mute and track keys. Nil builds controls over
	// Sounds and Ambient that assume the caller drains both.
	Controls *audio.Controls
}

// Model runs the frame loop inside the bubbletea update loop. Mouse motion
// is the pointer, the wheel scrolls and arrow keys tilt.
type Model struct {
	core     *core.Core
	term     *render.Terminal
	relay    *ticker.Relay
	sounds   *audio.SoundManager
	ambient  *audio.System
	controls *audio.Controls
	cursor   *Cursor
	rec      *GIFRecorder
	logger   *zap.Logger

	variant       string
	theme         Theme
	fps           int
	gifPath       string
	width, height int
	cols, rows    int
	scrollY       float64
	beta, gamma   float64
	inCanvas      bool
	running       bool
	recording     bool
	showHelp      bool
	reloads       int
	displacement  []float64
	repelled      []float64
	now           func() time.Time
}

// NewModel attaches the core to a relay tick source fed by TickMsg.
func NewModel(opts Options) Model {
	fps := opts.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	theme := opts.Theme
	if theme.Name == "" {
		theme = ThemeVoid
	}
	gifPath := opts.GIFPath
	if gifPath == "" {
		gifPath = "livingcore.gif"
	}
	relay := ticker.NewRelay()
	opts.Core.Attach(relay)

	controls := opts.Controls
	if controls == nil {
		controls = audio.NewControls(opts.Sounds, opts.Ambient, nil, opts.Logger)
	}

	cols, rows := 80, 24
	if opts.Terminal != nil {
		cols, rows = opts.Terminal.Canvas().Width, opts.Terminal.Canvas().Height
	}

	return Model{
		core:         opts.Core,
		term:         opts.Terminal,
		relay:        relay,
		sounds:       opts.Sounds,
		ambient:      opts.Ambient,
		controls:     controls,
		cursor:       NewCursor(fps),
		rec:          &GIFRecorder{},
		logger:       logging.OrNop(opts.Logger),
		variant:      opts.Variant,
		theme:        theme,
		fps:          fps,
		gifPath:      gifPath,
		width:        cols + panelWidth,
		height:       rows + 1,
		cols:         cols,
		rows:         rows,
		running:      true,
		displacement: make([]float64, 0, historyCapacity),
		repelled:     make([]float64, 0, historyCapacity),
		now:          time.Now,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case ParamsMsg:
		m.core.SetParams(frame.Params(msg))
		m.reloads++
		m.logger.Info("parameters reloaded", zap.Int("reloads", m.reloads))
	case TickMsg:
		if m.running {
			m.step(time.Time(msg))
		}
		return m, m.tick()
	}
	return m, nil
}

// step fires one frame and records the panel history.
func (m *Model) step(now time.Time) {
	m.relay.Fire(now)
	st := m.core.LastStats()

	m.cursor.Update()
	if m.term != nil {
		m.cursor.Draw(m.term.Canvas(), m.theme.AccentColor())
		if m.recording {
			m.rec.Capture(m.term.Canvas())
		}
	}

	m.displacement = appendCapped(m.displacement, st.MaxDisplacement)
	m.repelled = appendCapped(m.repelled, float64(st.Repelled))
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	in := m.core.Input()
	switch msg.String() {
	case "q", "ctrl+c":
		if m.recording {
			m.stopRecording()
		}
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "?":
		m.showHelp = !m.showHelp
	case "t":
		m.theme = NextTheme(m.theme)
	case "up":
		m.tilt(-tiltStep, 0)
	case "down":
		m.tilt(tiltStep, 0)
	case "left":
		m.tilt(0, -tiltStep)
	case "right":
		m.tilt(0, tiltStep)
	case "0":
		m.beta, m.gamma = 0, 0
		in.Orientation(input.OrientationEvent{HasBeta: true, HasGamma: true})
	case "f":
		in.SetFinePointer(!in.Viewport().FinePointer)
	case "r":
		m.core.Rebuild(m.core.Field().Len())
	case "m":
		m.controls.ToggleMute()
	case "n":
		m.controls.Next()
	case "p":
		m.controls.Prev()
	case "g":
		if m.recording {
			m.stopRecording()
		} else {
			m.recording = true
		}
	}
	return m, nil
}

func (m *Model) stopRecording() {
	m.recording = false
	if err := m.rec.Save(m.gifPath); err != nil {
		m.logger.Warn("saving recording", zap.String("path", m.gifPath), zap.Error(err))
	}
}

// tilt nudges the emulated device orientation in degrees. The aggregator
// clamps what it receives; the model keeps a wider range so the keys feel
// like tipping a phone.
func (m *Model) tilt(dBeta, dGamma float64) {
	m.beta = clampFloat(m.beta+dBeta, -90, 90)
	m.gamma = clampFloat(m.gamma+dGamma, -90, 90)
	m.core.Input().Orientation(input.OrientationEvent{
		Beta: m.beta, Gamma: m.gamma, HasBeta: true, HasGamma: true,
	})
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	in := m.core.Input()
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scrollY = max(0, m.scrollY-wheelStep)
		in.Scroll(m.scrollY)
		return
	case tea.MouseButtonWheelDown:
		m.scrollY += wheelStep
		in.Scroll(m.scrollY)
		return
	}

	inside := msg.X >= 0 && msg.Y >= 0 && msg.X < m.cols && msg.Y < m.rows
	if inside {
		px := float64(msg.X*CellWidth + CellWidth/2)
		py := float64(msg.Y*CellHeight + CellHeight/2)
		in.PointerMove(px, py)
		m.cursor.MoveTo(float64(msg.X*2+1), float64(msg.Y*4+2))
		if !m.inCanvas && m.sounds != nil {
			m.sounds.Hover()
		}
	}
	m.inCanvas = inside

	if inside && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && m.sounds != nil {
		m.sounds.Click()
	}
}

// resize gives the canvas everything left of the panel.
func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.cols = max(w-panelWidth-1, 10)
	m.rows = max(h-1, 4)
	m.core.Resize(m.cols*CellWidth, m.rows*CellHeight)
}

func (m Model) status() string {
	switch {
	case m.recording:
		return StatusRecording.Render(fmt.Sprintf("● REC %d", m.rec.Frames()))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("LIVE")
}

func (m Model) View() string {
	canvasView := ""
	if m.term != nil {
		canvasView = canvasStyle.Render(m.term.View())
	}

	st := m.core.LastStats()
	vp := m.core.Input().Viewport()
	in := m.core.Input().State()
	var s strings.Builder

	s.WriteString(m.theme.header().Render("LIVING CORE") + "  " + m.status() + "\n")
	s.WriteString(m.theme.muted().Render(strings.ToUpper(m.variant)+" · "+LocalClock(m.now())+" IST") + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Points", fmt.Sprintf("%d", m.core.Field().Len()))
	row("Viewport", fmt.Sprintf("%dx%d", vp.Width, vp.Height))
	repel := "off"
	if st.RepulsionActive {
		repel = fmt.Sprintf("on · %d", st.Repelled)
	}
	row("Repulsion", repel)
	row("Scroll", fmt.Sprintf("%.2f", st.ScrollVelocity))
	row("Tilt", fmt.Sprintf("%+.2f %+.2f", in.TiltX, in.TiltY))
	row("Camera", fmt.Sprintf("%+.1f %+.1f", st.CameraX, st.CameraY))

	if len(m.displacement) > 1 {
		chart := asciigraph.Plot(m.displacement,
			asciigraph.Height(4),
			asciigraph.Width(panelWidth-10),
			asciigraph.Caption("max displacement"))
		s.WriteString(graphStyle.Foreground(m.theme.Accent).Render(chart) + "\n")
	}
	s.WriteString(m.theme.muted().Render("repelled ") + SparklineChart(m.repelled, panelWidth-14) + "\n\n")

	if m.ambient != nil {
		state := lipgloss.NewStyle().Foreground(m.theme.Muted).Render("OFFLINE")
		if !m.ambient.Muted() {
			state = lipgloss.NewStyle().Foreground(m.theme.Accent).Render("ONLINE")
		}
		s.WriteString("AUDIO SYSTEM: " + state + "\n")
		if m.ambient.Current() > 0 {
			s.WriteString(m.theme.muted().Render(m.ambient.NowPlaying()) + "\n")
			s.WriteString(m.theme.muted().Render(m.ambient.Label()) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("SP:Pause ←↑↓→:Tilt M:Mute Q:Quit\n?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.theme.panel().Render(s.String()))

	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Mouse    - Pointer (repels points)  ║
║  Wheel    - Scroll (spins the core)  ║
║  Arrows   - Tilt                     ║
║  0        - Level tilt               ║
║  F        - Fine/coarse pointer      ║
║  Space    - Pause/Resume             ║
║  R        - Rebuild field            ║
║  M        - Mute/unmute              ║
║  N / P    - Next/previous track      ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
