package viz

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	preloadDuration = 2 * time.Second
	preloadInterval = 20 * time.Millisecond
	// ReadyMessage replaces the status line once loading completes.
	ReadyMessage = "SYSTEM READY"
)

var StatusMessages = []string{
	"INITIALIZING CORE...",
	"LOADING 3D ASSETS...",
	"CONNECTING TO NEURAL NET...",
	"CALIBRATING OPTICS...",
	"SYNCHRONIZING DATA...",
	"SYSTEM ONLINE",
}

// Loader is the boot progress counter. Each step adds an even share of 100
// over the load time and sometimes a small random bump.
type Loader struct {
	Progress float64
	Status   string
	Done     bool
	rng      *rand.Rand
}

func NewLoader(rng *rand.Rand) *Loader {
	return &Loader{Status: StatusMessages[0], rng: rng}
}

func (l *Loader) increment() float64 {
	return 100 / float64(preloadDuration/preloadInterval)
}

func (l *Loader) Step() {
	if l.Done {
		return
	}
	l.Progress += l.increment()
	if l.rng.Float64() > 0.8 {
		l.Progress += 2
	}
	if l.Progress >= 100 {
		l.Progress = 100
		l.Status = ReadyMessage
		l.Done = true
		return
	}
	whole := int(math.Floor(l.Progress))
	if whole%20 == 0 && whole < 90 {
		l.Status = StatusMessages[(whole/20)%len(StatusMessages)]
	}
}

type preloadTickMsg time.Time

// PreloadDoneMsg is sent once the loader has shown SYSTEM READY.
type PreloadDoneMsg struct{}

// Preloader shows the loader, then hands over to next.
type Preloader struct {
	loader *Loader
	bar    progress.Model
	next   tea.Model
	theme  Theme
	width  int
	height int
	// hold keeps SYSTEM READY on screen briefly before the hand-off.
	hold time.Duration
}

func NewPreloader(next tea.Model, theme Theme, seed int64) Preloader {
	return Preloader{
		loader: NewLoader(rand.New(rand.NewSource(seed))),
		bar:    progress.New(progress.WithGradient(string(theme.Accent), "#ffffff"), progress.WithoutPercentage(), progress.WithWidth(40)),
		next:   next,
		theme:  theme,
		hold:   500 * time.Millisecond,
	}
}

func preloadTick() tea.Cmd {
	return tea.Tick(preloadInterval, func(t time.Time) tea.Msg { return preloadTickMsg(t) })
}

func (p Preloader) Init() tea.Cmd { return preloadTick() }

func (p Preloader) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return p, tea.Quit
		}
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		if p.next != nil {
			// Forward so the next model knows its size on hand-off.
			next, _ := p.next.Update(msg)
			p.next = next
		}
	case preloadTickMsg:
		p.loader.Step()
		if p.loader.Done {
			return p, tea.Tick(p.hold, func(time.Time) tea.Msg { return PreloadDoneMsg{} })
		}
		return p, preloadTick()
	case PreloadDoneMsg:
		if p.next == nil {
			return p, tea.Quit
		}
		return p.next, p.next.Init()
	}
	return p, nil
}

func (p Preloader) View() string {
	pct := fmt.Sprintf("%d%%", int(math.Floor(p.loader.Progress)))
	body := lipgloss.JoinVertical(lipgloss.Center,
		p.theme.header().Render(pct),
		p.bar.ViewAs(p.loader.Progress/100),
		p.theme.muted().Render(p.loader.Status),
	)
	if p.width == 0 || p.height == 0 {
		return body
	}
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, body)
}
