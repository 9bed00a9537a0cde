package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/livingcore/internal/audio"
	"github.com/san-kum/livingcore/internal/config"
	"github.com/san-kum/livingcore/internal/core"
	"github.com/san-kum/livingcore/internal/gui"
	"github.com/san-kum/livingcore/internal/logging"
	"github.com/san-kum/livingcore/internal/render"
	"github.com/san-kum/livingcore/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	variant   string
	particles int
	seed      int64
	frameRate int
	workers   int

	withSound bool
	watch     bool
	themeName string
	gifPath   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "livingcore",
		Short:        "an interactive particle core for the terminal and the desktop",
		SilenceUsage: true,
		RunE:         runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&variant, "variant", "", "cloud or mesh")
	rootCmd.PersistentFlags().IntVar(&particles, "particles", 0, "cloud size (0 picks from the viewport)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 is random)")
	rootCmd.PersistentFlags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 1, "goroutines per frame step")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the core in the terminal",
		RunE:  runLive,
	}
	addLiveFlags(liveCmd)
	addLiveFlags(rootCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the core in a desktop window",
		RunE:  runGUI,
	}
	guiCmd.Flags().BoolVar(&withSound, "sound", false, "start with audio on")

	rootCmd.AddCommand(liveCmd, guiCmd, newRunCmd(), newSweepCmd(), newListCmd(), newPlotCmd(), newExportJSONCmd(),
		newBenchCmd(), newSfxCmd(), newContactCmd(), newPresetsCmd(), newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addLiveFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&withSound, "sound", false, "start with audio on")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload integrator parameters when the config file changes")
	cmd.Flags().StringVar(&themeName, "theme", "void", "panel theme")
	cmd.Flags().StringVar(&gifPath, "gif", "livingcore.gif", "where g saves recordings")
}

// loadConfig resolves defaults, then the preset, then the config file, then
// flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w: %s (available: %v)", err, preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("variant") {
		cfg.Variant = variant
	}
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("fps") || cfg.FPS <= 0 {
		cfg.FPS = frameRate
	}
	if flags.Lookup("sound") != nil && flags.Changed("sound") {
		cfg.Audio.Muted = !withSound
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	return logging.New(verbose)
}

// audioStack builds the interaction sounds, the ambient system and the
// controls over them. The device output opens on the first unmute; stop
// closes it and releases the open track.
func audioStack(cfg *config.Config, logger *zap.Logger) (controls *audio.Controls, stop func()) {
	sounds := audio.NewSoundManager(audio.SampleRate, cfg.Audio.MasterGain, cfg.Seed)
	ambient := audio.NewSystem(audio.SampleRate, audio.SystemOptions{
		Tracks:    cfg.Audio.Tracks,
		Open:      audio.DirOpener(cfg.Audio.MusicDir),
		MusicGain: cfg.Audio.MusicGain,
		Drone:     cfg.Audio.Drone,
	}, logger)

	out := audio.NewOutput(audioMix(sounds, ambient), logger)
	controls = audio.NewControls(sounds, ambient, out.Start, logger)
	if !cfg.Audio.Muted {
		controls.ToggleMute()
	}
	return controls, func() {
		out.Stop()
		ambient.Close()
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	// stderr belongs to the terminal UI, so the live view logs to a file.
	logger, err := logging.ToFile(filepath.Join(dataDir, "livingcore.log"), verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts.CellWidth, opts.CellHeight = viz.CellWidth, viz.CellHeight
	cols, rows := opts.Viewport.Width/viz.CellWidth, opts.Viewport.Height/viz.CellHeight
	term := render.NewTerminal(cols, rows)
	c := core.New(opts, term, logger)

	controls, closeAudio := audioStack(cfg, logger)
	defer closeAudio()

	model := viz.NewModel(viz.Options{
		Core:     c,
		Terminal: term,
		Sounds:   controls.Sounds,
		Ambient:  controls.Ambient,
		Controls: controls,
		Variant:  cfg.Variant,
		Theme:    viz.GetTheme(themeName),
		FPS:      cfg.FPS,
		GIFPath:  gifPath,
		Logger:   logger,
	})
	p := tea.NewProgram(viz.NewPreloader(model, viz.GetTheme(themeName), cfg.Seed),
		tea.WithAltScreen(), tea.WithMouseAllMotion())

	if watch && configFile != "" {
		w, err := config.NewWatcher(configFile, func(next *config.Config) {
			p.Send(viz.ParamsMsg(next.Integrator))
		}, logger)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	_, err = p.Run()
	return err
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	win := gui.NewWindow(opts.Viewport.Width, opts.Viewport.Height)
	c := core.New(opts, win, logger)

	app := gui.NewApp(c, win, logger)
	app.FPS = cfg.FPS
	var closeAudio func()
	app.Audio, closeAudio = audioStack(cfg, logger)
	defer closeAudio()

	app.Run()
	return nil
}

// interruptible returns a context cancelled on Ctrl-C.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
