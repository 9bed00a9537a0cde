package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gopxl/beep"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/livingcore/internal/audio"
	"github.com/san-kum/livingcore/internal/automation"
	"github.com/san-kum/livingcore/internal/config"
	"github.com/san-kum/livingcore/internal/contact"
	"github.com/san-kum/livingcore/internal/core"
	"github.com/san-kum/livingcore/internal/render"
	"github.com/san-kum/livingcore/internal/storage"
	"github.com/san-kum/livingcore/internal/ticker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func audioMix(sounds *audio.SoundManager, ambient *audio.System) beep.Streamer {
	return beep.Mix(sounds.Streamer(), ambient)
}

func newRunCmd() *cobra.Command {
	var (
		frames       int
		svgPath      string
		scenarioPath string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the core headless with scripted input and save the run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			scenario := automation.Default(frames)
			if scenarioPath != "" {
				if scenario, err = automation.LoadScenario(scenarioPath); err != nil {
					return err
				}
			}
			if err := scenario.Validate(); err != nil {
				return err
			}
			ctx, cancel := interruptible()
			defer cancel()
			return headlessRun(ctx, cfg, scenario, svgPath, logger)
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 600, "frames to run")
	cmd.Flags().StringVar(&svgPath, "svg", "", "write the last frame as SVG")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "scripted input (yaml); default orbits the pointer")
	return cmd
}

func headlessRun(ctx context.Context, cfg *config.Config, scenario *automation.Scenario, svgPath string, logger *zap.Logger) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	var r render.Renderer = &render.Discard{}
	var term *render.Terminal
	if svgPath != "" {
		opts.CellWidth, opts.CellHeight = 8, 16
		term = render.NewTerminal(opts.Viewport.Width/8, opts.Viewport.Height/16)
		r = term
	}
	c := core.New(opts, r, logger)
	rec := &storage.Recorder{}
	c.AddObserver(rec)

	src := ticker.NewManual()
	c.Attach(src)

	fmt.Printf("running %s core (%d points, scenario %s)...\n", cfg.Variant, c.Field().Len(), scenario.Name)
	start := time.Now()
	if _, err := scenario.Play(ctx, c, src, 1/float64(cfg.FPS)); err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Variant: cfg.Variant,
		Seed:    cfg.Seed,
		Points:  c.Field().Len(),
		FPS:     cfg.FPS,
		Width:   opts.Viewport.Width,
		Height:  opts.Viewport.Height,
		Params:  opts.Params,
		Metrics: rec.Metrics(),
	}, rec.Samples)
	if err != nil {
		return err
	}

	if term != nil {
		if err := os.WriteFile(svgPath, []byte(term.SVG(4)), 0644); err != nil {
			return err
		}
		fmt.Printf("svg: %s\n", svgPath)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", len(rec.Samples))
	fmt.Println("\nmetrics:")
	for name, val := range rec.Metrics() {
		fmt.Printf("  %s: %.4f\n", name, val)
	}
	return nil
}

func newSweepCmd() *cobra.Command {
	var (
		param        string
		lo, hi       float64
		steps        int
		frames       int
		scenarioPath string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "replay a scenario across a range of one integrator parameter",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := cfg.Options()
			if err != nil {
				return err
			}
			scenario := automation.Default(frames)
			if scenarioPath != "" {
				if scenario, err = automation.LoadScenario(scenarioPath); err != nil {
					return err
				}
			}

			ctx, cancel := interruptible()
			defer cancel()
			results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
				Param:    param,
				Min:      lo,
				Max:      hi,
				Steps:    steps,
				Scenario: scenario,
				Dt:       1 / float64(cfg.FPS),
				Workers:  runtime.NumCPU(),
			}, opts)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tPEAK DISP\tFINAL DISP\tMEAN REPELLED\n", strings.ToUpper(param))
			peaks := make([]float64, len(results))
			for i, r := range results {
				peaks[i] = r.Metrics["peak_displacement"]
				fmt.Fprintf(w, "%.4f\t%.3f\t%.3f\t%.1f\n", r.Value, peaks[i], r.Metrics["final_displacement"], r.Metrics["mean_repelled"])
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if len(peaks) > 1 {
				fmt.Println()
				fmt.Println(asciigraph.Plot(peaks, asciigraph.Height(8), asciigraph.Caption("peak displacement vs "+param)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&param, "param", "repel_strength", "parameter ("+strings.Join(automation.ParamNames(), ", ")+")")
	cmd.Flags().Float64Var(&lo, "min", 0, "first value")
	cmd.Flags().Float64Var(&hi, "max", 60, "last value")
	cmd.Flags().IntVar(&steps, "steps", 7, "values to try")
	cmd.Flags().IntVar(&frames, "frames", 300, "frames per value with the default scenario")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "scripted input (yaml)")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tVARIANT\tTIME\tPOINTS\tFRAMES\tPEAK DISP")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2f\n",
					run.ID,
					run.Variant,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Points,
					run.Frames,
					run.Metrics["peak_displacement"],
				)
			}
			return w.Flush()
		},
	}
}

func newPlotCmd() *cobra.Command {
	var columns []string
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			samples, err := st.LoadSamples(args[0])
			if err != nil {
				return err
			}
			if len(samples) == 0 {
				return fmt.Errorf("no data to plot")
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("variant: %s\n", meta.Variant)
			fmt.Printf("samples: %d\n\n", len(samples))

			for _, name := range columns {
				data, ok := storage.Column(samples, name)
				if !ok {
					return fmt.Errorf("unknown column: %s", name)
				}
				fmt.Println(asciigraph.Plot(data,
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(name),
				))
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&columns, "columns", []string{"displacement", "repelled", "scroll"}, "columns to plot")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			if out == "" {
				return st.ExportJSON(os.Stdout, args[0])
			}
			if err := st.ExportJSONFile(out, args[0]); err != nil {
				return err
			}
			fmt.Printf("exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

type benchResult struct {
	count   int
	points  int
	elapsed time.Duration
}

func newBenchCmd() *cobra.Command {
	var (
		counts []int
		frames int
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the frame loop across cloud sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := cfg.Options()
			if err != nil {
				return err
			}

			ctx, cancel := interruptible()
			defer cancel()
			scenario := automation.Default(frames)
			if err := scenario.Validate(); err != nil {
				return fmt.Errorf("bench needs --frames > 0: %w", err)
			}
			results := make([]benchResult, len(counts))
			g, ctx := errgroup.WithContext(ctx)
			g.SetLimit(runtime.NumCPU())
			for i, n := range counts {
				g.Go(func() error {
					o := opts
					o.Count = n
					c := core.New(o, &render.Discard{}, nil)
					src := ticker.NewManual()
					c.Attach(src)
					start := time.Now()
					if _, err := scenario.Play(ctx, c, src, 1.0/60); err != nil {
						return err
					}
					results[i] = benchResult{count: n, points: c.Field().Len(), elapsed: time.Since(start)}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			fmt.Printf("benchmarking %s over %d frames...\n\n", cfg.Variant, frames)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "POINTS\tTOTAL\tPER FRAME\tFPS")
			for _, r := range results {
				per := r.elapsed / time.Duration(scenario.Frames())
				fmt.Fprintf(w, "%d\t%v\t%v\t%.0f\n", r.points, r.elapsed.Round(time.Millisecond), per, float64(time.Second)/float64(per))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntSliceVar(&counts, "counts", []int{3000, 10000, 25000}, "cloud sizes")
	cmd.Flags().IntVar(&frames, "frames", 300, "frames per size")
	return cmd
}

func newSfxCmd() *cobra.Command {
	var (
		play     bool
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:       "sfx [" + strings.Join(audio.SoundNames(), "|") + "]",
		Short:     "render a sound and show its spectrum",
		Args:      cobra.ExactArgs(1),
		ValidArgs: audio.SoundNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			samples, err := audio.Render(name, duration, audio.SampleRate, time.Now().UnixNano())
			if err != nil {
				return err
			}
			if len(samples) == 0 {
				return fmt.Errorf("%s rendered no samples", name)
			}
			rate := float64(audio.SampleRate)

			mags := audio.Spectrum(samples)
			// Everything we synthesise sits below 2 kHz.
			limit := min(len(mags), int(2000*float64(len(samples))/rate))
			fmt.Printf("sound: %s\n", name)
			fmt.Printf("length: %v\n", time.Duration(float64(len(samples))/rate*float64(time.Second)).Round(time.Millisecond))
			fmt.Printf("peak: %.4f\n", audio.Peak(samples))
			fmt.Printf("dominant: %.1f Hz\n\n", audio.DominantFrequency(samples, rate))
			fmt.Println(asciigraph.Plot(audio.Bands(mags[:limit], 64),
				asciigraph.Height(10),
				asciigraph.Caption("spectrum 0-2 kHz"),
			))

			if !play {
				return nil
			}
			return playSound(name, duration)
		},
	}
	cmd.Flags().BoolVar(&play, "play", false, "play through the default output")
	cmd.Flags().DurationVar(&duration, "duration", time.Second, "render length")
	return cmd
}

func playSound(name string, d time.Duration) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	var src beep.Streamer
	if name == "drone" {
		sys := audio.NewSystem(audio.SampleRate, audio.SystemOptions{Drone: true}, logger)
		sys.ToggleMute()
		src = sys
	} else {
		sm := audio.NewSoundManager(audio.SampleRate, config.DefaultMasterGain, time.Now().UnixNano())
		if err := sm.Play(name); err != nil {
			return err
		}
		src = sm.Streamer()
	}
	out := audio.NewOutput(src, logger)
	if err := out.Start(); err != nil {
		return err
	}
	defer out.Stop()
	time.Sleep(d)
	return nil
}

func newContactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "store and read contact messages",
	}

	var name, email, message string
	submit := &cobra.Command{
		Use:   "submit",
		Short: "store a message",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openContacts(cmd)
			if err != nil {
				return err
			}
			defer store.Close()
			if _, err := store.Submit(cmd.Context(), contact.Message{Name: name, Email: email, Message: message}); err != nil {
				if errors.Is(err, contact.ErrMissingField) {
					return fmt.Errorf("please fill in every field: %w", err)
				}
				return err
			}
			fmt.Println(contact.SuccessMessage)
			return nil
		},
	}
	submit.Flags().StringVar(&name, "name", "", "your name")
	submit.Flags().StringVar(&email, "email", "", "your email")
	submit.Flags().StringVar(&message, "message", "", "the message")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "list stored messages, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openContacts(cmd)
			if err != nil {
				return err
			}
			defer store.Close()
			msgs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				fmt.Println("no messages")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tNAME\tEMAIL\tMESSAGE")
			for _, m := range msgs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Timestamp.Local().Format("2006-01-02 15:04"), m.Name, m.Email, m.Message)
			}
			return w.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum messages")

	cmd.AddCommand(submit, list)
	return cmd
}

func openContacts(cmd *cobra.Command) (*contact.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	return contact.Open(cfg.Contact.DBPath, logger)
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the resolved config to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "livingcore.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.AddCommand(initCmd)
	return cmd
}
