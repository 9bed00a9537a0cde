package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/livingcore/internal/core"
	"github.com/san-kum/livingcore/internal/field"
	"github.com/san-kum/livingcore/internal/frame"
	"github.com/san-kum/livingcore/internal/input"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFPS        = 60
	DefaultWidth      = 1280
	DefaultHeight     = 720
	DefaultMeshRadius = 60.0
	DefaultMasterGain = 0.1
	DefaultMusicGain  = 0.2
	DefaultDataDir    = ".livingcore"
)

var (
	ErrUnknownVariant = errors.New("config: unknown variant")
	ErrInvalid        = errors.New("config: invalid value")
)

type Config struct {
	Variant    string            `yaml:"variant"`
	Seed       int64             `yaml:"seed"`
	Particles  int               `yaml:"particles"`
	FPS        int               `yaml:"fps"`
	Workers    int               `yaml:"workers"`
	MeshRadius float64           `yaml:"mesh_radius"`
	MeshDetail int               `yaml:"mesh_detail"`
	Viewport   ViewportConfig    `yaml:"viewport"`
	Cloud      field.CloudParams `yaml:"cloud"`
	Integrator frame.Params      `yaml:"integrator"`
	Audio      AudioConfig       `yaml:"audio"`
	Contact    ContactConfig     `yaml:"contact"`
}

type ViewportConfig struct {
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
	FinePointer bool `yaml:"fine_pointer"`
}

type AudioConfig struct {
	Muted      bool     `yaml:"muted"`
	MasterGain float64  `yaml:"master_gain"`
	MusicGain  float64  `yaml:"music_gain"`
	Drone      bool     `yaml:"drone"`
	MusicDir   string   `yaml:"music_dir"`
	Tracks     []string `yaml:"tracks"`
}

type ContactConfig struct {
	DBPath string `yaml:"db_path"`
}

func DefaultConfig() *Config {
	return &Config{
		Variant:    "cloud",
		FPS:        DefaultFPS,
		MeshRadius: DefaultMeshRadius,
		MeshDetail: -1,
		Viewport: ViewportConfig{
			Width:       DefaultWidth,
			Height:      DefaultHeight,
			FinePointer: true,
		},
		Cloud:      field.DefaultCloudParams(),
		Integrator: frame.DefaultParams(),
		Audio: AudioConfig{
			Muted:      true,
			MasterGain: DefaultMasterGain,
			MusicGain:  DefaultMusicGain,
			Drone:      true,
			MusicDir:   "songs",
			Tracks: []string{
				"NAPOLEON × RAMMSTEIN",
				"DERNIÈRE DANSE — INDILA",
				"SKYFALL — ADELE",
			},
		},
		Contact: ContactConfig{DBPath: DefaultDataDir + "/contacts.db"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Kind maps the variant name to a field kind.
func (c *Config) Kind() (field.Kind, error) {
	switch c.Variant {
	case "", "cloud", "particles":
		return field.KindCloud, nil
	case "mesh", "sphere", "core":
		return field.KindMesh, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, c.Variant)
	}
}

// Validate rejects values the frame loop cannot run with.
func (c *Config) Validate() error {
	kind, err := c.Kind()
	if err != nil {
		return err
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.FPS)
	}
	if kind == field.KindMesh && c.MeshRadius <= 0 {
		return fmt.Errorf("%w: mesh_radius must be positive, got %v", ErrInvalid, c.MeshRadius)
	}
	return nil
}

// Options builds core options from the config.
func (c *Config) Options() (core.Options, error) {
	kind, err := c.Kind()
	if err != nil {
		return core.Options{}, err
	}
	return core.Options{
		Kind:       kind,
		Count:      c.Particles,
		Cloud:      c.Cloud,
		MeshRadius: c.MeshRadius,
		MeshDetail: c.MeshDetail,
		Params:     c.Integrator,
		Seed:       c.Seed,
		Workers:    c.Workers,
		Viewport: input.Viewport{
			Width:       c.Viewport.Width,
			Height:      c.Viewport.Height,
			FinePointer: c.Viewport.FinePointer,
		},
	}, nil
}
