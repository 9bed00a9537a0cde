// Package storage persists headless runs as a metadata file plus a per-frame
// CSV, one directory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/livingcore/internal/frame"
	"github.com/san-kum/livingcore/internal/ticker"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var frameHeader = []string{"frame", "elapsed", "scroll_velocity", "repelled", "max_displacement", "camera_x", "camera_y"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Variant   string             `json:"variant"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Points    int                `json:"points"`
	Frames    int                `json:"frames"`
	FPS       int                `json:"fps"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	Params    frame.Params       `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Sample is one row of a run's frame log.
type Sample struct {
	Frame           int     `json:"frame"`
	Elapsed         float64 `json:"elapsed"`
	ScrollVelocity  float64 `json:"scroll_velocity"`
	Repelled        int     `json:"repelled"`
	MaxDisplacement float64 `json:"max_displacement"`
	CameraX         float64 `json:"camera_x"`
	CameraY         float64 `json:"camera_y"`
}

// Recorder collects samples from the frame loop.
type Recorder struct {
	Samples []Sample
}

func (r *Recorder) OnFrame(t ticker.Tick, st frame.Stats) {
	r.Samples = append(r.Samples, Sample{
		Frame:           t.Frame,
		Elapsed:         t.Elapsed,
		ScrollVelocity:  st.ScrollVelocity,
		Repelled:        st.Repelled,
		MaxDisplacement: st.MaxDisplacement,
		CameraX:         st.CameraX,
		CameraY:         st.CameraY,
	})
}

// Metrics summarises the recorded samples.
func (r *Recorder) Metrics() map[string]float64 {
	m := map[string]float64{}
	if len(r.Samples) == 0 {
		return m
	}
	var peakDisp, sumRepelled, peakRepelled float64
	for _, s := range r.Samples {
		if s.MaxDisplacement > peakDisp {
			peakDisp = s.MaxDisplacement
		}
		rep := float64(s.Repelled)
		sumRepelled += rep
		if rep > peakRepelled {
			peakRepelled = rep
		}
	}
	last := r.Samples[len(r.Samples)-1]
	m["peak_displacement"] = peakDisp
	m["final_displacement"] = last.MaxDisplacement
	m["mean_repelled"] = sumRepelled / float64(len(r.Samples))
	m["peak_repelled"] = peakRepelled
	m["final_scroll_velocity"] = last.ScrollVelocity
	return m
}

// Save writes a run and returns its ID. meta.ID and meta.Timestamp are
// filled in when empty.
func (s *Store) Save(meta RunMetadata, samples []Sample) (string, error) {
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%s", meta.Variant, uuid.NewString()[:8])
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Frames = len(samples)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(frameHeader); err != nil {
		return "", err
	}
	for _, sm := range samples {
		row := []string{
			strconv.Itoa(sm.Frame),
			strconv.FormatFloat(sm.Elapsed, 'f', 6, 64),
			strconv.FormatFloat(sm.ScrollVelocity, 'f', 6, 64),
			strconv.Itoa(sm.Repelled),
			strconv.FormatFloat(sm.MaxDisplacement, 'f', 6, 64),
			strconv.FormatFloat(sm.CameraX, 'f', 6, 64),
			strconv.FormatFloat(sm.CameraY, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns all readable runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads a run's frame log. Malformed rows are skipped.
func (s *Store) LoadSamples(runID string) ([]Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(frameHeader) {
			continue
		}
		sm, err := parseSample(rec)
		if err != nil {
			continue
		}
		samples = append(samples, sm)
	}
	return samples, nil
}

func parseSample(rec []string) (Sample, error) {
	var sm Sample
	var err error
	if sm.Frame, err = strconv.Atoi(rec[0]); err != nil {
		return sm, err
	}
	if sm.Repelled, err = strconv.Atoi(rec[3]); err != nil {
		return sm, err
	}
	floats := []*float64{&sm.Elapsed, &sm.ScrollVelocity, nil, &sm.MaxDisplacement, &sm.CameraX, &sm.CameraY}
	for i, dst := range floats {
		if dst == nil {
			continue
		}
		if *dst, err = strconv.ParseFloat(rec[i+1], 64); err != nil {
			return sm, err
		}
	}
	return sm, nil
}

// Column extracts one named series from samples, for plotting.
func Column(samples []Sample, name string) ([]float64, bool) {
	var pick func(Sample) float64
	switch name {
	case "elapsed":
		pick = func(s Sample) float64 { return s.Elapsed }
	case "scroll_velocity", "scroll":
		pick = func(s Sample) float64 { return s.ScrollVelocity }
	case "repelled":
		pick = func(s Sample) float64 { return float64(s.Repelled) }
	case "max_displacement", "displacement":
		pick = func(s Sample) float64 { return s.MaxDisplacement }
	case "camera_x":
		pick = func(s Sample) float64 { return s.CameraX }
	case "camera_y":
		pick = func(s Sample) float64 { return s.CameraY }
	default:
		return nil, false
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = pick(s)
	}
	return out, true
}
