package audio

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/gordonklaus/portaudio"
	"github.com/san-kum/livingcore/internal/logging"
	"go.uber.org/zap"
)

const BufferSize = 1024

// Output pulls stereo frames from a streamer into the default portaudio
// device.
type Output struct {
	mu     sync.Mutex
	source beep.Streamer
	stream *portaudio.Stream
	buf    [][2]float64
	logger *zap.Logger
	Active bool
}

func NewOutput(source beep.Streamer, logger *zap.Logger) *Output {
	return &Output{
		source: source,
		buf:    make([][2]float64, BufferSize),
		logger: logging.OrNop(logger),
	}
}

// Start opens an output-only stream.
func (o *Output) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(SampleRate), BufferSize, o.process)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return err
	}
	o.stream = stream
	o.Active = true
	o.logger.Info("audio output started", zap.Int("rate", int(SampleRate)))
	return nil
}

func (o *Output) Stop() {
	if o.stream != nil {
		o.stream.Stop()
		o.stream.Close()
		o.stream = nil
	}
	if o.Active {
		portaudio.Terminate()
	}
	o.Active = false
}

func (o *Output) process(out [][]float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fill(out)
}

// fill writes non-interleaved channels; silence pads a short read.
func (o *Output) fill(out [][]float32) {
	if len(out) == 0 {
		return
	}
	frames := len(out[0])
	if cap(o.buf) < frames {
		o.buf = make([][2]float64, frames)
	}
	buf := o.buf[:frames]
	n, _ := o.source.Stream(buf)
	for i := 0; i < frames; i++ {
		var l, r float64
		if i < n {
			l, r = clip(buf[i][0]), clip(buf[i][1])
		}
		out[0][i] = float32(l)
		if len(out) > 1 {
			out[1][i] = float32(r)
		}
	}
}

func clip(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
