package viz

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"os"

	"github.com/san-kum/livingcore/internal/render"
)

const (
	gifCharW = 8
	gifCharH = 16
	// maxGIFFrames caps a recording at about ten seconds.
	maxGIFFrames = 600
)

// GIFRecorder captures canvas frames into an animated GIF.
type GIFRecorder struct {
	frames []*image.Paletted
}

func (r *GIFRecorder) Frames() int { return len(r.frames) }

// Capture rasterises the canvas, one block per braille dot, coloured by the
// cell tint.
func (r *GIFRecorder) Capture(c *render.Canvas) {
	if len(r.frames) >= maxGIFFrames {
		return
	}
	imgW, imgH := c.Width*gifCharW, c.Height*gifCharH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), palette.WebSafe)
	black := uint8(img.Palette.Index(color.Black))
	for i := range img.Pix {
		img.Pix[i] = black
	}

	dotW, dotH := gifCharW/2, gifCharH/4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			ci := uint8(img.Palette.Index(c.Tint[row][col].Clamped()))
			baseX, baseY := col*gifCharW, row*gifCharH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if !c.IsSet(col*2+dx, row*4+dy) {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, ci)
						}
					}
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Save writes the recording and clears it.
func (r *GIFRecorder) Save(path string) error {
	if len(r.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return err
	}
	r.frames = nil
	return nil
}
