package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Spectrum returns the magnitude of the first half of a Hann-windowed FFT.
// Bin i covers i*rate/len(samples) Hz.
func Spectrum(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	windowed := make([]float64, len(samples))
	copy(windowed, samples)
	window.Apply(windowed, window.Hann)

	bins := fft.FFTReal(windowed)
	half := len(bins) / 2
	mags := make([]float64, half)
	for i := range mags {
		mags[i] = cmplx.Abs(bins[i])
	}
	return mags
}

// DominantFrequency returns the strongest non-DC frequency in samples.
func DominantFrequency(samples []float64, rate float64) float64 {
	mags := Spectrum(samples)
	best, bestMag := 0, 0.0
	for i := 1; i < len(mags); i++ {
		if mags[i] > bestMag {
			best, bestMag = i, mags[i]
		}
	}
	return float64(best) * rate / float64(len(samples))
}

// Bands reduces a spectrum to n equal-width band averages, for plotting.
func Bands(mags []float64, n int) []float64 {
	if n <= 0 || len(mags) == 0 {
		return nil
	}
	out := make([]float64, n)
	per := float64(len(mags)) / float64(n)
	for b := 0; b < n; b++ {
		lo := int(float64(b) * per)
		hi := int(float64(b+1) * per)
		if hi <= lo {
			hi = lo + 1
		}
		if hi > len(mags) {
			hi = len(mags)
		}
		sum := 0.0
		for _, m := range mags[lo:hi] {
			sum += m
		}
		out[b] = sum / float64(hi-lo)
	}
	return out
}

// Peak returns the largest absolute sample.
func Peak(samples []float64) float64 {
	p := 0.0
	for _, s := range samples {
		p = math.Max(p, math.Abs(s))
	}
	return p
}
