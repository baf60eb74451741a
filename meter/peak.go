package meter

import (
	"math"
	"sync/atomic"
)

// DefaultPeakWindow is the number of frames a Peak reading covers.
const DefaultPeakWindow = 5000

// PeakLevels is the maximum absolute sample per channel over one window.
type PeakLevels struct {
	Left  float64
	Right float64
}

// Max returns the larger channel level.
func (p PeakLevels) Max() float64 { return math.Max(p.Left, p.Right) }

// Peak reports max |L| and |R| once every window frames.
type Peak struct {
	window   int
	onLevels func(PeakLevels)

	count       int
	left, right float64

	lastLeft  atomic.Uint64
	lastRight atomic.Uint64
}

// NewPeak creates a peak meter. window <= 0 selects DefaultPeakWindow.
// onLevels may be nil; it runs on the render goroutine and must not block.
func NewPeak(window int, onLevels func(PeakLevels)) *Peak {
	if window <= 0 {
		window = DefaultPeakWindow
	}

	return &Peak{window: window, onLevels: onLevels}
}

// Window returns the window length in frames.
func (p *Peak) Window() int { return p.window }

// ObserveBlock consumes interleaved stereo frames.
func (p *Peak) ObserveBlock(frames []float32, _ float64) {
	for i := 0; i+1 < len(frames); i += 2 {
		if l := math.Abs(float64(frames[i])); l > p.left {
			p.left = l
		}

		if r := math.Abs(float64(frames[i+1])); r > p.right {
			p.right = r
		}

		p.count++
		if p.count >= p.window {
			p.publish()
		}
	}
}

// Levels returns the last completed reading. Safe from any goroutine.
func (p *Peak) Levels() PeakLevels {
	return PeakLevels{
		Left:  math.Float64frombits(p.lastLeft.Load()),
		Right: math.Float64frombits(p.lastRight.Load()),
	}
}

// Reset discards the window in progress.
func (p *Peak) Reset() {
	p.count = 0
	p.left = 0
	p.right = 0
}

func (p *Peak) publish() {
	lv := PeakLevels{Left: p.left, Right: p.right}

	p.lastLeft.Store(math.Float64bits(lv.Left))
	p.lastRight.Store(math.Float64bits(lv.Right))

	p.Reset()

	if p.onLevels != nil {
		p.onLevels(lv)
	}
}
