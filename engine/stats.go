package engine

import (
	"fmt"
	"time"
)

// emaAlpha weights the newest sample in the running averages
const emaAlpha = 0.1

// FrameStats summarizes loop throughput
type FrameStats struct {
	Frames    uint64
	FPS       float64 // exponential moving average
	RenderMs  float64 // exponential moving average of compose+write time
	Bytes     uint64  // total delivered to the display
	Segments  int     // in the last frame
	WriteErrs uint64
}

// record folds one frame into the stats; dt is the wall step in seconds
func (s *FrameStats) record(dt float64, render time.Duration, bytes uint64, segs int) {
	ms := float64(render.Microseconds()) / 1000
	if s.Frames == 0 {
		s.RenderMs = ms
	} else {
		s.RenderMs += (ms - s.RenderMs) * emaAlpha
	}
	if dt > 0 {
		fps := 1 / dt
		if s.FPS == 0 {
			s.FPS = fps
		} else {
			s.FPS += (fps - s.FPS) * emaAlpha
		}
	}
	s.Frames++
	s.Bytes = bytes
	s.Segments = segs
}

// String is the HUD line
func (s FrameStats) String() string {
	return fmt.Sprintf("%5.1f fps %5.2f ms %4d seg %s", s.FPS, s.RenderMs, s.Segments, formatBytes(s.Bytes))
}

func formatBytes(n uint64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1fG", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1fM", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fK", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
