package clock

// FrameStats counts frames and publishes a rate once per second of timer
// time.
type FrameStats struct {
	frames     int
	lastMark   float32
	fps        float32
	msPerFrame float32
}

// Frame records one frame at total time now (seconds). It reports true when
// a new sample was published.
func (s *FrameStats) Frame(now float32) bool {
	s.frames++
	elapsed := now - s.lastMark
	if elapsed < 1 {
		return false
	}
	s.fps = float32(s.frames) / elapsed
	s.msPerFrame = 1000 / s.fps
	s.frames = 0
	s.lastMark = now
	return true
}

// FPS is the frame rate of the last published sample.
func (s *FrameStats) FPS() float32 { return s.fps }

// MsPerFrame is the average frame time of the last published sample.
func (s *FrameStats) MsPerFrame() float32 { return s.msPerFrame }
