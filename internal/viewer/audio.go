package viewer

import (
	"sync"
)

const audioSampleRate = 48000

// centerAudioStream plays the height under the probe cell as a held PCM
// level. It implements io.Reader for ebiten's audio player.
type centerAudioStream struct {
	mu     sync.Mutex
	sample float32
	dc     float32
	gain   float32
}

func newCenterAudioStream(gain float32) *centerAudioStream {
	return &centerAudioStream{gain: gain}
}

// SetSample stores the next level, clamped to [-1, 1] after gain.
func (s *centerAudioStream) SetSample(v float32) {
	v *= s.gain
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	s.mu.Lock()
	// AC coupling: remove a slowly varying DC component.
	const alpha = 0.001
	s.dc += alpha * (v - s.dc)
	s.sample = v - s.dc
	s.mu.Unlock()
}

func (s *centerAudioStream) Read(p []byte) (int, error) {
	// Whole stereo 16-bit frames only.
	frameBytes := len(p) - len(p)%4
	if frameBytes == 0 {
		return 0, nil
	}
	s.mu.Lock()
	sample := s.sample
	s.mu.Unlock()

	v := int16(sample * 32767)
	for i := 0; i < frameBytes; i += 4 {
		p[i] = byte(v)
		p[i+1] = byte(v >> 8)
		p[i+2] = p[i]
		p[i+3] = p[i+1]
	}
	return frameBytes, nil
}

func (s *centerAudioStream) Close() error {
	return nil
}
