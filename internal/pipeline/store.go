package pipeline

import "sync"

// SampleStore is the append-only, thread-shared buffer of normalized
// samples for one clip. One writer (the audio thread) appends; any number
// of presentation-side readers slice. Readers copy out under a brief
// shared lock and never hold it across rendering work.
type SampleStore struct {
	mu      sync.RWMutex
	samples []float32
}

func NewSampleStore() *SampleStore {
	return &SampleStore{}
}

// Append copies batch onto the end of the store. Writer side only.
func (s *SampleStore) Append(batch []float32) {
	if len(batch) == 0 {
		return
	}
	s.mu.Lock()
	s.samples = append(s.samples, batch...)
	s.mu.Unlock()
}

// Len returns the current sample count.
func (s *SampleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

// Slice returns a copy of samples[from:to). Both ends are clamped to the
// current length; an inverted or out-of-range request returns nil.
func (s *SampleStore) Slice(from, to int) []float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.samples)
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from >= to {
		return nil
	}

	out := make([]float32, to-from)
	copy(out, s.samples[from:to])
	return out
}
