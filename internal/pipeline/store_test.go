package pipeline

import (
	"sync"
	"testing"
)

func TestSampleStoreAppendGrows(t *testing.T) {
	s := NewSampleStore()

	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d samples", s.Len())
	}

	s.Append([]float32{0.1, 0.2})
	s.Append(nil)
	s.Append([]float32{0.3})

	if s.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", s.Len())
	}

	got := s.Slice(0, 3)
	want := []float32{0.1, 0.2, 0.3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestSampleStoreSliceClamps(t *testing.T) {
	s := NewSampleStore()
	s.Append([]float32{1, 2, 3, 4})

	if got := s.Slice(-5, 2); len(got) != 2 || got[0] != 1 {
		t.Errorf("negative start should clamp to 0, got %v", got)
	}
	if got := s.Slice(2, 100); len(got) != 2 || got[1] != 4 {
		t.Errorf("end past length should clamp, got %v", got)
	}
	if got := s.Slice(3, 1); got != nil {
		t.Errorf("inverted range should be empty, got %v", got)
	}
	if got := s.Slice(10, 20); got != nil {
		t.Errorf("range beyond data should be empty, got %v", got)
	}
}

func TestSampleStoreSliceIsACopy(t *testing.T) {
	s := NewSampleStore()
	s.Append([]float32{0.5, 0.5})

	got := s.Slice(0, 2)
	got[0] = -1

	again := s.Slice(0, 2)
	if again[0] != 0.5 {
		t.Fatal("mutating a returned slice must not touch the store")
	}
}

func TestSampleStoreAppendCopiesBatch(t *testing.T) {
	s := NewSampleStore()
	batch := []float32{0.25}
	s.Append(batch)
	batch[0] = -1

	if got := s.Slice(0, 1); got[0] != 0.25 {
		t.Fatal("store must copy batches on append")
	}
}

func TestSampleStoreConcurrentReaders(t *testing.T) {
	s := NewSampleStore()
	const batches = 200
	batch := make([]float32, 64)
	for i := range batch {
		batch[i] = float32(i) / 64
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < batches; i++ {
			s.Append(batch)
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < batches; i++ {
				n := s.Len()
				got := s.Slice(0, n)
				if len(got) != n {
					t.Errorf("expected %d samples, got %d", n, len(got))
					return
				}
			}
		}()
	}

	wg.Wait()

	if s.Len() != batches*len(batch) {
		t.Fatalf("expected %d samples after writer finished, got %d", batches*len(batch), s.Len())
	}
}
