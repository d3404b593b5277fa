package pipeline

// BufferSink appends every frame to a SampleStore and forwards it to the
// next sink, if any.
type BufferSink struct {
	store *SampleStore
	next  Sink
}

func NewBufferSink(store *SampleStore, next Sink) *BufferSink {
	return &BufferSink{store: store, next: next}
}

func (b *BufferSink) Process(frame []float32) error {
	b.store.Append(frame)
	if b.next != nil {
		return b.next.Process(frame)
	}
	return nil
}

func (b *BufferSink) Cleanup() error {
	if b.next != nil {
		return b.next.Cleanup()
	}
	return nil
}
