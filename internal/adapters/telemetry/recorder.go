package telemetry

import (
	"context"
	"fmt"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"

	"github.com/SkeneZr/cc-rules/internal/core/ports"
)

// Recorder implements ports.Tracer on top of a progrock tape. Every build
// step becomes one vertex, so parallel step output stays attributable.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a Recorder with a default tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start opens a vertex for a step.
func (r *Recorder) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	v := r.rec.Vertex(digest.FromString(name), name)
	if cfg.Cached {
		v.Cached()
	}
	return ctx, &vertexSpan{vertex: v}
}

// EmitPlan announces the planned steps as a zero-duration vertex group.
func (r *Recorder) EmitPlan(_ context.Context, stepIDs []string) {
	for _, id := range stepIDs {
		// Declaring the vertex up front makes pending steps visible before
		// they run.
		r.rec.Vertex(digest.FromString(id), id)
	}
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// vertexSpan implements ports.Span wrapping *progrock.VertexRecorder.
type vertexSpan struct {
	vertex *progrock.VertexRecorder

	mu  sync.Mutex
	err error
}

// Write streams step output to the vertex.
func (s *vertexSpan) Write(p []byte) (int, error) {
	return s.vertex.Stdout().Write(p)
}

// RecordError stores the error reported against this span; End passes it to
// the vertex.
func (s *vertexSpan) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// SetAttribute records a key-value pair in the vertex output stream.
func (s *vertexSpan) SetAttribute(key string, value any) {
	_, _ = fmt.Fprintf(s.vertex.Stdout(), "%s=%v\n", key, value)
}

// End completes the vertex, failing it when an error was recorded.
func (s *vertexSpan) End() {
	s.mu.Lock()
	err := s.err
	s.mu.Unlock()
	s.vertex.Done(err)
}
