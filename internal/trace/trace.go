// Package trace records petal trajectories to CSV.
package trace

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/iburimskiy/petalfield/internal/petals"
)

// Row is one petal at one recorded frame.
type Row struct {
	Frame uint64  `csv:"frame"`
	Index int     `csv:"index"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	VX    float64 `csv:"vx"`
	VY    float64 `csv:"vy"`
	Rot   float64 `csv:"rot"`
	Age   float64 `csv:"age"`
}

// Recorder appends field snapshots to a CSV stream.
type Recorder struct {
	w      io.Writer
	closer io.Closer
	every  uint64

	headerWritten bool
	rows          []*Row
	written       int
}

// NewRecorder writes to w, sampling every n-th frame (n <= 1 records all).
func NewRecorder(w io.Writer, every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{w: w, every: uint64(every)}
}

// Create opens path for writing and returns a recorder on it.
// Returns nil if path is empty (recording disabled).
func Create(path string, every int) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace file: %w", err)
	}
	r := NewRecorder(f, every)
	r.closer = f
	return r, nil
}

// Record writes the field's pool if the frame falls on the sampling stride.
func (r *Recorder) Record(frame uint64, ps []petals.Particle) error {
	if r == nil || frame%r.every != 0 || len(ps) == 0 {
		return nil
	}

	r.rows = r.rows[:0]
	for i := range ps {
		p := &ps[i]
		r.rows = append(r.rows, &Row{
			Frame: frame,
			Index: i,
			X:     p.X,
			Y:     p.Y,
			VX:    p.VX,
			VY:    p.VY,
			Rot:   p.Rot,
			Age:   p.Age,
		})
	}

	if !r.headerWritten {
		if err := gocsv.Marshal(r.rows, r.w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
		r.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(r.rows, r.w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}
	r.written += len(r.rows)
	return nil
}

// Rows returns how many rows have been written.
func (r *Recorder) Rows() int {
	if r == nil {
		return 0
	}
	return r.written
}

// Close closes the underlying file, if the recorder opened one.
func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Read parses a trace previously written by a Recorder.
func Read(rd io.Reader) ([]*Row, error) {
	var rows []*Row
	if err := gocsv.Unmarshal(rd, &rows); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return rows, nil
}
