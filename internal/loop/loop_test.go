package loop

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunMaxFrames(t *testing.T) {
	l := &Loop{Interval: time.Millisecond, MaxFrames: 5}
	var frames []uint64
	err := l.Run(context.Background(), func(frame uint64) error {
		frames = append(frames, frame)
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(frames) != 5 {
		t.Fatalf("ran %d frames, want 5", len(frames))
	}
	for i, f := range frames {
		if f != uint64(i) {
			t.Errorf("frame[%d] = %d, want %d", i, f, i)
		}
	}
}

func TestStopFromStep(t *testing.T) {
	l := &Loop{Interval: time.Millisecond}
	count := 0
	err := l.Run(context.Background(), func(frame uint64) error {
		count++
		if frame == 2 {
			l.Stop()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if count != 3 {
		t.Errorf("ran %d steps, want 3", count)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	l := New(120)
	l.Stop()
	l.Stop()
	steps := 0
	if err := l.Run(context.Background(), func(uint64) error { steps++; return nil }); err != nil {
		t.Errorf("Run() after Stop = %v, want nil", err)
	}
	if steps != 0 {
		t.Errorf("ran %d steps after Stop, want 0", steps)
	}
}

func TestCancelContext(t *testing.T) {
	l := &Loop{Interval: time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- l.Run(ctx, func(frame uint64) error {
			if frame == 3 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStepErrorEndsRun(t *testing.T) {
	boom := errors.New("boom")
	l := &Loop{Interval: time.Millisecond}
	err := l.Run(context.Background(), func(frame uint64) error {
		if frame == 1 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestNewDefaultsFPS(t *testing.T) {
	if got := New(0).Interval; got != time.Second/60 {
		t.Errorf("New(0).Interval = %v, want %v", got, time.Second/60)
	}
	if got := New(30).Interval; got != time.Second/30 {
		t.Errorf("New(30).Interval = %v, want %v", got, time.Second/30)
	}
}
