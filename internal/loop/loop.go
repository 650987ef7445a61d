// Package loop drives a frame callback at a fixed interval until stopped.
package loop

import (
	"context"
	"sync"
	"time"
)

// StepFunc is called once per tick with the zero-based frame number.
type StepFunc func(frame uint64) error

// Loop calls a StepFunc once per Interval. Calls never overlap.
type Loop struct {
	Interval  time.Duration
	MaxFrames uint64 // 0 = unlimited

	once sync.Once
	stop chan struct{}
	mu   sync.Mutex
}

// New returns a loop ticking at fps frames per second.
func New(fps int) *Loop {
	if fps <= 0 {
		fps = 60
	}
	return &Loop{Interval: time.Second / time.Duration(fps)}
}

func (l *Loop) stopChan() chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stop == nil {
		l.stop = make(chan struct{})
	}
	return l.stop
}

// Stop ends a running loop after the current step. Safe to call more than
// once and from any goroutine.
func (l *Loop) Stop() {
	ch := l.stopChan()
	l.once.Do(func() { close(ch) })
}

// Run blocks, calling step once per tick, until ctx is done, Stop is called,
// MaxFrames steps have run, or step returns an error. Cancellation and Stop
// are not errors; a loop stopped before Run returns nil without stepping.
func (l *Loop) Run(ctx context.Context, step StepFunc) error {
	stop := l.stopChan()

	interval := l.Interval
	if interval <= 0 {
		interval = time.Second / 60
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var frame uint64
	for {
		if l.MaxFrames > 0 && frame >= l.MaxFrames {
			return nil
		}
		// a step may have called Stop; don't let a ready tick win the select
		select {
		case <-stop:
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		case <-ticker.C:
			if err := step(frame); err != nil {
				return err
			}
			frame++
		}
	}
}
