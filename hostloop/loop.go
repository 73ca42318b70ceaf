// ABOUTME: Single-goroutine host loop that runs posted functions in order.
// ABOUTME: Provides the deferred-call primitive used to schedule sort steps off the animation goroutine.
package hostloop

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/2389-research/ducksort/animation"
)

// ErrClosed is returned when work is posted to a loop that has stopped.
var ErrClosed = errors.New("hostloop: loop closed")

// DefaultBuffer is the posted-call queue depth.
const DefaultBuffer = 256

// Loop executes posted functions one at a time on the goroutine that calls Run.
type Loop struct {
	calls chan func()
	done  chan struct{}
	log   animation.Logger
}

// New creates a loop. Nothing runs until Run is called.
func New(logger animation.Logger) *Loop {
	return &Loop{
		calls: make(chan func(), DefaultBuffer),
		done:  make(chan struct{}),
		log:   animation.OrDiscard(logger),
	}
}

// Run processes posted calls until ctx is cancelled. It returns ctx.Err().
// Run must be called at most once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.calls:
			l.invoke(fn)
		}
	}
}

// Post queues fn. It reports false if the loop has already stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.calls <- fn:
		return true
	case <-l.done:
		return false
	}
}

// After posts fn once d has elapsed. Safe to call from any goroutine,
// including animation callbacks.
func (l *Loop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { l.Post(fn) })
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Printf("host loop panic err=%v\n%s", r, debug.Stack())
		}
	}()
	fn()
}
