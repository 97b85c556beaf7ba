package framework

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/golang/glog"
)

// DefaultIdleSleep is the pause taken after an iteration which did nothing.
const DefaultIdleSleep = time.Millisecond

// Loop runs controllers back-to-back in priority order. It never
// waits between iterations unless an iteration did no work, in which
// case it sleeps IdleSleep.
type Loop struct {
	IdleSleep time.Duration
	Clock     Clock

	controllers [PriorityLevels][]Controller
	runners     []Runnable
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopIteration struct {
	ctx           context.Context
	time          time.Time
	priorityLevel int
	busy          bool
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{IdleSleep: DefaultIdleSleep, Clock: SystemClock{}}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.controllers[priorityLevel] = append(l.controllers[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions which are started
// in their own goroutines when the loop runs.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable. The loop stops when ctx is done or when
// any of the added Runnables stops.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	runner := NewRunnerWith(ctx).Go(l.runners...)

	clock := l.clock()
	for {
		select {
		case <-ctx.Done():
			if err := runner.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case <-runner.Done():
			canceled := ctx.Err() != nil
			cancel()
			if err := runner.Wait(); err != nil {
				return err
			}
			if canceled {
				return ctx.Err()
			}
			return ErrRunnerStopped
		default:
		}
		if !l.RunIteration(ctx) && l.IdleSleep > 0 {
			clock.Sleep(l.IdleSleep)
		}
	}
}

// RunAndClose runs the loop and closes closers once it stops,
// whatever the reason. Close errors are aggregated with the run error.
func (l *Loop) RunAndClose(ctx context.Context, closers ...io.Closer) error {
	var errs AggregatedError
	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		errs.Add(err)
	}
	for _, c := range closers {
		errs.Add(c.Close())
	}
	return errs.Aggregate()
}

// RunOrFail is intended to be used in main to simply run the loop.
// closers are released before exiting on failure.
func (l *Loop) RunOrFail(closers ...io.Closer) {
	if err := l.RunAndClose(NewRunner().HandleSignals().Context, closers...); err != nil {
		log.Fatalln(err)
	}
}

// RunIteration executes all controllers once and reports
// whether any of them marked the iteration busy.
func (l *Loop) RunIteration(ctx context.Context) bool {
	iter := &loopIteration{ctx: ctx, time: l.clock().Time()}
	for i := 0; i < PriorityLevels; i++ {
		iter.priorityLevel = i
		for _, ctl := range l.controllers[i] {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error: %v", err)
			}
		}
	}
	return iter.busy
}

func (l *Loop) clock() Clock {
	if l.Clock == nil {
		return SystemClock{}
	}
	return l.Clock
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) PriorityLevel() int {
	return t.priorityLevel
}

func (t *loopIteration) Busy() {
	t.busy = true
}
