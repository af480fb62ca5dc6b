// Package scheduler emits listing checks when they fall due.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidDueTime = errors.New("scheduler: invalid due time")
	ErrStopped        = errors.New("scheduler: engine stopped")
)

type Reason string

const (
	ReasonStartup  Reason = "startup"
	ReasonPeriodic Reason = "periodic"
	ReasonManual   Reason = "manual"
)

// CheckEvent asks the application to look for a newer listing.
type CheckEvent struct {
	ID     string
	Reason Reason
	DueAt  time.Time
}

// checkQueue is a min-heap on DueAt holding at most one check per ID.
// Checks due at the same instant leave in the order they were booked.
type checkQueue struct {
	items []*booking
	byID  map[string]*booking
}

type booking struct {
	event CheckEvent
	seq   uint64
	index int
}

func (q *checkQueue) Len() int { return len(q.items) }

func (q *checkQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.event.DueAt.Equal(b.event.DueAt) {
		return a.seq < b.seq
	}
	return a.event.DueAt.Before(b.event.DueAt)
}

func (q *checkQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *checkQueue) Push(x any) {
	b := x.(*booking)
	b.index = len(q.items)
	q.items = append(q.items, b)
	q.byID[b.event.ID] = b
}

func (q *checkQueue) Pop() any {
	n := len(q.items)
	b := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	delete(q.byID, b.event.ID)
	return b
}

// book adds ev, or moves the pending check with the same ID to ev's time.
// It reports whether an earlier booking was replaced.
func (q *checkQueue) book(ev CheckEvent, seq uint64) bool {
	if have, ok := q.byID[ev.ID]; ok {
		have.event = ev
		have.seq = seq
		heap.Fix(q, have.index)
		return true
	}
	heap.Push(q, &booking{event: ev, seq: seq})
	return false
}

// until returns how long before the earliest check falls due.
func (q *checkQueue) until(now time.Time) (time.Duration, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	return max(q.items[0].event.DueAt.Sub(now), 0), true
}

// takeDue removes every check due at or before now, earliest first.
func (q *checkQueue) takeDue(now time.Time) []CheckEvent {
	var due []CheckEvent
	for len(q.items) > 0 && !q.items[0].event.DueAt.After(now) {
		due = append(due, heap.Pop(q).(*booking).event)
	}
	return due
}

// Engine delivers CheckEvents on C as they fall due. Booking a check whose
// ID is already pending reschedules it, so a periodic or manual check is
// never queued twice. Delivery never blocks: when C is full the check is
// counted in Dropped and discarded.
type Engine struct {
	mu       sync.Mutex
	queue    checkQueue
	out      chan CheckEvent
	wakeup   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	seq      uint64
	dropped  atomic.Uint64
	replaced atomic.Uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  checkQueue{byID: make(map[string]*booking)},
		out:    make(chan CheckEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan CheckEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	go e.run()
}

// Stop ends delivery and closes C. Pending checks are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// After books ev to fall due d from now.
func (e *Engine) After(ev CheckEvent, d time.Duration) error {
	ev.DueAt = time.Now().UTC().Add(max(d, 0))
	return e.Schedule(ev)
}

// Schedule books ev at ev.DueAt, replacing any pending check with the same ID.
func (e *Engine) Schedule(ev CheckEvent) error {
	if ev.DueAt.IsZero() {
		return ErrInvalidDueTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}
	e.seq++
	if e.queue.book(ev, e.seq) {
		e.replaced.Add(1)
	}
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
	return nil
}

// Pending reports how many checks are waiting to fall due.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Len()
}

// Dropped counts checks discarded because C was full.
func (e *Engine) Dropped() uint64 {
	return e.dropped.Load()
}

// Replaced counts bookings that moved an already pending check.
func (e *Engine) Replaced() uint64 {
	return e.replaced.Load()
}

func (e *Engine) run() {
	defer close(e.doneCh)
	defer close(e.out)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		e.mu.Lock()
		wait, armed := e.queue.until(time.Now())
		e.mu.Unlock()

		var fire <-chan time.Time
		if armed {
			timer.Reset(wait)
			fire = timer.C
		}

		select {
		case <-e.stopCh:
			return
		case <-e.wakeup:
		case <-fire:
			e.mu.Lock()
			due := e.queue.takeDue(time.Now())
			e.mu.Unlock()
			e.deliver(due)
		}
	}
}

func (e *Engine) deliver(due []CheckEvent) {
	for _, ev := range due {
		select {
		case e.out <- ev:
		default:
			e.dropped.Add(1)
		}
	}
}
