package fetchbody

import (
	"context"
	"sync"
	"sync/atomic"
)

// TaskDestination receives tasks that must run later, never on the caller's stack.
type TaskDestination interface {
	Enqueue(task func())
}

// Queue is a FIFO task queue that runs its tasks one at a time, to completion, on
// whichever goroutine drives it. Tasks may be enqueued from any goroutine.
type Queue struct {
	logs    Logger
	mu      sync.Mutex
	tasks   []func()
	wake    chan struct{}
	driving atomic.Bool
	looping atomic.Bool
}

// NewQueue inits an empty queue. Panics in tasks are recovered and reported to logs.
func NewQueue(logs Logger) *Queue {
	if logs == nil {
		logs = NewStdLogger(nil)
	}

	return &Queue{logs: logs, wake: make(chan struct{}, 1)}
}

// Enqueue appends a task to the queue.
func (q *Queue) Enqueue(task func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()
	q.signal()
}

// signal wakes whoever drives the queue. A wake that is already pending suffices.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of tasks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}

// RunPending runs tasks until the queue is empty, including tasks enqueued while
// running, and returns how many ran. It returns 0 without running anything when
// the queue is already being driven, which also makes it safe to call from a task.
func (q *Queue) RunPending() int {
	if !q.driving.CompareAndSwap(false, true) {
		return 0
	}
	defer q.driving.Store(false)

	var n int
	for {
		task, ok := q.pop()
		if !ok {
			return n
		}

		q.run(task)
		n++
	}
}

// Run drives the queue until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	q.looping.Store(true)
	defer q.looping.Store(false)

	for {
		q.RunPending()

		select {
		case <-ctx.Done():
			return nil
		case <-q.wake:
		}
	}
}

func (q *Queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return nil, false
	}

	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]

	return task, true
}

func (q *Queue) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logs.LogTaskPanic(r)
		}
	}()

	task()
}

// parallelDestination runs every task on its own goroutine.
type parallelDestination struct{}

func (parallelDestination) Enqueue(task func()) { go task() }

var _ TaskDestination = &Queue{}

// Await blocks until p settles and returns its result. When no [Queue.Run] loop owns
// q, the calling goroutine drives q in the meantime.
func Await[T any](ctx context.Context, q *Queue, p *Promise[T]) (T, error) {
	var woken bool
	for {
		if q.looping.Load() {
			if woken {
				q.signal()
			}

			select {
			case <-ctx.Done():
				var zero T
				return zero, ctx.Err()
			case <-p.Done():
				return p.Result()
			}
		}

		q.RunPending()
		if p.State() != Pending {
			return p.Result()
		}

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-p.Done():
		case <-q.wake:
			woken = true
		}
	}
}
