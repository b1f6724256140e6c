package fetchbody

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// State of a [Promise].
type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// ErrPending is returned by [Promise.Result] while the promise has not settled.
var ErrPending = errors.New("promise is pending")

// Promise is a value that settles exactly once, either fulfilled with a value or
// rejected with an error. Reactions registered with [Promise.Then] always run as
// tasks on the promise's queue.
type Promise[T any] struct {
	dest      TaskDestination
	mu        sync.Mutex
	state     State
	value     T
	err       error
	reactions []func(T, error)
	done      chan struct{}
}

// NewPromise creates a pending promise whose reactions run on dest.
func NewPromise[T any](dest TaskDestination) *Promise[T] {
	return &Promise[T]{dest: dest, done: make(chan struct{})}
}

// RejectedPromise creates a promise that is already rejected with err.
func RejectedPromise[T any](dest TaskDestination, err error) *Promise[T] {
	p := NewPromise[T](dest)
	p.Reject(err)

	return p
}

// Resolve fulfills the promise with v. It reports false if the promise had already settled.
func (p *Promise[T]) Resolve(v T) bool {
	return p.settle(Fulfilled, v, nil)
}

// Reject rejects the promise with err. It reports false if the promise had already settled.
func (p *Promise[T]) Reject(err error) bool {
	if err == nil {
		err = errors.New("promise rejected without reason")
	}

	var zero T
	return p.settle(Rejected, zero, err)
}

func (p *Promise[T]) settle(state State, v T, err error) bool {
	p.mu.Lock()
	if p.state != Pending {
		p.mu.Unlock()
		return false
	}

	p.state, p.value, p.err = state, v, err
	reactions := p.reactions
	p.reactions = nil
	close(p.done)
	p.mu.Unlock()

	for _, fn := range reactions {
		p.dest.Enqueue(func() { fn(v, err) })
	}

	return true
}

// State returns the current state.
func (p *Promise[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Result returns the settled value or rejection reason, or [ErrPending].
func (p *Promise[T]) Result() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case Fulfilled:
		return p.value, nil
	case Rejected:
		return p.value, p.err
	default:
		var zero T
		return zero, ErrPending
	}
}

// Done is closed once the promise settled.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Then registers fn to run once the promise settled. fn receives the value and a
// nil error when fulfilled, or the zero value and the reason when rejected.
func (p *Promise[T]) Then(fn func(T, error)) {
	p.mu.Lock()
	if p.state == Pending {
		p.reactions = append(p.reactions, fn)
		p.mu.Unlock()
		return
	}

	v, err := p.value, p.err
	p.mu.Unlock()

	p.dest.Enqueue(func() { fn(v, err) })
}
