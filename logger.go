package fetchbody

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogRejection(op Op, err error)
	LogTaskPanic(recovered any)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogRejection(op Op, err error) {
	l.Logger.Printf("fetchbody: %s rejected: %s", op, err)
}

func (l stdLogger) LogTaskPanic(recovered any) {
	l.Logger.Printf("fetchbody: queued task panicked: %v", recovered)
}

// NewStdLogger adapts a standard library logger. A nil logger uses log.Default().
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}

	return stdLogger{l}
}

type TestLogger struct {
	tb testing.TB

	NumLogRejection int64
	NumLogTaskPanic int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogRejection(op Op, err error) {
	atomic.AddInt64(&l.NumLogRejection, 1)
	l.tb.Logf("fetchbody: %s rejected: %s", op, err)
}

func (l *TestLogger) LogTaskPanic(recovered any) {
	atomic.AddInt64(&l.NumLogTaskPanic, 1)
	l.tb.Logf("fetchbody: queued task panicked: %v", recovered)
}

// Rejections returns the number of logged rejections.
func (l *TestLogger) Rejections() int64 { return atomic.LoadInt64(&l.NumLogRejection) }

// TaskPanics returns the number of logged task panics.
func (l *TestLogger) TaskPanics() int64 { return atomic.LoadInt64(&l.NumLogTaskPanic) }

var _ Logger = &TestLogger{}
