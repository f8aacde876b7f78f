// Package notify reports operation outcomes to the user without tying the
// caller to a UI.
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a one-shot, user-facing message.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier delivers notifications to whoever is watching.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

func Success(ctx context.Context, n Notifier, message string) {
	n.Notify(ctx, Notification{Level: LevelSuccess, Message: message})
}

// Failure reports message to the user; err is only meant for logs and is
// attached when n is a Logging notifier.
func Failure(ctx context.Context, n Notifier, message string, err error) {
	if l, ok := n.(*Logging); ok {
		l.failure(ctx, message, err)
		return
	}
	n.Notify(ctx, Notification{Level: LevelError, Message: message})
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications in order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Logging forwards to next and writes every notification to the log.
type Logging struct {
	next   Notifier
	logger *zap.Logger
}

func NewLogging(next Notifier, logger *zap.Logger) *Logging {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logging{next: next, logger: logger.Named("notify")}
}

func (l *Logging) Notify(ctx context.Context, n Notification) {
	if n.Level == LevelError {
		l.logger.Warn(n.Message)
	} else {
		l.logger.Debug(n.Message, zap.String("level", string(n.Level)))
	}
	if l.next != nil {
		l.next.Notify(ctx, n)
	}
}

func (l *Logging) failure(ctx context.Context, message string, err error) {
	l.logger.Warn(message, zap.Error(err))
	if l.next != nil {
		l.next.Notify(ctx, Notification{Level: LevelError, Message: message})
	}
}
