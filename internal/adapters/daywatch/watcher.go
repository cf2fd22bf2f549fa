// Package daywatch reschedules the planner when the local calendar day rolls over.
package daywatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidSpec reports a day-boundary expression the cron parser rejects.
var ErrInvalidSpec = errors.New("invalid day boundary spec")

// Session reschedules every homework item for the current day.
type Session interface {
	StartSession(context.Context) (int, error)
}

// Logger receives one line per boundary run.
type Logger interface {
	Info(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// Watcher fires a planner session on every configured boundary.
type Watcher struct {
	mu       sync.Mutex
	spec     string
	schedule cron.Schedule
	loc      *time.Location
	session  Session
	log      Logger
	c        *cron.Cron
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// New validates spec and builds an idle watcher. A nil loc means time.Local.
func New(spec string, loc *time.Location, session Session, log Logger) (*Watcher, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	spec = strings.TrimSpace(spec)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSpec, spec, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &Watcher{
		spec:     spec,
		schedule: schedule,
		loc:      loc,
		session:  session,
		log:      log,
	}, nil
}

// Start begins firing sessions until Stop. Calling Start twice is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.c != nil {
		return
	}
	w.c = cron.New(cron.WithParser(parser), cron.WithLocation(w.loc))
	w.c.Schedule(w.schedule, cron.FuncJob(func() {
		_, _ = w.Tick(ctx)
	}))
	w.c.Start()
	w.info("day watcher started", "spec", w.spec, "next", w.Next(time.Now()).Format(time.RFC3339))
}

// Stop halts the cron loop and waits for a running session to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	c := w.c
	w.c = nil
	w.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	w.info("day watcher stopped")
}

// Next returns the first boundary after from in the watcher location.
func (w *Watcher) Next(from time.Time) time.Time {
	return w.schedule.Next(from.In(w.loc))
}

// Tick runs one session immediately.
func (w *Watcher) Tick(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	changed, err := w.session.StartSession(ctx)
	if err != nil {
		w.errorf("day boundary session failed", "err", err)
		return 0, err
	}
	w.info("day boundary session", "rescheduled", changed)
	return changed, nil
}

func (w *Watcher) info(msg string, keyvals ...any) {
	if w.log != nil {
		w.log.Info(msg, keyvals...)
	}
}

func (w *Watcher) errorf(msg string, keyvals ...any) {
	if w.log != nil {
		w.log.Error(msg, keyvals...)
	}
}
