package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrQueueFull = errors.New("notification queue is full")

const (
	errorBufferSize = 64
	taskTimeout     = 2 * time.Minute
)

// Handler processes one task.
type Handler func(ctx context.Context, task Task) error

// TaskError carries a failed task to the error channel.
type TaskError struct {
	Trigger  Trigger
	ReportID string
	Err      error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("notification %s for report %s: %v", e.Trigger, e.ReportID, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Dispatcher runs tasks on a fixed pool of workers fed by a bounded queue.
// Submit never waits: callers on the request path are never slowed down by notifications.
type Dispatcher struct {
	handler Handler
	workers int
	tasks   chan Task
	errs    chan error

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

func NewDispatcher(handler Handler, workers int, queueSize int) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		handler: handler,
		workers: workers,
		tasks:   make(chan Task, queueSize),
		errs:    make(chan error, errorBufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for task := range d.tasks {
				d.run(task)
			}
		}()
	}
}

// Submit enqueues the task and returns immediately. It reports false when the
// dispatcher is shut down or the queue is full.
func (d *Dispatcher) Submit(task Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}

	select {
	case d.tasks <- task:
		return true
	default:
		d.report(&TaskError{Trigger: task.Trigger, ReportID: task.ReportID, Err: ErrQueueFull})
		return false
	}
}

// Errors delivers task failures. It is closed once Shutdown has drained every worker.
func (d *Dispatcher) Errors() <-chan error {
	return d.errs
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
// If ctx expires first, in-flight tasks are cancelled.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.tasks)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		close(d.errs)
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}

func (d *Dispatcher) run(task Task) {
	ctx, cancel := context.WithTimeout(d.ctx, taskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.report(&TaskError{Trigger: task.Trigger, ReportID: task.ReportID, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	if err := d.handler(ctx, task); err != nil {
		d.report(&TaskError{Trigger: task.Trigger, ReportID: task.ReportID, Err: err})
	}
}

func (d *Dispatcher) report(err error) {
	select {
	case d.errs <- err:
	default:
		log.Error().Err(err).Msg("notification error channel full")
	}
}

// LogErrors drains the error channel into the logger until it is closed.
func LogErrors(errs <-chan error) {
	for err := range errs {
		log.Error().Err(err).Msg("notification failed")
	}
}
