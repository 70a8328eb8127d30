// Package taskqueue runs asynchronous work with per-queue FIFO ordering.
//
// A fixed set of named queues is created lazily on first use. Each queue
// has exactly one background worker draining its mailbox serially;
// different queues run fully in parallel. Submit never blocks the
// caller and never deadlocks a worker re-submitting to its own queue —
// each queue's mailbox is an unbounded slice guarded by a condition
// variable rather than a fixed Go channel.
package taskqueue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vensus137/coreness-go/pkg/logger"
)

// ErrStopped is returned by Submit once Shutdown has been called.
var ErrStopped = errStopped{}

type errStopped struct{}

func (errStopped) Error() string { return "taskqueue: manager is shutting down" }

// Work is the unit of execution a queue runs. Its result (or error) is
// delivered through the Handle returned by Submit.
type Work func() (any, error)

// Handle represents one submitted task. Callers either block on Wait,
// or poll Ready/Value without blocking — the same handle supports both,
// matching the `ready`/`not_ready` placeholder-expander modifiers that
// poll a future task result between scenario steps.
type Handle struct {
	TaskID string

	done chan struct{}
	once sync.Once
	mu   sync.Mutex
	val  any
	err  error
}

func newHandle(taskID string) *Handle {
	return &Handle{TaskID: taskID, done: make(chan struct{})}
}

func (h *Handle) complete(val any, err error) {
	h.once.Do(func() {
		h.mu.Lock()
		h.val, h.err = val, err
		h.mu.Unlock()
		close(h.done)
	})
}

// Wait blocks until the task completes or ctx is cancelled.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.val, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ready reports whether the task has finished, without blocking.
func (h *Handle) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Value returns the completed result; ok is false when not yet ready.
func (h *Handle) Value() (val any, err error, ok bool) {
	if !h.Ready() {
		return nil, nil, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.val, h.err, true
}

type job struct {
	taskID        string
	work          Work
	fireAndForget bool
	handle        *Handle
}

// queue is a per-queue unbounded FIFO mailbox with exactly one drainer.
type queue struct {
	name string

	mu   sync.Mutex
	cond *sync.Cond
	jobs []job

	softCap int
	warned  bool

	wg sync.WaitGroup
}

func newQueue(name string, softCap int) *queue {
	q := &queue{name: name, softCap: softCap}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) push(j job) {
	q.mu.Lock()
	q.jobs = append(q.jobs, j)
	depth := len(q.jobs)
	if q.softCap > 0 && depth > q.softCap && !q.warned {
		q.warned = true
		logger.Warn("taskqueue: queue depth exceeds soft cap",
			logger.FieldQueue, q.name, logger.FieldCount, depth)
	} else if depth <= q.softCap {
		q.warned = false
	}
	q.cond.Signal()
	q.mu.Unlock()
}

// pop blocks for the next job. It returns ok=false once stopping is set,
// whether or not the mailbox still holds jobs, so it only ever returns a
// job the worker is committed to running.
func (q *queue) pop(stopping *atomic.Bool) (job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.jobs) == 0 {
		if stopping.Load() {
			return job{}, false
		}
		q.cond.Wait()
	}
	if stopping.Load() {
		return job{}, false
	}
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j, true
}

func (q *queue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *queue) wake() {
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}

func (q *queue) run(stopping *atomic.Bool) {
	defer q.wg.Done()
	for {
		if stopping.Load() {
			return
		}
		j, ok := q.pop(stopping)
		if !ok {
			return
		}
		q.execute(j)
	}
}

func (q *queue) execute(j job) {
	val, err := runSafely(j.work)
	if j.fireAndForget {
		if err != nil {
			logger.Error("taskqueue: fire-and-forget task failed",
				logger.FieldQueue, q.name, logger.FieldTaskID, j.taskID, logger.FieldError, err)
		}
		j.handle.complete(val, err)
		return
	}
	j.handle.complete(val, err)
}

func runSafely(work Work) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{recovered: r}
		}
	}()
	return work()
}

type panicError struct{ recovered any }

func (p *panicError) Error() string { return "taskqueue: task panicked" }

// Manager owns a set of named queues, created lazily on first Submit.
type Manager struct {
	mu              sync.Mutex
	queues          map[string]*queue
	softCap         int
	shutdownTimeout time.Duration
	stopping        atomic.Bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithSoftCap sets the per-queue depth that triggers a one-time warning
// log; queues stay logically unbounded regardless (§4.4 Backpressure).
func WithSoftCap(n int) Option { return func(m *Manager) { m.softCap = n } }

// WithShutdownTimeout bounds how long Shutdown waits for in-flight
// tasks to finish before abandoning the rest.
func WithShutdownTimeout(d time.Duration) Option {
	return func(m *Manager) { m.shutdownTimeout = d }
}

// NewManager creates a Manager. Default shutdown timeout is 3s, matching
// the original queued-executor's default.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		queues:          make(map[string]*queue),
		shutdownTimeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) getOrCreateQueue(name string) *queue {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[name]
	if !ok {
		q = newQueue(name, m.softCap)
		m.queues[name] = q
		q.wg.Add(1)
		go q.run(&m.stopping)
	}
	return q
}

// Submit enqueues work onto queue, preserving FIFO order within that
// queue. fireAndForget discards the result (errors are logged, not
// returned) but the returned Handle still completes, so callers that
// want both behaviors from one call site can ignore it safely.
//
// Re-entrant submission from inside a running task is safe for any
// queue, including its own: the mailbox is an unbounded slice, so a
// worker pushing onto the queue it is currently draining can never
// deadlock waiting for itself to pop.
func (m *Manager) Submit(taskID, queueName string, work Work, fireAndForget bool) (*Handle, error) {
	if m.stopping.Load() {
		return nil, ErrStopped
	}
	q := m.getOrCreateQueue(queueName)
	h := newHandle(taskID)
	q.push(job{taskID: taskID, work: work, fireAndForget: fireAndForget, handle: h})
	return h, nil
}

// QueueDepth reports how many tasks are waiting (excluding the one in
// flight) in the named queue. Returns 0 for a queue that doesn't exist.
func (m *Manager) QueueDepth(queueName string) int {
	m.mu.Lock()
	q, ok := m.queues[queueName]
	m.mu.Unlock()
	if !ok {
		return 0
	}
	return q.depth()
}

// Shutdown sets the stop flag (Submit starts rejecting new work
// immediately), wakes every queue so an idle worker notices, and waits
// up to the configured timeout for in-flight tasks to finish. Any task
// still queued when a worker notices the stop flag is abandoned — it
// never starts.
func (m *Manager) Shutdown(ctx context.Context) {
	m.stopping.Store(true)

	m.mu.Lock()
	queues := make([]*queue, 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	for _, q := range queues {
		q.wake()
	}

	done := make(chan struct{})
	go func() {
		for _, q := range queues {
			q.wg.Wait()
		}
		close(done)
	}()

	timeout := m.shutdownTimeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		logger.Warn("taskqueue: shutdown timeout, abandoning in-flight drain", logger.FieldDurationMS, timeout.Milliseconds())
	case <-ctx.Done():
	}
}
