package task

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/control-plane/schema-registry-mcp/pkg/logging"
	"github.com/google/uuid"
)

const (
	progressCoalesceInterval = 250 * time.Millisecond
	defaultReapWindow        = time.Hour
	defaultTaskTimeout       = time.Hour
)

// Reporter is handed to a worker function to report progress. Percent must
// be non-decreasing; reports are coalesced at most every 250ms.
type Reporter interface {
	Report(percent int, message string)
}

// Token is a cooperative cancellation signal. Workers must poll Cancelled()
// at every network boundary and at the top of every inner loop.
type Token interface {
	Cancelled() bool
	Done() <-chan struct{}
}

// Func is the work a submitted task performs. It returns a result payload
// on success, or an error which is recorded as the task's FAILED payload.
type Func func(ctx context.Context, report Reporter, token Token) (interface{}, error)

type cancelToken struct {
	ch   chan struct{}
	once sync.Once
}

func newCancelToken() *cancelToken { return &cancelToken{ch: make(chan struct{})} }

func (c *cancelToken) cancel()            { c.once.Do(func() { close(c.ch) }) }
func (c *cancelToken) Cancelled() bool     { select { case <-c.ch: return true; default: return false } }
func (c *cancelToken) Done() <-chan struct{} { return c.ch }

type progressReporter struct {
	mu       sync.Mutex
	task     *Task
	taskMu   *sync.Mutex
	lastSent time.Time
}

func (r *progressReporter) Report(percent int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if !r.lastSent.IsZero() && now.Sub(r.lastSent) < progressCoalesceInterval && percent < 100 {
		return
	}
	r.lastSent = now

	r.taskMu.Lock()
	if percent > r.task.ProgressPercent {
		r.task.ProgressPercent = percent
	}
	r.task.ProgressMessage = message
	r.taskMu.Unlock()
}

// entry is the engine's internal bookkeeping for one submitted task.
type entry struct {
	task   *Task
	mu     sync.Mutex
	cancel *cancelToken
	fn     Func
}

// Engine is a bounded worker pool driving submitted Funcs, with in-memory
// task tracking, progress, cancellation, and reaping.
type Engine struct {
	workers int
	queue   chan *entry

	mapMu sync.Mutex
	tasks map[string]*entry

	importLocks   map[string]chan struct{}
	importLocksMu sync.Mutex

	reapWindow time.Duration
	taskTTL    time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewEngine builds an Engine with the default worker count
// min(8, 2*NumCPU) and starts its worker goroutines.
func NewEngine() *Engine {
	n := 2 * runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	e := &Engine{
		workers:     n,
		queue:       make(chan *entry, 1024),
		tasks:       make(map[string]*entry),
		importLocks: make(map[string]chan struct{}),
		reapWindow:  defaultReapWindow,
		taskTTL:     defaultTaskTimeout,
		stopCh:      make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		e.wg.Add(1)
		go e.runWorker()
	}
	go e.reapLoop()
	return e
}

// Stop signals all workers to finish their current task and exit, and
// waits for them to do so.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
		close(e.queue)
	})
	e.wg.Wait()
}

// Submit enqueues fn as a new task of the given type and returns its ID
// immediately; fn runs on a pooled worker.
func (e *Engine) Submit(typ Type, fn Func) string {
	id := uuid.NewString()
	t := &Task{ID: id, Type: typ, CreatedAt: time.Now(), State: StatePending}
	ent := &entry{task: t, cancel: newCancelToken()}

	e.mapMu.Lock()
	e.tasks[id] = ent
	e.mapMu.Unlock()

	ent.fn = fn
	e.queue <- ent
	return id
}

func (e *Engine) runWorker() {
	defer e.wg.Done()
	for ent := range e.queue {
		e.run(ent)
	}
}

func (e *Engine) run(ent *entry) {
	ent.mu.Lock()
	ent.task.State = StateRunning
	ent.task.StartedAt = time.Now()
	ent.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), e.taskTTL)
	defer cancel()
	go func() {
		select {
		case <-ent.cancel.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	reporter := &progressReporter{task: ent.task, taskMu: &ent.mu}

	result, err := e.safeRun(ctx, ent.fn, reporter, ent.cancel)

	ent.mu.Lock()
	defer ent.mu.Unlock()
	ent.task.EndedAt = time.Now()
	switch {
	case err != nil && ent.cancel.Cancelled():
		ent.task.State = StateCancelled
		ent.task.Err = errorPayload(err)
	case err != nil:
		ent.task.State = StateFailed
		ent.task.Err = errorPayload(err)
	default:
		ent.task.State = StateCompleted
		ent.task.ProgressPercent = 100
		ent.task.Result = result
	}
}

func (e *Engine) safeRun(ctx context.Context, fn Func, reporter Reporter, token Token) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("TaskEngine", fmt.Errorf("%v", r), "task worker panicked")
			err = apierrors.New(apierrors.CodeInternal, "task worker panicked: %v", r)
		}
	}()
	return fn(ctx, reporter, token)
}

func errorPayload(err error) *ErrorPayload {
	ce := apierrors.AsCoded(err)
	return &ErrorPayload{Code: string(ce.Code), Message: ce.Message, Details: ce.Details}
}

// Cancel flips task id's cancellation token. A no-op if the task is
// already terminal; an unknown id is a TASK_NOT_FOUND error.
func (e *Engine) Cancel(id string) error {
	e.mapMu.Lock()
	ent, ok := e.tasks[id]
	e.mapMu.Unlock()
	if !ok {
		return apierrors.New(apierrors.CodeTaskNotFound, "no task %q", id)
	}

	ent.mu.Lock()
	terminal := ent.task.State.IsTerminal()
	ent.mu.Unlock()
	if terminal {
		return nil
	}
	ent.cancel.cancel()
	return nil
}

// Status returns a snapshot of task id.
func (e *Engine) Status(id string) (Snapshot, error) {
	e.mapMu.Lock()
	ent, ok := e.tasks[id]
	e.mapMu.Unlock()
	if !ok {
		return Snapshot{}, apierrors.New(apierrors.CodeTaskNotFound, "no task %q", id)
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.task.snapshot(), nil
}

// ListActive returns a snapshot of every non-terminal task.
func (e *Engine) ListActive() []Snapshot {
	e.mapMu.Lock()
	defer e.mapMu.Unlock()
	var out []Snapshot
	for _, ent := range e.tasks {
		ent.mu.Lock()
		if !ent.task.State.IsTerminal() {
			out = append(out, ent.task.snapshot())
		}
		ent.mu.Unlock()
	}
	return out
}

// ListByType returns a snapshot of every task of the given type,
// regardless of state, used by list_tasks when a type filter is given.
func (e *Engine) ListByType(typ Type) []Snapshot {
	e.mapMu.Lock()
	defer e.mapMu.Unlock()
	var out []Snapshot
	for _, ent := range e.tasks {
		ent.mu.Lock()
		if ent.task.Type == typ {
			out = append(out, ent.task.snapshot())
		}
		ent.mu.Unlock()
	}
	return out
}

// AcquireImportLock acquires the per-registry exclusive IMPORT-mode window
// for name. At most one migration task per target registry may hold this
// window at a time (spec.md §5); by default a second acquirer fails fast
// with REGISTRY_BUSY rather than queuing. The returned release func is
// idempotent and MUST be deferred immediately so the lock is released on
// every exit path, including cancellation and panic.
func (e *Engine) AcquireImportLock(registryName string) (release func(), err error) {
	e.importLocksMu.Lock()
	ch, ok := e.importLocks[registryName]
	if !ok {
		ch = make(chan struct{}, 1)
		e.importLocks[registryName] = ch
	}
	e.importLocksMu.Unlock()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() { <-ch })
		}, nil
	default:
		return nil, apierrors.New(apierrors.CodeRegistryBusy,
			"registry %q already has an IMPORT-mode migration in progress", registryName).
			WithDetail("registry", registryName)
	}
}

func (e *Engine) reapLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			e.reapOnce()
		}
	}
}

func (e *Engine) reapOnce() {
	now := time.Now()
	e.mapMu.Lock()
	defer e.mapMu.Unlock()
	for id, ent := range e.tasks {
		ent.mu.Lock()
		terminal := ent.task.State.IsTerminal()
		endedAt := ent.task.EndedAt
		ent.mu.Unlock()
		if terminal && now.Sub(endedAt) > e.reapWindow {
			delete(e.tasks, id)
		}
	}
}
