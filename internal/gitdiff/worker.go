package gitdiff

import (
	"time"

	"github.com/termide/termide/internal/logging"
)

// Update is posted on a Worker's channel once a background diff completes.
type Update struct {
	Result Result
}

// Worker computes HEAD↔buffer diffs off the main loop and delivers results
// through a bounded single-producer/single-consumer channel, per spec §5.
// The App drains it on each tick (via TryRecv) rather than blocking on
// the diff.
type Worker struct {
	cache   *Cache
	updates chan Update
	cancel  chan struct{}
}

// NewWorker creates a worker backed by cache, with a small bounded channel
// so a burst of requests coalesces to the latest one (the debounce the
// Editor schedules per spec §4.2).
func NewWorker(cache *Cache) *Worker {
	return &Worker{
		cache:   cache,
		updates: make(chan Update, 1),
		cancel:  make(chan struct{}),
	}
}

// Request schedules a recomputation of the current buffer text against
// the cached HEAD snapshot. Call sites debounce repeated edits themselves
// (see editor.Editor.TickDiffRefresh) before calling Request.
func (w *Worker) Request(absPath, current string) {
	go func() {
		defer logging.RecoverWorker("gitdiff-request")
		if err := w.cache.EnsureHead(absPath); err != nil {
			return
		}
		res := w.cache.Refresh(current)
		select {
		case <-w.cancel:
			return
		default:
		}
		// Coalesce: drop a stale pending update before pushing the fresh one.
		select {
		case <-w.updates:
		default:
		}
		select {
		case w.updates <- Update{Result: res}:
		case <-w.cancel:
		}
	}()
}

// Updates returns the worker's update channel (the App drains it on each
// tick through TryRecv).
func (w *Worker) Updates() <-chan Update { return w.updates }

// TryRecv is a non-blocking drain helper matching the App's
// "channel try_recv" suspension point (spec §5).
func (w *Worker) TryRecv() (Update, bool) {
	select {
	case u := <-w.updates:
		return u, true
	default:
		return Update{}, false
	}
}

// Close stops any in-flight request from delivering further updates.
func (w *Worker) Close() { close(w.cancel) }

// DebounceWindow is the coalescing window between an edit and the scheduled
// diff refresh (spec §4.2 "Diff recomputation is debounced").
const DebounceWindow = 150 * time.Millisecond
