// Package fswatch provides the two directory-watching background workers of
// spec §5: a filesystem watcher posting FsUpdate, and a git-metadata
// watcher posting GitStatusUpdate. Both debounce rapid bursts of events
// into a single notification.
//
// Grounded on the teacher's internal/filemanager/watcher.go (fsnotify
// recursive-add, debounce-timer event loop, skip-dir filtering), split into
// two purpose-built workers and generalized to push onto a channel the App
// drains each tick instead of invoking a callback directly.
package fswatch

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zyedidia/glob"

	"github.com/termide/termide/internal/logging"
)

// FsUpdate is posted when any watched path changes.
type FsUpdate struct {
	ChangedPath string
}

// GitStatusUpdate is posted when a repository's metadata (HEAD, index,
// refs) changes.
type GitStatusUpdate struct {
	RepoPath string
}

// DebounceWindow coalesces bursts of filesystem events into one update.
const DebounceWindow = 100 * time.Millisecond

// IgnorePatterns are glob patterns, evaluated against each path component,
// for directories the watcher never descends into.
var IgnorePatterns = []string{".git", "node_modules", "target", "vendor", ".cache"}

func matchesIgnore(name string) bool {
	for _, pat := range IgnorePatterns {
		if ok, _ := glob.Glob(pat, name); ok {
			return true
		}
	}
	return false
}

// Watcher recursively watches root for changes, debouncing bursts into a
// single FsUpdate per quiet period.
type Watcher struct {
	fsw     *fsnotify.Watcher
	root    string
	updates chan FsUpdate
	stop    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching root's directory tree.
func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:     fsw,
		root:    root,
		updates: make(chan FsUpdate, 1),
		stop:    make(chan struct{}),
	}
	w.addRecursive(root)
	go w.loop()
	return w, nil
}

func (w *Watcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if p != root && (matchesIgnore(name) || (len(name) > 0 && name[0] == '.')) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			log.Printf("termide fswatch: add %s: %v", p, err)
		}
		return nil
	})
}

// loop is the fixed filesystem-watcher background worker of spec §5. A
// panic here (e.g. from a malformed event) is caught at this top level
// per spec §9/§7: the watcher degrades silently rather than crashing.
func (w *Watcher) loop() {
	defer logging.RecoverWorker("fswatch-watcher")
	var timer *time.Timer
	var pending string

	flush := func() {
		select {
		case w.updates <- FsUpdate{ChangedPath: pending}:
		default:
			// A prior update hasn't been drained yet; drop this one's
			// exact path but the channel still holds a pending update.
		}
	}

	for {
		select {
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if matchesIgnore(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.addRecursive(ev.Name)
				}
			}
			pending = ev.Name
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(DebounceWindow, flush)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("termide fswatch: error: %v", err)
		}
	}
}

// Updates returns the channel the App drains each tick.
func (w *Watcher) Updates() <-chan FsUpdate { return w.updates }

// TryRecv performs a single non-blocking drain.
func (w *Watcher) TryRecv() (FsUpdate, bool) {
	select {
	case u := <-w.updates:
		return u, true
	default:
		return FsUpdate{}, false
	}
}

// Close stops the watcher.
func (w *Watcher) Close() {
	w.once.Do(func() {
		close(w.stop)
		_ = w.fsw.Close()
	})
}

// GitWatcher watches a repository's .git metadata directory (HEAD, index,
// refs/) and posts debounced GitStatusUpdate notifications.
type GitWatcher struct {
	fsw      *fsnotify.Watcher
	repoPath string
	updates  chan GitStatusUpdate
	stop     chan struct{}
	once     sync.Once
}

// NewGitWatcher watches repoPath/.git for changes.
func NewGitWatcher(repoPath string) (*GitWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	gitDir := filepath.Join(repoPath, ".git")
	for _, sub := range []string{"", "refs", "refs/heads"} {
		_ = fsw.Add(filepath.Join(gitDir, sub))
	}
	gw := &GitWatcher{
		fsw:      fsw,
		repoPath: repoPath,
		updates:  make(chan GitStatusUpdate, 1),
		stop:     make(chan struct{}),
	}
	go gw.loop()
	return gw, nil
}

// loop is the fixed git-metadata-watcher background worker of spec §5,
// recovering from panics the same way Watcher.loop does.
func (gw *GitWatcher) loop() {
	defer logging.RecoverWorker("fswatch-git-watcher")
	var timer *time.Timer
	flush := func() {
		select {
		case gw.updates <- GitStatusUpdate{RepoPath: gw.repoPath}:
		default:
		}
	}
	for {
		select {
		case <-gw.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case _, ok := <-gw.fsw.Events:
			if !ok {
				return
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(DebounceWindow, flush)
		case err, ok := <-gw.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("termide fswatch: git watcher error: %v", err)
		}
	}
}

// Updates returns the channel the App drains each tick.
func (gw *GitWatcher) Updates() <-chan GitStatusUpdate { return gw.updates }

// TryRecv performs a single non-blocking drain.
func (gw *GitWatcher) TryRecv() (GitStatusUpdate, bool) {
	select {
	case u := <-gw.updates:
		return u, true
	default:
		return GitStatusUpdate{}, false
	}
}

// Close stops the watcher.
func (gw *GitWatcher) Close() {
	gw.once.Do(func() {
		close(gw.stop)
		_ = gw.fsw.Close()
	})
}
