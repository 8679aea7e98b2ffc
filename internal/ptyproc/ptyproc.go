// Package ptyproc spawns and owns a shell/command under a pseudo-terminal,
// per spec §4.3's Terminal panel backing process.
//
// Grounded on the teacher's internal/terminal/panel.go (pty.Start / Resize /
// Close sequence) and process_linux.go's direct use of golang.org/x/sys/unix
// ioctls, generalized from a single hardcoded panel type into a reusable
// process handle any number of Terminal panels can own.
package ptyproc

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// GracePeriod is how long Kill waits after SIGTERM before escalating to
// SIGKILL, per spec §4.3/§5's teardown sequence.
const GracePeriod = 100 * time.Millisecond

// Process owns one PTY-backed child command.
type Process struct {
	mu      sync.Mutex
	file    *os.File
	cmd     *exec.Cmd
	running bool
}

// Start launches argv under a new PTY sized
// rows x cols, in its own process group so Kill can signal the whole tree.
func Start(argv []string, rows, cols int, extraEnv ...string) (*Process, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("ptyproc: empty argv")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), extraEnv...)
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	f, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("ptyproc: start: %w", err)
	}

	return &Process{file: f, cmd: cmd, running: true}, nil
}

// Read reads raw PTY output. Safe to call from a single dedicated reader
// goroutine only (spec's fixed background-worker model).
func (p *Process) Read(buf []byte) (int, error) {
	p.mu.Lock()
	f := p.file
	p.mu.Unlock()
	if f == nil {
		return 0, os.ErrClosed
	}
	return f.Read(buf)
}

// Write sends input bytes to the child.
func (p *Process) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running || p.file == nil {
		return 0, os.ErrClosed
	}
	return p.file.Write(data)
}

// Resize updates the PTY's window size.
func (p *Process) Resize(rows, cols int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return os.ErrClosed
	}
	return pty.Setsize(p.file, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Running reports whether the process is still considered alive.
func (p *Process) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// ForegroundProcessName reports the name of the process currently holding
// the PTY's foreground process group, via TIOCGPGRP + /proc/<pid>/comm.
// Returns "" if unavailable (non-Linux, or the ioctl fails).
func (p *Process) ForegroundProcessName() string {
	p.mu.Lock()
	f := p.file
	p.mu.Unlock()
	if f == nil {
		return ""
	}
	pgrp, err := unix.IoctlGetInt(int(f.Fd()), unix.TIOCGPGRP)
	if err != nil || pgrp <= 0 {
		return ""
	}
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pgrp))
	if err != nil {
		return ""
	}
	name := string(data)
	for len(name) > 0 && (name[len(name)-1] == '\n' || name[len(name)-1] == '\r') {
		name = name[:len(name)-1]
	}
	return name
}

// Kill tears the process down: SIGTERM to the whole process group, a grace
// period, then SIGKILL if it hasn't exited, per spec §4.3's teardown
// sequence. Always closes the PTY file on return.
func (p *Process) Kill() {
	p.mu.Lock()
	f := p.file
	cmd := p.cmd
	p.running = false
	p.file = nil
	p.mu.Unlock()

	if f != nil {
		_ = f.Close()
	}
	if cmd == nil || cmd.Process == nil {
		return
	}

	pgid := cmd.Process.Pid
	_ = syscall.Kill(-pgid, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		_, _ = cmd.Process.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(GracePeriod):
		if err := syscall.Kill(-pgid, syscall.SIGKILL); err != nil {
			log.Printf("ptyproc: SIGKILL failed for pgid %d: %v", pgid, err)
		}
		<-done
	}
}
