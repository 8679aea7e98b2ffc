// Command termide is TermIDE's entrypoint: flag/config resolution,
// logging setup, and the App Core tick loop.
//
// Grounded on the teacher's cmd/thicc/micro.go main() (flag parsing,
// config-dir resolution, deferred panic recovery restoring the
// terminal, signal-driven resize) but with no tcell.Screen: terminal
// rendering and raw-mode input decoding are the external "rendering
// primitives" collaborator spec.md §1 names as out of scope. This
// binary drives App Core's event loop and a minimal stdin byte
// decoder; painting the result to a real terminal is left to that
// external collaborator.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	"unsafe"

	"github.com/go-errors/errors"

	"github.com/termide/termide/internal/app"
	"github.com/termide/termide/internal/config"
	"github.com/termide/termide/internal/logging"
	"github.com/termide/termide/internal/panel"
)

var (
	flagConfigDir = flag.String("config-dir", "", "Specify a custom location for the configuration directory")
	flagVersion   = flag.Bool("version", false, "Show the version number and exit")
)

// version is set at build time via -ldflags, matching the teacher's
// convention; left as "dev" for an ordinary build.
var version = "dev"

func main() {
	flag.Parse()
	if *flagVersion {
		fmt.Println("termide " + version)
		return
	}

	projectRoot, err := resolveProjectRoot(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "termide:", err)
		os.Exit(1)
	}

	cfgDir, err := config.Dir(*flagConfigDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "termide:", err)
		os.Exit(1)
	}
	cfg, err := config.Load(cfgDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "termide:", err)
		os.Exit(1)
	}

	a, err := app.New(cfg, projectRoot)
	if err != nil {
		fmt.Fprintln(os.Stderr, "termide:", err)
		os.Exit(1)
	}
	defer a.Close()

	logFile, err := logging.Init(logging.Config{
		Dir:       a.Session.LogsDir(),
		MinLevel:  logging.ParseLevel(cfg.Logging.MinLevel),
		Retention: 24 * time.Hour,
		FilePath:  cfg.Logging.FilePath,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "termide: logging:", err)
		os.Exit(1)
	}
	defer logFile.Close()

	defer func() {
		if r := recover(); r != nil {
			log := errors.Wrap(fmt.Errorf("%v", r), 1)
			fmt.Fprintln(os.Stderr, "termide: fatal:", log.ErrorStack())
			os.Exit(1)
		}
	}()

	width, height := terminalSize()
	if err := a.RestoreOrWelcome(width); err != nil {
		fmt.Fprintln(os.Stderr, "termide: session:", err)
	}
	a.Resize(width, height)

	run(a)
}

// resolveProjectRoot turns the optional positional argument into an
// absolute directory: the argument itself if it's a directory, its
// parent if it's a file, or the current working directory if omitted.
func resolveProjectRoot(arg string) (string, error) {
	if arg == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}

// terminalSize reports the controlling terminal's dimensions, falling
// back to a conservative default when stdout isn't a terminal (e.g.
// under a test harness or when piped).
func terminalSize() (width, height int) {
	type winsize struct {
		Row, Col, Xpixel, Ypixel uint16
	}
	ws := &winsize{}
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(os.Stdout.Fd()), uintptr(syscall.TIOCGWINSZ), uintptr(unsafe.Pointer(ws)))
	if errno != 0 || ws.Col == 0 || ws.Row == 0 {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

// run drives App Core's cooperative tick loop: a ticker fires Tick,
// SIGWINCH triggers Resize, and a background goroutine decodes stdin
// bytes into Keys. Nothing paints CellBuffer output; that is the
// rendering backend's job (spec §1 non-goal).
func run(a *app.App) {
	keys := make(chan panel.Key, 16)
	go decodeStdin(keys)

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(app.Tick)
	defer ticker.Stop()

	for {
		select {
		case key := <-keys:
			a.HandleKey(key)
		case <-winch:
			w, h := terminalSize()
			a.Resize(w, h)
		case <-interrupt:
			if err := a.SaveSession(); err != nil {
				fmt.Fprintln(os.Stderr, "termide: save session:", err)
			}
			return
		case <-ticker.C:
			a.Tick()
		}
		if a.Quitting {
			if err := a.SaveSession(); err != nil {
				fmt.Fprintln(os.Stderr, "termide: save session:", err)
			}
			return
		}
	}
}

// decodeStdin turns raw stdin bytes into panel.Keys, recognizing the
// common C0 controls and a handful of CSI arrow/navigation sequences;
// anything else is forwarded as its first rune. Full VT input parsing
// lives in internal/vt for terminal *panel* content, not top-level
// application input, so this stays intentionally minimal.
func decodeStdin(out chan<- panel.Key) {
	r := bufio.NewReader(os.Stdin)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		switch {
		case b == 0x1b:
			out <- decodeEscape(r)
		case b == 0x7f:
			out <- panel.Key{Name: "Backspace"}
		case b == '\r' || b == '\n':
			out <- panel.Key{Name: "Enter"}
		case b == '\t':
			out <- panel.Key{Name: "Tab"}
		case b < 0x20:
			out <- panel.Key{Rune: rune('a' + b - 1), Ctrl: true}
		default:
			out <- panel.Key{Rune: rune(b)}
		}
	}
}

func decodeEscape(r *bufio.Reader) panel.Key {
	b1, err := r.ReadByte()
	if err != nil {
		return panel.Key{Name: "Esc"}
	}
	if b1 != '[' && b1 != 'O' {
		return panel.Key{Name: "Esc"}
	}
	b2, err := r.ReadByte()
	if err != nil {
		return panel.Key{Name: "Esc"}
	}
	switch b2 {
	case 'A':
		return panel.Key{Name: "Up"}
	case 'B':
		return panel.Key{Name: "Down"}
	case 'C':
		return panel.Key{Name: "Right"}
	case 'D':
		return panel.Key{Name: "Left"}
	case 'H':
		return panel.Key{Name: "Home"}
	case 'F':
		return panel.Key{Name: "End"}
	case '5':
		r.ReadByte() // trailing '~'
		return panel.Key{Name: "PageUp"}
	case '6':
		r.ReadByte()
		return panel.Key{Name: "PageDown"}
	default:
		return panel.Key{Name: "Esc"}
	}
}
