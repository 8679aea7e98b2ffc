package panel

import (
	"github.com/termide/termide/internal/render"
	"github.com/termide/termide/internal/session"
)

// WelcomePanel is the Welcome variant of spec §4.6: a static landing
// panel shown when a session has no persisted panels to restore, or the
// user explicitly opens one from the command palette.
type WelcomePanel struct {
	RecentPaths []string
}

// NewWelcomePanel creates a welcome panel listing recently opened paths
// (most-recent-first, truncated by the caller).
func NewWelcomePanel(recent []string) *WelcomePanel {
	return &WelcomePanel{RecentPaths: recent}
}

func (p *WelcomePanel) Title() string { return "Welcome" }

func (p *WelcomePanel) ShouldAutoClose() bool { return false }

func (p *WelcomePanel) NeedsCloseConfirmation() (string, bool) { return "", false }

func (p *WelcomePanel) CapturesEscape() bool { return false }

func (p *WelcomePanel) ToSessionDescriptor() (session.SessionPanel, bool) {
	return session.SessionPanel{Kind: session.PanelWelcome}, true
}

func (p *WelcomePanel) HandleCommand(cmd Command) CommandResult { return CommandResult{} }

func (p *WelcomePanel) HandleMouse(ev MouseEvent, area render.Rect) []Event {
	if !ev.Pressed || ev.Button != MouseLeft {
		return nil
	}
	idx := ev.Y - area.Y - 3
	if idx >= 0 && idx < len(p.RecentPaths) {
		return []Event{{Kind: EventOpenFile, Path: p.RecentPaths[idx]}}
	}
	return nil
}

func (p *WelcomePanel) HandleKey(key Key) []Event {
	if key.Ctrl && (key.Rune == 'n' || key.Rune == 'N') {
		return []Event{{Kind: EventSplitPanel}}
	}
	if key.Ctrl && (key.Rune == 'o' || key.Rune == 'O') {
		return []Event{{Kind: EventShowInput, Title: "Open file"}}
	}
	return nil
}

// Render draws a centered title and a recent-paths list, entirely
// backend-agnostic text, per spec §1's rendering-backend non-goal.
func (p *WelcomePanel) Render(area render.Rect, cb render.CellBuffer, focused bool, theme render.Theme) {
	title := "TermIDE"
	cb.DrawText(area.X+(area.W-len(title))/2, area.Y, render.Style{Fg: theme.Accent, Bold: true}, title)
	hint := "Ctrl+O to open a file · Ctrl+N for a new panel"
	if area.W > len(hint) {
		cb.DrawText(area.X+(area.W-len(hint))/2, area.Y+1, render.Style{Fg: theme.Foreground}, hint)
	}
	y := area.Y + 3
	for i, path := range p.RecentPaths {
		if y >= area.Y+area.H {
			break
		}
		cb.DrawText(area.X+2, y, render.Style{Fg: theme.Foreground}, path)
		y++
		_ = i
	}
}
