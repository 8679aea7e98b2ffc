package panel

import (
	"fmt"
	"path/filepath"

	"github.com/termide/termide/internal/config"
	"github.com/termide/termide/internal/editor"
	"github.com/termide/termide/internal/gitdiff"
	"github.com/termide/termide/internal/highlight"
	"github.com/termide/termide/internal/render"
	"github.com/termide/termide/internal/rope"
	"github.com/termide/termide/internal/session"
)

// EditorPanel is the Editor variant of spec §4.6: a TextBuffer overlaid
// with syntax highlighting, a git-diff gutter, search/replace, and a
// cursor, per §4.2.
type EditorPanel struct {
	Ed          *editor.Editor
	cfg         config.Editor
	diffWorker  *gitdiff.Worker
	topLine     int
	wrapCache   []editor.VisualRow
	unsavedFile string // session buffers/ filename, for unsaved-on-close persistence
}

// NewEditorPanel creates an empty, untitled editor panel.
func NewEditorPanel(cfg config.Editor) *EditorPanel {
	ep := &EditorPanel{Ed: editor.New(), cfg: cfg}
	ep.applyConfig()
	return ep
}

// OpenEditorPanel loads path into a new editor panel.
func OpenEditorPanel(cfg config.Editor, path string) (*EditorPanel, error) {
	ed, err := editor.Open(path)
	if err != nil {
		return nil, err
	}
	ep := &EditorPanel{Ed: ed, cfg: cfg}
	ep.applyConfig()
	return ep, nil
}

func (p *EditorPanel) applyConfig() {
	p.Ed.IndentUseTabs = p.cfg.IndentStyle == config.IndentTab
	p.Ed.IndentWidth = p.cfg.IndentWidth
}

// AttachDiffWorker wires the background diff worker the App owns for
// this panel (one per editor, spec §5).
func (p *EditorPanel) AttachDiffWorker(w *gitdiff.Worker) {
	p.diffWorker = w
	p.Ed.AttachDiffWorker(w)
}

// wrapMode maps the config wrap mode to the editor package's enum.
func (p *EditorPanel) wrapMode() editor.WrapMode {
	switch p.cfg.WrapMode {
	case config.WrapSimple:
		return editor.WrapSimple
	case config.WrapSmart:
		return editor.WrapSmart
	default:
		return editor.WrapOff
	}
}

// Title implements Panel.
func (p *EditorPanel) Title() string {
	if path, ok := p.Ed.Buffer.FilePath(); ok {
		name := filepath.Base(path)
		if p.Ed.Buffer.Modified() {
			return name + " ●"
		}
		return name
	}
	if p.Ed.Buffer.Modified() {
		return "Untitled ●"
	}
	return "Untitled"
}

// ShouldAutoClose implements Panel: editors never self-close.
func (p *EditorPanel) ShouldAutoClose() bool { return false }

// NeedsCloseConfirmation implements Panel: unsaved changes prompt.
func (p *EditorPanel) NeedsCloseConfirmation() (string, bool) {
	if p.Ed.Buffer.Modified() {
		return fmt.Sprintf("%s has unsaved changes. Close anyway?", p.Title()), true
	}
	return "", false
}

// CapturesEscape implements Panel: a search/replace overlay swallows Esc.
func (p *EditorPanel) CapturesEscape() bool { return p.Ed.Search != nil }

// ToSessionDescriptor implements Panel.
func (p *EditorPanel) ToSessionDescriptor() (session.SessionPanel, bool) {
	sp := session.SessionPanel{Kind: session.PanelEditor}
	if path, ok := p.Ed.Buffer.FilePath(); ok {
		sp.Path = path
	}
	if p.unsavedFile != "" {
		sp.UnsavedBufferFile = p.unsavedFile
	}
	return sp, true
}

// HandleCommand implements Panel.
func (p *EditorPanel) HandleCommand(cmd Command) CommandResult {
	switch cmd.Kind {
	case CmdDiffPending:
		return CommandResult{Ok: true}
	case CmdFsChanged:
		p.Ed.MarkDiskChanged()
		return CommandResult{Ok: p.Ed.Conflicted}
	case CmdGotoLine:
		if cmd.Line >= 0 && cmd.Line < p.Ed.Buffer.LineCount() {
			p.Ed.Cursor = rope.Cursor{Line: cmd.Line, Column: 0}
		}
		return CommandResult{Ok: true}
	}
	return CommandResult{}
}

// HandleMouse implements Panel with a minimal click-to-position mapping;
// the CellBuffer-level hit testing lives in the rendering backend
// collaborator, out of scope per spec §1.
func (p *EditorPanel) HandleMouse(ev MouseEvent, area render.Rect) []Event {
	if !ev.Pressed || ev.Button != MouseLeft {
		return nil
	}
	line := p.topLine + (ev.Y - area.Y)
	if line < 0 {
		line = 0
	}
	if line >= p.Ed.Buffer.LineCount() {
		line = p.Ed.Buffer.LineCount() - 1
	}
	col := ev.X - area.X
	if max := p.Ed.Buffer.LineGraphemeCount(line); col > max {
		col = max
	}
	if col < 0 {
		col = 0
	}
	p.Ed.Cursor = rope.Cursor{Line: line, Column: col}
	return nil
}

// HandleKey implements Panel, translating a raw key into an editor
// command through the independently-testable parser, then executing it.
func (p *EditorPanel) HandleKey(key Key) []Event {
	flags := editor.ContextFlags{
		ReadOnly:        p.Ed.ReadOnly,
		SearchActive:    p.Ed.Search != nil,
		SelectionActive: p.Ed.SelectionActive,
	}
	ek := editor.Key{Rune: key.Rune, Name: key.Name, Ctrl: key.Ctrl, Shift: key.Shift, Alt: key.Alt}
	cmd := editor.ParseKey(ek, flags)

	switch cmd {
	case editor.CmdInsertText:
		if err := p.Ed.Execute(cmd, string(key.Rune)); err != nil {
			return []Event{{Kind: EventShowError, Message: err.Error()}}
		}
		return nil
	case editor.CmdSave:
		if err := p.Ed.Save(); err != nil {
			if p.Ed.Conflicted {
				return []Event{{Kind: EventShowConfirm, Title: "Save conflict", Message: err.Error(), Conflict: true}}
			}
			return []Event{{Kind: EventShowError, Message: err.Error()}}
		}
		return []Event{{Kind: EventSaveFile, Path: p.pathOrEmpty()}}
	case editor.CmdSaveAs:
		return []Event{{Kind: EventShowInput, Title: "Save As", Message: p.pathOrEmpty()}}
	case editor.CmdOpenSearch:
		p.Ed.Execute(cmd, "")
		return []Event{{Kind: EventShowSearch}}
	case editor.CmdOpenReplace:
		p.Ed.Execute(cmd, "")
		return []Event{{Kind: EventShowReplace}}
	case editor.CmdCopy, editor.CmdCut:
		if err := p.Ed.Execute(cmd, ""); err != nil {
			return []Event{{Kind: EventShowError, Message: err.Error()}}
		}
		return []Event{{Kind: EventCopyToClipboard}}
	case editor.CmdPaste:
		return []Event{{Kind: EventRequestPaste}}
	}

	if err := p.Ed.Execute(cmd, ""); err != nil {
		return []Event{{Kind: EventShowError, Message: err.Error()}}
	}
	return nil
}

func (p *EditorPanel) pathOrEmpty() string {
	path, _ := p.Ed.Buffer.FilePath()
	return path
}

// Render implements Panel: it draws the visible wrapped lines with their
// git-diff gutter and syntax highlighting, per spec §4.2. The selection
// and the cursor are not drawn; for a focused panel the cursor's visual
// position is computed and then discarded.
func (p *EditorPanel) Render(area render.Rect, cb render.CellBuffer, focused bool, theme render.Theme) {
	width := area.W
	if p.cfg.ShowGitDiff {
		width -= 5 // reserve gutter columns for the line-number/status marker
	}
	if width < 1 {
		width = 1
	}

	y := area.Y
	for line := p.topLine; line < p.Ed.Buffer.LineCount() && y < area.Y+area.H; line++ {
		status := p.Ed.GitDiff.LineStatus(line)
		gutterStyle := render.Style{Fg: theme.GutterDefault}
		switch status {
		case gitdiff.Added:
			gutterStyle.Fg = theme.DiffAdded
		case gitdiff.Modified:
			gutterStyle.Fg = theme.DiffModified
		}
		if p.cfg.ShowGitDiff {
			cb.DrawText(area.X, y, gutterStyle, fmt.Sprintf("%4d ", line+1))
		}

		text := p.Ed.Buffer.Line(line)
		rows := editor.WrapLine(text, width, p.wrapMode())
		for _, row := range rows {
			if y >= area.Y+area.H {
				break
			}
			x := area.X
			if p.cfg.ShowGitDiff {
				x += 5
			}
			if p.Ed.Lang != nil {
				p.renderHighlighted(cb, x, y, row.Text, theme)
			} else {
				cb.DrawText(x, y, render.Style{Fg: theme.Foreground}, row.Text)
			}
			y++
		}

		if n := p.Ed.GitDiff.DeletedAfter(line); n > 0 && p.cfg.ShowGitDiff && y < area.Y+area.H {
			cb.DrawText(area.X+5, y, render.Style{Fg: theme.DiffDeleted}, fmt.Sprintf("%d lines deleted", n))
			y++
		}
	}

	if focused {
		rows := editor.WrapLine(p.Ed.Buffer.Line(p.Ed.Cursor.Line), width, p.wrapMode())
		vr, vc := editor.CursorVisualPos(rows, p.Ed.Cursor.Column)
		_ = vr
		_ = vc
	}
}

func (p *EditorPanel) renderHighlighted(cb render.CellBuffer, x, y int, line string, theme render.Theme) {
	toks := p.Ed.Lang.HighlightLine(line)
	last := 0
	for _, t := range toks {
		if t.Start > last {
			cb.DrawText(x+last, y, render.Style{Fg: theme.Foreground}, line[last:t.Start])
		}
		style := render.Style{Fg: theme.Foreground}
		switch t.Kind {
		case highlight.TokenKeyword:
			style.Bold = true
		case highlight.TokenString, highlight.TokenComment, highlight.TokenNumber, highlight.TokenType:
			style.Italic = t.Kind == highlight.TokenComment
		}
		cb.DrawText(x+t.Start, y, style, line[t.Start:t.End])
		last = t.End
	}
	if last < len(line) {
		cb.DrawText(x+last, y, render.Style{Fg: theme.Foreground}, line[last:])
	}
}
