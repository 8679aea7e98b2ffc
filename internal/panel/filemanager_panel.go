package panel

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/termide/termide/internal/filemanager"
	"github.com/termide/termide/internal/render"
	"github.com/termide/termide/internal/session"
)

// FileManagerPanel is the FileManager variant of spec §4.6: a file tree
// plus a fuzzy quick-find index over the same root.
type FileManagerPanel struct {
	Tree  *filemanager.Tree
	Index *filemanager.FileIndex
	watcherPath string

	// clipboard holds the paths most recently copied ('c') or cut ('x'),
	// pasted ('v') into the current directory via a ShowConfirm event.
	clipboard     []string
	clipboardMove bool
}

// NewFileManagerPanel creates a file manager rooted at dir and kicks off
// an async quick-find index build.
func NewFileManagerPanel(dir string) (*FileManagerPanel, error) {
	tree := filemanager.NewTree(dir)
	if err := tree.Scan(dir); err != nil {
		return nil, err
	}
	idx := filemanager.NewFileIndex(dir)
	go idx.Build()
	return &FileManagerPanel{Tree: tree, Index: idx, watcherPath: dir}, nil
}

func (p *FileManagerPanel) Title() string { return filepath.Base(p.Tree.Root) }

func (p *FileManagerPanel) ShouldAutoClose() bool { return false }

func (p *FileManagerPanel) NeedsCloseConfirmation() (string, bool) { return "", false }

func (p *FileManagerPanel) CapturesEscape() bool { return false }

func (p *FileManagerPanel) ToSessionDescriptor() (session.SessionPanel, bool) {
	return session.SessionPanel{Kind: session.PanelFileManager, Path: p.Tree.Root}, true
}

func (p *FileManagerPanel) HandleCommand(cmd Command) CommandResult {
	switch cmd.Kind {
	case CmdCurrentDirectory:
		return CommandResult{Str: p.Tree.CurrentDir, Ok: true}
	case CmdGitRepoRoot:
		root := p.Tree.Root
		return CommandResult{Str: root, Ok: true}
	case CmdFsChanged:
		_ = p.Tree.Refresh()
		p.Index.Refresh()
		return CommandResult{Ok: true}
	}
	return CommandResult{}
}

func (p *FileManagerPanel) HandleMouse(ev MouseEvent, area render.Rect) []Event {
	if !ev.Pressed || ev.Button != MouseLeft {
		return nil
	}
	idx := ev.Y - area.Y
	if !p.Tree.SelectIndex(idx) {
		return nil
	}
	node := p.Tree.GetSelected()
	if node == nil {
		return nil
	}
	if node.IsDir {
		_ = p.Tree.Toggle(node)
		return nil
	}
	return []Event{{Kind: EventOpenFile, Path: node.Path}}
}

// HandleKey implements Panel. Navigation (arrows/Enter) walks the tree
// in place; the remaining bindings emit a ShowInput/ShowConfirm event
// tagged by Title so the App can route it to the matching PendingAction
// (create/delete/copy/move/rename-with-pattern all go through spec
// §4.6's fixed EventKind set rather than inventing new ones).
func (p *FileManagerPanel) HandleKey(key Key) []Event {
	switch key.Name {
	case "Up":
		p.Tree.MoveUp()
		return nil
	case "Down":
		p.Tree.MoveDown()
		return nil
	case "Enter":
		node := p.Tree.GetSelected()
		if node == nil {
			return nil
		}
		if node.IsDir {
			_ = p.Tree.Toggle(node)
			return nil
		}
		return []Event{{Kind: EventOpenFile, Path: node.Path}}
	case "Right":
		if node := p.Tree.GetSelected(); node != nil && node.IsDir && !node.Expanded {
			_ = p.Tree.Expand(node)
		}
		return nil
	case "Left":
		if node := p.Tree.GetSelected(); node != nil && node.IsDir && node.Expanded {
			p.Tree.Collapse(node)
		}
		return nil
	}

	if key.Ctrl {
		if key.Rune == 'p' || key.Rune == 'P' {
			return []Event{{Kind: EventShowSelect, Title: "Quick Find"}}
		}
		return nil
	}

	switch key.Rune {
	case ' ':
		if node := p.Tree.GetSelected(); node != nil {
			p.Tree.ToggleMark(node.Path)
		}
	case 'd', 'D':
		return p.requestDelete()
	case 'n':
		return []Event{{Kind: EventShowInput, Title: "New File", Path: p.Tree.CurrentDir}}
	case 'N':
		return []Event{{Kind: EventShowInput, Title: "New Folder", Path: p.Tree.CurrentDir}}
	case 'c':
		p.stageClipboard(false)
	case 'x':
		p.stageClipboard(true)
	case 'v':
		return p.requestPaste()
	case 'R':
		return p.requestRenamePattern()
	}
	return nil
}

// requestDelete emits a ShowConfirm event for the selected node, tagged
// "Delete" so the App resolves it with ActionDeletePath.
func (p *FileManagerPanel) requestDelete() []Event {
	node := p.Tree.GetSelected()
	if node == nil {
		return nil
	}
	return []Event{{
		Kind:    EventShowConfirm,
		Title:   "Delete",
		Message: fmt.Sprintf("Delete %q?", node.Name),
		Path:    node.Path,
	}}
}

// stageClipboard records the marked set (or, with nothing marked, just
// the selected node) as the source of a pending copy/move, resolved on
// the next 'v'.
func (p *FileManagerPanel) stageClipboard(move bool) {
	marked := p.Tree.MarkedPaths()
	if len(marked) == 0 {
		if node := p.Tree.GetSelected(); node != nil {
			marked = []string{node.Path}
		}
	}
	if len(marked) == 0 {
		return
	}
	p.clipboard = marked
	p.clipboardMove = move
}

// requestPaste emits a ShowConfirm event carrying the staged clipboard
// paths in Options and the destination directory in Path, tagged
// "Paste" so the App resolves it with ActionCopyPath/ActionMovePath (a
// single item) or ActionBatchFileOperation (several).
func (p *FileManagerPanel) requestPaste() []Event {
	if len(p.clipboard) == 0 {
		return nil
	}
	verb := "Copy"
	if p.clipboardMove {
		verb = "Move"
	}
	return []Event{{
		Kind:    EventShowConfirm,
		Title:   "Paste",
		Message: fmt.Sprintf("%s %d item(s) into %s?", verb, len(p.clipboard), filepath.Base(p.Tree.CurrentDir)),
		Path:    p.Tree.CurrentDir,
		Options: p.clipboard,
		Move:    p.clipboardMove,
	}}
}

// requestRenamePattern emits a ShowInput event over the marked set (or
// the selected node alone) tagged "Rename Pattern", resolved with
// ActionRenameWithPattern.
func (p *FileManagerPanel) requestRenamePattern() []Event {
	marked := p.Tree.MarkedPaths()
	if len(marked) == 0 {
		if node := p.Tree.GetSelected(); node != nil {
			marked = []string{node.Path}
		}
	}
	if len(marked) == 0 {
		return nil
	}
	return []Event{{
		Kind:    EventShowInput,
		Title:   "Rename Pattern",
		Message: "{name}{ext}",
		Options: marked,
	}}
}

// ClearClipboard discards the staged copy/move source paths, called by
// the App once a paste (or its batch conflict resolution) finishes.
func (p *FileManagerPanel) ClearClipboard() {
	p.clipboard = nil
	p.clipboardMove = false
}

// ClearMarks empties the multi-select, called by the App once a
// rename-with-pattern operation finishes.
func (p *FileManagerPanel) ClearMarks() {
	p.Tree.ClearMarks()
}

// QuickFind runs the fuzzy quick-find search against the index, the
// concrete implementation behind the ShowSelect event's query box (spec's
// SUPPLEMENTED FEATURES: quick-find picker, wraps sahilm/fuzzy).
func (p *FileManagerPanel) QuickFind(query string, limit int) []filemanager.SearchResult {
	return p.Index.Search(query, limit)
}

// Render implements Panel: a flat indented node list, with a
// human-readable size annotation on the currently selected node when it
// is a file (dustin/go-humanize, grounded on the teacher's dashboard
// folder-size formatting). Directories get no size annotation.
func (p *FileManagerPanel) Render(area render.Rect, cb render.CellBuffer, focused bool, theme render.Theme) {
	nodes := p.Tree.GetNodes()
	y := area.Y
	for i := 0; i < len(nodes) && y < area.Y+area.H; i++ {
		n := nodes[i]
		style := render.Style{Fg: theme.Foreground}
		if n == p.Tree.GetSelected() {
			style.Bg = theme.SelectionBg
		}
		status, _ := p.Tree.GetGitStatus(n.Path)
		if status == filemanager.GitStatusModified {
			style.Fg = theme.DiffModified
		} else if status == filemanager.GitStatusUntracked {
			style.Fg = theme.DiffAdded
		}
		if p.Tree.IsMarked(n.Path) {
			style.Fg = theme.Accent
		}
		marker := "  "
		if p.Tree.IsMarked(n.Path) {
			marker = "* "
		}
		label := marker + fmt.Sprintf("%*s%s", n.Indent*2, "", n.Name)
		cb.DrawText(area.X, y, style, label)
		if n.Info != nil && !n.IsDir && n == p.Tree.GetSelected() {
			size := humanize.Bytes(uint64(n.Info.Size()))
			cb.DrawText(area.X+area.W-len(size)-1, y, render.Style{Fg: theme.GutterDefault}, size)
		}
		y++
	}
}
