// Package modal implements the Modal Stack of spec §4.5: a single-slot
// overlay that temporarily captures input, paired with a PendingAction
// describing what to do when it resolves. Grounded on the teacher's
// Active/Title/Message/Callback-shaped dialog structs
// (internal/layout/confirm_modal.go, input_modal.go, shortcuts_modal.go),
// generalized away from a single dialog kind and from any tcell
// dependency.
package modal

// Kind tags which of the ten overlay variants is active (spec §3's
// ActiveModal enum, restated unchanged).
type Kind int

const (
	KindConfirm Kind = iota
	KindInput
	KindSelect
	KindOverwrite
	KindConflict
	KindInfo
	KindRenamePattern
	KindEditableSelect
	KindSearch
	KindReplace
)

// PendingAction tags what the App does with a modal's result once it
// resolves. The first fifteen values restate spec §4.5 unchanged;
// ActionQuickFind is added so the quick-find picker (spec's supplemented
// feature) no longer has to borrow ActionRenameWithPattern's tag.
type PendingAction int

const (
	ActionCreateFile PendingAction = iota
	ActionCreateDirectory
	ActionDeletePath
	ActionCopyPath
	ActionMovePath
	ActionSaveFileAs
	ActionClosePanel
	ActionCloseEditorWithSave
	ActionOverwriteDecision
	ActionBatchFileOperation
	ActionContinueBatchOperation
	ActionRenameWithPattern
	ActionSearch
	ActionReplace
	ActionQuitApplication
	ActionQuickFind
)

// OverwriteDecision is the user's choice when a batch filesystem
// operation hits a per-item conflict (spec §4.5).
type OverwriteDecision int

const (
	DecisionOverwrite OverwriteDecision = iota
	DecisionSkip
	DecisionRename
	DecisionCancelAll
)

// BatchItem is one pending source→destination transfer in a
// copy/move batch operation.
type BatchItem struct {
	Src string
	Dst string
}

// BatchState threads through ActionBatchFileOperation/
// ActionContinueBatchOperation: the remaining items and which kind of
// transfer they describe.
type BatchState struct {
	Items  []BatchItem
	Index  int // next unprocessed item
	IsMove bool
}

// Remaining returns the items not yet processed, starting at Index.
func (b BatchState) Remaining() []BatchItem {
	if b.Index >= len(b.Items) {
		return nil
	}
	return b.Items[b.Index:]
}

// Active is the single modal overlay occupying the slot, plus the
// textual/selectable state the user is editing (spec §3's ActiveModal,
// generalized across its ten Kinds into one struct so Stack never
// downcasts).
type Active struct {
	Kind    Kind
	Title   string
	Message string
	Warning string // rendered in the "danger" style, e.g. "This cannot be undone!"

	// Input/RenamePattern/EditableSelect
	Value     string
	CursorPos int

	// Select/EditableSelect/Overwrite/Conflict
	Options       []string
	SelectedIndex int

	// Search/Replace: the App reports these back after each search step.
	SearchCurrent int
	SearchTotal   int
	ReplaceWith   string
	replaceFocus  bool // true when focus is in the ReplaceWith field, not Value
}

// Result is what a modal hands back to its PendingAction handler on
// resolution.
type Result struct {
	Canceled      bool
	Confirmed     bool
	Value         string
	ReplaceWith   string
	ReplaceAll    bool
	SelectedIndex int
	Decision      OverwriteDecision
}
