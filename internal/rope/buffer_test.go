package rope

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAcrossNewline(t *testing.T) {
	b := New()
	cur, err := b.Insert(Cursor{Line: 0, Column: 0}, "foo\nbar")
	require.NoError(t, err)
	assert.Equal(t, Cursor{Line: 1, Column: 3}, cur)
	assert.Equal(t, 2, b.LineCount())
	assert.Equal(t, "foo", b.Line(0))
	assert.Equal(t, "bar", b.Line(1))
	assert.True(t, b.Modified())
}

func TestUndoRedoRestoresModifiedFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	b, err := Load(path)
	require.NoError(t, err)
	assert.False(t, b.Modified())

	cur := Cursor{Line: 0, Column: 5}
	cur, err = b.Insert(cur, " world")
	require.NoError(t, err)
	assert.True(t, b.Modified())

	require.NoError(t, b.SaveTo(path))
	assert.False(t, b.Modified())

	cur, err = b.Backspace(cur)
	require.NoError(t, err)
	assert.True(t, b.Modified())

	_, ok := b.Undo()
	require.True(t, ok)
	assert.False(t, b.Modified(), "undo back to saved state must clear modified")

	_, ok = b.Redo()
	require.True(t, ok)
	assert.True(t, b.Modified())
	_ = cur
}

func TestSaveRoundTripPreservesCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.txt")
	original := "a\r\nb\r\nc"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, CRLF, b.LineEnding())

	require.NoError(t, b.SaveTo(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestCursorCharIndexBijection(t *testing.T) {
	b := New()
	_, err := b.Insert(Cursor{Line: 0, Column: 0}, "héllo \U0001F469‍\U0001F4BB end")
	require.NoError(t, err)

	for col := 0; col <= b.LineGraphemeCount(0); col++ {
		c := Cursor{Line: 0, Column: col}
		idx := b.CursorToCharIndex(c)
		back := b.CharIndexToCursor(idx)
		assert.Equal(t, c.Line, back.Line)
	}
}

func TestLenCharsCommutativity(t *testing.T) {
	b := New()
	before := b.LenChars()
	s := "hello 世界"
	_, err := b.Insert(Cursor{Line: 0, Column: 0}, s)
	require.NoError(t, err)
	assert.Equal(t, before+CountChars(s), b.LenChars())
}

func TestIndentUnindentLines(t *testing.T) {
	b := New()
	_, _ = b.Insert(Cursor{Line: 0, Column: 0}, "a\nb\nc")
	require.NoError(t, b.IndentLines(0, 2, IndentUnit(false, 2)))
	assert.Equal(t, "  a", b.Line(0))
	assert.Equal(t, "  b", b.Line(1))
	assert.Equal(t, "  c", b.Line(2))

	require.NoError(t, b.UnindentLines(0, 2, false, 2))
	assert.Equal(t, "a", b.Line(0))
}

func TestDeleteRangeMultiLine(t *testing.T) {
	b := New()
	_, _ = b.Insert(Cursor{Line: 0, Column: 0}, "hello\nworld")
	require.NoError(t, b.DeleteRange(Cursor{Line: 0, Column: 3}, Cursor{Line: 1, Column: 2}))
	assert.Equal(t, 1, b.LineCount())
	assert.Equal(t, "helrld", b.Line(0))
}
