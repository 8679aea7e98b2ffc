package editor

import (
	"strings"

	"github.com/termide/termide/internal/rope"
)

// Match is one literal search hit, in grapheme coordinates per spec §3.
type Match struct {
	Line, Col, Len int
}

// SearchState is the spec §3 SearchState: literal, case-insensitive by
// default, matches rebuilt on pattern change, navigation only adjusting
// CurrentIndex.
type SearchState struct {
	Pattern       string
	CaseSensitive bool
	Matches       []Match
	CurrentIndex  int
	ReplaceWith   string
	replaceActive bool
}

// NewSearchState starts an empty search (or replace) overlay.
func NewSearchState(withReplace bool) *SearchState {
	return &SearchState{CaseSensitive: false, CurrentIndex: -1, replaceActive: withReplace}
}

// SetPattern updates the search pattern and rebuilds matches against buf.
func (s *SearchState) SetPattern(pattern string, buf *rope.Buffer) {
	s.Pattern = pattern
	s.Rebuild(buf)
}

// Rebuild rescans buf for non-overlapping occurrences of Pattern,
// case-folded unless CaseSensitive, per spec invariant 7.
func (s *SearchState) Rebuild(buf *rope.Buffer) {
	s.Matches = BuildMatches(buf, s.Pattern, s.CaseSensitive)
	if len(s.Matches) == 0 {
		s.CurrentIndex = -1
	} else if s.CurrentIndex >= len(s.Matches) || s.CurrentIndex < 0 {
		s.CurrentIndex = 0
	}
}

// BuildMatches scans buf linearly for every non-overlapping occurrence of
// pattern, returning one Match per occurrence in document order.
func BuildMatches(buf *rope.Buffer, pattern string, caseSensitive bool) []Match {
	if pattern == "" {
		return nil
	}
	needle := pattern
	if !caseSensitive {
		needle = strings.ToLower(pattern)
	}
	var out []Match
	for i := 0; i < buf.LineCount(); i++ {
		line := buf.Line(i)
		hay := line
		if !caseSensitive {
			hay = strings.ToLower(line)
		}
		start := 0
		for {
			idx := strings.Index(hay[start:], needle)
			if idx < 0 {
				break
			}
			byteOff := start + idx
			col := rope.ColumnForByteOffset(line, byteOff)
			length := rope.GraphemeCount(line[byteOff : byteOff+len(needle)])
			out = append(out, Match{Line: i, Col: col, Len: length})
			start = byteOff + len(needle)
		}
	}
	return out
}

// Total reports the match count, for the modal's "(current_index, total)"
// display (spec §4.5).
func (s *SearchState) Total() int { return len(s.Matches) }

// CurrentMatch returns the match at CurrentIndex, if any.
func (s *SearchState) CurrentMatch() (Match, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Matches) {
		return Match{}, false
	}
	return s.Matches[s.CurrentIndex], true
}

// Next advances CurrentIndex modulo the match count and returns the match
// now selected.
func (s *SearchState) Next() (Match, bool) {
	if len(s.Matches) == 0 {
		return Match{}, false
	}
	s.CurrentIndex = (s.CurrentIndex + 1) % len(s.Matches)
	return s.CurrentMatch()
}

// Prev moves CurrentIndex backward modulo the match count.
func (s *SearchState) Prev() (Match, bool) {
	if len(s.Matches) == 0 {
		return Match{}, false
	}
	s.CurrentIndex = (s.CurrentIndex - 1 + len(s.Matches)) % len(s.Matches)
	return s.CurrentMatch()
}

// ReplaceCurrent substitutes the matched range at CurrentIndex with
// ReplaceWith, rebuilds only the affected region of the match list
// (trailing matches shift), and advances CurrentIndex to the match that
// now occupies the same position, per spec §4.2.
func (s *SearchState) ReplaceCurrent(buf *rope.Buffer) error {
	m, ok := s.CurrentMatch()
	if !ok {
		return nil
	}
	start := rope.Cursor{Line: m.Line, Column: m.Col}
	end := rope.Cursor{Line: m.Line, Column: m.Col + m.Len}
	if err := buf.DeleteRange(start, end); err != nil {
		return err
	}
	if s.ReplaceWith != "" {
		if _, err := buf.Insert(start, s.ReplaceWith); err != nil {
			return err
		}
	}

	delta := rope.GraphemeCount(s.ReplaceWith) - m.Len
	idx := s.CurrentIndex
	s.Matches = append(s.Matches[:idx], s.Matches[idx+1:]...)
	for i := idx; i < len(s.Matches); i++ {
		if s.Matches[i].Line == m.Line {
			s.Matches[i].Col += delta
		}
	}
	if len(s.Matches) == 0 {
		s.CurrentIndex = -1
	} else if idx >= len(s.Matches) {
		s.CurrentIndex = 0
	} else {
		s.CurrentIndex = idx
	}
	return nil
}

// ReplaceAll substitutes every match with ReplaceWith as a single grouped
// history action (spec §4.2, scenario S5), walking matches in reverse
// document order so earlier offsets are unaffected by later edits.
func (s *SearchState) ReplaceAll(buf *rope.Buffer) error {
	if len(s.Matches) == 0 {
		return nil
	}
	anchor := rope.Cursor{Line: s.Matches[0].Line, Column: s.Matches[0].Col}
	err := buf.RunGrouped(anchor, func() error {
		for i := len(s.Matches) - 1; i >= 0; i-- {
			m := s.Matches[i]
			start := rope.Cursor{Line: m.Line, Column: m.Col}
			end := rope.Cursor{Line: m.Line, Column: m.Col + m.Len}
			if err := buf.DeleteRange(start, end); err != nil {
				return err
			}
			if s.ReplaceWith != "" {
				if _, err := buf.Insert(start, s.ReplaceWith); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Matches = nil
	s.CurrentIndex = -1
	return nil
}
