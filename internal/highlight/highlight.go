// Package highlight does language detection and incremental per-line
// syntax coloring. Grounded on the kilo-style highlighter in the pack's
// braheezy-kilo and ekediala-kilo (editorUpdateSyntax: a per-row token
// array recomputed for the edited row and its immediate neighbors, not
// the whole document), generalized to a small extensible keyword-table
// model instead of kilo's single hard-coded C table.
package highlight

import (
	"strings"
)

// TokenKind classifies one highlighted span.
type TokenKind int

const (
	TokenNone TokenKind = iota
	TokenKeyword
	TokenType
	TokenString
	TokenComment
	TokenNumber
)

// Token is a highlighted span within a line, [Start,End) in byte offsets.
type Token struct {
	Start, End int
	Kind       TokenKind
}

// Language is an immutable keyword/comment table for one language. The
// table is a process-wide singleton set initialized at startup (spec §9
// "Global mutable state" — the language table, like the logger and
// clipboard, is reached read-only from anywhere).
type Language struct {
	Name        string
	Extensions  []string
	Keywords    map[string]TokenKind // e.g. "func" -> TokenKeyword, "int" -> TokenType
	LineComment string
}

var registry = map[string]*Language{}

func register(l *Language) {
	registry[l.Name] = l
	for _, ext := range l.Extensions {
		extToLang[ext] = l.Name
	}
}

var extToLang = map[string]string{}

func init() {
	register(&Language{
		Name:        "go",
		Extensions:  []string{".go"},
		LineComment: "//",
		Keywords: keywordMap(
			[]string{"func", "package", "import", "var", "const", "type", "struct", "interface",
				"if", "else", "for", "range", "switch", "case", "default", "return", "go", "defer",
				"chan", "select", "break", "continue", "goto", "map"},
			[]string{"int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32",
				"uint64", "float32", "float64", "string", "bool", "byte", "rune", "error", "any"},
		),
	})
	register(&Language{
		Name:        "rust",
		Extensions:  []string{".rs"},
		LineComment: "//",
		Keywords: keywordMap(
			[]string{"fn", "let", "mut", "if", "else", "match", "for", "while", "loop", "return",
				"struct", "enum", "impl", "trait", "pub", "use", "mod", "crate", "self", "Self"},
			[]string{"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "f32", "f64", "bool", "str", "String"},
		),
	})
	register(&Language{
		Name:        "python",
		Extensions:  []string{".py"},
		LineComment: "#",
		Keywords: keywordMap(
			[]string{"def", "class", "if", "elif", "else", "for", "while", "return", "import",
				"from", "as", "with", "try", "except", "finally", "lambda", "yield", "pass", "break", "continue"},
			[]string{"int", "float", "str", "bool", "list", "dict", "tuple", "set"},
		),
	})
	register(&Language{
		Name:        "c",
		Extensions:  []string{".c", ".h", ".cpp", ".hpp", ".cc"},
		LineComment: "//",
		Keywords: keywordMap(
			[]string{"if", "else", "switch", "case", "default", "for", "while", "do", "return",
				"break", "continue", "struct", "typedef", "static", "const", "sizeof"},
			[]string{"int", "long", "short", "char", "unsigned", "signed", "float", "double", "void"},
		),
	})
}

func keywordMap(keywords, types []string) map[string]TokenKind {
	m := make(map[string]TokenKind, len(keywords)+len(types))
	for _, k := range keywords {
		m[k] = TokenKeyword
	}
	for _, k := range types {
		m[k] = TokenType
	}
	return m
}

// Detect returns the Language registered for a file's extension, or nil.
func Detect(filename string) *Language {
	for ext, name := range extToLang {
		if strings.HasSuffix(filename, ext) {
			return registry[name]
		}
	}
	return nil
}

// HighlightLine tokenizes a single line: identifiers against the keyword
// table, quoted strings, numeric literals, and a trailing line comment.
// This is the unit of work the Editor recomputes per edited line — never
// the whole document — mirroring kilo's editorUpdateSyntax(row).
func (l *Language) HighlightLine(line string) []Token {
	if l == nil {
		return nil
	}
	var toks []Token
	i := 0
	n := len(line)
	for i < n {
		c := line[i]
		switch {
		case l.LineComment != "" && strings.HasPrefix(line[i:], l.LineComment):
			toks = append(toks, Token{Start: i, End: n, Kind: TokenComment})
			i = n
		case c == '"' || c == '\'':
			j := i + 1
			for j < n && line[j] != c {
				if line[j] == '\\' && j+1 < n {
					j++
				}
				j++
			}
			if j < n {
				j++
			}
			toks = append(toks, Token{Start: i, End: j, Kind: TokenString})
			i = j
		case isDigit(c):
			j := i
			for j < n && (isDigit(line[j]) || line[j] == '.') {
				j++
			}
			toks = append(toks, Token{Start: i, End: j, Kind: TokenNumber})
			i = j
		case isIdentStart(c):
			j := i
			for j < n && isIdentPart(line[j]) {
				j++
			}
			word := line[i:j]
			if kind, ok := l.Keywords[word]; ok {
				toks = append(toks, Token{Start: i, End: j, Kind: kind})
			}
			i = j
		default:
			i++
		}
	}
	return toks
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
