package engine

import "strings"

// kwPrefix marks a string literal that was written as a :keyword.
const kwPrefix = "__kw_"

// preprocessSource rewrites a scene script into plain zygomys:
//
//	:min        ->  "__kw_min"     keywords need no global symbols
//	base-plate  ->  base_plate     zygomys reads '-' as subtraction
//	; note      ->  // note        zygomys line comments
//
// Quoted and backquoted strings pass through unchanged, and := is left
// alone.
func preprocessSource(source string) string {
	r := rewriter{src: source}
	r.out.Grow(len(source) + len(source)/4)
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		switch {
		case c == '"':
			r.quoted('"', true)
		case c == '`':
			r.quoted('`', false)
		case c == ';':
			r.comment()
		case c == ':' && r.peek(1) == '=':
			r.copy(2)
		case c == ':' && isLetter(r.peek(1)):
			r.keyword()
		case c == '-' && r.pos > 0 && isIdentChar(r.src[r.pos-1]) && isLetter(r.peek(1)):
			r.out.WriteByte('_')
			r.pos++
		default:
			r.copy(1)
		}
	}
	return r.out.String()
}

type rewriter struct {
	src string
	pos int
	out strings.Builder
}

// peek returns the byte n past the cursor, or 0 past the end.
func (r *rewriter) peek(n int) byte {
	if r.pos+n < len(r.src) {
		return r.src[r.pos+n]
	}
	return 0
}

func (r *rewriter) copy(n int) {
	end := min(r.pos+n, len(r.src))
	r.out.WriteString(r.src[r.pos:end])
	r.pos = end
}

// quoted copies a string literal through its closing quote. An unclosed
// literal runs to the end of the source.
func (r *rewriter) quoted(quote byte, escapes bool) {
	end := r.pos + 1
	for end < len(r.src) && r.src[end] != quote {
		if escapes && r.src[end] == '\\' {
			end++
		}
		end++
	}
	r.copy(end + 1 - r.pos)
}

// comment collapses a run of semicolons into // and copies the rest of
// the line.
func (r *rewriter) comment() {
	for r.pos < len(r.src) && r.src[r.pos] == ';' {
		r.pos++
	}
	r.out.WriteString("//")
	end := strings.IndexByte(r.src[r.pos:], '\n')
	if end < 0 {
		end = len(r.src) - r.pos
	}
	r.copy(end)
}

func (r *rewriter) keyword() {
	end := r.pos + 1
	for end < len(r.src) && isKWChar(r.src[end]) {
		end++
	}
	r.out.WriteString(`"` + kwPrefix + r.src[r.pos+1:end] + `"`)
	r.pos = end
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isKWChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}
