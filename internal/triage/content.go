// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package triage

// ContentStats summarizes one page content stream.
type ContentStats struct {
	// Drawings counts path-painting operators.
	Drawings int
	// TextBytes counts string operand bytes shown by text operators.
	TextBytes int
	// XObjects lists the resource names painted with Do, in order and
	// without the leading slash.
	XObjects []string
}

// Add accumulates the counts of o into s.
func (s *ContentStats) Add(o ContentStats) {
	s.Drawings += o.Drawings
	s.TextBytes += o.TextBytes
}

// paintOps are the operators that paint a constructed path. "n" ends a
// path without painting and is not counted.
var paintOps = map[string]bool{
	"S": true, "s": true,
	"f": true, "F": true, "f*": true,
	"B": true, "B*": true, "b": true, "b*": true,
}

// textOps show strings.
var textOps = map[string]bool{"Tj": true, "TJ": true, "'": true, "\"": true}

// ScanContent tokenizes a page content stream and counts drawings and
// shown text. Malformed input never fails; the scanner stops at the end of
// data.
func ScanContent(data []byte) ContentStats {
	var (
		stats   ContentStats
		pending int    // string bytes seen since the last operator
		name    string // last name operand since the last operator
	)
	s := &scanner{data: data}
	for {
		tok, kind := s.next()
		switch kind {
		case tokEOF:
			return stats
		case tokString:
			pending += len(tok)
		case tokOther:
			if len(tok) > 1 && tok[0] == '/' {
				name = tok[1:]
			}
		case tokOperator:
			switch {
			case paintOps[tok]:
				stats.Drawings++
			case textOps[tok]:
				stats.TextBytes += pending
			case tok == "Do" && name != "":
				stats.XObjects = append(stats.XObjects, name)
			case tok == "ID":
				s.skipInlineImage()
			}
			pending = 0
			name = ""
		}
	}
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokOperator
	tokString
	tokOther
)

type scanner struct {
	data []byte
	pos  int
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (s *scanner) next() (string, tokenKind) {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case isSpace(c):
			s.pos++
		case c == '%':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
		case c == '(':
			return s.literalString(), tokString
		case c == '<':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
				s.pos += 2
				return "<<", tokOther
			}
			return s.hexString(), tokString
		case c == '>':
			s.pos++
			if s.pos < len(s.data) && s.data[s.pos] == '>' {
				s.pos++
			}
			return ">>", tokOther
		case c == '[' || c == ']' || c == '{' || c == '}' || c == ')':
			s.pos++
			return string(c), tokOther
		case c == '/':
			s.pos++
			return "/" + s.regular(), tokOther
		default:
			word := s.regular()
			if isOperand(word) {
				return word, tokOther
			}
			return word, tokOperator
		}
	}
	return "", tokEOF
}

// regular reads a run of regular characters.
func (s *scanner) regular() string {
	start := s.pos
	for s.pos < len(s.data) && !isSpace(s.data[s.pos]) && !isDelim(s.data[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		// A lone delimiter that no other rule consumed.
		s.pos++
	}
	return string(s.data[start:s.pos])
}

func isOperand(word string) bool {
	switch word {
	case "true", "false", "null":
		return true
	}
	c := word[0]
	return (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.'
}

// literalString consumes a balanced (...) string and returns its decoded
// bytes. Escapes count as one byte.
func (s *scanner) literalString() string {
	s.pos++ // (
	depth := 1
	var out []byte
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '\\':
			if s.pos < len(s.data) {
				out = append(out, s.data[s.pos])
				s.pos++
			}
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return string(out)
			}
		}
		out = append(out, c)
	}
	return string(out)
}

// hexString consumes <...> and returns the decoded byte count as a string
// of that length.
func (s *scanner) hexString() string {
	s.pos++ // <
	digits := 0
	for s.pos < len(s.data) && s.data[s.pos] != '>' {
		if !isSpace(s.data[s.pos]) {
			digits++
		}
		s.pos++
	}
	if s.pos < len(s.data) {
		s.pos++ // >
	}
	return string(make([]byte, (digits+1)/2))
}

// skipInlineImage advances past binary inline image data up to and
// including the EI operator.
func (s *scanner) skipInlineImage() {
	for s.pos+2 <= len(s.data) {
		if s.data[s.pos] == 'E' && s.data[s.pos+1] == 'I' &&
			s.pos > 0 && isSpace(s.data[s.pos-1]) &&
			(s.pos+2 == len(s.data) || isSpace(s.data[s.pos+2])) {
			s.pos += 2
			return
		}
		s.pos++
	}
	s.pos = len(s.data)
}
