package redact

import (
	"bytes"
	"fmt"
	"strconv"

	"taxdocs/internal/domain"
)

// userSpaceRect is a redaction area converted to PDF user space
// (origin bottom-left), ready for point-in-rect tests.
type userSpaceRect struct {
	llx, lly, urx, ury float64
}

func toUserSpace(areas []domain.RedactionArea, pageHeight float64) []userSpaceRect {
	rs := make([]userSpaceRect, 0, len(areas))
	for _, a := range areas {
		rs = append(rs, userSpaceRect{
			llx: a.X1,
			lly: pageHeight - a.Y2,
			urx: a.X2,
			ury: pageHeight - a.Y1,
		})
	}
	return rs
}

// coversRunStart reports whether a text run starting at (x, y) can reach
// into the rect. Glyphs advance rightward from the start point, so any run
// whose baseline sits in the rect's vertical band and starts left of its
// right edge may cross it. Run widths are unknown at this level; dropping
// such runs over-redacts rather than leaking text across the boundary.
func (r userSpaceRect) coversRunStart(x, y float64) bool {
	return x <= r.urx && y >= r.lly && y <= r.ury
}

// ScrubContent rewrites a decoded page content stream so that text drawn
// inside any redaction area is removed, then appends opaque fill rectangles
// over the areas. Areas are given in top-left page coordinates; pageHeight
// converts them to PDF user space.
//
// The scan tracks the text matrix translation set by Tm/Td/TD/T* and drops
// whole show operators (Tj, TJ, ', ") whose run can reach into an area: the
// baseline lies in the area's vertical band and the start point is left of
// its right edge. Rotated or skewed text matrices are treated by their
// translation component only.
func ScrubContent(content []byte, areas []domain.RedactionArea, pageHeight float64) []byte {
	rects := toUserSpace(areas, pageHeight)

	var out bytes.Buffer
	var pending [][]byte // operand tokens of the instruction being assembled

	var curX, curY float64   // current text position (translation of Tm)
	var lineX, lineY float64 // start of the current text line
	var leading float64      // TL

	flush := func(op []byte) {
		for _, t := range pending {
			out.Write(t)
			out.WriteByte(' ')
		}
		out.Write(op)
		out.WriteByte('\n')
		pending = pending[:0]
	}

	drop := func() {
		pending = pending[:0]
	}

	operand := func(i int) float64 {
		if i < 0 || i >= len(pending) {
			return 0
		}
		f, err := strconv.ParseFloat(string(pending[i]), 64)
		if err != nil {
			return 0
		}
		return f
	}

	inRegion := func() bool {
		for _, r := range rects {
			if r.coversRunStart(curX, curY) {
				return true
			}
		}
		return false
	}

	tok := newTokenizer(content)
	for {
		t, ok := tok.next()
		if !ok {
			break
		}
		if !isOperator(t) {
			pending = append(pending, t)
			continue
		}

		switch string(t) {
		case "Tm":
			curX, curY = operand(len(pending)-2), operand(len(pending)-1)
			lineX, lineY = curX, curY
			flush(t)
		case "Td":
			lineX += operand(len(pending) - 2)
			lineY += operand(len(pending) - 1)
			curX, curY = lineX, lineY
			flush(t)
		case "TD":
			leading = -operand(len(pending) - 1)
			lineX += operand(len(pending) - 2)
			lineY += operand(len(pending) - 1)
			curX, curY = lineX, lineY
			flush(t)
		case "TL":
			leading = operand(len(pending) - 1)
			flush(t)
		case "T*":
			lineY -= leading
			curX, curY = lineX, lineY
			flush(t)
		case "BT":
			curX, curY = 0, 0
			lineX, lineY = 0, 0
			flush(t)
		case "Tj", "TJ":
			if inRegion() {
				drop()
			} else {
				flush(t)
			}
		case "'", "\"":
			lineY -= leading
			curX, curY = lineX, lineY
			if inRegion() {
				drop()
			} else {
				flush(t)
			}
		default:
			flush(t)
		}
	}

	// Flatten opaque boxes over the redacted regions.
	out.WriteString("q\n0 g\n")
	for _, r := range rects {
		fmt.Fprintf(&out, "%.2f %.2f %.2f %.2f re\nf\n", r.llx, r.lly, r.urx-r.llx, r.ury-r.lly)
	}
	out.WriteString("Q\n")

	return out.Bytes()
}

// tokenizer splits a content stream into operand and operator tokens.
// Strings, hex strings, arrays and dictionaries are kept as single tokens so
// operand counting stays aligned with the PDF operator grammar.
type tokenizer struct {
	data []byte
	pos  int
}

func newTokenizer(data []byte) *tokenizer {
	return &tokenizer{data: data}
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isWhitespace(b byte) bool {
	switch b {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func (t *tokenizer) next() ([]byte, bool) {
	for t.pos < len(t.data) && isWhitespace(t.data[t.pos]) {
		t.pos++
	}
	if t.pos >= len(t.data) {
		return nil, false
	}

	start := t.pos
	switch b := t.data[t.pos]; {
	case b == '%':
		for t.pos < len(t.data) && t.data[t.pos] != '\n' {
			t.pos++
		}
		return t.next()
	case b == '(':
		t.skipString()
	case b == '[':
		t.skipBalanced('[', ']')
	case b == '<':
		if t.pos+1 < len(t.data) && t.data[t.pos+1] == '<' {
			t.skipBalanced('<', '>')
		} else {
			for t.pos < len(t.data) && t.data[t.pos] != '>' {
				t.pos++
			}
			t.pos++ // consume '>'
		}
	case b == '/':
		t.pos++
		for t.pos < len(t.data) && !isWhitespace(t.data[t.pos]) && !isDelimiter(t.data[t.pos]) {
			t.pos++
		}
	case b == ')' || b == ']' || b == '>' || b == '}' || b == '{':
		t.pos++
	default:
		for t.pos < len(t.data) && !isWhitespace(t.data[t.pos]) && !isDelimiter(t.data[t.pos]) {
			t.pos++
		}
	}
	if t.pos > len(t.data) {
		t.pos = len(t.data)
	}
	return t.data[start:t.pos], true
}

// skipString consumes a literal string, honoring escapes and nested parens.
func (t *tokenizer) skipString() {
	depth := 0
	for t.pos < len(t.data) {
		switch t.data[t.pos] {
		case '\\':
			t.pos++ // skip escaped byte
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				t.pos++
				return
			}
		}
		t.pos++
	}
}

// skipBalanced consumes nested bracket constructs, skipping over embedded
// literal strings so parens inside strings do not break balancing.
func (t *tokenizer) skipBalanced(open, close byte) {
	depth := 0
	for t.pos < len(t.data) {
		switch t.data[t.pos] {
		case '\\':
			t.pos++
		case '(':
			t.skipString()
			continue
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				t.pos++
				return
			}
		}
		t.pos++
	}
}

// isOperator reports whether a token is a content stream operator rather
// than an operand.
func isOperator(tok []byte) bool {
	if len(tok) == 0 {
		return false
	}
	switch tok[0] {
	case '(', '<', '[', '/', '{':
		return false
	}
	if tok[0] == '+' || tok[0] == '-' || tok[0] == '.' || (tok[0] >= '0' && tok[0] <= '9') {
		return false
	}
	return true
}
