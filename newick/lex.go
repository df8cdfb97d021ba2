package newick

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

type itemType int

const (
	itemError itemType = iota
	itemEOF
	itemTerminal
	itemDescendentsStart
	itemDescendentsEnd
	itemSubtree
)

const (
	eof           = -1
	terminal      = ';'
	descDelimiter = ','
	descStart     = '('
	descEnd       = ')'
	quote         = '\''
	lengthStart   = ':'
	commentStart  = '['
	commentEnd    = ']'
)

const unquoteBanned = " ()[]':;,"

type stateFn func(lx *lexer) stateFn

type lexer struct {
	input  io.Reader
	buf    string
	start  int
	pos    int
	width  int
	line   int
	state  stateFn
	items  chan item
	label  string
	length string
	done   bool
}

// item is a single lexeme. For subtrees, val holds the (unquoted) label and
// length holds the raw branch length, if any.
type item struct {
	typ    itemType
	val    string
	length string
	line   int
}

func (lx *lexer) nextItem() item {
	for {
		select {
		case item := <-lx.items:
			return item
		default:
			if lx.state == nil {
				return item{typ: itemEOF, line: lx.line}
			}
			lx.state = lx.state(lx)
		}
	}
}

func lex(input io.Reader) *lexer {
	lx := &lexer{
		input: bufio.NewReader(input),
		buf:   "",
		state: lexDescendents,
		line:  1,
		items: make(chan item, 10),
	}
	return lx
}

func (lx *lexer) current() string {
	return lx.buf[lx.start:lx.pos]
}

func (lx *lexer) emit(typ itemType) {
	lx.items <- item{typ: typ, val: lx.current(), line: lx.line}
	lx.buf = lx.buf[lx.pos:]
	lx.start, lx.pos = 0, 0
}

// emitSubtree sends the label and length collected so far and resets them.
func (lx *lexer) emitSubtree() {
	lx.items <- item{
		typ:    itemSubtree,
		val:    lx.label,
		length: lx.length,
		line:   lx.line,
	}
	lx.label, lx.length = "", ""
	lx.buf = lx.buf[lx.pos:]
	lx.start, lx.pos = 0, 0
}

func (lx *lexer) next() (r rune) {
	for !utf8.FullRuneInString(lx.buf[lx.pos:]) {
		if !lx.fill() {
			break
		}
	}
	if lx.pos >= len(lx.buf) {
		lx.width = 0
		return eof
	}

	if lx.buf[lx.pos] == '\n' {
		lx.line++
	}
	r, lx.width = utf8.DecodeRuneInString(lx.buf[lx.pos:])
	lx.pos += lx.width
	return r
}

// fill reads another chunk into the buffer, reporting false at the end of
// input.
func (lx *lexer) fill() bool {
	if lx.done {
		return false
	}
	buf := make([]byte, 4096)
	n, err := lx.input.Read(buf)
	lx.buf += string(buf[0:n])
	if err != nil {
		lx.done = true
	}
	return true
}

// ignore skips over the pending input before this point.
func (lx *lexer) ignore() {
	lx.start = lx.pos
}

// backup steps back one rune. Can be called only once per call of next.
func (lx *lexer) backup() {
	lx.pos -= lx.width
	if lx.width > 0 && lx.buf[lx.pos] == '\n' {
		lx.line--
	}
	lx.width = 0
}

// peek returns but does not consume the next rune in the input.
func (lx *lexer) peek() rune {
	r := lx.next()
	lx.backup()
	return r
}

// errorf stops all lexing by emitting an error and returning `nil`.
// Characters from the input should be passed through escapeSpecial.
func (lx *lexer) errorf(format string, values ...interface{}) stateFn {
	lx.items <- item{
		typ:  itemError,
		val:  fmt.Sprintf(format, values...),
		line: lx.line,
	}
	return nil
}

// skipIgnored consumes blanks, new lines and bracketed comments. It returns
// false when a comment is still open at the end of the input.
func (lx *lexer) skipIgnored() bool {
	for {
		r := lx.next()
		switch {
		case isBlank(r) || isNL(r):
		case r == commentStart:
			if !lx.skipComment() {
				return false
			}
		default:
			lx.backup()
			lx.ignore()
			return true
		}
	}
}

// skipComment consumes a comment whose opening bracket was already read.
// Comments nest.
func (lx *lexer) skipComment() bool {
	depth := 1
	for depth > 0 {
		switch lx.next() {
		case eof:
			return false
		case commentStart:
			depth++
		case commentEnd:
			depth--
		}
	}
	return true
}

func lexDescendents(lx *lexer) stateFn {
	if !lx.skipIgnored() {
		return lx.errorf("Unterminated comment.")
	}
	switch lx.next() {
	case descStart:
		lx.ignore()
		lx.emit(itemDescendentsStart)
		return lexSubtreeStart
	case eof:
		lx.emit(itemEOF)
		return nil
	}
	lx.backup()
	return lexLabelStart
}

func lexSubtreeStart(lx *lexer) stateFn {
	if !lx.skipIgnored() {
		return lx.errorf("Unterminated comment.")
	}
	if lx.peek() == descStart {
		return lexDescendents
	}
	return lexLabelStart
}

func lexSubtreeEnd(lx *lexer) stateFn {
	lx.emitSubtree()
	if !lx.skipIgnored() {
		return lx.errorf("Unterminated comment.")
	}
	r := lx.next()
	switch r {
	case descDelimiter:
		lx.ignore()
		return lexSubtreeStart
	case descEnd:
		lx.ignore()
		lx.emit(itemDescendentsEnd)
		return lexLabelStart
	case terminal:
		lx.ignore()
		lx.emit(itemTerminal)
		return lexDescendents
	case eof:
		lx.ignore()
		lx.emit(itemTerminal)
		lx.emit(itemEOF)
		return nil
	}
	return lx.errorf("Expected end of subtree ('%c', '%c' or '%c') but got "+
		"'%s' instead.", descDelimiter, descEnd, terminal, escapeSpecial(r))
}

func lexLabelStart(lx *lexer) stateFn {
	if !lx.skipIgnored() {
		return lx.errorf("Unterminated comment.")
	}
	if lx.next() == quote {
		lx.ignore()
		return lexQuotedLabel
	}
	lx.backup()
	return lexLabel
}

func lexLabel(lx *lexer) stateFn {
	r := lx.next()
	switch {
	case r == lengthStart:
		lx.label = lx.buf[lx.start : lx.pos-lx.width]
		lx.ignore()
		return lexLengthStart
	case isSubtreeEnd(r) || isBlank(r) || isNL(r) || r == commentStart:
		lx.backup()
		lx.label = lx.current()
		lx.ignore()
		return lexAfterLabel
	case r == 0:
		return lx.errorf("Found a NUL byte in an unquoted label.")
	case strings.ContainsRune(unquoteBanned, r):
		return lx.errorf("Found '%s' in an unquoted label, which may not "+
			"contain the following characters: '%s'.", escapeSpecial(r),
			unquoteBanned)
	}
	return lexLabel
}

// lexQuotedLabel reads up to the closing quote. Two consecutive quotes
// stand for one literal quote.
func lexQuotedLabel(lx *lexer) stateFn {
	var label strings.Builder
	for {
		r := lx.next()
		switch r {
		case eof:
			return lx.errorf("Unterminated quoted label '%s'.", label.String())
		case quote:
			if lx.peek() != quote {
				lx.label = label.String()
				lx.ignore()
				return lexAfterLabel
			}
			lx.next()
		}
		label.WriteRune(r)
	}
}

func lexAfterLabel(lx *lexer) stateFn {
	if !lx.skipIgnored() {
		return lx.errorf("Unterminated comment.")
	}
	r := lx.next()
	if r == lengthStart {
		lx.ignore()
		return lexLengthStart
	}
	lx.backup()
	if isSubtreeEnd(r) {
		return lexSubtreeEnd
	}
	return lx.errorf("Expected a branch length or the end of a subtree, "+
		"but got '%s' instead.", escapeSpecial(r))
}

func lexLengthStart(lx *lexer) stateFn {
	if !lx.skipIgnored() {
		return lx.errorf("Unterminated comment.")
	}
	return lexLengthNum
}

func lexLengthNum(lx *lexer) stateFn {
	r := lx.next()
	switch {
	case isNumeric(r):
		return lexLengthNum
	case isSubtreeEnd(r) || isBlank(r) || isNL(r) || r == commentStart:
		lx.backup()
		lx.length = lx.current()
		lx.ignore()
		if len(lx.length) == 0 {
			return lx.errorf("Expected a branch length after '%c'.",
				lengthStart)
		}
		return lexAfterLength
	}
	return lx.errorf("Expected a digit, a '.', an exponent or the end of "+
		"a subtree, but got '%s' instead.", escapeSpecial(r))
}

func lexAfterLength(lx *lexer) stateFn {
	if !lx.skipIgnored() {
		return lx.errorf("Unterminated comment.")
	}
	r := lx.peek()
	if isSubtreeEnd(r) {
		return lexSubtreeEnd
	}
	return lx.errorf("Expected end of subtree after branch length, but "+
		"got '%s' instead.", escapeSpecial(r))
}

func isSubtreeEnd(r rune) bool {
	return r == descDelimiter || r == descEnd || r == terminal || r == eof
}

func isBlank(r rune) bool {
	return r == '\t' || r == ' '
}

func isNL(r rune) bool {
	return r == '\n' || r == '\r'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNumeric(r rune) bool {
	return isDigit(r) || r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E'
}

func (itype itemType) String() string {
	switch itype {
	case itemError:
		return "Error"
	case itemEOF:
		return "EOF"
	case itemTerminal:
		return "Terminal"
	case itemDescendentsStart:
		return "Descendents (start)"
	case itemDescendentsEnd:
		return "Descendents (end)"
	case itemSubtree:
		return "Subtree"
	}
	panic(fmt.Sprintf("BUG: Unknown type '%d'.", int(itype)))
}

func (item item) String() string {
	if item.typ == itemSubtree && len(item.length) > 0 {
		return fmt.Sprintf("(%s, %s:%s)", item.typ, item.val, item.length)
	}
	return fmt.Sprintf("(%s, %s)", item.typ, item.val)
}

func escapeSpecial(c rune) string {
	switch c {
	case '\n':
		return "\\n"
	case eof:
		return "EOF"
	}
	return string(c)
}
