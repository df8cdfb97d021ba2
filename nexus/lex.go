package nexus

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
	itemWord
	itemQuoted
	itemPunct
	itemSemicolon
	itemSpace
	itemComment
)

const (
	eof          = -1
	semicolon    = ';'
	quote        = '\''
	commentStart = '['
	commentEnd   = ']'
)

// Characters that always form a token of their own. Everything else that
// isn't white space belongs to a word.
const punctuation = "()[]{}/\\,:=*`\"<>~"

type stateFn func(lx *lexer) stateFn

type lexer struct {
	input io.Reader
	buf   string
	start int
	pos   int
	width int
	line  int
	state stateFn
	items chan item
	done  bool
}

// item is a single NEXUS token. For quoted words and comments, val holds
// the content without delimiters (and with '' collapsed) while raw always
// holds the text exactly as it appeared in the input.
type item struct {
	typ  itemType
	val  string
	raw  string
	line int
	err  error
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
	return &lexer{
		input: bufio.NewReaderSize(input, 64*1024),
		state: lexAny,
		line:  1,
		items: make(chan item, 10),
	}
}

func (lx *lexer) current() string {
	return lx.buf[lx.start:lx.pos]
}

func (lx *lexer) emit(typ itemType) {
	lx.emitVal(typ, lx.current())
}

// emitVal sends an item whose value differs from its raw text. The line
// reported is the one on which the token started.
func (lx *lexer) emitVal(typ itemType, val string) {
	raw := lx.current()
	lx.items <- item{
		typ:  typ,
		val:  val,
		raw:  raw,
		line: lx.line - strings.Count(raw, "\n"),
	}
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

// fill appends the next chunk of input to the buffer. It returns false once
// the input is exhausted.
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

// backup steps back one rune. Can be called only once per call of next.
func (lx *lexer) backup() {
	lx.pos -= lx.width
	if lx.width > 0 && lx.buf[lx.pos] == '\n' {
		lx.line--
	}
	lx.width = 0
}

func (lx *lexer) peek() rune {
	r := lx.next()
	lx.backup()
	return r
}

// errorf stops all lexing by emitting an error and returning `nil`.
func (lx *lexer) errorf(err error, format string, values ...interface{}) stateFn {
	lx.items <- item{
		typ:  itemError,
		val:  fmt.Sprintf(format, values...),
		line: lx.line,
		err:  err,
	}
	return nil
}

func lexAny(lx *lexer) stateFn {
	r := lx.next()
	switch {
	case r == eof:
		lx.emit(itemEOF)
		return nil
	case r == 0:
		return lx.errorf(ErrUnexpectedToken, "Unexpected NUL byte.")
	case isSpace(r):
		return lexSpace
	case r == commentStart:
		return lexComment
	case r == quote:
		return lexQuoted
	case r == semicolon:
		lx.emit(itemSemicolon)
		return lexAny
	case r == commentEnd:
		return lx.errorf(ErrUnexpectedToken, "Unexpected '%c' outside of a comment.", r)
	case strings.ContainsRune(punctuation, r):
		lx.emit(itemPunct)
		return lexAny
	}
	return lexWord
}

func lexSpace(lx *lexer) stateFn {
	for isSpace(lx.peek()) {
		lx.next()
	}
	lx.emit(itemSpace)
	return lexAny
}

// lexComment reads a bracketed comment, which may contain nested comments.
func lexComment(lx *lexer) stateFn {
	depth := 1
	for depth > 0 {
		switch lx.next() {
		case eof:
			return lx.errorf(ErrUnterminated, "Unterminated comment.")
		case commentStart:
			depth++
		case commentEnd:
			depth--
		}
	}
	raw := lx.current()
	lx.emitVal(itemComment, raw[1:len(raw)-1])
	return lexAny
}

// lexQuoted reads up to the closing quote. Two consecutive quotes stand for
// one literal quote.
func lexQuoted(lx *lexer) stateFn {
	var word strings.Builder
	for {
		r := lx.next()
		switch r {
		case eof:
			return lx.errorf(ErrUnterminated, "Unterminated quoted word '%s'.", word.String())
		case quote:
			if lx.peek() != quote {
				lx.emitVal(itemQuoted, word.String())
				return lexAny
			}
			lx.next()
		}
		word.WriteRune(r)
	}
}

func lexWord(lx *lexer) stateFn {
	for isWordRune(lx.peek()) {
		lx.next()
	}
	lx.emit(itemWord)
	return lexAny
}

func isWordRune(r rune) bool {
	return r != eof && r != 0 && r != semicolon && r != quote && !isSpace(r) &&
		!strings.ContainsRune(punctuation, r)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' ||
		r == '\v'
}

func (itype itemType) String() string {
	switch itype {
	case itemError:
		return "Error"
	case itemEOF:
		return "EOF"
	case itemWord:
		return "Word"
	case itemQuoted:
		return "Quoted word"
	case itemPunct:
		return "Punctuation"
	case itemSemicolon:
		return "';'"
	case itemSpace:
		return "White space"
	case itemComment:
		return "Comment"
	}
	panic(fmt.Sprintf("BUG: Unknown type '%d'.", int(itype)))
}

func (item item) String() string {
	switch item.typ {
	case itemEOF, itemSemicolon, itemSpace:
		return item.typ.String()
	}
	return fmt.Sprintf("%s '%s'", item.typ, item.val)
}
