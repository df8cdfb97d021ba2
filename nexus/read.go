package nexus

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/TuftsBCB/seq"

	"github.com/TuftsBCB/nexbench/newick"
)

// Reader corresponds to the state necessary to read a NEXUS file.
type Reader struct {
	lx     *lexer
	peeked []item

	// Every taxon seen so far, used to validate translations, trees and
	// matrices. It stays empty until a TAXA (or CHARACTERS/DATA) block
	// has been read.
	taxa map[string]bool
}

// NewReader returns a reader ready for reading NEXUS data from `r`.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		lx:   lex(r),
		taxa: make(map[string]bool),
	}
}

// ReadFile opens and reads the NEXUS file at `path`.
func ReadFile(path string) (*Nexus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewReader(f).Read()
}

// Read reads the entire input. The input must start with a #NEXUS tag,
// which may be followed by any number of blocks. The first error encountered
// is returned, as a *ParseError, with no data.
func (r *Reader) Read() (*Nexus, error) {
	tag := r.next()
	if tag.typ == itemError {
		return nil, r.fail(tag, nil, "")
	}
	if tag.typ != itemWord || !strings.EqualFold(tag.val, "#NEXUS") {
		return nil, errf(tag.line, ErrMissingNexusTag, "found %s", tag)
	}

	nex := &Nexus{Blocks: make([]Block, 0)}
	for {
		it := r.next()
		if it.typ == itemEOF {
			return nex, nil
		}
		if !isKeyword(it, "begin") {
			return nil, r.fail(it, ErrMissingToken, "begin")
		}

		name := r.next()
		if name.typ != itemWord && name.typ != itemQuoted {
			return nil, r.fail(name, ErrMissingToken, "block name")
		}
		if err := r.expectEOS(); err != nil {
			return nil, err
		}

		block, err := r.readBlock(strings.ToUpper(name.val))
		if err != nil {
			return nil, err
		}
		nex.Blocks = append(nex.Blocks, block)
	}
}

func (r *Reader) readBlock(name string) (Block, error) {
	switch name {
	case "TAXA":
		return r.readTaxa()
	case "TREES":
		return r.readTrees()
	case "CHARACTERS", "DATA":
		return r.readCharacters(name)
	}
	return r.skipBlock(name)
}

func (r *Reader) readTaxa() (*Taxa, error) {
	ntax := -1
	var labels []string
	seenLabels := false
	for {
		cmd, it, err := r.command()
		if err != nil {
			return nil, err
		}
		switch cmd {
		case "":
			switch {
			case ntax < 0:
				return nil, errf(it.line, ErrMissingToken, "Dimensions")
			case !seenLabels:
				return nil, errf(it.line, ErrMissingToken, "TaxLabels")
			case ntax != len(labels):
				return nil, errf(it.line, ErrTaxaDimensions,
					"NTAX is %d but %d labels were given", ntax, len(labels))
			}
			for _, label := range labels {
				r.taxa[label] = true
			}
			return &Taxa{Labels: labels}, nil
		case "DIMENSIONS":
			dims, err := r.readDimensions()
			if err != nil {
				return nil, err
			}
			n, ok := dims["NTAX"]
			if !ok {
				return nil, errf(it.line, ErrInvalidNumber, "DIMENSIONS needs NTAX")
			}
			ntax = n
		case "TAXLABELS":
			if labels, err = r.readLabels(); err != nil {
				return nil, err
			}
			seenLabels = true
		default:
			if err := r.skipCommand(); err != nil {
				return nil, err
			}
		}
	}
}

func (r *Reader) readTrees() (*Trees, error) {
	block := &Trees{
		Translate: make(map[string]string),
		Trees:     make([]*Tree, 0),
	}
	names := make(map[string]bool)
	for {
		cmd, it, err := r.command()
		if err != nil {
			return nil, err
		}
		switch cmd {
		case "":
			return block, nil
		case "TRANSLATE":
			if err := r.readTranslate(block.Translate); err != nil {
				return nil, err
			}
		case "TREE", "UTREE":
			tree, err := r.readTree(block.Translate)
			if err != nil {
				return nil, err
			}
			if names[tree.Name] {
				return nil, errf(it.line, ErrDuplicateTreeNames, "%s", tree.Name)
			}
			names[tree.Name] = true
			block.Trees = append(block.Trees, tree)
		default:
			if err := r.skipCommand(); err != nil {
				return nil, err
			}
		}
	}
}

// readTranslate reads the entries of a TRANSLATE command, separated by ','
// and terminated by ';'. In each entry, the last token is the taxon and
// everything before it (verbatim, spaces included) is the token used for it
// in tree descriptions.
func (r *Reader) readTranslate(translate map[string]string) error {
	values := make(map[string]bool, len(translate))
	for _, v := range translate {
		values[v] = true
	}

	var entry []item
	for {
		it := r.raw()
		switch {
		case it.typ == itemError:
			return r.fail(it, nil, "")
		case it.typ == itemEOF:
			return errf(it.line, ErrMissingEOS, "TRANSLATE is never terminated")
		case it.typ == itemComment:
			continue
		case it.typ == itemSemicolon || (it.typ == itemPunct && it.val == ","):
			err := r.addTranslation(translate, values, entry, it)
			if err != nil {
				return err
			}
			if it.typ == itemSemicolon {
				return nil
			}
			entry = nil
		default:
			entry = append(entry, it)
		}
	}
}

func (r *Reader) addTranslation(
	translate map[string]string,
	values map[string]bool,
	entry []item,
	end item,
) error {
	entry = trimSpace(entry)
	if len(entry) == 0 {
		if end.typ == itemSemicolon {
			return nil
		}
		return errf(end.line, ErrInvalidList, "empty TRANSLATE entry")
	}

	last := entry[len(entry)-1]
	if last.typ != itemWord && last.typ != itemQuoted {
		return r.fail(last, ErrInvalidList,
			"TRANSLATE entry ends in %s instead of a taxon", last)
	}
	keyItems := trimSpace(entry[:len(entry)-1])
	if len(keyItems) == 0 {
		return errf(last.line, ErrInvalidList,
			"no token is given for taxon '%s'", last.val)
	}

	var key string
	if len(keyItems) == 1 {
		key = keyItems[0].val
	} else {
		var b strings.Builder
		for _, it := range keyItems {
			b.WriteString(it.raw)
		}
		key = b.String()
	}

	value := last.val
	if _, ok := translate[key]; ok || values[value] {
		return errf(last.line, ErrDuplicateTranslations, "'%s' -> '%s'", key, value)
	}
	if len(r.taxa) > 0 && !r.taxa[value] {
		return errf(last.line, ErrTranslationForUnknownTaxa, "%s", value)
	}
	translate[key] = value
	values[value] = true
	return nil
}

// readTree reads `[*] name = [&R|&U] description;` following a TREE
// keyword. The description is parsed as Newick, then its leaves are
// translated.
func (r *Reader) readTree(translate map[string]string) (*Tree, error) {
	name := r.next()
	if name.typ == itemPunct && name.val == "*" {
		name = r.next()
	}
	if name.typ != itemWord && name.typ != itemQuoted {
		return nil, r.fail(name, ErrMissingToken, "tree name")
	}
	eq := r.next()
	if eq.typ != itemPunct || eq.val != "=" {
		return nil, r.fail(eq, ErrMissingToken, "=")
	}

	tree := &Tree{Name: name.val}
	line, started := eq.line, false
	var desc strings.Builder
DESCRIPTION:
	for {
		it := r.raw()
		switch it.typ {
		case itemError:
			return nil, r.fail(it, nil, "")
		case itemEOF:
			return nil, errf(it.line, ErrMissingEOS,
				"tree '%s' is never terminated", tree.Name)
		case itemSemicolon:
			break DESCRIPTION
		case itemComment:
			if !started {
				switch strings.ToUpper(strings.TrimSpace(it.val)) {
				case "&R":
					tree.Rooted = true
				case "&U":
					tree.Rooted = false
				}
			}
		case itemSpace:
			if started {
				desc.WriteString(it.raw)
			}
		default:
			if !started {
				line, started = it.line, true
			}
			desc.WriteString(it.raw)
		}
	}

	root, err := newick.Parse(desc.String() + ";")
	if err != nil {
		return nil, errf(line, ErrInvalidTree, "tree '%s': %s", tree.Name, err)
	}
	for _, leaf := range root.Leaves() {
		if taxon, ok := translate[leaf.Label]; ok {
			leaf.Label = taxon
		}
		if len(r.taxa) > 0 && len(leaf.Label) > 0 && !r.taxa[leaf.Label] {
			return nil, errf(line, ErrUnknownTaxon,
				"'%s' in tree '%s'", leaf.Label, tree.Name)
		}
	}
	tree.Root = root
	return tree, nil
}

func (r *Reader) readCharacters(name string) (*Characters, error) {
	chars := &Characters{
		Name:     name,
		NTax:     -1,
		NChar:    -1,
		DataType: "STANDARD",
		Gap:      '-',
		Missing:  '?',
	}
	var rows []seq.Sequence
	seenMatrix := false
	for {
		cmd, it, err := r.command()
		if err != nil {
			return nil, err
		}
		switch cmd {
		case "":
			if !seenMatrix {
				return nil, errf(it.line, ErrMissingToken, "Matrix")
			}
			return r.finishCharacters(chars, rows, it)
		case "DIMENSIONS":
			dims, err := r.readDimensions()
			if err != nil {
				return nil, err
			}
			nchar, ok := dims["NCHAR"]
			if !ok {
				return nil, errf(it.line, ErrInvalidNumber, "DIMENSIONS needs NCHAR")
			}
			chars.NChar = nchar
			if ntax, ok := dims["NTAX"]; ok {
				chars.NTax = ntax
			}
		case "FORMAT":
			if err := r.readFormat(chars); err != nil {
				return nil, err
			}
		case "MATRIX":
			if chars.NChar < 0 {
				return nil, errf(it.line, ErrMissingToken, "Dimensions")
			}
			if rows, err = r.readMatrix(chars.NChar); err != nil {
				return nil, err
			}
			seenMatrix = true
		default:
			if err := r.skipCommand(); err != nil {
				return nil, err
			}
		}
	}
}

func (r *Reader) finishCharacters(
	chars *Characters,
	rows []seq.Sequence,
	end item,
) (*Characters, error) {
	if chars.NTax < 0 {
		chars.NTax = len(rows)
		if len(r.taxa) > 0 {
			chars.NTax = len(r.taxa)
		}
	}
	if chars.NTax != len(rows) {
		return nil, errf(end.line, ErrTaxaDimensions,
			"NTAX is %d but the matrix has %d rows", chars.NTax, len(rows))
	}

	register := len(r.taxa) == 0
	chars.Matrix = seq.NewMSA()
	for _, row := range rows {
		chars.Matrix.Add(row)
		if register {
			r.taxa[row.Name] = true
		}
	}
	return chars, nil
}

// readFormat reads the KEY=value pairs of a FORMAT command. Only DATATYPE,
// GAP, MISSING and INTERLEAVE are interpreted.
func (r *Reader) readFormat(chars *Characters) error {
	for {
		it := r.next()
		switch it.typ {
		case itemSemicolon:
			return nil
		case itemWord:
		default:
			return r.fail(it, ErrUnexpectedToken, "%s in FORMAT", it)
		}

		key := strings.ToUpper(it.val)
		if eq := r.peek(); eq.typ != itemPunct || eq.val != "=" {
			if key == "INTERLEAVE" {
				return errf(it.line, ErrUnexpectedToken,
					"interleaved matrices are not supported")
			}
			continue
		}
		r.next()

		value, err := r.formatValue()
		if err != nil {
			return err
		}
		switch key {
		case "DATATYPE":
			chars.DataType = strings.ToUpper(value)
		case "GAP":
			chars.Gap = value[0]
		case "MISSING":
			chars.Missing = value[0]
		case "INTERLEAVE":
			if !strings.EqualFold(value, "no") {
				return errf(it.line, ErrUnexpectedToken,
					"interleaved matrices are not supported")
			}
		}
	}
}

// formatValue reads the value following a '=' in a FORMAT command. Double
// quoted values (SYMBOLS="01") are returned without their quotes.
func (r *Reader) formatValue() (string, error) {
	it := r.next()
	switch {
	case it.typ == itemWord || it.typ == itemQuoted:
		if len(it.val) > 0 {
			return it.val, nil
		}
	case it.typ == itemPunct && it.val == `"`:
		var b strings.Builder
		for {
			in := r.raw()
			switch {
			case in.typ == itemEOF || in.typ == itemError:
				return "", r.fail(in, ErrUnterminated, "double quoted value")
			case in.typ == itemPunct && in.val == `"` && b.Len() > 0:
				return b.String(), nil
			case in.typ == itemPunct && in.val == `"`:
				return "", errf(in.line, ErrUnexpectedToken, "empty FORMAT value")
			}
			b.WriteString(in.raw)
		}
	case it.typ == itemPunct:
		return it.val, nil
	}
	return "", r.fail(it, ErrUnexpectedToken, "%s in FORMAT", it)
}

const maxResiduePrealloc = 1 << 12

// readMatrix reads sequential matrix rows: a taxon followed by exactly
// `nchar` residues, which may be split by white space.
func (r *Reader) readMatrix(nchar int) ([]seq.Sequence, error) {
	rows := make([]seq.Sequence, 0)
	for {
		name := r.next()
		switch name.typ {
		case itemSemicolon:
			return rows, nil
		case itemWord, itemQuoted:
		default:
			return nil, r.fail(name, ErrInvalidList,
				"expected a taxon but got %s", name)
		}
		if len(r.taxa) > 0 && !r.taxa[name.val] {
			return nil, errf(name.line, ErrUnknownTaxon, "%s", name.val)
		}

		// NCHAR comes straight from the input, so capacity is capped.
		residues := make([]seq.Residue, 0, min(nchar, maxResiduePrealloc))
		last := name.line
		for len(residues) < nchar {
			it := r.next()
			if it.typ != itemWord {
				return nil, r.fail(it, ErrMatrixLength,
					"row '%s' has %d characters, expected %d",
					name.val, len(residues), nchar)
			}
			// A known taxon starting a new line begins the next row.
			if it.line > last && r.taxa[it.val] {
				return nil, errf(name.line, ErrMatrixLength,
					"row '%s' has %d characters, expected %d",
					name.val, len(residues), nchar)
			}
			if len(residues)+len(it.val) > nchar {
				return nil, errf(name.line, ErrMatrixLength,
					"row '%s' has %d characters, expected %d",
					name.val, len(residues)+len(it.val), nchar)
			}
			for i := 0; i < len(it.val); i++ {
				residues = append(residues, toResidue(it.val[i]))
			}
			last = it.line
		}
		rows = append(rows, seq.Sequence{Name: name.val, Residues: residues})
	}
}

func toResidue(b byte) seq.Residue {
	if b >= 'a' && b <= 'z' {
		b -= 'a' - 'A'
	}
	return seq.Residue(b)
}

// readDimensions reads the arguments of a DIMENSIONS command, up to and
// including its ';'. A bare number is taken to be NTAX.
func (r *Reader) readDimensions() (map[string]int, error) {
	dims := make(map[string]int)
	for {
		it := r.next()
		switch it.typ {
		case itemSemicolon:
			return dims, nil
		case itemWord:
		default:
			return nil, r.fail(it, ErrMissingEOS, "expected ';' but got %s", it)
		}

		key, value := "NTAX", it
		if eq := r.peek(); eq.typ == itemPunct && eq.val == "=" {
			r.next()
			key, value = strings.ToUpper(it.val), r.next()
		} else if len(dims) > 0 {
			return nil, r.fail(it, ErrMissingEOS, "expected ';' but got %s", it)
		}

		n, err := strconv.Atoi(value.val)
		if value.typ != itemWord || err != nil || n < 0 {
			return nil, r.fail(value, ErrInvalidNumber, "%s", value)
		}
		dims[key] = n
	}
}

// readLabels reads a white space separated list of words, up to and
// including the terminating ';'.
func (r *Reader) readLabels() ([]string, error) {
	labels := make([]string, 0)
	for {
		it := r.next()
		switch it.typ {
		case itemSemicolon:
			return labels, nil
		case itemWord, itemQuoted:
			labels = append(labels, it.val)
		case itemEOF:
			return nil, errf(it.line, ErrMissingEOS, "list is never terminated")
		default:
			return nil, r.fail(it, ErrInvalidList, "unexpected %s", it)
		}
	}
}

// command returns the upper cased name of the next command in a block. The
// name is empty once the block's END (or ENDBLOCK) command has been read.
func (r *Reader) command() (string, item, error) {
	for {
		it := r.next()
		switch it.typ {
		case itemSemicolon:
			continue
		case itemEOF:
			return "", it, errf(it.line, ErrMissingToken, "end")
		case itemError:
			return "", it, r.fail(it, nil, "")
		}

		cmd := strings.ToUpper(it.val)
		if it.typ == itemWord && (cmd == "END" || cmd == "ENDBLOCK") {
			return "", it, r.expectEOS()
		}
		return cmd, it, nil
	}
}

// skipCommand discards everything up to and including the next ';'.
func (r *Reader) skipCommand() error {
	for {
		it := r.next()
		switch it.typ {
		case itemSemicolon:
			return nil
		case itemEOF:
			return errf(it.line, ErrMissingEOS, "command is never terminated")
		case itemError:
			return r.fail(it, nil, "")
		}
	}
}

func (r *Reader) skipBlock(name string) (*Unknown, error) {
	for {
		cmd, _, err := r.command()
		if err != nil {
			return nil, err
		}
		if len(cmd) == 0 {
			return &Unknown{Name: name}, nil
		}
		if err := r.skipCommand(); err != nil {
			return nil, err
		}
	}
}

func (r *Reader) expectEOS() error {
	it := r.next()
	if it.typ != itemSemicolon {
		return r.fail(it, ErrMissingEOS, "expected ';' but got %s", it)
	}
	return nil
}

// raw returns the next item, white space and comments included.
func (r *Reader) raw() item {
	if n := len(r.peeked); n > 0 {
		it := r.peeked[n-1]
		r.peeked = r.peeked[:n-1]
		return it
	}
	return r.lx.nextItem()
}

func (r *Reader) unread(it item) {
	r.peeked = append(r.peeked, it)
}

// next returns the next item that isn't white space or a comment.
func (r *Reader) next() item {
	for {
		it := r.raw()
		if it.typ != itemSpace && it.typ != itemComment {
			return it
		}
	}
}

func (r *Reader) peek() item {
	it := r.next()
	r.unread(it)
	return it
}

// fail reports a problem with `it`. Errors found by the lexer take
// precedence over `err`.
func (r *Reader) fail(it item, err error, format string, v ...interface{}) error {
	if it.typ == itemError {
		return &ParseError{Line: it.line, Err: it.err, Detail: it.val}
	}
	return errf(it.line, err, format, v...)
}

func isKeyword(it item, keyword string) bool {
	return it.typ == itemWord && strings.EqualFold(it.val, keyword)
}

func trimSpace(items []item) []item {
	for len(items) > 0 && items[0].typ == itemSpace {
		items = items[1:]
	}
	for len(items) > 0 && items[len(items)-1].typ == itemSpace {
		items = items[:len(items)-1]
	}
	return items
}
