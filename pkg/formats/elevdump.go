package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DumpHeader is the only elevdump version line accepted by ReadDump.
const DumpHeader = "elevdump version 2"

// Elevdump format errors.
var (
	ErrMissingField   = errors.New("missing field")
	ErrParseInt       = errors.New("invalid integer")
	ErrInvalidCount   = errors.New("invalid count")
	ErrInvalidVersion = errors.New("invalid elevdump version")
	ErrIO             = errors.New("elevdump I/O error")
)

// EntryErrorKind classifies an entry decode failure.
type EntryErrorKind int

const (
	MissingField EntryErrorKind = iota
	ParseIntError
	InvalidCount
)

// String returns the kind name.
func (k EntryErrorKind) String() string {
	switch k {
	case MissingField:
		return "MissingField"
	case ParseIntError:
		return "ParseIntError"
	case InvalidCount:
		return "InvalidCount"
	default:
		return fmt.Sprintf("EntryErrorKind(%d)", int(k))
	}
}

// EntryError describes why a dump line could not be decoded.
type EntryError struct {
	Kind  EntryErrorKind
	Field string // field name, or "texture"/"height" for InvalidCount
	Err   error  // strconv error for ParseIntError

	Expected int // InvalidCount only
	Actual   int // InvalidCount only
}

func (e *EntryError) Error() string {
	switch e.Kind {
	case MissingField:
		return "missing field: " + e.Field
	case ParseIntError:
		return fmt.Sprintf("failed to parse %s as integer: %v", e.Field, e.Err)
	case InvalidCount:
		return fmt.Sprintf("invalid %s count: expected %d, got %d", e.Field, e.Expected, e.Actual)
	default:
		return "invalid entry: " + e.Field
	}
}

// Unwrap returns the underlying strconv error, if any.
func (e *EntryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *EntryError) Is(target error) bool {
	switch target {
	case ErrMissingField:
		return e.Kind == MissingField
	case ErrParseInt:
		return e.Kind == ParseIntError
	case ErrInvalidCount:
		return e.Kind == InvalidCount
	}
	return false
}

// VersionError is returned when the first line is not DumpHeader.
type VersionError struct {
	Actual string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%v: expected %q, got %q", ErrInvalidVersion, DumpHeader, e.Actual)
}

func (e *VersionError) Unwrap() error {
	return ErrInvalidVersion
}

// LineError wraps an entry decode failure with its 1-based line number.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Entry is one decoded dump line: a square terrain patch anchored at a node
// cell inside a page.
type Entry struct {
	PageX      int32
	PageZ      int32
	NodeX      uint8 // 0 - 127
	NodeZ      uint8 // 0 - 127
	NodeRadius uint8
	TextureIDs []uint32 // raw ids, top two bits of the low 16 encode rotation
	Heights    []int32
}

// Dump is a parsed elevdump file. Entries keep file order; later entries
// overwrite earlier ones where they overlap.
type Dump struct {
	Entries []Entry
}

// fieldReader hands out whitespace separated tokens in order.
type fieldReader struct {
	tokens []string
	pos    int
}

func (r *fieldReader) next(field string) (string, error) {
	if r.pos >= len(r.tokens) {
		return "", &EntryError{Kind: MissingField, Field: field}
	}
	tok := r.tokens[r.pos]
	r.pos++
	return tok, nil
}

func (r *fieldReader) int(field string, bits int) (int64, error) {
	tok, err := r.next(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, bits)
	if err != nil {
		return 0, &EntryError{Kind: ParseIntError, Field: field, Err: err}
	}
	return v, nil
}

func (r *fieldReader) uint(field string, bits int) (uint64, error) {
	tok, err := r.next(field)
	if err != nil {
		return 0, err
	}
	// ParseUint rejects a leading '+', which the format allows.
	v, err := strconv.ParseUint(strings.TrimPrefix(tok, "+"), 10, bits)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			ne.Num = tok
		}
		return 0, &EntryError{Kind: ParseIntError, Field: field, Err: err}
	}
	return v, nil
}

// DecodeEntry parses a single dump line. Tokens after the declared height
// values are ignored.
func DecodeEntry(line string) (Entry, error) {
	r := &fieldReader{tokens: strings.Fields(line)}

	pageX, err := r.int("page_x", 32)
	if err != nil {
		return Entry{}, err
	}
	pageZ, err := r.int("page_z", 32)
	if err != nil {
		return Entry{}, err
	}
	nodeX, err := r.uint("node_x", 8)
	if err != nil {
		return Entry{}, err
	}
	nodeZ, err := r.uint("node_z", 8)
	if err != nil {
		return Entry{}, err
	}
	radius, err := r.uint("node_radius", 8)
	if err != nil {
		return Entry{}, err
	}
	textureCount, err := r.uint("texture_count", strconv.IntSize)
	if err != nil {
		return Entry{}, err
	}
	heightCount, err := r.uint("height_count", strconv.IntSize)
	if err != nil {
		return Entry{}, err
	}

	// Never preallocate more than the line can hold.
	remaining := uint64(len(r.tokens) - r.pos)

	textureIDs := make([]uint32, 0, min(textureCount, remaining))
	for range textureCount {
		id, err := r.uint("texture_id", 32)
		if err != nil {
			return Entry{}, err
		}
		textureIDs = append(textureIDs, uint32(id))
	}

	remaining = uint64(len(r.tokens) - r.pos)
	heights := make([]int32, 0, min(heightCount, remaining))
	for range heightCount {
		h, err := r.int("height", 32)
		if err != nil {
			return Entry{}, err
		}
		heights = append(heights, int32(h))
	}

	// Unreachable while the loops above read exactly the declared number of
	// values or fail with MissingField.
	if uint64(len(textureIDs)) != textureCount {
		return Entry{}, &EntryError{Kind: InvalidCount, Field: "texture", Expected: int(textureCount), Actual: len(textureIDs)}
	}
	if uint64(len(heights)) != heightCount {
		return Entry{}, &EntryError{Kind: InvalidCount, Field: "height", Expected: int(heightCount), Actual: len(heights)}
	}

	return Entry{
		PageX:      int32(pageX),
		PageZ:      int32(pageZ),
		NodeX:      uint8(nodeX),
		NodeZ:      uint8(nodeZ),
		NodeRadius: uint8(radius),
		TextureIDs: textureIDs,
		Heights:    heights,
	}, nil
}

// String renders the entry as a dump line that DecodeEntry parses back to
// an identical entry.
func (e Entry) String() string {
	var b strings.Builder
	b.Grow(32 + 11*(len(e.TextureIDs)+len(e.Heights)))

	fmt.Fprintf(&b, "%d %d %d %d %d %d %d",
		e.PageX, e.PageZ, e.NodeX, e.NodeZ, e.NodeRadius, len(e.TextureIDs), len(e.Heights))
	for _, id := range e.TextureIDs {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	for _, h := range e.Heights {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(int64(h), 10))
	}
	return b.String()
}

// ReadDump reads an elevdump from r. The first line must be DumpHeader;
// blank lines are skipped. The first malformed line aborts the read.
func ReadDump(r io.Reader) (*Dump, error) {
	br := bufio.NewReader(r)

	header, err := readLine(br)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: reading header: %w", ErrIO, err)
	}
	if strings.TrimSpace(header) != DumpHeader {
		return nil, &VersionError{Actual: header}
	}

	dump := &Dump{}
	lineNo := 1
	for err != io.EOF {
		var line string
		line, err = readLine(br)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: reading line %d: %w", ErrIO, lineNo+1, err)
		}
		if err == io.EOF && line == "" {
			break
		}
		lineNo++

		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, decodeErr := DecodeEntry(line)
		if decodeErr != nil {
			return nil, &LineError{Line: lineNo, Err: decodeErr}
		}
		dump.Entries = append(dump.Entries, entry)
	}

	return dump, nil
}

// readLine returns the next line without its terminator. It returns io.EOF
// together with the final unterminated line, if any.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, err
}

// ParseDump parses an elevdump held in a string.
func ParseDump(s string) (*Dump, error) {
	return ReadDump(strings.NewReader(s))
}

// ParseDumpFile parses an elevdump file from disk.
func ParseDumpFile(path string) (*Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening elevdump: %w", ErrIO, err)
	}
	defer f.Close()
	return ReadDump(f)
}

// WriteDump writes the header followed by one line per entry.
func WriteDump(w io.Writer, d *Dump) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(DumpHeader + "\n"); err != nil {
		return err
	}
	for _, e := range d.Entries {
		if _, err := bw.WriteString(e.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// TextureCount returns the number of distinct raw texture ids in the dump.
func (d *Dump) TextureCount() int {
	seen := make(map[uint32]struct{})
	for _, e := range d.Entries {
		for _, id := range e.TextureIDs {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}
