package barcode

import (
	"fmt"
	"strconv"
)

// Read identifies the sequencing read a slice is taken from.
type Read int

const (
	// Read1 is the first mate (r1).
	Read1 Read = 1
	// Read2 is the second mate (r2).
	Read2 Read = 2
)

// SliceExpression is a half-open range [Start:End) of one read.
type SliceExpression struct {
	Read  Read
	Start int
	End   int
}

// String returns the expression in its canonical form, e.g. "r1[0:12]".
func (s SliceExpression) String() string {
	return fmt.Sprintf("r%d[%d:%d]", s.Read, s.Start, s.End)
}

// Len returns the number of bases the slice selects.
func (s SliceExpression) Len() int {
	return s.End - s.Start
}

// Extract returns the selected bases from whichever of r1 and r2 the
// expression names.
func (s SliceExpression) Extract(r1, r2 string) (string, error) {
	seq := r1
	if s.Read == Read2 {
		seq = r2
	}
	if len(seq) < s.End {
		return "", fmt.Errorf("%w: %s needs %d bases, read has %d", ErrReadTooShort, s, s.End, len(seq))
	}
	return seq[s.Start:s.End], nil
}

// ParseSlice parses and range-checks a slice expression of the form
// r(1|2)[<int>:<int>].
func ParseSlice(raw string) (SliceExpression, error) {
	expr, err := ScanSlice(raw)
	if err != nil {
		return SliceExpression{}, err
	}
	if err := checkRange(raw, expr); err != nil {
		return SliceExpression{}, err
	}
	return expr, nil
}

// ScanSlice checks only the grammar of a slice expression. Bounds may still
// be negative or out of order; use ParseSlice for a usable expression.
func ScanSlice(raw string) (SliceExpression, error) {
	sc := &sliceScanner{raw: raw}

	if err := sc.expect('r', "read selector 'r'"); err != nil {
		return SliceExpression{}, err
	}
	var expr SliceExpression
	switch sc.peek() {
	case '1':
		expr.Read = Read1
	case '2':
		expr.Read = Read2
	default:
		return SliceExpression{}, sc.fail("read must be 1 or 2")
	}
	sc.pos++

	if err := sc.expect('[', "'['"); err != nil {
		return SliceExpression{}, err
	}
	start, err := sc.integer()
	if err != nil {
		return SliceExpression{}, err
	}
	if err := sc.expect(':', "':'"); err != nil {
		return SliceExpression{}, err
	}
	end, err := sc.integer()
	if err != nil {
		return SliceExpression{}, err
	}
	if err := sc.expect(']', "']'"); err != nil {
		return SliceExpression{}, err
	}
	if sc.pos != len(raw) {
		return SliceExpression{}, sc.fail("unexpected trailing characters")
	}

	expr.Start = start
	expr.End = end
	return expr, nil
}

// CheckRange validates the bounds of a scanned expression. raw is only used
// for the error message.
func CheckRange(raw string, expr SliceExpression) error {
	return checkRange(raw, expr)
}

func checkRange(raw string, expr SliceExpression) error {
	open := 3 // len("r1[")
	if expr.Start < 0 {
		return &SliceError{Raw: raw, Pos: open, Message: "start must not be negative", Err: ErrSliceRange}
	}
	if expr.End < 0 {
		return &SliceError{Raw: raw, Pos: open + len(strconv.Itoa(expr.Start)) + 1, Message: "end must not be negative", Err: ErrSliceRange}
	}
	if expr.Start >= expr.End {
		return &SliceError{
			Raw:     raw,
			Pos:     open,
			Message: fmt.Sprintf("start %d must be less than end %d", expr.Start, expr.End),
			Err:     ErrSliceRange,
		}
	}
	return nil
}

type sliceScanner struct {
	raw string
	pos int
}

func (s *sliceScanner) peek() byte {
	if s.pos >= len(s.raw) {
		return 0
	}
	return s.raw[s.pos]
}

func (s *sliceScanner) fail(msg string) *SliceError {
	return &SliceError{Raw: s.raw, Pos: s.pos, Message: msg, Err: ErrSliceSyntax}
}

func (s *sliceScanner) expect(c byte, what string) error {
	if s.peek() != c {
		if s.pos >= len(s.raw) {
			return s.fail("unexpected end, want " + what)
		}
		return s.fail("want " + what)
	}
	s.pos++
	return nil
}

// integer reads an optionally signed decimal integer.
func (s *sliceScanner) integer() (int, error) {
	begin := s.pos
	if s.peek() == '-' {
		s.pos++
	}
	digits := s.pos
	for s.pos < len(s.raw) && s.raw[s.pos] >= '0' && s.raw[s.pos] <= '9' {
		s.pos++
	}
	if s.pos == digits {
		s.pos = begin
		return 0, s.fail("want integer bound")
	}
	n, err := strconv.Atoi(s.raw[begin:s.pos])
	if err != nil {
		s.pos = begin
		return 0, s.fail("integer bound out of range")
	}
	return n, nil
}
