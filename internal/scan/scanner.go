// Package scan provides position-tracked scanning primitives over a
// decoded character stream: skip forward to a literal, accumulate text up
// to a literal, and peek. Failures carry structured locations and a
// best-effort "closest match" diagnostic.
package scan

import (
	"errors"
	"io"
	"strings"
	"unicode"

	"watchlog/internal/decode"
)

// Scanner consumes characters from a decoder while maintaining running
// location counters. Each consumed character advances the counters exactly
// once, whether it is discarded, accumulated, or part of a partial match.
type Scanner struct {
	d       *decode.Decoder
	peeked  rune
	hasPeek bool

	chars  int
	line   int
	column int
}

// New returns a Scanner over d.
func New(d *decode.Decoder) *Scanner {
	return &Scanner{d: d}
}

// NewReader returns a Scanner decoding UTF-8 directly from r.
func NewReader(r io.Reader) *Scanner {
	return New(decode.NewDecoder(r))
}

// Location returns a snapshot of the current scan position.
func (s *Scanner) Location() Location {
	return Location{Chars: s.chars, Line: s.line, Column: s.column}
}

// SkipTo discards characters until literal has been matched in full. On
// success the position is immediately after the literal. Matching is a
// rolling, case-sensitive, exact comparison over characters.
func (s *Scanner) SkipTo(literal string) error {
	if literal == "" {
		return nil
	}
	m := newMatcher(literal)
	for {
		loc := s.Location()
		c, err := s.next()
		if err != nil {
			if err == io.EOF {
				return m.fail(literal)
			}
			return err
		}
		if done, _ := m.feed(c, loc); done {
			return nil
		}
	}
}

// ReadUntil accumulates characters until literal has been matched in full
// and returns the accumulated text, which excludes the literal itself.
// Whitespace runs in the text are collapsed to a single ASCII space, which
// normalizes newlines and non-breaking spaces in multi-line content.
// Characters tentatively consumed by a partial match that later failed are
// ordinary content and appear in the result.
func (s *Scanner) ReadUntil(literal string) (string, error) {
	if literal == "" {
		return "", nil
	}
	m := newMatcher(literal)
	var out strings.Builder
	lastSpace := false
	for {
		loc := s.Location()
		c, err := s.next()
		if err != nil {
			if err == io.EOF {
				return "", m.fail(literal)
			}
			return "", err
		}
		done, flushed := m.feed(c, loc)
		for _, r := range flushed {
			lastSpace = appendCollapsed(&out, r, lastSpace)
		}
		if done {
			return out.String(), nil
		}
	}
}

// Peek returns the next character without consuming it. The location
// counters do not advance until the character is consumed by SkipTo or
// ReadUntil.
func (s *Scanner) Peek() (rune, error) {
	if s.hasPeek {
		return s.peeked, nil
	}
	r, _, err := s.d.Next()
	if err != nil {
		if err == io.EOF {
			return 0, &UnterminatedError{Expected: "any character"}
		}
		return 0, s.decodeErr(err)
	}
	s.peeked, s.hasPeek = r, true
	return r, nil
}

// next consumes one character and advances the location counters.
func (s *Scanner) next() (rune, error) {
	var c rune
	if s.hasPeek {
		c = s.peeked
		s.hasPeek = false
	} else {
		r, _, err := s.d.Next()
		if err != nil {
			return 0, s.decodeErr(err)
		}
		c = r
	}
	s.chars++
	if c == '\n' {
		s.line++
		s.column = 0
	} else {
		s.column++
	}
	return c, nil
}

// decodeErr converts decoder errors into scanner errors carrying the
// current location. io.EOF passes through so callers can map it to the
// literal they were expecting.
func (s *Scanner) decodeErr(err error) error {
	if err == io.EOF {
		return io.EOF
	}
	var inv *decode.InvalidBytesError
	if errors.As(err, &inv) {
		return &InvalidUTF8Error{Location: s.Location(), Bytes: inv.Bytes}
	}
	return &IOError{Location: s.Location(), Err: err}
}

// appendCollapsed writes r to out with whitespace runs collapsed to one
// ASCII space and reports whether the last written character was a space.
func appendCollapsed(out *strings.Builder, r rune, lastSpace bool) bool {
	if unicode.IsSpace(r) {
		if !lastSpace {
			out.WriteByte(' ')
		}
		return true
	}
	out.WriteRune(r)
	return false
}
