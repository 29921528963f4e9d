package scan

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanner(input string) *Scanner {
	return NewReader(strings.NewReader(input))
}

func TestSkipTo_PositionAfterLiteral(t *testing.T) {
	s := newTestScanner("xxabcyyy")

	require.NoError(t, s.SkipTo("abc"))

	// The scan position is immediately after the literal.
	next, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, 'y', next)
	assert.Equal(t, Location{Chars: 5, Line: 0, Column: 5}, s.Location())
}

func TestSkipTo_UnterminatedWithClosest(t *testing.T) {
	s := newTestScanner("xxab")

	err := s.SkipTo("abc")
	var unterminated *UnterminatedError
	require.ErrorAs(t, err, &unterminated)
	assert.Equal(t, "abc", unterminated.Expected)
	assert.Equal(t, "ab", unterminated.Closest)
	assert.Equal(t, Location{Chars: 2, Line: 0, Column: 2}, unterminated.ClosestLocation)
}

func TestSkipTo_ClosestIsLongestPartial(t *testing.T) {
	s := newTestScanner("a_ab_x")

	err := s.SkipTo("abc")
	var unterminated *UnterminatedError
	require.ErrorAs(t, err, &unterminated)
	assert.Equal(t, "ab", unterminated.Closest)
	assert.Equal(t, Location{Chars: 2, Line: 0, Column: 2}, unterminated.ClosestLocation)
}

func TestSkipTo_ClosestLocationAcrossNewline(t *testing.T) {
	s := newTestScanner("x\nab")

	err := s.SkipTo("abc")
	var unterminated *UnterminatedError
	require.ErrorAs(t, err, &unterminated)
	assert.Equal(t, "ab", unterminated.Closest)
	assert.Equal(t, Location{Chars: 2, Line: 1, Column: 0}, unterminated.ClosestLocation)
}

func TestSkipTo_NoClosestWithoutPartial(t *testing.T) {
	s := newTestScanner("xyz")

	err := s.SkipTo("abc")
	var unterminated *UnterminatedError
	require.ErrorAs(t, err, &unterminated)
	assert.Empty(t, unterminated.Closest)
}

func TestSkipTo_MismatchCanRestartCandidate(t *testing.T) {
	// The character that kills a partial match may itself start the next
	// one.
	s := newTestScanner("aab!")

	require.NoError(t, s.SkipTo("ab"))
	next, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, '!', next)
}

func TestSkipTo_EmptyLiteral(t *testing.T) {
	s := newTestScanner("abc")

	require.NoError(t, s.SkipTo(""))
	assert.Equal(t, 0, s.Location().Chars)
}

func TestReadUntil_CollapsesNewline(t *testing.T) {
	s := newTestScanner("hello\nworld<")

	got, err := s.ReadUntil("<")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
}

func TestReadUntil_CollapsesNonBreakingSpaces(t *testing.T) {
	s := newTestScanner("a\u00A0\u202F \tb<")

	got, err := s.ReadUntil("<")
	require.NoError(t, err)
	assert.Equal(t, "a b", got)
}

func TestReadUntil_KeepsFailedPartialMatch(t *testing.T) {
	// "<b " starts to match "<br />" and fails; those characters are
	// ordinary content and must appear in the result.
	s := newTestScanner("a<b c<br />")

	got, err := s.ReadUntil("<br />")
	require.NoError(t, err)
	assert.Equal(t, "a<b c", got)
}

func TestReadUntil_Unterminated(t *testing.T) {
	s := newTestScanner("body text en")

	_, err := s.ReadUntil("end")
	var unterminated *UnterminatedError
	require.ErrorAs(t, err, &unterminated)
	assert.Equal(t, "end", unterminated.Expected)
	assert.Equal(t, "en", unterminated.Closest)
}

func TestReadUntil_LiteralExcludedFromResult(t *testing.T) {
	s := newTestScanner("https://example.com/watch\">title")

	got, err := s.ReadUntil("\"")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/watch", got)

	next, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, '>', next)
}

func TestLocation_CountersAdvanceOncePerCharacter(t *testing.T) {
	s := newTestScanner("ab\ncd")

	require.NoError(t, s.SkipTo("d"))
	assert.Equal(t, Location{Chars: 5, Line: 1, Column: 2}, s.Location())
}

func TestPeek_DoesNotAdvance(t *testing.T) {
	s := newTestScanner("ab")

	first, err := s.Peek()
	require.NoError(t, err)
	second, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, s.Location().Chars)

	// Consuming the peeked character counts it exactly once.
	require.NoError(t, s.SkipTo("a"))
	assert.Equal(t, 1, s.Location().Chars)
}

func TestPeek_EmptyStream(t *testing.T) {
	s := newTestScanner("")

	_, err := s.Peek()
	var unterminated *UnterminatedError
	require.ErrorAs(t, err, &unterminated)
	assert.Equal(t, "any character", unterminated.Expected)
}

func TestScan_InvalidUTF8Propagates(t *testing.T) {
	s := newTestScanner("ab\xC0cd")

	err := s.SkipTo("zz")
	var invalid *InvalidUTF8Error
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []byte{0xC0}, invalid.Bytes)
	assert.Equal(t, 2, invalid.Location.Chars)
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestScan_IOFailurePropagates(t *testing.T) {
	boom := errors.New("pipe broke")
	s := NewReader(failingReader{err: boom})

	err := s.SkipTo("x")
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, ioErr.Location.Chars)
}

func TestLocationString_OneBased(t *testing.T) {
	loc := Location{Chars: 12, Line: 2, Column: 4}
	assert.Equal(t, "line 3, column 5 (char 12)", loc.String())
}
