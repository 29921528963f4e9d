// Package decode presents a byte-oriented input source as a stream of
// Unicode scalar values. It tolerates partial reads, multi-byte code
// points split across read calls, and invalid byte sequences.
package decode

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// maxRuneLen is the maximum number of bytes in one encoded code point.
const maxRuneLen = utf8.UTFMax

// InvalidBytesError reports a byte span that does not form valid UTF-8.
// The offending bytes have already been dropped from the stream; the next
// call to Next resumes with the byte that follows them.
type InvalidBytesError struct {
	Bytes []byte
}

func (e *InvalidBytesError) Error() string {
	return fmt.Sprintf("invalid utf-8 sequence % X", e.Bytes)
}

// Option configures a Decoder.
type Option func(*Decoder)

// DiscardBufferOnError makes the decoder drop buffered, not-yet-decoded
// bytes when the underlying reader fails. The default keeps them so a
// transient error can be retried without losing input.
func DiscardBufferOnError() Option {
	return func(d *Decoder) { d.discardOnErr = true }
}

// Decoder reads Unicode scalar values from an io.Reader one at a time.
//
// Next returning io.EOF is not terminal: the source may produce bytes
// again later (a file being appended to, a pipe receiving another write),
// and the decoder resumes transparently. Callers that want one-shot
// semantics treat the first io.EOF as final by convention.
type Decoder struct {
	r            io.Reader
	buf          [maxRuneLen]byte
	n            int // buffered byte count
	bytesRead    int
	pending      error // read error held back until buffered bytes drain
	discardOnErr bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{r: r}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BytesRead reports the total number of bytes consumed from the source,
// including bytes that are buffered but not yet decoded.
func (d *Decoder) BytesRead() int {
	return d.bytesRead
}

// Next returns the next scalar value in the stream and the number of bytes
// it consumed.
//
// Invalid byte sequences yield an *InvalidBytesError carrying exactly the
// invalid span; decoding continues past it on the following call. Errors
// from the underlying reader are returned as-is and, unless configured
// otherwise, leave buffered bytes intact for a retry. End of input is
// io.EOF once the internal buffer is empty.
func (d *Decoder) Next() (rune, int, error) {
	for {
		if d.n > 0 && utf8.FullRune(d.buf[:d.n]) {
			r, size := utf8.DecodeRune(d.buf[:d.n])
			if r == utf8.RuneError && size == 1 {
				span := invalidSpan(d.buf[:d.n])
				bad := make([]byte, span)
				copy(bad, d.buf[:span])
				d.shift(span)
				return utf8.RuneError, 0, &InvalidBytesError{Bytes: bad}
			}
			d.shift(size)
			return r, size, nil
		}

		if d.pending != nil {
			err := d.pending
			d.pending = nil
			if d.discardOnErr {
				d.n = 0
			}
			return 0, 0, err
		}

		n, err := d.r.Read(d.buf[d.n:])
		if n > 0 {
			d.n += n
			d.bytesRead += n
			if err != nil && err != io.EOF {
				// Decode what arrived before surfacing the error.
				d.pending = err
			}
			continue
		}
		if err != nil && err != io.EOF {
			if d.discardOnErr {
				d.n = 0
			}
			return 0, 0, err
		}

		// Zero bytes read: the stream has (for now) ended.
		if d.n == 0 {
			return 0, 0, io.EOF
		}
		// The buffered tail is an incomplete sequence that can never
		// complete because no more data arrived. Flush it as invalid
		// rather than holding it forever.
		bad := make([]byte, d.n)
		copy(bad, d.buf[:d.n])
		d.n = 0
		return utf8.RuneError, 0, &InvalidBytesError{Bytes: bad}
	}
}

// shift drops the first n buffered bytes.
func (d *Decoder) shift(n int) {
	copy(d.buf[:], d.buf[n:d.n])
	d.n -= n
}

// invalidSpan reports how many leading bytes of p form a single invalid
// sequence: the maximal subpart of the ill-formed subsequence, per the
// Unicode substitution recommendation. p is known not to start with a
// valid encoding.
func invalidSpan(p []byte) int {
	lead := p[0]
	var want int
	var lo, hi byte
	switch {
	case lead >= 0xC2 && lead <= 0xDF:
		want, lo, hi = 2, 0x80, 0xBF
	case lead == 0xE0:
		want, lo, hi = 3, 0xA0, 0xBF
	case lead >= 0xE1 && lead <= 0xEC:
		want, lo, hi = 3, 0x80, 0xBF
	case lead == 0xED:
		want, lo, hi = 3, 0x80, 0x9F
	case lead >= 0xEE && lead <= 0xEF:
		want, lo, hi = 3, 0x80, 0xBF
	case lead == 0xF0:
		want, lo, hi = 4, 0x90, 0xBF
	case lead >= 0xF1 && lead <= 0xF3:
		want, lo, hi = 4, 0x80, 0xBF
	case lead == 0xF4:
		want, lo, hi = 4, 0x80, 0x8F
	default:
		// Stray continuation byte or invalid lead (0x80..0xC1, 0xF5..).
		return 1
	}

	n := 1
	for n < len(p) && n < want {
		b := p[n]
		if b < lo || b > hi {
			return n
		}
		// Only the first continuation byte has a narrowed range.
		lo, hi = 0x80, 0xBF
		n++
	}
	return n
}
