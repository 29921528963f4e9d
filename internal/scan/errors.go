package scan

import "fmt"

// UnterminatedError reports that the stream ended before an expected
// literal was matched. Closest, when non-empty, is the longest prefix of
// the literal actually observed, with the location where it began; it
// exists purely to make error messages useful.
type UnterminatedError struct {
	Expected        string
	Closest         string
	ClosestLocation Location
}

func (e *UnterminatedError) Error() string {
	if e.Closest == "" {
		return fmt.Sprintf("unterminated input: expected %q before end of stream", e.Expected)
	}
	return fmt.Sprintf("unterminated input: expected %q before end of stream (closest match %q at %s)",
		e.Expected, e.Closest, e.ClosestLocation)
}

// InvalidUTF8Error reports an invalid byte sequence encountered while
// scanning, with the position where decoding stopped.
type InvalidUTF8Error struct {
	Location Location
	Bytes    []byte
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("invalid utf-8 sequence % X at %s", e.Bytes, e.Location)
}

// IOError reports a failure of the underlying byte source, with the
// position where scanning stopped.
type IOError struct {
	Location Location
	Err      error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read failed at %s: %v", e.Location, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
