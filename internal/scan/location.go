package scan

import "fmt"

// Location is an immutable snapshot of a scan position. Chars counts
// every character consumed since the start of the stream. Line and Column
// are zero-based; Line increments on '\n' and Column resets with it.
type Location struct {
	Chars  int
	Line   int
	Column int
}

// String renders the location with one-based line and column numbers, the
// way editors and error messages count them.
func (l Location) String() string {
	return fmt.Sprintf("line %d, column %d (char %d)", l.Line+1, l.Column+1, l.Chars)
}
