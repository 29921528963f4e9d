// Package htmlexport extracts watch records from the Takeout HTML export.
// The export is not parsed as HTML; records are pulled out with a fixed
// grammar of literal anchors and delimiters over the character stream, so
// arbitrarily large exports stream through a 4-byte decode buffer.
package htmlexport

import (
	"errors"
	"fmt"
	"io"
	"time"

	"watchlog/internal/model"
	"watchlog/internal/scan"
)

const (
	// anchorToHref introduces one record and ends just before the video
	// URL. The space after "Watched" is U+00A0, a non-breaking space.
	anchorToHref = "Watched <a href=\""

	// rowSeparator sits between the title link, the optional channel
	// link, and the timestamp line.
	rowSeparator = "<br />"

	// timeLayout matches timestamps like "Jun 29, 2021, 4:49:36 PM EDT".
	// Newer exports put a U+202F narrow no-break space before the AM/PM
	// marker; whitespace collapsing in ReadUntil turns it into a plain
	// space before the text reaches time.Parse.
	timeLayout = "Jan 2, 2006, 3:04:05 PM MST"
)

// ErrNoRecords is returned when the input contains no record anchor at
// all, which distinguishes empty or garbage input from a normal end of
// data after at least one record.
var ErrNoRecords = errors.New("no watch records found in input")

// DateError reports a record whose timestamp text did not match the
// expected layout. It carries the offending text and the position just
// after it.
type DateError struct {
	Location scan.Location
	Text     string
	Err      error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("cannot parse watch time %q at %s: %v", e.Text, e.Location, e.Err)
}

func (e *DateError) Unwrap() error { return e.Err }

// Extractor pulls watch records out of an HTML export one at a time.
type Extractor struct {
	s *scan.Scanner
}

// NewExtractor returns an Extractor reading from r.
func NewExtractor(r io.Reader) *Extractor {
	return &Extractor{s: scan.NewReader(r)}
}

// Location returns the current position in the input, for diagnostics.
func (x *Extractor) Location() scan.Location {
	return x.s.Location()
}

// Next extracts the next record. ok is false when the input holds no
// further record anchor: the normal end of data, not an error. Any other
// failure aborts extraction; the partial record is discarded.
func (x *Extractor) Next() (rec model.Record, ok bool, err error) {
	if err := x.s.SkipTo(anchorToHref); err != nil {
		var unterminated *scan.UnterminatedError
		if errors.As(err, &unterminated) {
			// The anchor wasn't found before the stream ended: there are
			// no more records.
			return model.Record{}, false, nil
		}
		return model.Record{}, false, err
	}

	if rec.VideoURL, err = x.s.ReadUntil(`"`); err != nil {
		return model.Record{}, false, err
	}
	if err = x.s.SkipTo(">"); err != nil {
		return model.Record{}, false, err
	}
	if rec.Title, err = x.s.ReadUntil("<"); err != nil {
		return model.Record{}, false, err
	}
	if err = x.s.SkipTo(rowSeparator); err != nil {
		return model.Record{}, false, err
	}

	next, err := x.s.Peek()
	if err != nil {
		return model.Record{}, false, err
	}
	switch next {
	case '<':
		// A channel link follows.
		if err = x.s.SkipTo(`"`); err != nil {
			return model.Record{}, false, err
		}
		if rec.ChannelURL, err = x.s.ReadUntil(`"`); err != nil {
			return model.Record{}, false, err
		}
		if err = x.s.SkipTo(">"); err != nil {
			return model.Record{}, false, err
		}
		if rec.ChannelName, err = x.s.ReadUntil("<"); err != nil {
			return model.Record{}, false, err
		}
		if err = x.s.SkipTo(rowSeparator); err != nil {
			return model.Record{}, false, err
		}
	case 'W':
		// Some rows carry the text "Watched at <time>" instead of a
		// channel link. Skip it; the channel fields stay empty.
		if err = x.s.SkipTo(rowSeparator); err != nil {
			return model.Record{}, false, err
		}
	default:
		// No channel at all; the timestamp comes next.
	}

	text, err := x.s.ReadUntil("\n")
	if err != nil {
		return model.Record{}, false, err
	}
	when, err := time.Parse(timeLayout, text)
	if err != nil {
		return model.Record{}, false, &DateError{Location: x.s.Location(), Text: text, Err: err}
	}
	rec.WatchedAt = when

	return rec, true, nil
}

// parser adapts the extractor to the model.Parser interface.
type parser struct{}

func init() {
	model.RegisterHTMLParser(func() model.Parser { return parser{} })
}

// NewParser returns a model.Parser over the HTML export format.
func NewParser() model.Parser { return parser{} }

func (parser) Parse(r io.Reader) ([]model.Record, error) {
	x := NewExtractor(r)
	var records []model.Record
	for {
		rec, ok, err := x.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			if len(records) == 0 {
				return nil, ErrNoRecords
			}
			return records, nil
		}
		records = append(records, rec)
	}
}
