package model

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// SourceFormat identifies the on-disk layout of a watch-history export.
// The format is always chosen by the caller (flag or file extension),
// never sniffed from the content.
type SourceFormat string

const (
	// SourceHTML is the Takeout HTML export.
	SourceHTML SourceFormat = "html"
	// SourceJSON is the Takeout JSON export.
	SourceJSON SourceFormat = "json"
)

// Parser turns one export document into a sequence of records.
type Parser interface {
	// Parse reads the whole document from r and returns the records it
	// contains, in document order.
	Parse(r io.Reader) ([]Record, error)
}

// ParserFactory is a function type that creates a Parser.
// We use this to avoid circular dependencies between model and the
// format packages.
type ParserFactory func() Parser

var (
	htmlFactory ParserFactory
	jsonFactory ParserFactory
)

// RegisterHTMLParser registers the HTML export parser factory.
func RegisterHTMLParser(factory ParserFactory) {
	htmlFactory = factory
}

// RegisterJSONParser registers the JSON export parser factory.
func RegisterJSONParser(factory ParserFactory) {
	jsonFactory = factory
}

// NewParser creates a parser for the specified source format.
func NewParser(format SourceFormat) (Parser, error) {
	switch format {
	case SourceHTML:
		if htmlFactory == nil {
			return nil, fmt.Errorf("html parser not registered")
		}
		return htmlFactory(), nil
	case SourceJSON:
		if jsonFactory == nil {
			return nil, fmt.Errorf("json parser not registered")
		}
		return jsonFactory(), nil
	default:
		return nil, fmt.Errorf("unknown source format: %s", format)
	}
}

// FormatForPath derives the source format from a file extension.
func FormatForPath(path string) (SourceFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return SourceHTML, nil
	case ".json":
		return SourceJSON, nil
	default:
		return "", fmt.Errorf("cannot determine source format of %s; use --source", path)
	}
}
