// Package view renders the chronological watch log for a terminal, with
// color and width handling.
package view

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"watchlog/internal/history"
)

// Options defines the configurable parameters for rendering the watch log.
type Options struct {
	Limit        int // keep only the most recent N watches; 0 means all
	Width        int // output width; 0 means autodetect
	ForceColor   bool
	ForceNoColor bool
	Out          io.Writer
	OutFile      *os.File // set when Out is a file, for TTY detection
}

// Run writes one line per watch event to opts.Out, oldest first.
func Run(lib *history.Library, opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	useColor := resolveColorChoice(opts)
	width := determineWidth(opts.OutFile, opts.Width)

	watches := lib.Watches()
	if opts.Limit > 0 && len(watches) > opts.Limit {
		watches = watches[len(watches)-opts.Limit:]
	}

	for _, watch := range watches {
		video := lib.VideoAt(watch.Video)
		channel := lib.ChannelAt(video.Channel)
		line := renderWatchLine(watch.When, video.Title, channel.Name, width, useColor)
		if _, err := fmt.Fprintln(opts.Out, line); err != nil {
			return err
		}
	}
	return nil
}

func renderWatchLine(when time.Time, title, channel string, width int, useColor bool) string {
	ts := when.Format("2006-01-02 15:04:05")
	if useColor {
		ts = colorize(ansiTimestamp, ts)
	}

	var body string
	if channel != "" {
		if useColor {
			channel = colorize(ansiChannel, channel)
		}
		body = fmt.Sprintf("%s  %s  %s", ts, title, channel)
	} else {
		body = fmt.Sprintf("%s  %s", ts, title)
	}

	if width > 0 {
		body = truncateToWidth(body, width)
	}
	return body
}

const (
	ansiReset     = "\x1b[0m"
	ansiTimestamp = "\x1b[38;5;245m"
	ansiChannel   = "\x1b[38;5;44m"
)

func colorize(code, text string) string {
	return code + text + ansiReset
}

func resolveColorChoice(opts Options) bool {
	if opts.ForceColor {
		return true
	}
	if opts.ForceNoColor {
		return false
	}
	return shouldUseColorAuto(opts.Out)
}

func shouldUseColorAuto(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func determineWidth(out *os.File, width int) int {
	if width > 0 {
		return width
	}
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
			return v
		}
	}
	return 80
}

// truncateToWidth cuts text to the given display width, keeping ANSI
// escape sequences intact and unaccounted.
func truncateToWidth(text string, width int) string {
	if visibleWidth(text) <= width {
		return text
	}
	var out strings.Builder
	current := 0

	for i := 0; i < len(text); {
		if seq := ansiPrefixLen(text[i:]); seq > 0 {
			out.WriteString(text[i : i+seq])
			i += seq
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		rw := runewidth.RuneWidth(r)
		if current+rw > width {
			break
		}
		out.WriteRune(r)
		current += rw
		i += size
	}
	if strings.Contains(out.String(), "\x1b[") {
		out.WriteString(ansiReset)
	}
	return out.String()
}

func visibleWidth(text string) int {
	var clean strings.Builder
	for i := 0; i < len(text); {
		if seq := ansiPrefixLen(text[i:]); seq > 0 {
			i += seq
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		clean.WriteRune(r)
		i += size
	}
	return runewidth.StringWidth(clean.String())
}

// ansiPrefixLen returns the length of the color escape sequence at the
// start of text, or 0 if there is none.
func ansiPrefixLen(text string) int {
	if !strings.HasPrefix(text, "\x1b[") {
		return 0
	}
	for i := 2; i < len(text); i++ {
		c := text[i]
		if c == 'm' {
			return i + 1
		}
		if (c < '0' || c > '9') && c != ';' {
			return 0
		}
	}
	return 0
}
