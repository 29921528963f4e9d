// Package format provides formatting and rendering functions for watch
// history reports.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"watchlog/internal/history"
)

// Summary renders the one-line history overview.
func Summary(lib *history.Library) string {
	return fmt.Sprintf("History contains %s unique videos and %s watches across %s channels",
		humanize.Comma(int64(lib.VideoCount())),
		humanize.Comma(int64(lib.WatchCount())),
		humanize.Comma(int64(lib.ChannelCount())))
}

type videoRow struct {
	Rank    int    `json:"rank"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Channel string `json:"channel"`
	Watches int    `json:"watches"`
}

// WriteTopVideos writes the most-watched-videos report to w in the
// requested format.
func WriteTopVideos(w io.Writer, items []history.VideoTally, includeHeader bool, format string) error {
	rows := make([]videoRow, 0, len(items))
	for i, item := range items {
		rows = append(rows, videoRow{
			Rank:    i + 1,
			Title:   item.Video.Title,
			URL:     item.Video.URL,
			Channel: item.Channel.Name,
			Watches: item.Count,
		})
	}

	switch strings.ToLower(format) {
	case "", "table":
		return writeVideosTable(w, rows, includeHeader)
	case "plain":
		return writeVideosPlain(w, rows, includeHeader)
	case "json":
		return writeJSON(w, rows)
	case "jsonl":
		return writeJSONL(w, len(rows), func(i int) any { return rows[i] })
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeVideosPlain(w io.Writer, rows []videoRow, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "rank\ttitle\tchannel\twatches"); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", row.Rank, row.Title, row.Channel, row.Watches); err != nil {
			return err
		}
	}
	return nil
}

func writeVideosTable(w io.Writer, rows []videoRow, includeHeader bool) error {
	tw := newTableWriter(w)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 60},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 30},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"#", "Title", "Channel", "Watches"})
	}
	for _, row := range rows {
		tw.AppendRow(table.Row{row.Rank, row.Title, row.Channel, row.Watches})
	}
	if len(rows) == 0 {
		tw.AppendRow(table.Row{"-", "(no videos)", "-", 0})
	}

	_ = tw.Render()
	return nil
}

type channelRow struct {
	Rank    int    `json:"rank"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Watches int    `json:"watches"`
}

// WriteTopChannels writes the most-watched-channels report to w in the
// requested format.
func WriteTopChannels(w io.Writer, items []history.ChannelTally, includeHeader bool, format string) error {
	rows := make([]channelRow, 0, len(items))
	for i, item := range items {
		rows = append(rows, channelRow{
			Rank:    i + 1,
			Name:    item.Channel.Name,
			URL:     item.Channel.URL,
			Watches: item.Count,
		})
	}

	switch strings.ToLower(format) {
	case "", "table":
		return writeChannelsTable(w, rows, includeHeader)
	case "plain":
		return writeChannelsPlain(w, rows, includeHeader)
	case "json":
		return writeJSON(w, rows)
	case "jsonl":
		return writeJSONL(w, len(rows), func(i int) any { return rows[i] })
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeChannelsPlain(w io.Writer, rows []channelRow, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "rank\tname\twatches"); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%d\n", row.Rank, row.Name, row.Watches); err != nil {
			return err
		}
	}
	return nil
}

func writeChannelsTable(w io.Writer, rows []channelRow, includeHeader bool) error {
	tw := newTableWriter(w)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 40},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"#", "Channel", "Watches"})
	}
	for _, row := range rows {
		tw.AppendRow(table.Row{row.Rank, row.Name, row.Watches})
	}
	if len(rows) == 0 {
		tw.AppendRow(table.Row{"-", "(no channels)", 0})
	}

	_ = tw.Render()
	return nil
}

type watchRow struct {
	WatchedAt time.Time `json:"watchedAt"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Channel   string    `json:"channel"`
}

// WriteWatches writes the chronological watch listing to w in the
// requested format. limit > 0 keeps only the most recent entries.
func WriteWatches(w io.Writer, lib *history.Library, limit int, includeHeader bool, format string) error {
	watches := lib.Watches()
	if limit > 0 && len(watches) > limit {
		watches = watches[len(watches)-limit:]
	}

	rows := make([]watchRow, 0, len(watches))
	for _, watch := range watches {
		video := lib.VideoAt(watch.Video)
		rows = append(rows, watchRow{
			WatchedAt: watch.When,
			Title:     video.Title,
			URL:       video.URL,
			Channel:   lib.ChannelAt(video.Channel).Name,
		})
	}

	switch strings.ToLower(format) {
	case "", "table":
		return writeWatchesTable(w, rows, includeHeader)
	case "plain":
		return writeWatchesPlain(w, rows, includeHeader)
	case "json":
		return writeJSON(w, rows)
	case "jsonl":
		return writeJSONL(w, len(rows), func(i int) any { return rows[i] })
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeWatchesPlain(w io.Writer, rows []watchRow, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "watched_at\ttitle\tchannel\turl"); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			row.WatchedAt.Format(time.RFC3339), row.Title, row.Channel, row.URL); err != nil {
			return err
		}
	}
	return nil
}

func writeWatchesTable(w io.Writer, rows []watchRow, includeHeader bool) error {
	tw := newTableWriter(w)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 60},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 30},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"Watched At", "Title", "Channel"})
	}
	for _, row := range rows {
		tw.AppendRow(table.Row{row.WatchedAt.Format(time.RFC3339), row.Title, row.Channel})
	}
	if len(rows) == 0 {
		tw.AppendRow(table.Row{"-", "(no watches)", "-"})
	}

	_ = tw.Render()
	return nil
}

func newTableWriter(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true
	return tw
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONL(w io.Writer, n int, row func(int) any) error {
	enc := json.NewEncoder(w)
	for i := 0; i < n; i++ {
		if err := enc.Encode(row(i)); err != nil {
			return err
		}
	}
	return nil
}
