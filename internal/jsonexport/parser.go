// Package jsonexport parses the Takeout JSON watch-history export: a
// single JSON array of flat activity rows.
package jsonexport

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"watchlog/internal/model"
)

// defaultChannel stands in for the channel name and URL when a row has no
// subtitles block (private or removed channels).
const defaultChannel = "(hidden)"

// musicVisitTitle marks rows logged by YouTube Music that are not video
// watches; they are excluded from the record set.
const musicVisitTitle = "Visited YouTube Music"

type dataRow struct {
	Header           string     `json:"header"`
	Title            string     `json:"title"`
	TitleURL         string     `json:"titleUrl"`
	Subtitles        []subtitle `json:"subtitles"`
	Time             string     `json:"time"`
	Products         []string   `json:"products"`
	ActivityControls []string   `json:"activityControls"`
}

type subtitle struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type parser struct{}

func init() {
	model.RegisterJSONParser(func() model.Parser { return parser{} })
}

// NewParser returns a model.Parser over the JSON export format.
func NewParser() model.Parser { return parser{} }

func (parser) Parse(r io.Reader) ([]model.Record, error) {
	var rows []dataRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode watch history json: %w", err)
	}

	records := make([]model.Record, 0, len(rows))
	for i, row := range rows {
		if row.Title == musicVisitTitle {
			continue
		}

		rec := model.Record{
			VideoURL:    row.TitleURL,
			Title:       strings.TrimPrefix(row.Title, "Watched "),
			ChannelName: defaultChannel,
			ChannelURL:  defaultChannel,
		}
		if len(row.Subtitles) > 0 {
			rec.ChannelName = row.Subtitles[0].Name
			rec.ChannelURL = row.Subtitles[0].URL
		}

		when, err := time.Parse(time.RFC3339, row.Time)
		if err != nil {
			return nil, fmt.Errorf("parse watch time of row %d: %w", i, err)
		}
		rec.WatchedAt = when

		records = append(records, rec)
	}

	return records, nil
}
