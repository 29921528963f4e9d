package history

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// The cache is a flat JSON dump of the library: channels and videos by
// arena position, videos referencing channels by index, watches
// referencing videos by URL. Round-tripping a library through it yields
// the same entities and relationships.

type scalarChannel struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type scalarVideo struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Channel int    `json:"channel"`
}

type scalarWatch struct {
	Video string    `json:"video"`
	When  time.Time `json:"when"`
}

type scalarLibrary struct {
	Watches  []scalarWatch   `json:"watches"`
	Channels []scalarChannel `json:"channels"`
	Videos   []scalarVideo   `json:"videos"`
}

// EncodeJSON writes the library to w in the cache format.
func (l *Library) EncodeJSON(w io.Writer) error {
	out := scalarLibrary{
		Watches:  make([]scalarWatch, 0, len(l.watches)),
		Channels: make([]scalarChannel, 0, len(l.channels)),
		Videos:   make([]scalarVideo, 0, len(l.videos)),
	}
	for _, c := range l.channels {
		out.Channels = append(out.Channels, scalarChannel{URL: c.URL, Name: c.Name})
	}
	for _, v := range l.videos {
		out.Videos = append(out.Videos, scalarVideo{URL: v.URL, Title: v.Title, Channel: v.Channel})
	}
	for _, w := range l.watches {
		out.Watches = append(out.Watches, scalarWatch{Video: l.videos[w.Video].URL, When: w.When})
	}

	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encode history cache: %w", err)
	}
	return nil
}

// DecodeJSON reads a library back from the cache format, validating that
// every cross-reference resolves.
func DecodeJSON(r io.Reader) (*Library, error) {
	var in scalarLibrary
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode history cache: %w", err)
	}

	l := New()
	for _, c := range in.Channels {
		l.channels = append(l.channels, Channel{URL: c.URL, Name: c.Name})
		l.channelIdx[channelKey{url: c.URL, name: c.Name}] = len(l.channels) - 1
	}
	for _, v := range in.Videos {
		if v.Channel < 0 || v.Channel >= len(l.channels) {
			return nil, fmt.Errorf("cache video %q references unknown channel %d", v.URL, v.Channel)
		}
		l.videos = append(l.videos, Video{URL: v.URL, Title: v.Title, Channel: v.Channel})
		l.videoIdx[v.URL] = len(l.videos) - 1
	}
	for _, w := range in.Watches {
		idx, ok := l.videoIdx[w.Video]
		if !ok {
			return nil, fmt.Errorf("cache watch references unknown video %q", w.Video)
		}
		l.watches = append(l.watches, Watch{Video: idx, When: w.When})
	}

	return l, nil
}
