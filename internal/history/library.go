// Package history deduplicates watch records into an in-memory library of
// channels, videos, and an ordered watch sequence, and answers the
// aggregate questions reports are built from.
package history

import (
	"sort"
	"time"

	"watchlog/internal/model"
)

// Channel is a deduplicated channel entity. Channels live in an arena
// inside Library and are referenced by index.
type Channel struct {
	URL  string
	Name string
}

// Video is a deduplicated video entity. Channel is the index of the
// video's channel in the library's channel arena.
type Video struct {
	URL     string
	Title   string
	Channel int
}

// Watch is one watch event: an index into the video arena and the moment
// of watching. The watch list preserves input order.
type Watch struct {
	Video int
	When  time.Time
}

type channelKey struct {
	url  string
	name string
}

// Library is the deduplicated model of a watch history. The zero value is
// not usable; call New.
type Library struct {
	channels   []Channel
	videos     []Video
	watches    []Watch
	channelIdx map[channelKey]int
	videoIdx   map[string]int
}

// New returns an empty Library.
func New() *Library {
	return &Library{
		channelIdx: make(map[channelKey]int),
		videoIdx:   make(map[string]int),
	}
}

// Add folds one record into the library: channel and video are created on
// first sight and reused afterwards, and the watch event is appended.
func (l *Library) Add(rec model.Record) {
	channel := l.findOrCreateChannel(rec.ChannelURL, rec.ChannelName)
	video := l.findOrCreateVideo(rec.VideoURL, rec.Title, channel)
	l.watches = append(l.watches, Watch{Video: video, When: rec.WatchedAt})
}

// AddAll folds a record slice into the library in order.
func (l *Library) AddAll(records []model.Record) {
	for _, rec := range records {
		l.Add(rec)
	}
}

func (l *Library) findOrCreateChannel(url, name string) int {
	key := channelKey{url: url, name: name}
	if idx, ok := l.channelIdx[key]; ok {
		return idx
	}
	l.channels = append(l.channels, Channel{URL: url, Name: name})
	idx := len(l.channels) - 1
	l.channelIdx[key] = idx
	return idx
}

func (l *Library) findOrCreateVideo(url, title string, channel int) int {
	if idx, ok := l.videoIdx[url]; ok {
		return idx
	}
	l.videos = append(l.videos, Video{URL: url, Title: title, Channel: channel})
	idx := len(l.videos) - 1
	l.videoIdx[url] = idx
	return idx
}

// ChannelCount returns the number of distinct channels.
func (l *Library) ChannelCount() int { return len(l.channels) }

// VideoCount returns the number of distinct videos.
func (l *Library) VideoCount() int { return len(l.videos) }

// WatchCount returns the number of watch events.
func (l *Library) WatchCount() int { return len(l.watches) }

// ChannelAt returns the channel at arena index i.
func (l *Library) ChannelAt(i int) Channel { return l.channels[i] }

// VideoAt returns the video at arena index i.
func (l *Library) VideoAt(i int) Video { return l.videos[i] }

// Watches returns the watch sequence in input order. The returned slice
// is owned by the library and must not be modified.
func (l *Library) Watches() []Watch { return l.watches }

// VideoTally pairs a video (and its channel) with its watch count.
type VideoTally struct {
	Video   Video
	Channel Channel
	Count   int
}

// ChannelTally pairs a channel with its watch count.
type ChannelTally struct {
	Channel Channel
	Count   int
}

// TopVideos returns the n most-watched videos, most watched first. Ties
// keep first-seen order. n <= 0 returns all videos.
func (l *Library) TopVideos(n int) []VideoTally {
	counts := make([]int, len(l.videos))
	for _, w := range l.watches {
		counts[w.Video]++
	}

	tallies := make([]VideoTally, len(l.videos))
	for i, v := range l.videos {
		tallies[i] = VideoTally{Video: v, Channel: l.channels[v.Channel], Count: counts[i]}
	}
	sort.SliceStable(tallies, func(a, b int) bool {
		return tallies[a].Count > tallies[b].Count
	})

	if n > 0 && len(tallies) > n {
		tallies = tallies[:n]
	}
	return tallies
}

// TopChannels returns the n channels with the most watches, most watched
// first. Ties keep first-seen order. n <= 0 returns all channels.
func (l *Library) TopChannels(n int) []ChannelTally {
	counts := make([]int, len(l.channels))
	for _, w := range l.watches {
		counts[l.videos[w.Video].Channel]++
	}

	tallies := make([]ChannelTally, len(l.channels))
	for i, c := range l.channels {
		tallies[i] = ChannelTally{Channel: c, Count: counts[i]}
	}
	sort.SliceStable(tallies, func(a, b int) bool {
		return tallies[a].Count > tallies[b].Count
	})

	if n > 0 && len(tallies) > n {
		tallies = tallies[:n]
	}
	return tallies
}
