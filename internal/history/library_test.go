package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchlog/internal/model"
)

func rec(video, title, channelURL, channelName string, when time.Time) model.Record {
	return model.Record{
		VideoURL:    video,
		Title:       title,
		ChannelURL:  channelURL,
		ChannelName: channelName,
		WatchedAt:   when,
	}
}

var t0 = time.Date(2021, 6, 29, 20, 49, 36, 0, time.UTC)

func TestAdd_DeduplicatesVideosAndChannels(t *testing.T) {
	l := New()
	l.AddAll([]model.Record{
		rec("https://v/1", "One", "https://c/a", "Alpha", t0),
		rec("https://v/2", "Two", "https://c/a", "Alpha", t0.Add(time.Hour)),
		rec("https://v/1", "One", "https://c/a", "Alpha", t0.Add(2*time.Hour)),
	})

	assert.Equal(t, 3, l.WatchCount())
	assert.Equal(t, 2, l.VideoCount())
	assert.Equal(t, 1, l.ChannelCount())
}

func TestAdd_ChannelIdentityIsURLAndName(t *testing.T) {
	// A renamed channel keeps its URL but gets a new entry; the old name
	// stays attached to older videos.
	l := New()
	l.AddAll([]model.Record{
		rec("https://v/1", "One", "https://c/a", "Old Name", t0),
		rec("https://v/2", "Two", "https://c/a", "New Name", t0),
	})

	assert.Equal(t, 2, l.ChannelCount())
}

func TestAdd_WatchOrderPreserved(t *testing.T) {
	l := New()
	l.AddAll([]model.Record{
		rec("https://v/2", "Two", "https://c/a", "Alpha", t0.Add(time.Hour)),
		rec("https://v/1", "One", "https://c/a", "Alpha", t0),
	})

	watches := l.Watches()
	require.Len(t, watches, 2)
	assert.Equal(t, "Two", l.VideoAt(watches[0].Video).Title)
	assert.Equal(t, "One", l.VideoAt(watches[1].Video).Title)
}

func TestTopVideos_OrderAndLimit(t *testing.T) {
	l := New()
	l.AddAll([]model.Record{
		rec("https://v/1", "One", "https://c/a", "Alpha", t0),
		rec("https://v/2", "Two", "https://c/b", "Beta", t0),
		rec("https://v/2", "Two", "https://c/b", "Beta", t0),
		rec("https://v/2", "Two", "https://c/b", "Beta", t0),
		rec("https://v/3", "Three", "https://c/a", "Alpha", t0),
		rec("https://v/3", "Three", "https://c/a", "Alpha", t0),
	})

	top := l.TopVideos(2)
	require.Len(t, top, 2)
	assert.Equal(t, "Two", top[0].Video.Title)
	assert.Equal(t, 3, top[0].Count)
	assert.Equal(t, "Beta", top[0].Channel.Name)
	assert.Equal(t, "Three", top[1].Video.Title)
	assert.Equal(t, 2, top[1].Count)
}

func TestTopVideos_TiesKeepFirstSeenOrder(t *testing.T) {
	l := New()
	l.AddAll([]model.Record{
		rec("https://v/1", "One", "https://c/a", "Alpha", t0),
		rec("https://v/2", "Two", "https://c/a", "Alpha", t0),
	})

	top := l.TopVideos(0)
	require.Len(t, top, 2)
	assert.Equal(t, "One", top[0].Video.Title)
	assert.Equal(t, "Two", top[1].Video.Title)
}

func TestTopChannels_CountsWatchesNotVideos(t *testing.T) {
	l := New()
	l.AddAll([]model.Record{
		rec("https://v/1", "One", "https://c/a", "Alpha", t0),
		rec("https://v/1", "One", "https://c/a", "Alpha", t0),
		rec("https://v/1", "One", "https://c/a", "Alpha", t0),
		rec("https://v/2", "Two", "https://c/b", "Beta", t0),
		rec("https://v/3", "Three", "https://c/b", "Beta", t0),
	})

	top := l.TopChannels(0)
	require.Len(t, top, 2)
	assert.Equal(t, "Alpha", top[0].Channel.Name)
	assert.Equal(t, 3, top[0].Count)
	assert.Equal(t, "Beta", top[1].Channel.Name)
	assert.Equal(t, 2, top[1].Count)
}

func TestTopVideos_NonPositiveLimitReturnsAll(t *testing.T) {
	l := New()
	l.AddAll([]model.Record{
		rec("https://v/1", "One", "https://c/a", "Alpha", t0),
		rec("https://v/2", "Two", "https://c/a", "Alpha", t0),
	})

	assert.Len(t, l.TopVideos(-1), 2)
	assert.Len(t, l.TopVideos(10), 2)
}
