package history

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchlog/internal/model"
)

func TestCache_RoundTrip(t *testing.T) {
	l := New()
	l.AddAll([]model.Record{
		rec("https://v/1", "One", "https://c/a", "Alpha", t0),
		rec("https://v/2", "Two", "https://c/b", "Beta", t0.Add(time.Hour)),
		rec("https://v/1", "One", "https://c/a", "Alpha", t0.Add(2*time.Hour)),
	})

	var buf bytes.Buffer
	require.NoError(t, l.EncodeJSON(&buf))

	got, err := DecodeJSON(&buf)
	require.NoError(t, err)

	assert.Equal(t, l.ChannelCount(), got.ChannelCount())
	assert.Equal(t, l.VideoCount(), got.VideoCount())
	assert.Equal(t, l.WatchCount(), got.WatchCount())

	for i, w := range l.Watches() {
		gw := got.Watches()[i]
		assert.True(t, w.When.Equal(gw.When))
		assert.Equal(t, l.VideoAt(w.Video), got.VideoAt(gw.Video))
	}
	for i := 0; i < l.ChannelCount(); i++ {
		assert.Equal(t, l.ChannelAt(i), got.ChannelAt(i))
	}
}

func TestCache_RoundTripKeepsDedup(t *testing.T) {
	l := New()
	l.AddAll([]model.Record{
		rec("https://v/1", "One", "https://c/a", "Alpha", t0),
		rec("https://v/1", "One", "https://c/a", "Alpha", t0.Add(time.Hour)),
	})

	var buf bytes.Buffer
	require.NoError(t, l.EncodeJSON(&buf))
	got, err := DecodeJSON(&buf)
	require.NoError(t, err)

	// Adding the same video again must reuse the restored entry.
	got.Add(rec("https://v/1", "One", "https://c/a", "Alpha", t0.Add(2*time.Hour)))
	assert.Equal(t, 1, got.VideoCount())
	assert.Equal(t, 1, got.ChannelCount())
	assert.Equal(t, 3, got.WatchCount())
}

func TestDecodeJSON_UnknownChannelIndex(t *testing.T) {
	input := `{
	  "watches": [],
	  "channels": [{"url": "https://c/a", "name": "Alpha"}],
	  "videos": [{"url": "https://v/1", "title": "One", "channel": 7}]
	}`

	_, err := DecodeJSON(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown channel 7")
}

func TestDecodeJSON_UnknownVideoURL(t *testing.T) {
	input := `{
	  "watches": [{"video": "https://v/missing", "when": "2021-06-29T20:49:36Z"}],
	  "channels": [],
	  "videos": []
	}`

	_, err := DecodeJSON(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown video")
}

func TestDecodeJSON_Malformed(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(`not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode history cache")
}
