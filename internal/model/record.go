// Package model provides the watch record type and the parser registry
// shared by the input-format implementations.
package model

import "time"

// Record is one extracted watch event: a video identified by URL and
// title, the channel it belongs to (possibly empty when the export omits
// it), and the moment it was watched. A Record is immutable once built;
// ownership passes to the caller, which folds it into the history.
type Record struct {
	VideoURL    string
	Title       string
	ChannelURL  string
	ChannelName string
	WatchedAt   time.Time
}
