package playback

// NowPlayingItem is a loosely structured "what is airing" record. Fields are
// opaque pass-through from the upstream feeds; absent fields stay nil and are
// omitted from responses.
type NowPlayingItem struct {
	Title     *string `json:"title,omitempty"`      // nullable
	Artist    *string `json:"artist,omitempty"`     // nullable
	Show      *string `json:"show,omitempty"`       // nullable
	Source    *string `json:"source,omitempty"`     // nullable
	StartTime *string `json:"start_time,omitempty"` // nullable
	EndTime   *string `json:"end_time,omitempty"`   // nullable
}

// IsEmpty reports whether the record carries no data at all. Upstreams
// sometimes send `{}` to mean "nothing playing"; treat that the same as an
// absent record. Safe on a nil receiver.
func (i *NowPlayingItem) IsEmpty() bool {
	return i == nil || (i.Title == nil && i.Artist == nil && i.Show == nil &&
		i.Source == nil && i.StartTime == nil && i.EndTime == nil)
}

// Channel liveness states.
const (
	StateUp       = "up"
	StateDown     = "down"
	StateDegraded = "degraded"
)

// Playback modes.
const (
	ModeLive     = "live"
	ModeRestream = "restream"
	ModeJukebox  = "jukebox"
	ModeOffline  = "offline"
)

// ChannelStatus is derived fresh on every request and never stored.
type ChannelStatus struct {
	State     string `json:"state"`
	Mode      string `json:"mode"`
	IsPlaying bool   `json:"is_playing"`
}

// RestreamInfo mirrors the restream upstream's payload verbatim. The upstream
// is untrusted: any key may be absent, in which case the field keeps its zero
// value. `current` and `current_item` are independent fields; they are never
// merged even when the upstream populates both.
type RestreamInfo struct {
	SourceChannel  *int64          `json:"source_channel"` // nullable
	TargetChannels []int64         `json:"target_channels"`
	Current        *NowPlayingItem `json:"current"`      // nullable
	CurrentItem    *NowPlayingItem `json:"current_item"` // nullable
	IsActive       bool            `json:"is_active"`
}

// HasTarget reports whether the restream currently targets the channel ID.
func (ri *RestreamInfo) HasTarget(id int64) bool {
	for _, t := range ri.TargetChannels {
		if t == id {
			return true
		}
	}
	return false
}
