package upstream

import (
	"context"

	"github.com/chuntfm/fm-server/internal/domain/playback"
	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
)

// Source is the upstream read surface the resolution engine depends on.
// Client implements it against real HTTP endpoints; tests inject doubles.
type Source interface {
	ScheduleNow(ctx context.Context) []playback.NowPlayingItem
	JukeboxNow(ctx context.Context) *playback.NowPlayingItem
	RestreamInfo(ctx context.Context) *playback.RestreamInfo
}

// ScheduleNow returns the schedule service's "what is on right now" entries.
// An unreachable upstream and an empty schedule are the same thing: no data.
func (c *Client) ScheduleNow(ctx context.Context) []playback.NowPlayingItem {
	var items []playback.NowPlayingItem
	if !c.fetch(ctx, c.eps.ScheduleNow, &items) {
		return nil
	}
	return items
}

// JukeboxNow returns the jukebox's current record, or nil when the jukebox is
// idle or unreachable. A JSON null body counts as idle.
func (c *Client) JukeboxNow(ctx context.Context) *playback.NowPlayingItem {
	var item *playback.NowPlayingItem
	if !c.fetch(ctx, c.eps.JukeboxNow, &item) {
		return nil
	}
	return item
}

// RestreamInfo returns the restream state, or nil when the feed is down.
// Absent keys in the payload decode to zero values; callers must not assume
// any field is populated.
func (c *Client) RestreamInfo(ctx context.Context) *playback.RestreamInfo {
	var info *playback.RestreamInfo
	if !c.fetch(ctx, c.eps.Restream, &info) {
		return nil
	}
	if info != nil {
		if ce := c.log.Check(zap.DebugLevel, "restream payload"); ce != nil {
			ce.Write(zap.String("dump", spew.Sdump(info)))
		}
	}
	return info
}
