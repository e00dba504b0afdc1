package service

import (
	"context"
	"fmt"

	"github.com/chuntfm/fm-server/internal/catalog"
	"github.com/chuntfm/fm-server/internal/domain/playback"
	"github.com/chuntfm/fm-server/internal/upstream"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------
// Resolver
// -----------------------------------------------------------------------------
//
// Runtime model
//   • Single process, many concurrent requests.
//   • The catalog is immutable and the upstream client is stateless, so the
//     resolver holds no locks; concurrent resolutions share nothing mutable.
//
// Contract
//   • Upstream calls within one resolution are sequential and short-circuit:
//     later sources are consulted only when earlier ones yield no data.
//   • A down/garbled upstream is "no data", never a resolver error. The only
//     reported failure is an unknown channel ID.
//
// Precedence (now-playing)
//   • primary channel → schedule, else restream `current`, else nothing.
//   • jukebox channel → jukebox only; schedule/restream are never consulted.
//   • any other       → schedule, else an active restream targeting the
//     channel (`current_item`), else nothing.
//
// Status resolution has no primary-channel branch: the primary falls through
// the generic path and never borrows the restream `current` fallback. That
// mismatch is intentional; do not normalize it.

// Resolver picks, per request, which upstream source answers for a channel.
type Resolver struct {
	log     *zap.Logger
	catalog *catalog.Catalog
	src     upstream.Source
	primary int64
}

// NewResolver wires the read-only catalog and the upstream source. primaryID
// designates the schedule-anchored channel (1 in production).
func NewResolver(log *zap.Logger, cat *catalog.Catalog, src upstream.Source, primaryID int64) *Resolver {
	return &Resolver{
		log:     log.Named("resolver"),
		catalog: cat,
		src:     src,
		primary: primaryID,
	}
}

// NowPlaying resolves what is currently airing on the channel. The returned
// slice is possibly empty, never nil. Unknown IDs yield
// catalog.ErrChannelNotFound.
func (r *Resolver) NowPlaying(ctx context.Context, id int64) ([]playback.NowPlayingItem, error) {
	ch, err := r.catalog.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}

	// Schedule-anchored primary channel: schedule wins, restream `current`
	// backs it up.
	if ch.ID == r.primary {
		if items := r.src.ScheduleNow(ctx); len(items) > 0 {
			return items, nil
		}
		if info := r.src.RestreamInfo(ctx); info != nil && !info.Current.IsEmpty() {
			return []playback.NowPlayingItem{*info.Current}, nil
		}
		return []playback.NowPlayingItem{}, nil
	}

	// Jukebox-mode channels are driven by the jukebox feed alone.
	if ch.JukeboxMode {
		if item := r.src.JukeboxNow(ctx); item != nil {
			return []playback.NowPlayingItem{*item}, nil
		}
		return []playback.NowPlayingItem{}, nil
	}

	// Generic channels: schedule, else a restream actively targeting us.
	if items := r.src.ScheduleNow(ctx); len(items) > 0 {
		return items, nil
	}
	if info := r.src.RestreamInfo(ctx); info != nil && info.IsActive && info.HasTarget(ch.ID) {
		if !info.CurrentItem.IsEmpty() {
			return []playback.NowPlayingItem{*info.CurrentItem}, nil
		}
		return []playback.NowPlayingItem{}, nil
	}
	return []playback.NowPlayingItem{}, nil
}

// Status resolves the channel's liveness and playback mode. Unknown IDs yield
// catalog.ErrChannelNotFound.
func (r *Resolver) Status(ctx context.Context, id int64) (playback.ChannelStatus, error) {
	ch, err := r.catalog.Get(id)
	if err != nil {
		return playback.ChannelStatus{}, fmt.Errorf("get channel: %w", err)
	}

	if ch.JukeboxMode {
		playing := r.src.JukeboxNow(ctx) != nil
		st := playback.ChannelStatus{State: playback.StateDown, Mode: playback.ModeJukebox, IsPlaying: playing}
		if playing {
			st.State = playback.StateUp
		}
		return st, nil
	}

	if items := r.src.ScheduleNow(ctx); len(items) > 0 {
		return playback.ChannelStatus{State: playback.StateUp, Mode: playback.ModeLive, IsPlaying: true}, nil
	}

	if info := r.src.RestreamInfo(ctx); info != nil && info.IsActive && info.HasTarget(ch.ID) {
		return playback.ChannelStatus{State: playback.StateUp, Mode: playback.ModeRestream, IsPlaying: true}, nil
	}

	return playback.ChannelStatus{State: playback.StateDown, Mode: playback.ModeOffline, IsPlaying: false}, nil
}

// RestreamNowPlaying returns the restream feed's own current item, unscoped to
// any channel. Nil when the feed is down or idle, including an `{}` item.
func (r *Resolver) RestreamNowPlaying(ctx context.Context) *playback.NowPlayingItem {
	if info := r.src.RestreamInfo(ctx); info != nil && !info.Current.IsEmpty() {
		return info.Current
	}
	return nil
}

// ChannelStatusEntry pairs a channel ID with its freshly resolved status.
type ChannelStatusEntry struct {
	ID int64 `json:"id"`
	playback.ChannelStatus
}

// StatusAll resolves the status of every catalog channel. Channels resolve
// concurrently (bounded fan-out) but the result keeps catalog order. Nothing
// is cached; every call re-queries the upstreams. Upstream failures degrade
// individual entries to offline, so the only possible error is cancellation.
func (r *Resolver) StatusAll(ctx context.Context) ([]ChannelStatusEntry, error) {
	chs := r.catalog.List()
	out := make([]ChannelStatusEntry, len(chs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, ch := range chs {
		i, ch := i, ch
		g.Go(func() error {
			st, err := r.Status(gctx, ch.ID)
			if err != nil {
				return fmt.Errorf("channel %d: %w", ch.ID, err)
			}
			out[i] = ChannelStatusEntry{ID: ch.ID, ChannelStatus: st}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
