package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/chuntfm/fm-server/internal/catalog"
	"github.com/chuntfm/fm-server/internal/domain/channel"
	"github.com/chuntfm/fm-server/internal/http/dto"
	"github.com/chuntfm/fm-server/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChannelsHandler provides the read-only HTTP surface for channel resources.
//
// Supported operations:
//   - GET /channels                            → list all channels
//   - GET /channels/status                     → per-channel status list
//   - GET /channels/{id}                       → channel detail (with streams)
//   - GET /channels/{id}/now-playing           → resolved now-playing items
//   - GET /channels/{id}/status                → resolved channel status
//   - GET /channels/{id}/streams               → stream-variant list
//   - GET /channels/{id}/stream/default        → default stream variant
//   - GET /channels/{id}/stream/default/play   → 302 to the default stream URL
//   - GET /channels/{id}/stream/{quality}      → stream variant by quality tag
//   - GET /channels/{id}/stream/{quality}/play → 302 to that variant's URL
//
// Notes:
//   - The /play endpoints give clients stable URLs while the underlying stream
//     URLs may change in configuration (usable directly in <audio> elements).
type ChannelsHandler struct {
	log     *zap.Logger
	catalog *catalog.Catalog
	rslv    *service.Resolver
}

// NewChannelsHandler constructs a ChannelsHandler instance.
func NewChannelsHandler(log *zap.Logger, cat *catalog.Catalog, rslv *service.Resolver) *ChannelsHandler {
	return &ChannelsHandler{
		log:     log.Named("channels"),
		catalog: cat,
		rslv:    rslv,
	}
}

// GetChannelList handles GET /channels.
//
// Behavior:
//   - Returns id/name/description for all configured channels.
//   - Adds `X-Total-Count` header.
//
// Status Codes:
//   - 200 OK → JSON array of channels
func (h *ChannelsHandler) GetChannelList(c *gin.Context) {
	chs := h.catalog.List()
	out := make([]dto.ChannelSummary, 0, len(chs))
	for _, ch := range chs {
		out = append(out, dto.NewChannelSummary(ch))
	}

	c.Header("X-Total-Count", strconv.Itoa(len(out)))
	c.JSON(http.StatusOK, out)
}

// GetChannel handles GET /channels/{id}.
//
// Status Codes:
//   - 200 OK → JSON of channel detail incl. streams
//   - 400 Bad Request → Invalid ID format
//   - 404 Not Found → Channel not found
func (h *ChannelsHandler) GetChannel(c *gin.Context) {
	ch, ok := h.channelByParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewChannelDetail(ch))
}

// GetNowPlaying handles GET /channels/{id}/now-playing.
//
// Behavior:
//   - Resolves "what is airing" across the schedule/jukebox/restream feeds
//     per the channel's precedence policy.
//   - A down upstream degrades to an empty array, never an error.
//
// Status Codes:
//   - 200 OK → JSON array of now-playing items (possibly empty)
//   - 400 Bad Request → Invalid ID format
//   - 404 Not Found → Channel not found
func (h *ChannelsHandler) GetNowPlaying(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64) // extract :id (already validated by middleware)

	items, err := h.rslv.NowPlaying(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		if errors.Is(err, catalog.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": catalog.ErrChannelNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetStatus handles GET /channels/{id}/status.
//
// Status Codes:
//   - 200 OK → JSON { "state", "mode", "is_playing" }
//   - 400 Bad Request → Invalid ID format
//   - 404 Not Found → Channel not found
func (h *ChannelsHandler) GetStatus(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64) // extract :id (already validated by middleware)

	st, err := h.rslv.Status(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		if errors.Is(err, catalog.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": catalog.ErrChannelNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, st)
}

// GetStatusList handles GET /channels/status.
//
// Behavior:
//   - Resolves every configured channel's status in one response; statuses are
//     computed fresh per request (no cache).
//   - Adds `X-Total-Count` header.
//
// Status Codes:
//   - 200 OK → JSON array of { "id", "state", "mode", "is_playing" }
//   - 500 Internal Server Error
func (h *ChannelsHandler) GetStatusList(c *gin.Context) {
	entries, err := h.rslv.StatusAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(len(entries)))
	c.JSON(http.StatusOK, entries)
}

// GetStreams handles GET /channels/{id}/streams.
//
// Status Codes:
//   - 200 OK → JSON array of stream variants
//   - 400 Bad Request → Invalid ID format
//   - 404 Not Found → Channel not found
func (h *ChannelsHandler) GetStreams(c *gin.Context) {
	ch, ok := h.channelByParam(c)
	if !ok {
		return
	}

	streams := ch.Streams
	if streams == nil {
		streams = []channel.StreamVariant{}
	}
	c.JSON(http.StatusOK, streams)
}

// GetDefaultStream handles GET /channels/{id}/stream/default.
//
// Status Codes:
//   - 200 OK → JSON of the default stream variant
//   - 400 Bad Request → Invalid ID format
//   - 404 Not Found → Channel not found, or channel has no streams
func (h *ChannelsHandler) GetDefaultStream(c *gin.Context) {
	ch, ok := h.channelByParam(c)
	if !ok {
		return
	}

	v, err := ch.DefaultStream()
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusNotFound, gin.H{"message": channel.ErrNoStreams.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

// PlayDefaultStream handles GET /channels/{id}/stream/default/play.
//
// Status Codes:
//   - 302 Found → Location set to the default stream URL
//   - 400 Bad Request → Invalid ID format
//   - 404 Not Found → Channel not found, or channel has no streams
func (h *ChannelsHandler) PlayDefaultStream(c *gin.Context) {
	ch, ok := h.channelByParam(c)
	if !ok {
		return
	}

	v, err := ch.DefaultStream()
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusNotFound, gin.H{"message": channel.ErrNoStreams.Error()})
		return
	}
	c.Redirect(http.StatusFound, v.URL)
}

// GetStreamByQuality handles GET /channels/{id}/stream/{quality}.
//
// Status Codes:
//   - 200 OK → JSON of the matching stream variant
//   - 400 Bad Request → Invalid ID format
//   - 404 Not Found → Channel not found, or no variant with that quality tag
func (h *ChannelsHandler) GetStreamByQuality(c *gin.Context) {
	ch, ok := h.channelByParam(c)
	if !ok {
		return
	}

	quality := c.Param("quality")
	v, err := ch.StreamByQuality(quality)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("no %s quality stream available", quality)})
		return
	}
	c.JSON(http.StatusOK, v)
}

// PlayStreamByQuality handles GET /channels/{id}/stream/{quality}/play.
//
// Status Codes:
//   - 302 Found → Location set to that variant's stream URL
//   - 400 Bad Request → Invalid ID format
//   - 404 Not Found → Channel not found, or no variant with that quality tag
func (h *ChannelsHandler) PlayStreamByQuality(c *gin.Context) {
	ch, ok := h.channelByParam(c)
	if !ok {
		return
	}

	quality := c.Param("quality")
	v, err := ch.StreamByQuality(quality)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("no %s quality stream available", quality)})
		return
	}
	c.Redirect(http.StatusFound, v.URL)
}

//
// ----- Helpers -----

// channelByParam resolves the ":id" path param against the catalog, writing
// the 404 response itself when the channel is unknown.
func (h *ChannelsHandler) channelByParam(c *gin.Context) (*channel.Channel, bool) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64) // extract :id (already validated by middleware)

	ch, err := h.catalog.Get(id)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusNotFound, gin.H{"message": catalog.ErrChannelNotFound.Error()})
		return nil, false
	}
	return ch, true
}
