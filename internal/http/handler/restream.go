package handler

import (
	"net/http"

	"github.com/chuntfm/fm-server/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RestreamHandler serves the restream feed's unscoped read surface.
type RestreamHandler struct {
	log  *zap.Logger
	rslv *service.Resolver
}

// NewRestreamHandler constructs a RestreamHandler instance.
func NewRestreamHandler(log *zap.Logger, rslv *service.Resolver) *RestreamHandler {
	return &RestreamHandler{log: log.Named("restream"), rslv: rslv}
}

// GetNowPlaying handles GET /restream/now-playing.
//
// Behavior:
//   - Returns the restream feed's own current item, without channel scoping.
//   - JSON null when the feed is down or has no current item.
//
// Status Codes:
//   - 200 OK → JSON now-playing item or null
func (h *RestreamHandler) GetNowPlaying(c *gin.Context) {
	item := h.rslv.RestreamNowPlaying(c.Request.Context())
	c.JSON(http.StatusOK, item)
}
