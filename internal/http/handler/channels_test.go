package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chuntfm/fm-server/internal/catalog"
	"github.com/chuntfm/fm-server/internal/domain/channel"
	"github.com/chuntfm/fm-server/internal/domain/playback"
	mw "github.com/chuntfm/fm-server/internal/http/middleware"
	"github.com/chuntfm/fm-server/internal/service"
	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
)

// stubSource serves canned upstream data; fields are read-only per test.
type stubSource struct {
	schedule []playback.NowPlayingItem
	jukebox  *playback.NowPlayingItem
	restream *playback.RestreamInfo
}

func (s *stubSource) ScheduleNow(context.Context) []playback.NowPlayingItem { return s.schedule }
func (s *stubSource) JukeboxNow(context.Context) *playback.NowPlayingItem   { return s.jukebox }
func (s *stubSource) RestreamInfo(context.Context) *playback.RestreamInfo   { return s.restream }

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func testCatalog() *catalog.Catalog {
	cat, err := catalog.New([]*channel.Channel{
		{ID: 1, Name: "ChuntFM", Description: "main", Streams: []channel.StreamVariant{
			{URL: "http://icecast/high.mp3", Format: "mp3", Bitrate: 320, Quality: "high", Default: boolp(true)},
			{URL: "http://icecast/low.mp3", Format: "mp3", Bitrate: 96, Quality: "low"},
		}},
		{ID: 2, Name: "Relay", Description: "restream relay"},
		{ID: 3, Name: "Jukebox", Description: "rotation", JukeboxMode: true, Streams: []channel.StreamVariant{
			{URL: "http://icecast/jukebox.aac", Format: "aac", Bitrate: 128, Quality: "standard"},
		}},
	})
	if err != nil {
		panic(err)
	}
	return cat
}

// newTestRouter mirrors the route table registered in cmd/fm-server.
func newTestRouter(src *stubSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	cat := testCatalog()
	rslv := service.NewResolver(log, cat, src, 1)

	r := gin.New()
	api := r.Group("/fm")

	h := NewChannelsHandler(log, cat, rslv)
	requireValidID := mw.RequireValidChannelID()

	api.GET("/channels", h.GetChannelList)
	api.GET("/channels/status", h.GetStatusList)
	api.GET("/channels/:id", requireValidID, h.GetChannel)
	api.GET("/channels/:id/now-playing", requireValidID, h.GetNowPlaying)
	api.GET("/channels/:id/status", requireValidID, h.GetStatus)
	api.GET("/channels/:id/streams", requireValidID, h.GetStreams)
	api.GET("/channels/:id/stream/default", requireValidID, h.GetDefaultStream)
	api.GET("/channels/:id/stream/default/play", requireValidID, h.PlayDefaultStream)
	api.GET("/channels/:id/stream/:quality", requireValidID, h.GetStreamByQuality)
	api.GET("/channels/:id/stream/:quality/play", requireValidID, h.PlayStreamByQuality)

	rh := NewRestreamHandler(log, rslv)
	api.GET("/restream/now-playing", rh.GetNowPlaying)

	return r
}

func do(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestChannelCollection(t *testing.T) {
	Convey("GET /fm/channels", t, func() {
		r := newTestRouter(&stubSource{})
		w := do(r, "/fm/channels")

		So(w.Code, ShouldEqual, http.StatusOK)
		So(w.Header().Get("X-Total-Count"), ShouldEqual, "3")

		var out []map[string]any
		So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
		So(len(out), ShouldEqual, 3)
		So(out[0]["id"], ShouldEqual, 1)
		So(out[0]["name"], ShouldEqual, "ChuntFM")
		So(out[0]["description"], ShouldEqual, "main")
		So(out[0], ShouldNotContainKey, "streams")
	})
}

func TestChannelDetail(t *testing.T) {
	Convey("GET /fm/channels/:id", t, func() {
		r := newTestRouter(&stubSource{})

		Convey("returns detail with the stream list", func() {
			w := do(r, "/fm/channels/1")
			So(w.Code, ShouldEqual, http.StatusOK)

			var out struct {
				ID      int64                   `json:"id"`
				Name    string                  `json:"name"`
				Streams []channel.StreamVariant `json:"streams"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out.ID, ShouldEqual, 1)
			So(len(out.Streams), ShouldEqual, 2)
			So(out.Streams[0].Quality, ShouldEqual, "high")
		})

		Convey("404s for an unknown channel", func() {
			w := do(r, "/fm/channels/99")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, "channel not found")
		})

		Convey("400s for a malformed id", func() {
			So(do(r, "/fm/channels/abc").Code, ShouldEqual, http.StatusBadRequest)
			So(do(r, "/fm/channels/-1").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestNowPlayingEndpoint(t *testing.T) {
	Convey("GET /fm/channels/:id/now-playing", t, func() {
		Convey("serves the primary channel's restream fallback", func() {
			r := newTestRouter(&stubSource{restream: &playback.RestreamInfo{
				Current:        &playback.NowPlayingItem{Title: strp("X")},
				TargetChannels: []int64{2},
				IsActive:       true,
			}})

			w := do(r, "/fm/channels/1/now-playing")
			So(w.Code, ShouldEqual, http.StatusOK)

			var out []map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(len(out), ShouldEqual, 1)
			So(out[0]["title"], ShouldEqual, "X")
		})

		Convey("serves an empty array when nothing airs", func() {
			r := newTestRouter(&stubSource{})
			w := do(r, "/fm/channels/2/now-playing")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "[]")
		})

		Convey("404s for an unknown channel", func() {
			r := newTestRouter(&stubSource{})
			w := do(r, "/fm/channels/99/now-playing")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, "channel not found")
		})
	})
}

func TestStatusEndpoints(t *testing.T) {
	Convey("GET /fm/channels/:id/status", t, func() {
		Convey("reports a playing jukebox channel", func() {
			r := newTestRouter(&stubSource{jukebox: &playback.NowPlayingItem{Title: strp("Track A")}})
			w := do(r, "/fm/channels/3/status")
			So(w.Code, ShouldEqual, http.StatusOK)

			var st playback.ChannelStatus
			So(json.Unmarshal(w.Body.Bytes(), &st), ShouldBeNil)
			So(st, ShouldResemble, playback.ChannelStatus{State: playback.StateUp, Mode: playback.ModeJukebox, IsPlaying: true})
		})

		Convey("reports offline when every feed is quiet", func() {
			r := newTestRouter(&stubSource{})
			w := do(r, "/fm/channels/2/status")
			So(w.Code, ShouldEqual, http.StatusOK)

			var st playback.ChannelStatus
			So(json.Unmarshal(w.Body.Bytes(), &st), ShouldBeNil)
			So(st, ShouldResemble, playback.ChannelStatus{State: playback.StateDown, Mode: playback.ModeOffline, IsPlaying: false})
		})
	})

	Convey("GET /fm/channels/status", t, func() {
		r := newTestRouter(&stubSource{restream: &playback.RestreamInfo{
			TargetChannels: []int64{2},
			IsActive:       true,
		}})
		w := do(r, "/fm/channels/status")

		So(w.Code, ShouldEqual, http.StatusOK)
		So(w.Header().Get("X-Total-Count"), ShouldEqual, "3")

		var out []map[string]any
		So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
		So(len(out), ShouldEqual, 3)
		So(out[0]["id"], ShouldEqual, 1)
		So(out[1]["id"], ShouldEqual, 2)
		So(out[1]["mode"], ShouldEqual, playback.ModeRestream)
		So(out[2]["mode"], ShouldEqual, playback.ModeJukebox)
	})
}

func TestStreamEndpoints(t *testing.T) {
	r := newTestRouter(&stubSource{})

	Convey("GET /fm/channels/:id/streams", t, func() {
		w := do(r, "/fm/channels/1/streams")
		So(w.Code, ShouldEqual, http.StatusOK)

		var out []channel.StreamVariant
		So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
		So(len(out), ShouldEqual, 2)
	})

	Convey("GET /fm/channels/:id/stream/default", t, func() {
		Convey("returns the default variant", func() {
			w := do(r, "/fm/channels/1/stream/default")
			So(w.Code, ShouldEqual, http.StatusOK)

			var v channel.StreamVariant
			So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
			So(v.Quality, ShouldEqual, "high")
		})

		Convey("404s when the channel has no streams", func() {
			w := do(r, "/fm/channels/2/stream/default")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, "no streams available")
		})
	})

	Convey("GET /fm/channels/:id/stream/default/play", t, func() {
		w := do(r, "/fm/channels/1/stream/default/play")
		So(w.Code, ShouldEqual, http.StatusFound)
		So(w.Header().Get("Location"), ShouldEqual, "http://icecast/high.mp3")
	})

	Convey("GET /fm/channels/:id/stream/:quality", t, func() {
		Convey("returns the matching variant", func() {
			w := do(r, "/fm/channels/1/stream/low")
			So(w.Code, ShouldEqual, http.StatusOK)

			var v channel.StreamVariant
			So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
			So(v.URL, ShouldEqual, "http://icecast/low.mp3")
		})

		Convey("404s with the missing quality named", func() {
			w := do(r, "/fm/channels/1/stream/medium")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, "no medium quality stream available")
		})
	})

	Convey("GET /fm/channels/:id/stream/:quality/play", t, func() {
		w := do(r, "/fm/channels/1/stream/low/play")
		So(w.Code, ShouldEqual, http.StatusFound)
		So(w.Header().Get("Location"), ShouldEqual, "http://icecast/low.mp3")
	})
}

func TestRestreamEndpoint(t *testing.T) {
	Convey("GET /fm/restream/now-playing", t, func() {
		Convey("returns the feed's current item", func() {
			r := newTestRouter(&stubSource{restream: &playback.RestreamInfo{
				Current: &playback.NowPlayingItem{Title: strp("Live Set")},
			}})
			w := do(r, "/fm/restream/now-playing")

			So(w.Code, ShouldEqual, http.StatusOK)

			var out map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out["title"], ShouldEqual, "Live Set")
		})

		Convey("returns null when the feed is down", func() {
			r := newTestRouter(&stubSource{})
			w := do(r, "/fm/restream/now-playing")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "null")
		})
	})
}
