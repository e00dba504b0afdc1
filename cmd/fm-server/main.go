package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/chuntfm/fm-server/internal/catalog"
	"github.com/chuntfm/fm-server/internal/config"
	"github.com/chuntfm/fm-server/internal/http/handler"
	mw "github.com/chuntfm/fm-server/internal/http/middleware"
	"github.com/chuntfm/fm-server/internal/service"
	"github.com/chuntfm/fm-server/internal/upstream"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr         string             `yaml:"listen_address"`
	Port               string             `yaml:"port"`
	APIPrefix          string             `yaml:"api_prefix"`
	PrimaryChannel     int64              `yaml:"primary_channel_id"`
	CatalogPath        string             `yaml:"catalog_path"`
	Upstreams          upstream.Endpoints `yaml:"upstreams"`
	UpstreamTimeoutSec uint               `yaml:"upstream_timeout_sec"`
}

var serverConfig *Config

func init() {
	// Handle version display
	handleVersion()
}

func main() {
	// Read env
	isDev := os.Getenv("ENV") == "dev"

	// Load config
	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Create Zap logger
	log := buildLogger()
	defer log.Sync()
	log = log.Named("main")

	// Create Gin router
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = zap.NewStdLog(log.Named("gin")).Writer() // Configure Gin's logger to use Zap
	r := gin.New()

	// Wire the read path: static catalog → upstream client → resolver
	cat, err := catalog.Load(serverConfig.CatalogPath)
	if err != nil {
		log.Fatal("channel catalog load failed", zap.Error(err))
	}
	src := upstream.NewClient(log, serverConfig.Upstreams, time.Duration(serverConfig.UpstreamTimeoutSec)*time.Second)
	rslv := service.NewResolver(log, cat, src, serverConfig.PrimaryChannel)

	// Apply Gin middlewares
	{
		r.Use(gin.Recovery()) // Recovery first (outermost)
		r.Use(mw.RequestID()) // Attach request ID for tracing; early in the chain so it's available everywhere

		if isDev { // Enable CORS for local web player dev
			r.Use(cors.New(cors.Config{
				AllowOrigins:  []string{"http://localhost:5173", "http://localhost:4173", "http://localhost:3000", "http://127.0.0.1:3000"},
				AllowMethods:  []string{"GET", "OPTIONS"},
				AllowHeaders:  []string{"X-Request-ID", "Content-Type"},
				ExposeHeaders: []string{"X-Request-ID", "X-Total-Count"},
				MaxAge:        12 * time.Hour,
			}))
		} else { // Behind Nginx + TLS
			r.SetTrustedProxies([]string{"127.0.0.1"})
			r.Use(secure.New(secure.Config{
				SSLProxyHeaders: map[string]string{
					"X-Forwarded-Proto": "https",
				},
			}))
		}

		r.Use(accessLog(log)) // Observability (logger, tracing)
	}

	// Register route handlers
	{
		api := r.Group(serverConfig.APIPrefix)

		api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })

		{
			chnlshndlr := handler.NewChannelsHandler(log, cat, rslv)
			requireValidID := mw.RequireValidChannelID()

			// --- Channel collection ---
			api.GET("/channels", chnlshndlr.GetChannelList)       // list all
			api.GET("/channels/status", chnlshndlr.GetStatusList) // status of all

			// --- Channel resource ---
			api.GET("/channels/:id", requireValidID, chnlshndlr.GetChannel)                 // detail incl. streams
			api.GET("/channels/:id/now-playing", requireValidID, chnlshndlr.GetNowPlaying)  // resolved now-playing
			api.GET("/channels/:id/status", requireValidID, chnlshndlr.GetStatus)           // resolved status
			api.GET("/channels/:id/streams", requireValidID, chnlshndlr.GetStreams)         // variant list

			// --- Stream lookup & play redirects ---
			api.GET("/channels/:id/stream/default", requireValidID, chnlshndlr.GetDefaultStream)
			api.GET("/channels/:id/stream/default/play", requireValidID, chnlshndlr.PlayDefaultStream)
			api.GET("/channels/:id/stream/:quality", requireValidID, chnlshndlr.GetStreamByQuality)
			api.GET("/channels/:id/stream/:quality/play", requireValidID, chnlshndlr.PlayStreamByQuality)
		}

		{
			rstrmhndlr := handler.NewRestreamHandler(log, rslv)
			api.GET("/restream/now-playing", rstrmhndlr.GetNowPlaying)
		}
	}

	httpsrv := &http.Server{
		Addr:              serverConfig.ListenAddr + ":" + serverConfig.Port,
		Handler:           r,
		ReadHeaderTimeout: 2 * time.Second,  // kills header-drip Slowloris
		ReadTimeout:       10 * time.Second, // full request read (incl. body)
		WriteTimeout:      30 * time.Second, // bounds the worst case: two sequential 10s upstream calls plus margin
		IdleTimeout:       60 * time.Second, // keep-alive cap
		MaxHeaderBytes:    1 << 20,          // 1MB cap
	}

	log.Info("running HTTP server", zap.String("addr", httpsrv.Addr), zap.String("prefix", serverConfig.APIPrefix))
	if err := httpsrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("server closed")
}

// handleVersion prints build metadata and exits when -v/--version is provided.
func handleVersion() {
	v := flag.Bool("v", false, "print version and exit")
	flag.BoolVar(v, "version", false, "print version and exit")
	flag.Parse()

	if *v {
		fmt.Printf("fm-server %s (commit %s, built %s)\n", config.Version, config.GitCommit, config.BuildDate)
		os.Exit(0)
	}
}

// accessLog is a Gin middleware that records HTTP request/response details with Zap after handling.
func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		// collect all errors from Gin context
		var errs []error
		for _, ge := range c.Errors {
			if ge.Err != nil {
				errs = append(errs, ge.Err)
			}
		}
		// errors.Join returns nil if errs is empty
		joinedErr := errors.Join(errs...)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Duration("latency", latency),
			zap.String("request_id", mw.GetRequestID(c)),
		}
		if joinedErr != nil {
			fields = append(fields, zap.Error(joinedErr))
		}

		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// helpers

func buildLogger() *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	logConfig.Level.SetLevel(zap.DebugLevel)
	return zap.Must(logConfig.Build())
}

// loadConfig reads fm-server.yaml when present; a missing file falls back to
// the built-in development defaults, a malformed file is fatal.
func loadConfig() error {
	serverConfig = &Config{}

	data, err := os.ReadFile("fm-server.yaml")
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	} else if err := yaml.Unmarshal(data, serverConfig); err != nil {
		return err
	}

	setConfigDefaults(serverConfig)
	return nil
}

func setConfigDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "0.0.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/fm"
	}
	if cfg.PrimaryChannel == 0 {
		cfg.PrimaryChannel = 1
	}
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = "channels.yaml"
	}
	if cfg.Upstreams.ScheduleNow == "" {
		cfg.Upstreams.ScheduleNow = "http://localhost:8000/schedule/now"
	}
	if cfg.Upstreams.JukeboxNow == "" {
		cfg.Upstreams.JukeboxNow = "http://localhost:9000/jukebox/now-playing"
	}
	if cfg.Upstreams.Restream == "" {
		cfg.Upstreams.Restream = "http://localhost:8080/restream.json"
	}
	if cfg.UpstreamTimeoutSec == 0 {
		cfg.UpstreamTimeoutSec = 10
	}
}
