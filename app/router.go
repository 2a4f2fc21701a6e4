// Package app wires the HTTP API together
package app

import (
	"fmt"
	"strings"
	"time"

	"bitwise74/studio-api/app/clip"
	"bitwise74/studio-api/app/generate"
	"bitwise74/studio-api/app/media"
	"bitwise74/studio-api/app/project"
	"bitwise74/studio-api/app/root"
	"bitwise74/studio-api/db"
	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/service"
	"bitwise74/studio-api/pkg/middleware"
	"bitwise74/studio-api/storage"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"

	maxFilesPerUpload = 20
)

var store = persist.NewMemoryStore(time.Minute)

// NewRouter opens the database and object storage configured through
// viper and returns the ready router
func NewRouter() (*gin.Engine, error) {
	makeLogger()

	gdb, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	s, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage, %w", err)
	}

	d := &internal.Deps{
		DB:    gdb,
		Store: s,
		Uploader: service.NewUploader(
			gdb,
			s,
			viper.GetInt64("upload.max_size"),
			viper.GetStringSlice("upload.allowed_types"),
			service.NewFFprobe(viper.GetString("ffmpeg.ffprobe_path")),
		),
		Placeholders: &service.Placeholders{
			StockImages:    viper.GetStringSlice("demo.stock_images"),
			SampleVideoURL: viper.GetString("demo.sample_video_url"),
		},
	}

	return Routes(d), nil
}

// Routes registers every endpoint on a new engine
func Routes(d *internal.Deps) *gin.Engine {
	router := gin.New()

	origins := strings.Split(viper.GetString("host.cors"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("user_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 8 << 20

	jwt := middleware.NewJWTMiddleware([]byte(viper.GetString("jwt.secret")))
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: viper.GetInt("security.rate_limit"),
		Burst:             viper.GetInt("security.rate_limit") * 2,
	})
	smallBody := middleware.BodySizeLimiter(1 << 20)
	uploadBody := middleware.BodySizeLimiter(viper.GetInt64("upload.max_size")*maxFilesPerUpload + 1<<20)

	m := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })

		// GET /api/settings		-> Returns clip/movie durations and the upload ceiling
		m.GET("/settings", jwt, root.Settings)
	}

	p := m.Group("/projects", jwt, smallBody)
	{
		// GET /api/projects		-> Returns the user's projects, most recently updated first
		p.GET("", func(c *gin.Context) { project.ProjectList(c, d) })

		// POST /api/projects		-> Creates a new draft project
		p.POST("", func(c *gin.Context) { project.ProjectCreate(c, d) })

		// GET /api/projects/:id	-> Returns a project if the user owns it
		p.GET("/:id", func(c *gin.Context) { project.ProjectFetch(c, d) })

		// PATCH /api/projects/:id	-> Updates some fields of a project
		p.PATCH("/:id", func(c *gin.Context) { project.ProjectUpdate(c, d) })

		// DELETE /api/projects/:id	-> Deletes a project with its clips
		p.DELETE("/:id", func(c *gin.Context) { project.ProjectDelete(c, d) })

		// GET /api/projects/:id/media	-> Returns the media files of a project
		p.GET("/:id/media", func(c *gin.Context) { project.ProjectMedia(c, d) })

		// GET /api/projects/:id/clips	-> Returns the timeline of a project
		p.GET("/:id/clips", func(c *gin.Context) { project.ProjectClips(c, d) })
	}

	md := m.Group("/media", jwt)
	{
		// GET /api/media		-> Returns the user's media library
		md.GET("", func(c *gin.Context) { media.MediaList(c, d) })

		// POST /api/media		-> Registers one or many media files without uploading
		md.POST("", smallBody, func(c *gin.Context) { media.MediaInsert(c, d) })

		// POST /api/media/upload	-> Uploads files from a multipart form and registers them
		md.POST("/upload", uploadBody, func(c *gin.Context) { media.MediaUpload(c, d) })

		// DELETE /api/media/:id	-> Deletes the stored file, then the media file
		md.DELETE("/:id", func(c *gin.Context) { media.MediaDelete(c, d) })
	}

	// DELETE /api/storage/*key	-> Deletes a single object from the user's folder
	m.DELETE("/storage/*key", jwt, func(c *gin.Context) { media.StorageDelete(c, d) })

	cl := m.Group("/clips", jwt, smallBody)
	{
		// POST /api/clips		-> Places a media file on a track
		cl.POST("", func(c *gin.Context) { clip.ClipCreate(c, d) })

		// PATCH /api/clips/:id		-> Moves, trims or retypes a clip
		cl.PATCH("/:id", func(c *gin.Context) { clip.ClipUpdate(c, d) })

		// DELETE /api/clips/:id	-> Deletes a clip
		cl.DELETE("/:id", func(c *gin.Context) { clip.ClipDelete(c, d) })
	}

	// GET /api/ai/tools		-> Returns the catalog of generation tools
	m.GET("/ai/tools", cacheFor(5*60), generate.Tools)

	g := m.Group("", jwt, rateLimiter.Middleware(), smallBody)
	{
		// POST /api/generate/image	-> Returns a placeholder image for a prompt
		g.POST("/generate/image", func(c *gin.Context) { generate.GenerateImage(c, d) })

		// POST /api/generate/video	-> Returns a placeholder video for a prompt
		g.POST("/generate/video", func(c *gin.Context) { generate.GenerateVideo(c, d) })

		// POST /api/render		-> Marks a project as rendered with a placeholder output
		g.POST("/render", func(c *gin.Context) { generate.Render(c, d) })
	}

	if l, ok := d.Store.(*storage.Local); ok {
		// GET /media/*			-> Serves locally stored files
		router.Static("/media", l.Dir)
	}

	return router
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
