package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"battlescore/client"
	"battlescore/config"
	"battlescore/controller"
	"battlescore/docs"
	"battlescore/logging"
	"battlescore/repository"

	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"gorm.io/gorm"
)

// @title           Battle Score API
// @version         1.0
// @description     Backend API for tournament, match and score management.

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name auth
func main() {
	t := time.Now()
	logging.Setup()

	cfg := config.Env()
	db, err := config.InitDB(
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.DatabaseName,
	)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	autoMigrate(db)

	if !cfg.UseLocalServer {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		fmt.Println("Failed to set trusted proxies:", err)
		return
	}
	addLogger(r)
	addMetrics(r)
	addDocs(r)
	setCors(r)
	cacheStore := persistence.NewInMemoryStore(cfg.APIStaticCacheDuration)
	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	// In deployed environments a reverse proxy serves these.
	if cfg.UseLocalStatic {
		r.Static("/static", "./static")
	}
	if cfg.UseLocalMedia {
		r.Static("/media", "./media")
	}
	controller.SetRoutes(r, db, cacheStore)
	startAnnouncer(db)

	fmt.Println("Server started in", time.Since(t))
	if err := r.Run(":8000"); err != nil {
		fmt.Println("Failed to start server:", err)
	}
}

func addLogger(r *gin.Engine) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/metrics"},
	}))
}

func addMetrics(r *gin.Engine) {
	p := ginprometheus.NewPrometheus("gin")
	re := regexp.MustCompile(`\d+`)
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		url := strings.Split(c.Request.URL.String(), "?")[0]
		url = re.ReplaceAllString(url, "?")
		return strings.TrimPrefix(url, "/api")
	}
	p.MetricsPath = "/api/metrics"
	p.Use(r)
}

func addDocs(r *gin.Engine) {
	docs.SwaggerInfo.BasePath = "/api"
	r.GET("/api/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

func setCors(r *gin.Engine) {
	corsConfig := cors.Config{
		AllowOrigins:     config.Env().AllowedHosts,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost", "http://localhost:3000"}
	}
	r.Use(cors.New(corsConfig))
}

// startAnnouncer launches the Discord announcer when a bot token is
// configured. The server runs fine without it.
func startAnnouncer(db *gorm.DB) {
	announcer, err := client.NewDiscordAnnouncer(db)
	if err != nil {
		slog.Info("discord announcer disabled", "reason", err)
		return
	}
	if err := announcer.Start(context.Background()); err != nil {
		slog.Error("failed to start discord announcer", "error", err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&repository.User{},
		&repository.Oauth{},
		&repository.Tournament{},
		&repository.Team{},
		&repository.Participant{},
		&repository.Match{},
		&repository.Score{},
		&repository.Standing{},
		&repository.CommandRun{},
		&repository.RecurringJob{},
	)
	if err != nil {
		panic(err)
	}
}
