// cmd/web/main.go
//
// Naje backend – HTTP entry point.
//
// Startup sequence
// ----------------
//
//  1. Start daily rotating logger (tees to console when running in a TTY).
//
//  2. Load configuration (conf/.env → conf/global.yaml → NAJE_* env,
//     vault: references resolved in between).
//
//  3. Open the MySQL pool and log the subscriber count as an early
//     sanity check.
//
//  4. Build the services: mail client, two-tier cache, rate limiter,
//     program and subscriber services, optional S3 media store, optional
//     GeoIP enrichment.
//
//  5. Assemble the chi router and serve, wrapped in ForceHTTPS when
//     configured.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/najeorg/naje-backend/internal/auth"
	"github.com/najeorg/naje-backend/internal/cache"
	"github.com/najeorg/naje-backend/internal/config"
	"github.com/najeorg/naje-backend/internal/database"
	"github.com/najeorg/naje-backend/internal/logger"
	"github.com/najeorg/naje-backend/internal/mailer"
	"github.com/najeorg/naje-backend/internal/program"
	"github.com/najeorg/naje-backend/internal/ratelimit"
	"github.com/najeorg/naje-backend/internal/requestinfo"
	"github.com/najeorg/naje-backend/internal/storage"
	"github.com/najeorg/naje-backend/internal/subscriber"
	"github.com/najeorg/naje-backend/internal/web"
)

const (
	contactWindow = time.Hour
	contactMax    = 5
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	wd, _ := os.Getwd()
	zlog, err := logger.New(wd, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer zlog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatalw("load config", "error", err)
	}

	//
	// ── Database ────────────────────────────────────────────────────────
	//
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		zlog.Fatalw("connect database", "error", err)
	}
	defer db.Close()

	var subscribers int
	_ = db.Get(&subscribers, `SELECT COUNT(*) FROM newsletter_subscription`)
	zlog.Infow("database online", "subscribers", subscribers)

	//
	// ── Timezone, GeoIP ─────────────────────────────────────────────────
	//
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		zlog.Fatalw("load timezone", "tz", cfg.App.Timezone, "error", err)
	}
	if cfg.Geo.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
			zlog.Warnw("geoip disabled", "path", cfg.Geo.DBPath, "error", err)
		}
	}

	//
	// ── Mail ────────────────────────────────────────────────────────────
	//
	var mail mailer.Sender
	if cfg.Mail.APIKey != "" && cfg.Mail.From != "" {
		mail = mailer.New(cfg.Mail.Endpoint, cfg.Mail.APIKey)
	} else {
		zlog.Warnw("mail unconfigured, contact and newsletter signup disabled")
	}
	from := mailer.Address{Email: cfg.Mail.From, Name: cfg.Mail.FromName}
	logo := mailer.LogoAttachment(cfg.Paths.Root)

	//
	// ── Cache, services, media store ────────────────────────────────────
	//
	listingCache := cache.New(cache.NewRemote(cfg.Cache.RemoteURL, cfg.Cache.RemoteToken))

	subRepo := subscriber.NewMySQLRepository(db)
	subSvc := subscriber.NewService(subRepo, mail, from, logo, cfg.App.URL, loc)

	progRepo := program.NewMySQLRepository(db)
	progSvc := program.NewService(progRepo, listingCache, mail, subRepo, from, cfg.App.URL, loc)

	store, err := storage.New(context.Background(), storage.Config{
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.Storage.Region,
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		zlog.Fatalw("init media store", "error", err)
	}

	//
	// ── Router ──────────────────────────────────────────────────────────
	//
	srv := web.New(web.Options{
		DB: db,
		Authorizer: auth.Authorizer{
			APIToken:  cfg.Auth.APIToken,
			JWTSecret: []byte(cfg.Auth.JWTSecret),
		},
		TokenTTL:  cfg.Auth.TokenTTL,
		Programs:  progSvc,
		Subs:      subSvc,
		Mail:      mail,
		From:      from,
		ContactTo: cfg.Mail.To,
		Logo:      logo,
		Limiter:   ratelimit.New(contactWindow, contactMax),
		Store:     store,
		AppURL:    cfg.App.URL,
	})

	handler := srv.Routes()
	if cfg.HTTP.ForceHTTPS {
		handler = web.ForceHTTPS(handler)
	}

	zlog.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := http.ListenAndServe(cfg.HTTP.ListenAddr, handler); err != nil {
		zap.S().Fatalw("server stopped", "error", err)
	}
}
