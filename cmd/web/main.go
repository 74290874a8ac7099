// cmd/web/main.go
//
// Formdesk – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config (conf/.env → conf/global.yaml → FORMDESK_* env, with
//     `vault:` references resolved when VAULT_ADDR is set).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Open the optional GeoLite2 database for request enrichment.
//
//  4. Open the forms DB (MySQL or SQLite) and, when configured, apply the
//     schema.
//
//  5. Build the form service with its read-through cache and password
//     hasher, then Init every registered component.
//
//  6. Root router:
//
//     • chi RequestID / RealIP / Recoverer
//     • requestinfo.Enrich     – UA + Geo on the context
//     • middleware.RequestLog  – access log + Prometheus
//     • Security / CORS / ForceHTTPS
//     • auth.Identify          – bearer token → owner email
//     • component routes + /metrics
//
//  7. Serve until SIGINT/SIGTERM, then drain.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/formdesk/internal/auth"
	"github.com/yanizio/formdesk/internal/component"
	"github.com/yanizio/formdesk/internal/config"
	"github.com/yanizio/formdesk/internal/database"
	"github.com/yanizio/formdesk/internal/form"
	"github.com/yanizio/formdesk/internal/formcache"
	"github.com/yanizio/formdesk/internal/logger"
	"github.com/yanizio/formdesk/internal/middleware"
	"github.com/yanizio/formdesk/internal/requestinfo"
	"github.com/yanizio/formdesk/internal/server"
	"github.com/yanizio/formdesk/internal/store"

	_ "github.com/yanizio/formdesk/components/forms"  // /form API
	_ "github.com/yanizio/formdesk/components/health" // /health
)

// deps satisfies component.Deps.
type deps struct {
	forms *form.Service
	db    component.Pinger
}

func (d deps) Forms() *form.Service     { return d.forms }
func (d deps) Pinger() component.Pinger { return d.db }

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		zap.S().Errorw("formdesk exited", "err", err)
		_ = zap.S().Sync()
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	//
	// ── 1.  Config ──────────────────────────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	logOut, err := logger.New(cfg.Log.Dir, cfg.Log.Level, runningInTTY())
	if err != nil {
		return err
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 3.  GeoIP (optional) ────────────────────────────────────────────
	//
	if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
		logOut.Warnw("geoip disabled", "path", cfg.Geo.DBPath, "err", err)
	}
	defer func() { _ = requestinfo.CloseGeo() }()

	//
	// ── 4.  Database ────────────────────────────────────────────────────
	//
	logOut.Infow("connecting to forms DB", "driver", cfg.Database.Driver)
	db, err := database.Open(ctx, database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		Password:        cfg.Database.Password,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	logOut.Infow("forms DB online")

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx, db); err != nil {
			return err
		}
		logOut.Infow("schema applied")
	}

	//
	// ── 5.  Services + components ───────────────────────────────────────
	//
	st := store.New(db)
	cache := formcache.New(st, formcache.Options{
		IdleTTL:       cfg.Forms.CacheIdleTTL,
		MaxEntries:    cfg.Forms.CacheMaxEntries,
		EvictInterval: cfg.Forms.CacheEvictInterval,
	})
	defer cache.Close()

	hashCost := cfg.Forms.HashCost
	if hashCost == 0 {
		hashCost = form.DefaultHashCost
	}
	svc := form.NewService(st,
		form.WithCache(cache),
		form.WithHasher(form.BcryptHasher{Cost: hashCost}),
		form.WithMaxFields(cfg.Forms.MaxFields),
	)

	if err := component.InitAll(deps{forms: svc, db: st}); err != nil {
		return err
	}

	//
	// ── 6.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(requestinfo.Enrich)
	r.Use(middleware.RequestLog(logOut))
	r.Use(middleware.Security)
	r.Use(middleware.CORS(cfg.HTTP.AllowedOrigins))
	if cfg.HTTP.ForceHTTPS {
		r.Use(middleware.ForceHTTPS)
	}
	r.Use(auth.Identify(auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Leeway)))

	component.Mount(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	//
	// ── 7.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r, server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})
	return server.Run(ctx, srv, cfg.HTTP.ShutdownTimeout, logOut)
}
