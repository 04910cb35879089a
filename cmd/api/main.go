package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pixelplates.org/internal/auth"
	"pixelplates.org/internal/generate"
	"pixelplates.org/internal/httpapi"
	"pixelplates.org/internal/obs"
	"pixelplates.org/internal/script"
	"pixelplates.org/internal/storage"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("PIXELPLATES_COMMIT"))

	dsn := os.Getenv("PIXELPLATES_PG_DSN")
	if dsn == "" {
		log.Fatal("missing PIXELPLATES_PG_DSN")
	}
	secret := os.Getenv("PIXELPLATES_AUTH_SECRET")
	if secret == "" {
		log.Fatal("missing PIXELPLATES_AUTH_SECRET")
	}
	apiKey := os.Getenv("PIXELPLATES_AI_KEY")
	if apiKey == "" {
		log.Fatal("missing PIXELPLATES_AI_KEY")
	}

	db, err := storage.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := storage.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	var tokenOpts []auth.TokenOption
	if raw := os.Getenv("PIXELPLATES_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("parse PIXELPLATES_TOKEN_TTL: %v", err)
		}
		tokenOpts = append(tokenOpts, auth.WithTTL(ttl))
	}
	tokens, err := auth.NewTokens(secret, tokenOpts...)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	generator, err := generate.NewClient(
		envOr("PIXELPLATES_AI_BASE_URL", "https://api.deepseek.com"),
		apiKey,
		envOr("PIXELPLATES_AI_MODEL", "deepseek-chat"),
	)
	if err != nil {
		log.Fatalf("generation client: %v", err)
	}

	api := httpapi.New(httpapi.Config{
		Auth:       auth.NewService(auth.NewPGStore(db), tokens),
		Scripts:    script.NewPGStore(db),
		Generator:  generator,
		Prompts:    generate.NewLibrary(envOr("PIXELPLATES_PROMPTS_DIR", "prompts")),
		ReadyProbe: httpapi.ReadyProbe{DB: db},
		Version:    version,
		StaticDir:  envOr("PIXELPLATES_STATIC_DIR", "static"),
	})

	srv := &http.Server{
		Addr:              envOr("PIXELPLATES_ADDR", ":8080"),
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// Generation calls block on the upstream model, so the write side
		// gets a far longer deadline than a normal JSON API would.
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting pixelplates-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = db.Close()
	log.Println("Stopped")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
