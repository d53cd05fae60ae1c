package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/api"
	"purecerts-console/internal/config"
	"purecerts-console/internal/hub"
	"purecerts-console/internal/middleware"
	"purecerts-console/internal/obs"
	"purecerts-console/internal/rpc"
	"purecerts-console/internal/server"
	"purecerts-console/internal/session"
	"purecerts-console/internal/storage"
	"purecerts-console/internal/web"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	gin.SetMode(cfg.GinMode)
	obs.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds, err := storage.Open(ctx, storage.Options{
		Backend:       cfg.CredentialsBackend,
		File:          cfg.CredentialsFile,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisPrefix:   cfg.RedisKeyPrefix,
	})
	if err != nil {
		log.Fatalf("credentials storage: %v", err)
	}
	if c, ok := creds.(io.Closer); ok {
		defer c.Close()
	}

	client := api.New(rpc.New(rpc.Options{BaseURL: cfg.APIBaseURL, Storage: creds}))
	store := session.New(session.Config{
		Tokens:        client.Tokens,
		Users:         client.Users,
		Storage:       creds,
		RevokeTimeout: cfg.RevokeTimeout,
	})

	wsHub := hub.New()
	store.Subscribe(wsHub.PublishAuth)

	go func() {
		if err := store.Initialize(ctx); err != nil {
			log.Printf("session: initialize: %v", err)
		}
		log.Printf("session: %s", store.State().Status())
	}()

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatal(err)
	}

	var limiter *middleware.RateLimiter
	if cfg.LoginRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
		defer limiter.Close()
	}

	router := server.NewRouter(server.Deps{
		Session:      store,
		API:          client,
		Hub:          wsHub,
		Storage:      creds,
		Renderer:     renderer,
		LoginLimiter: limiter,
	})

	log.Printf("console listening on %s:%d, remote service %s, credentials in %s", cfg.ListenHost, cfg.Port, cfg.APIBaseURL, cfg.CredentialsBackend)
	if err := server.Run(ctx, cfg, router); err != nil {
		log.Fatal(err)
	}
}
