package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/apiclient"
	"github.com/yeremiapane/food-delivery-web/cache"
	"github.com/yeremiapane/food-delivery-web/config"
	"github.com/yeremiapane/food-delivery-web/notify"
	"github.com/yeremiapane/food-delivery-web/router"
	"github.com/yeremiapane/food-delivery-web/services"
	"github.com/yeremiapane/food-delivery-web/session"
	"github.com/yeremiapane/food-delivery-web/utils"
)

func main() {
	utils.InitLogger()
	cfg := config.Load()
	utils.JWTSecret = []byte(cfg.SessionSecret)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	rdb := config.NewRedisClient(cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	shared := cache.New(rdb, "fdw", cfg.CacheTTL)
	hub := notify.NewHub()
	store := session.NewGormStore(db)
	sessions := session.NewService(store, api, cfg.SessionTTL)
	trackers := services.NewTrackerRegistry(api, hub, services.TrackerConfig{
		PollInterval: cfg.DriverPollInterval,
		Threshold:    cfg.LocationThreshold,
		CallTimeout:  cfg.APITimeout,
	})
	toggler := services.NewAvailabilityToggler(api, hub, shared, cfg.APITimeout)

	sessions.Subscribe(func(e session.Event) {
		if e.Kind == session.EventLogout {
			trackers.StopUser(e.User.ID)
			hub.DisconnectUser(e.User.ID)
		}
	})

	sweeper := session.NewSweeper(store, cfg.SessionSweepInterval)
	sweeper.Start()

	r := router.SetupRouter(router.Deps{
		Config:   cfg,
		API:      api,
		Sessions: sessions,
		Hub:      hub,
		Trackers: trackers,
		Toggler:  toggler,
		Cache:    shared,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s (upstream %s)", cfg.Port, api.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Errorf("Server shutdown: %v", err)
	}

	trackers.StopAll()
	toggler.Wait()
	sweeper.Stop()
	utils.InfoLogger.Println("Server stopped")
}
