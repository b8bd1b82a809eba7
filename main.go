package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backoffice/internal/config"
	api "backoffice/internal/http"
	"backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := config.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	config.ConnectDB(env.DBDSN)
	defer config.CloseDB()

	deps, err := api.NewDeps(env)
	if err != nil {
		log.Fatalf("Failed to initialize rendering pipeline: %v", err)
	}

	// Periodic cleanup of cached QR bitmaps and archived downloads.
	stopSweeper := make(chan struct{})
	if env.QRCacheTTL > 0 {
		go deps.QR.RunSweeper(time.Hour, stopSweeper)
	}
	if env.GeneratedTTL > 0 {
		docs := services.DocsService{Cfg: env}
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-stopSweeper:
					return
				case <-ticker.C:
					if removed, err := docs.SweepArchive(env.GeneratedTTL); err != nil {
						log.Printf("Archive sweep failed: %v", err)
					} else if removed > 0 {
						log.Printf("Archive sweep removed %d file(s)", removed)
					}
				}
			}
		}()
	}

	r := api.NewRouter(deps)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	close(stopSweeper)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped cleanly.")
}
