// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"till/internal/pkg/config"
	"till/internal/pkg/logger"
	"till/internal/tracing"
)

type AppCtx struct {
	Mux    *http.ServeMux
	Config config.Config
}

// AppInfo carries everything specific to one service binary.
type AppInfo struct {
	ServiceName      string
	RegisterHandlers func(appCtx AppCtx)
	// Cleanup runs during graceful shutdown, after the HTTP server has
	// stopped accepting requests.
	Cleanup func(ctx context.Context)
}

// StartService wraps the common startup and graceful-shutdown sequence:
// load config, init logging and tracing, serve HTTP, drain on SIGTERM.
func StartService(info AppInfo) {
	cfg, err := config.Load(os.Getenv("POS_CONFIG"))
	if err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	logger.Init(info.ServiceName)

	var shutdownTracer func(context.Context) error
	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			log.Fatalf("failed to initialize tracer provider: %v", err)
		}
		shutdownTracer = tp.Shutdown
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Config: cfg})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(cfg.Server.Port), Handler: mux}
	go func() {
		log.Printf("%s listening on :%d", info.ServiceName, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not listen on %s: %v\n", server.Addr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutting down service %s...", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down http server: %v", err)
	} else {
		log.Println("HTTP server shut down.")
	}

	if info.Cleanup != nil {
		info.Cleanup(ctx)
	}

	if shutdownTracer != nil {
		if err := shutdownTracer(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		} else {
			log.Println("Tracer provider shut down.")
		}
	}

	log.Printf("Service %s gracefully shut down.", info.ServiceName)
}
