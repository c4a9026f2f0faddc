package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"motiongen/internal/config"
	"motiongen/internal/handler"
	"motiongen/internal/kolada"
	"motiongen/internal/llm"
	"motiongen/internal/metrics"
	"motiongen/internal/motion"
	"motiongen/internal/server"
	"motiongen/internal/statistics"
	"motiongen/internal/trace"
)

func main() {
	port := flag.String("port", "", "server port (overrides PORT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if *port != "" {
		if strings.HasPrefix(*port, ":") {
			cfg.Port = *port
		} else {
			cfg.Port = ":" + *port
		}
	}

	metrics.MustRegister()
	tr := trace.New(cfg.TraceDir)

	ctx := context.Background()
	base, err := llm.NewClient(ctx,
		cfg.Generation.Provider,
		cfg.Generation.APIKey,
		cfg.Generation.Model,
		cfg.Generation.BaseURL,
		cfg.Generation.Timeout,
	)
	if err != nil {
		log.Fatal(err)
	}
	gen := llm.Wrap(base,
		llm.WithLogging(log.Default()),
		llm.Retry(llm.RetryConfig{
			MaxAttempts:    cfg.Generation.MaxRetries,
			BaseDelay:      cfg.Generation.BackoffBase,
			MaxDelay:       cfg.Generation.MaxBackoff,
			AttemptTimeout: cfg.Generation.Timeout,
			OnAttempt: func(ctx context.Context, attempt int, latency time.Duration, err error) {
				outcome := "ok"
				switch {
				case llm.IsPermanent(err):
					outcome = "permanent_error"
				case err != nil:
					outcome = "retryable_error"
				}
				metrics.GenerationAttempts.WithLabelValues(outcome).Inc()
				tr.Append(trace.RequestID(ctx), "generation", llm.StageFrom(ctx), map[string]any{
					"attempt":    attempt,
					"outcome":    outcome,
					"latency_ms": latency.Milliseconds(),
				})
			},
		}),
		llm.RateLimit(cfg.Generation.RPS, cfg.Generation.Burst),
	)
	defer gen.Close()

	koladaCli := kolada.New(cfg.Kolada.BaseURL, cfg.Kolada.Timeout)
	statsSvc := statistics.NewService(koladaCli)
	pipeline := motion.NewPipeline(statsSvc, gen, cfg.Kolada.DefaultMunicipality, tr)

	mux := server.NewMux(
		handler.NewMotionHandler(pipeline, tr),
		handler.NewHealthHandler(koladaCli, gen),
		metrics.Handler(),
	)
	srv := server.New(cfg.Port, mux)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
