// Command answerlens runs the interview-answer analysis service: it accepts
// uploaded audio, transcribes it with a Whisper sidecar, scores the answer
// with a chat-completion model, and stores the results.
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/answerlens/internal/analysis"
	"github.com/skillsenselab/answerlens/internal/config"
	"github.com/skillsenselab/answerlens/internal/llm/openai"
	"github.com/skillsenselab/answerlens/internal/logger"
	"github.com/skillsenselab/answerlens/internal/observability"
	"github.com/skillsenselab/answerlens/internal/server"
	"github.com/skillsenselab/answerlens/internal/server/middleware"
	"github.com/skillsenselab/answerlens/internal/store"
	"github.com/skillsenselab/answerlens/internal/transcription"
	"github.com/skillsenselab/answerlens/internal/transcription/whisper"
)

func main() {
	if err := run(); err != nil {
		logger.NewFromEnv("answerlens").Fatal("Startup failed", logger.ErrorFields("run", err))
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log, cfg.Base.Name)
	if cfg.Base.Version != "" {
		log = log.WithFields(map[string]interface{}{"version": cfg.Base.Version})
	}
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled() {
		tp, err := observability.InitTracer(ctx, cfg.Base.Name, cfg.Base.Version, cfg.Base.Environment, cfg.Tracing)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn("Tracer shutdown failed", logger.ErrorFields("tracer shutdown", err))
			}
		}()
	}

	recordings, err := store.Open(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := recordings.Close(); err != nil {
			log.Warn("Store close failed", logger.ErrorFields("store close", err))
		}
	}()

	// The whisper provider holds the shared engine handle: constructed once
	// here and used read-only by every concurrent request.
	transcriber := transcription.NewService(whisper.NewProvider(cfg.Whisper), log)
	analyzer := analysis.NewAnalyzer(openai.NewClient(cfg.LLM), log)

	srv := server.New(cfg.Server, log)
	if cfg.Tracing.Enabled() {
		srv.Engine().Use(middleware.Tracing())
	}

	handler := server.NewHandler(transcriber, analyzer, recordings, log)
	handler.Register(srv.Engine(), server.RouteConfig{
		Auth: middleware.SharedSecretConfig{
			Header: cfg.Auth.Header,
			Secret: cfg.Auth.AccessToken,
		},
		ProtectWrites: cfg.Auth.ProtectWrites,
	})

	if err := srv.Start(ctx); err != nil {
		return err
	}

	log.Info("answerlens ready", logger.Fields(
		"addr", srv.Addr(),
		"environment", cfg.Base.Environment,
	))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
