package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/http/handlers"
	httpapi "github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/http/httpapi"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/httpclient"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/imaging"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/infra"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/overlay"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/pipeline"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/providers/replicate"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/storage"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/templates"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	registry, err := templates.NewRegistry(cfg.TemplateDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load templates")
	}
	fonts, err := overlay.NewFontBook(cfg.FontDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load fonts")
	}
	spool, err := storage.NewSpool(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare upload directory")
	}

	editor := replicate.NewClient(replicate.Options{
		APIToken:     cfg.ReplicateAPIToken,
		BaseURL:      cfg.ReplicateBaseURL,
		ModelVersion: cfg.ReplicateModelVersion,
		Timeout:      cfg.EditorTimeout,
		PollInterval: cfg.EditorPollInterval,
		HTTPClient:   httpclient.New(httpclient.Options{PreferIPv4: cfg.PreferIPv4, Timeout: cfg.EditorTimeout}),
		Logger:       &logger,
	})

	gen, err := pipeline.New(pipeline.Options{
		Resolver:   &pipeline.Resolver{Templates: registry, MaxBytes: cfg.MaxUploadBytes},
		Normalizer: imaging.NewNormalizer(),
		Editor:     editor,
		Renderer:   overlay.NewRenderer(fonts),
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	app := &handlers.App{
		Pipeline:  gen,
		Templates: registry,
		Spool:     spool,
		Logger:    &logger,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMin:    cfg.RateLimitPerMin,
		MaxInFlight:        cfg.MaxConcurrentGenerations,
	})

	server := infra.NewHTTPServer(cfg, router)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", server.Addr()).Msg("API listening")
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}
