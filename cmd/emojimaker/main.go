package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/emojimaker/server/internal/api"
	"github.com/emojimaker/server/internal/blob"
	"github.com/emojimaker/server/internal/config"
	"github.com/emojimaker/server/internal/generate"
	"github.com/emojimaker/server/internal/identity"
	"github.com/emojimaker/server/internal/likes"
	"github.com/emojimaker/server/internal/provider"
	"github.com/emojimaker/server/internal/storage"
)

type app struct {
	ctx    context.Context
	cancel context.CancelFunc

	logConf zap.Config
	logger  *zap.Logger

	config *config.Config

	storage *storage.Storage
	blobs   *blob.Store
	api     *api.API
}

func newApp(ctx context.Context, lcf zap.Config, log *zap.Logger) (*app, error) {
	ctx, cancel := context.WithCancel(ctx)
	a := &app{ctx: ctx, cancel: cancel, logConf: lcf, logger: log}
	var err error

	log.Debug("Loading configuration.")
	a.config, err = config.Read()
	if err != nil {
		return nil, fmt.Errorf("couldn't load configuration: %w", err)
	}

	log.Debug("Successfully loaded configuration (also switching log level.)")
	lcf.Level.SetLevel(a.config.Logging.Level)

	log.Debug("Initializing Storage struct.")
	a.storage = storage.NewStorage(ctx, log)

	log.Debug("Initializing blob store client.")
	a.blobs, err = blob.NewStore(log.Sugar(), &blob.Config{
		Endpoint:  a.config.Blob.Endpoint,
		PublicURL: a.config.Blob.PublicURL,
		AccessKey: a.config.Blob.AccessKey,
		SecretKey: a.config.Blob.SecretKey,
		Bucket:    a.config.Blob.Bucket,
		UseSSL:    a.config.Blob.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize blob store: %w", err)
	}

	log.Debug("Initializing generation provider client.")
	prov, err := provider.NewReplicate(log.Sugar(), a.config.Provider.Token)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize provider: %w", err)
	}

	log.Debug("Initializing webhook verifier.")
	verifier, err := identity.NewVerifier(a.config.Webhook.Secret)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize webhook verifier: %w", err)
	}

	log.Debug("Wiring API endpoints.")
	a.api = api.NewAPI(ctx, log.Sugar(), api.NewConfig(a.config.Api.Port, a.config.Auth.SessionSecret), api.Deps{
		Generator: generate.NewPipeline(log.Sugar(), prov, a.blobs, a.storage),
		Toggler:   likes.NewEngine(log.Sugar(), a.storage),
		Verifier:  verifier,
		Identity:  identity.NewSyncer(log.Sugar(), a.storage),
		Catalog:   a.storage,
	})

	return a, nil
}

func (a *app) Run() error {
	a.logger.Debug("Connecting to PostgreSQL storage.")
	if err := a.storage.Connect(a.config.Storage.PostgresDSN); err != nil {
		return fmt.Errorf("couldn't connect to storage: %s", err)
	}
	defer func() {
		a.logger.Debug("Closing PostgreSQL storage.")
		if err := a.storage.Close(); err != nil {
			a.logger.Sugar().Errorf("Couldn't close storage: %s.", err)
		}
		a.logger.Debug("Closed PostgreSQL storage.")
	}()
	a.logger.Debug("Successfully connected to PostgreSQL storage.")

	a.logger.Debug("Initializing catalog schema.")
	if err := a.storage.Init(a.ctx); err != nil {
		return fmt.Errorf("couldn't initialize schema: %s", err)
	}

	a.logger.Debug("Ensuring emoji bucket exists.")
	if err := a.blobs.EnsureBucket(a.ctx); err != nil {
		return fmt.Errorf("couldn't prepare blob bucket: %s", err)
	}

	a.logger.Debug("Starting HTTP server.")
	a.api.Listen()
	defer func() {
		a.logger.Debug("Closing HTTP server.")
		if err := a.api.Close(); err != nil {
			a.logger.Sugar().Errorf("Couldn't close server: %s.", err)
		}
		a.logger.Debug("Closed HTTP server.")
	}()

	a.logger.Info("Launch complete. Send SIGINT to gracefully terminate.")
	<-a.ctx.Done()
	a.logger.Info("SIGINT received, terminating.")

	return a.ctx.Err()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	lcf := zap.NewDevelopmentConfig() // to later switch level without reallocation
	lcf.Level.SetLevel(zapcore.DebugLevel)
	lcf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	lcf.DisableCaller = true
	log, _ := lcf.Build()

	log.Info("Initializing application.")
	a, err := newApp(ctx, lcf, log)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Sugar().Fatalf("Couldn't initialize application: %s.", err)
		}

		return
	}

	log.Debug("Initialization tasks complete, continuing with launch.")
	if err := a.Run(); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Sugar().Fatalf("Application crashed: %s.", err)
		}
	}
}
