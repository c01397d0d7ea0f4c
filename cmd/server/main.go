// Package main initializes and starts the CloudStorage reference
// server: configuration, logging, storage backend, services, handlers
// and routing.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/Yahmice/CloudStorage/internal/config"
	"github.com/Yahmice/CloudStorage/internal/db"
	"github.com/Yahmice/CloudStorage/internal/logger"
	"github.com/Yahmice/CloudStorage/internal/repository"
	"github.com/Yahmice/CloudStorage/internal/server/handler/http"
	"github.com/Yahmice/CloudStorage/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	options, err := config.LoadServerConfig()
	if err != nil {
		panic(err)
	}

	zapLogger, err := logger.New("info")
	if err != nil {
		panic(err)
	}
	defer func() { _ = zapLogger.Sync() }()

	// Pick the storage backend: Postgres when a DSN is configured, the
	// in-memory store otherwise.
	var (
		userRepo service.UserRepository
		fileRepo service.FileRepository
	)
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		db.StartShareLinkCleaner(context.Background(), postgresDB, time.Hour, zapLogger)
		userRepo = repository.NewPostgresUserRepository(postgresDB)
		fileRepo = repository.NewPostgresFileRepository(postgresDB)
	} else {
		zapLogger.Info("no DATABASE_DSN set, using the in-memory store")
		store := repository.NewMemoryStore()
		userRepo = store
		fileRepo = store
	}

	authService := service.NewAuthService(userRepo)
	fileService := service.NewFileService(fileRepo, userRepo, options.MaxUploadSize)

	sessionStore := sessions.NewCookieStore([]byte(options.SessionSecret))

	authHandler := &http.AuthHandler{Accounts: authService, Sessions: sessionStore}
	filesHandler := &http.FilesHandler{Files: fileService, MaxUploadSize: options.MaxUploadSize}
	usersHandler := &http.UsersHandler{Users: authService}

	router := http.NewRouter(authHandler, filesHandler, usersHandler, sessionStore, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Address,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
