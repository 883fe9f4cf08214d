package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"shoppa/internal/catalog"
	"shoppa/internal/client"
	"shoppa/internal/configuration"
	"shoppa/internal/database"
	"shoppa/internal/identity"
	"shoppa/internal/logger"
	"shoppa/internal/resolver"
	"shoppa/internal/server"
	"shoppa/internal/shoplist"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the config file")
	flag.Parse()

	if err := runApp(*configPath); err != nil {
		os.Exit(1)
	}
}

func runApp(configPath string) error {
	appContext, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logOutput := io.Writer(os.Stdout)
	appLogger := logger.New(logger.LevelError, logOutput)

	defer func() {
		if r := recover(); r != nil {
			appLogger.Errorf("APPLICATION CRASHED: %+v", r)
		}
	}()

	config, err := configuration.GetConfig(configPath)
	if err != nil {
		appLogger.Error("Error getting configuration from", configPath+":", err)
		return err
	}

	if config.LogToFile {
		logFile, err := os.OpenFile("shoppa.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			appLogger.Error("Error opening log file:", err)
			return err
		}
		defer func() {
			if err := logFile.Close(); err != nil {
				appLogger.Error("Error closing log file:", err)
			}
		}()
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	appLogger = logger.New(config.LogLevel, logOutput)

	if config.LogLevel.Enables(logger.LevelDebug) {
		conf, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			appLogger.Error("Error marshalling Config to JSON:", err)
			return err
		}
		appLogger.Debugf("Config:\n%s", conf)
	}

	products, err := loadCatalog(config.CatalogPath)
	if err != nil {
		appLogger.Error("Error loading catalog:", err)
		return err
	}
	appLogger.Info("Loaded catalog with", products.Len(), "products")

	appLogger.Info("Opening store:", config.Store.Backend)
	store, err := database.Open(appContext, config.Store)
	if err != nil {
		appLogger.Error("Error opening store:", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			appLogger.Error("Error closing store:", err)
		}
	}()

	var enricher client.Enricher = client.Unavailable{}
	if config.Enrichment == configuration.EnrichmentGemini {
		gemini, err := client.NewGemini(appContext, config.Gemini, appLogger)
		if err != nil {
			appLogger.Error("Error creating Gemini client:", err)
			return err
		}
		defer func() {
			if err := gemini.Close(); err != nil {
				appLogger.Error("Error closing Gemini client:", err)
			}
		}()
		enricher = gemini
		appLogger.Info("Enrichment with model", config.Gemini.Model, "in", config.Gemini.Location)
	} else {
		appLogger.Warn("Enrichment disabled, unknown products will not be generated")
	}

	users := identity.New(store, appLogger)
	lists := shoplist.New(store, appLogger)
	users.Subscribe(lists.SetIdentity)
	if id := users.Restore(appContext); id != nil {
		appLogger.Info("Restored session for", id.ID)
	}

	srv := server.Server{
		Catalog:           products,
		Resolver:          resolver.New(products, enricher, appLogger),
		Lists:             lists,
		Users:             users,
		Logger:            appLogger,
		EnrichmentTimeout: config.EnrichmentTimeout,
	}

	httpSrv := &http.Server{
		Handler:      srv.Router(),
		Addr:         config.ServerAddress,
		WriteTimeout: config.EnrichmentTimeout + 15*time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		<-appContext.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Error shutting down server:", err)
		}
	}()

	appLogger.Info("Serving on", httpSrv.Addr)
	if err = httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLogger.Error("Server stopped:", err)
		return err
	}
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Builtin()
	}
	return catalog.Load(path)
}
