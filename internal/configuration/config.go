package configuration

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"

	"shoppa/internal/client"
	"shoppa/internal/database"
	"shoppa/internal/logger"
)

const (
	EnrichmentGemini = "gemini"
	EnrichmentNone   = "none"
)

type Config struct {
	ServerAddress     string
	LogLevel          logger.Level
	LogToFile         bool
	Store             database.Options
	CatalogPath       string
	Enrichment        string
	Gemini            client.GeminiConfig
	EnrichmentTimeout time.Duration
}

// tomlConfig is decoded from the config file, then overridden from SHOPPA_*
// environment variables.
type tomlConfig struct {
	ServerAddress     string `toml:"server_address" env:"SHOPPA_SERVER_ADDRESS"`
	LogLevel          string `toml:"log_level" env:"SHOPPA_LOG_LEVEL"`
	LogToFile         bool   `toml:"log_to_file" env:"SHOPPA_LOG_TO_FILE"`
	Store             string `toml:"store" env:"SHOPPA_STORE"`
	SQLitePath        string `toml:"sqlite_path" env:"SHOPPA_SQLITE_PATH"`
	RedisAddr         string `toml:"redis_addr" env:"SHOPPA_REDIS_ADDR"`
	RedisPassword     string `toml:"redis_password" env:"SHOPPA_REDIS_PASSWORD"`
	RedisDB           int    `toml:"redis_db" env:"SHOPPA_REDIS_DB"`
	MongoURI          string `toml:"mongo_uri" env:"SHOPPA_MONGO_URI"`
	CatalogPath       string `toml:"catalog_path" env:"SHOPPA_CATALOG_PATH"`
	Enrichment        string `toml:"enrichment" env:"SHOPPA_ENRICHMENT"`
	GCPProject        string `toml:"gcp_project" env:"SHOPPA_GCP_PROJECT"`
	GCPLocation       string `toml:"gcp_location" env:"SHOPPA_GCP_LOCATION"`
	GCPCredentials    string `toml:"gcp_credentials_file" env:"SHOPPA_GCP_CREDENTIALS_FILE"`
	GeminiModel       string `toml:"gemini_model" env:"SHOPPA_GEMINI_MODEL"`
	EnrichmentTimeout string `toml:"enrichment_timeout" env:"SHOPPA_ENRICHMENT_TIMEOUT"`
}

// GetConfig reads the config file at path if it exists. A missing file is
// not an error: defaults and the environment still apply.
func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	if _, err := os.Stat(path); err == nil {
		if _, err = toml.DecodeFile(path, &tc); err != nil {
			return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to stat config file: %s", path)
	}

	if err := env.Parse(&tc); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment overrides")
	}

	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8888"
	}

	if tc.LogLevel == "" {
		tc.LogLevel = "INFO"
	}
	level, err := logger.ParseLevel(tc.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log_level: %s", tc.LogLevel)
	}

	if tc.Store == "" {
		tc.Store = database.BackendSQLite
	}
	tc.Store = strings.ToLower(tc.Store)
	if !database.ValidBackend(tc.Store) {
		return nil, errors.Errorf("unknown store %q, expected one of sqlite, redis, mongo, memory", tc.Store)
	}
	if tc.SQLitePath == "" {
		tc.SQLitePath = "shoppa.db"
	}
	if tc.RedisAddr == "" {
		tc.RedisAddr = "localhost:6379"
	}
	if tc.MongoURI == "" {
		tc.MongoURI = "mongodb://localhost:27017"
	}

	tc.Enrichment = strings.ToLower(tc.Enrichment)
	switch tc.Enrichment {
	case "":
		tc.Enrichment = EnrichmentNone
		if tc.GCPProject != "" {
			tc.Enrichment = EnrichmentGemini
		}
	case EnrichmentGemini:
		if tc.GCPProject == "" {
			return nil, errors.New("enrichment is gemini but gcp_project is not set")
		}
	case EnrichmentNone:
	default:
		return nil, errors.Errorf("unknown enrichment %q, expected gemini or none", tc.Enrichment)
	}
	if tc.GCPLocation == "" {
		tc.GCPLocation = "us-central1"
	}
	if tc.GeminiModel == "" {
		tc.GeminiModel = client.DefaultModel
	}

	if tc.EnrichmentTimeout == "" {
		tc.EnrichmentTimeout = "20s"
	}
	timeout, err := time.ParseDuration(tc.EnrichmentTimeout)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse enrichment_timeout: %s", tc.EnrichmentTimeout)
	}
	if timeout <= 0 {
		return nil, errors.Errorf("enrichment_timeout must be positive, got %v", timeout)
	}

	return &Config{
		ServerAddress: tc.ServerAddress,
		LogLevel:      level,
		LogToFile:     tc.LogToFile,
		Store: database.Options{
			Backend:       tc.Store,
			SQLitePath:    tc.SQLitePath,
			RedisAddr:     tc.RedisAddr,
			RedisPassword: tc.RedisPassword,
			RedisDB:       tc.RedisDB,
			MongoURI:      tc.MongoURI,
		},
		CatalogPath: tc.CatalogPath,
		Enrichment:  tc.Enrichment,
		Gemini: client.GeminiConfig{
			ProjectID:       tc.GCPProject,
			Location:        tc.GCPLocation,
			CredentialsFile: tc.GCPCredentials,
			Model:           tc.GeminiModel,
		},
		EnrichmentTimeout: timeout,
	}, nil
}
