// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// expands ${ENV} placeholders and applies defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

func overrideEmptyConfig(cfg *Config) {
	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = os.Getenv("ORACLE_API_KEY")
	}
	if cfg.Oracle.BaseURL == "" {
		cfg.Oracle.BaseURL = os.Getenv("ORACLE_BASE_URL")
	}
	if cfg.Lookup.APIKey == "" {
		cfg.Lookup.APIKey = os.Getenv("WEB_SEARCH_API_KEY")
	}
	if cfg.Lookup.EngineID == "" {
		cfg.Lookup.EngineID = os.Getenv("WEB_SEARCH_ENGINE_ID")
	}
	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = os.Getenv("DB_USER")
	}
	if cfg.Database.Postgres.Password == "" {
		cfg.Database.Postgres.Password = os.Getenv("DB_PASSWORD")
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "travelease"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		// Must outlive an itinerary oracle call.
		cfg.Server.WriteTimeout = 120000
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Server.CookieName == "" {
		cfg.Server.CookieName = "travelease_user"
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 60
	}

	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = CatalogSourceMemory
	}
	if cfg.Catalog.Indexes.Housing == "" {
		cfg.Catalog.Indexes.Housing = "housing"
	}
	if cfg.Catalog.Indexes.Cuisine == "" {
		cfg.Catalog.Indexes.Cuisine = "cuisine"
	}
	if cfg.Catalog.Indexes.Experience == "" {
		cfg.Catalog.Indexes.Experience = "experiences"
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Oracle.Timeout == 0 {
		cfg.Oracle.Timeout = 60000
	}
	if cfg.Oracle.MaxRetries == 0 {
		cfg.Oracle.MaxRetries = 1
	}
	if cfg.Oracle.MaxTokens == 0 {
		cfg.Oracle.MaxTokens = 2048
	}
	if cfg.Oracle.MinInspections == 0 {
		cfg.Oracle.MinInspections = 3
	}
	if cfg.Oracle.FallbackK == 0 {
		cfg.Oracle.FallbackK = 3
	}
	if cfg.Oracle.ShortlistLimit == 0 {
		cfg.Oracle.ShortlistLimit = 10
	}
	if cfg.Oracle.Breaker.MaxFailures == 0 {
		cfg.Oracle.Breaker.MaxFailures = 5
	}
	if cfg.Oracle.Breaker.OpenTimeout == 0 {
		cfg.Oracle.Breaker.OpenTimeout = 30000
	}

	if cfg.Lookup.Timeout == 0 {
		cfg.Lookup.Timeout = 10000
	}

	if cfg.Sessions.Backend == "" {
		cfg.Sessions.Backend = BackendMemory
	}
	if cfg.Sessions.TTL == 0 {
		cfg.Sessions.TTL = 86400
	}
	if cfg.UserStore.Backend == "" {
		cfg.UserStore.Backend = BackendFile
	}
	if cfg.UserStore.Path == "" {
		cfg.UserStore.Path = "user_store.json"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 5
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		if worker.Timeout == 0 {
			worker.Timeout = cfg.Oracle.Timeout + 5000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Catalog.Source {
	case CatalogSourceMemory:
	case CatalogSourceCSV:
		if cfg.Catalog.CSV.HousingPath == "" && cfg.Catalog.CSV.CuisinePath == "" && cfg.Catalog.CSV.ExperiencePath == "" {
			return fmt.Errorf("catalog.csv requires at least one csv path")
		}
	case CatalogSourcePostgres:
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.host and database.postgres.database are required for catalog source postgres")
		}
	case CatalogSourceElasticsearch:
		if len(cfg.Database.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("database.elasticsearch.addresses is required for catalog source elasticsearch")
		}
	default:
		return fmt.Errorf("unknown catalog.source %q", cfg.Catalog.Source)
	}

	for name, backend := range map[string]string{
		"sessions.backend":   cfg.Sessions.Backend,
		"user_store.backend": cfg.UserStore.Backend,
	} {
		switch backend {
		case BackendMemory, BackendRedis, BackendFile:
		default:
			return fmt.Errorf("unknown %s %q", name, backend)
		}
	}
	if cfg.Sessions.Backend == BackendFile {
		return fmt.Errorf("sessions.backend %q is not supported", BackendFile)
	}

	if cfg.NeedsRedis() && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when a redis backend is selected")
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Oracle.FallbackK < 0 || cfg.Oracle.ShortlistLimit < 0 {
		return fmt.Errorf("oracle.fallback_k and oracle.shortlist_limit must not be negative")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: cfg.Camunda.MaxJobsActive,
		Timeout:       cfg.Oracle.Timeout + 5000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
