// Package config provides configuration loading, defaults, and validation for
// the molsearch service.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "molsearch"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "molsearch"

	DefaultKafkaBroker = "localhost:9092"

	DefaultPubChemBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"
	DefaultChEMBLBaseURL  = "https://www.ebi.ac.uk/chembl/api/data"
	DefaultSourceTimeout  = 10 * time.Second
	DefaultPubChemMaxHits = 10

	DefaultSearchLimit  = 20
	DefaultMaxLimit     = 100
	DefaultCacheTTL     = 5 * time.Minute
	DefaultHistoryLimit = 50

	DefaultEmbedSeed     = 42
	DefaultMinimizeIters = 500

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "molsearch"

	DefaultRateLimitRPM   = 120
	DefaultRateLimitBurst = 20
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultCacheTTL
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Acks == "" {
		cfg.Kafka.Acks = "one"
	}

	// ── Sources ───────────────────────────────────────────────────────────────
	if cfg.Sources.PubChem.BaseURL == "" {
		cfg.Sources.PubChem.BaseURL = DefaultPubChemBaseURL
	}
	if cfg.Sources.PubChem.Timeout == 0 {
		cfg.Sources.PubChem.Timeout = DefaultSourceTimeout
	}
	if cfg.Sources.PubChem.MaxHits == 0 {
		cfg.Sources.PubChem.MaxHits = DefaultPubChemMaxHits
	}
	if cfg.Sources.ChEMBL.BaseURL == "" {
		cfg.Sources.ChEMBL.BaseURL = DefaultChEMBLBaseURL
	}
	if cfg.Sources.ChEMBL.Timeout == 0 {
		cfg.Sources.ChEMBL.Timeout = DefaultSourceTimeout
	}

	// ── Search ────────────────────────────────────────────────────────────────
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = DefaultSearchLimit
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = DefaultMaxLimit
	}
	if cfg.Search.CacheTTL == 0 {
		cfg.Search.CacheTTL = DefaultCacheTTL
	}
	if cfg.Search.HistoryLimit == 0 {
		cfg.Search.HistoryLimit = DefaultHistoryLimit
	}

	// ── Chem ──────────────────────────────────────────────────────────────────
	if cfg.Chem.EmbedSeed == 0 {
		cfg.Chem.EmbedSeed = DefaultEmbedSeed
	}
	if cfg.Chem.MinimizeIters == 0 {
		cfg.Chem.MinimizeIters = DefaultMinimizeIters
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Rate limit ────────────────────────────────────────────────────────────
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = DefaultRateLimitRPM
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = DefaultRateLimitBurst
	}
}

// NewDefaultConfig returns a Config populated entirely with service defaults.
// Useful for tests and for running without a config file.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Database.User = "molsearch"
	return cfg
}
