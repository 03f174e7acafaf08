package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Database.User = "molsearch"
	return cfg
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad mode", func(c *Config) { c.Server.Mode = "production" }, "server.mode"},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"bad db port", func(c *Config) { c.Database.Port = 70000 }, "database.port"},
		{"missing db user", func(c *Config) { c.Database.User = "" }, "database.user"},
		{"missing db name", func(c *Config) { c.Database.DBName = "" }, "database.db_name"},
		{"bad max conns", func(c *Config) { c.Database.MaxConns = 0 }, "database.max_conns"},
		{"redis enabled without addr", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Addr = ""
		}, "redis.addr"},
		{"kafka enabled without brokers", func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = nil
		}, "kafka.brokers"},
		{"pubchem enabled without url", func(c *Config) {
			c.Sources.PubChem.Enabled = true
			c.Sources.PubChem.BaseURL = ""
		}, "sources.pubchem"},
		{"default limit above max", func(c *Config) {
			c.Search.DefaultLimit = 50
			c.Search.MaxLimit = 10
		}, "search.default_limit"},
		{"max limit too large", func(c *Config) { c.Search.MaxLimit = 500 }, "search.max_limit"},
		{"bad minimize iters", func(c *Config) { c.Chem.MinimizeIters = -1 }, "chem.minimize_iters"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestValidate_DisabledComponentsSkipChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Enabled = false
	cfg.Redis.Addr = ""
	cfg.Kafka.Enabled = false
	cfg.Kafka.Brokers = nil
	cfg.Sources.PubChem.Enabled = false
	cfg.Sources.PubChem.BaseURL = ""
	assert.NoError(t, cfg.Validate())
}
