package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/posm-recon/internal/audit"
	"github.com/sells-group/posm-recon/internal/recon"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig      `yaml:"store" mapstructure:"store"`
	Recon  recon.Config     `yaml:"recon" mapstructure:"recon"`
	Audit  audit.Thresholds `yaml:"audit" mapstructure:"audit"`
	Server ServerConfig     `yaml:"server" mapstructure:"server"`
	Log    LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the catalog store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP layer.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RatePerSecond  float64  `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("POSM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. The matching thresholds are empirically tuned heuristics.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "posm.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_second", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("recon.max_concurrent", 8)
	v.SetDefault("recon.resolver.confidence_threshold", 0.85)
	v.SetDefault("recon.resolver.partial_overlap", 0.85)
	v.SetDefault("recon.resolver.min_shared_tokens", 3)
	v.SetDefault("recon.resolver.max_token_count_diff", 1)
	v.SetDefault("recon.resolver.model_jaccard", 0.80)
	v.SetDefault("audit.perfect_store_share", 0.5)
	v.SetDefault("audit.flagged_store_share", 0.1)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks invariants that viper cannot express. Mode is the command
// being run ("compute", "audit", "serve"); serve additionally needs a
// listenable port. File-based inputs bypass the store, so the database URL
// is only checked at store.Open time.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "compute", "audit":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	if c.Recon.MaxConcurrent < 1 || c.Recon.MaxConcurrent > 64 {
		problems = append(problems, "recon.max_concurrent must be between 1 and 64")
	}
	r := c.Recon.Resolver
	if r.ConfidenceThreshold < 0 || r.ConfidenceThreshold > 1 {
		problems = append(problems, "recon.resolver.confidence_threshold must be in [0,1]")
	}
	if r.PartialOverlap < 0 || r.PartialOverlap > 1 {
		problems = append(problems, "recon.resolver.partial_overlap must be in [0,1]")
	}
	if r.ModelJaccard < 0 || r.ModelJaccard > 1 {
		problems = append(problems, "recon.resolver.model_jaccard must be in [0,1]")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
