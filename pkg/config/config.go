package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Redis (optional result cache)
	RedisURL        string `mapstructure:"REDIS_URL"`
	CacheEnabled    bool   `mapstructure:"CACHE_ENABLED"`
	CacheExpiration int    `mapstructure:"CACHE_EXPIRATION"`

	// Optimizer defaults
	SalaryCap           int     `mapstructure:"SALARY_CAP"`
	MinSalary           int     `mapstructure:"MIN_SALARY"`
	MaxPerTeam          int     `mapstructure:"MAX_PER_TEAM"`
	QBStackMin          int     `mapstructure:"QB_STACK_MIN"`
	BringBack           bool    `mapstructure:"BRING_BACK"`
	NoRBVsOppDST        bool    `mapstructure:"NO_RB_VS_OPP_DST"`
	NumLineups          int     `mapstructure:"NUM_LINEUPS"`
	UniquenessThreshold int     `mapstructure:"UNIQUENESS_THRESHOLD"`
	MaxExposure         float64 `mapstructure:"MAX_EXPOSURE"`
	Randomness          float64 `mapstructure:"RANDOMNESS"`

	// Solver
	SolveTimeout time.Duration `mapstructure:"SOLVE_TIMEOUT"`
	RunTimeout   time.Duration `mapstructure:"RUN_TIMEOUT"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("CACHE_EXPIRATION", 3600) // 1 hour in seconds

	// DraftKings classic NFL defaults
	viper.SetDefault("SALARY_CAP", 50000)
	viper.SetDefault("MIN_SALARY", 49500)
	viper.SetDefault("MAX_PER_TEAM", 4)
	viper.SetDefault("QB_STACK_MIN", 1)
	viper.SetDefault("BRING_BACK", false)
	viper.SetDefault("NO_RB_VS_OPP_DST", false)
	viper.SetDefault("NUM_LINEUPS", 1)
	viper.SetDefault("UNIQUENESS_THRESHOLD", 2)
	viper.SetDefault("MAX_EXPOSURE", 0.35)
	viper.SetDefault("RANDOMNESS", 0.04)

	viper.SetDefault("SOLVE_TIMEOUT", "10s")
	viper.SetDefault("RUN_TIMEOUT", "0s") // 0 disables the overall budget

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
