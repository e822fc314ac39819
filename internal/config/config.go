// Package config loads runtime configuration from environment
// variables, an optional .env file, and an optional .questlog.yaml
// config file. All tuning knobs have defaults; only credentials and the
// database id are required, and those are validated where they are
// used.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/questlog/questlog/pkg/constants"
)

// Config is the assembled runtime configuration.
type Config struct {
	Notion NotionConfig
	IGDB   IGDBConfig
	HLTB   HLTBConfig

	// Workers bounds concurrent record processing.
	Workers int

	// Matcher thresholds.
	MatchFloor   float64
	MatchMargin  float64
	HintBoost    float64
	MaxAmbiguous int

	Verbose bool
}

// NotionConfig holds document-store credentials.
type NotionConfig struct {
	Token      string
	DatabaseID string
	RateLimit  int
}

// IGDBConfig holds game-catalog credentials.
type IGDBConfig struct {
	ClientID     string
	ClientSecret string
	RateLimit    int
}

// HLTBConfig holds completion-time catalog settings.
type HLTBConfig struct {
	RateLimit int
}

// Load reads configuration. Precedence: environment variables, then the
// .env file in the working directory, then .questlog.yaml, then
// defaults.
func Load() *Config {
	// Missing .env is the common case, not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetConfigName(".questlog")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Clean(home))
	}
	_ = v.ReadInConfig()

	return &Config{
		Notion: NotionConfig{
			Token:      v.GetString("notion_token"),
			DatabaseID: v.GetString("notion_database_id"),
			RateLimit:  v.GetInt("notion_rate_limit"),
		},
		IGDB: IGDBConfig{
			ClientID:     v.GetString("igdb_client_id"),
			ClientSecret: v.GetString("igdb_client_secret"),
			RateLimit:    v.GetInt("igdb_rate_limit"),
		},
		HLTB: HLTBConfig{
			RateLimit: v.GetInt("hltb_rate_limit"),
		},
		Workers:      v.GetInt("workers"),
		MatchFloor:   v.GetFloat64("match_floor"),
		MatchMargin:  v.GetFloat64("match_margin"),
		HintBoost:    v.GetFloat64("hint_boost"),
		MaxAmbiguous: v.GetInt("max_ambiguous"),
		Verbose:      v.GetBool("verbose"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("notion_rate_limit", constants.DefaultRateLimit)
	v.SetDefault("igdb_rate_limit", constants.DefaultRateLimit)
	v.SetDefault("hltb_rate_limit", constants.DefaultRateLimit)
	v.SetDefault("workers", constants.DefaultWorkers)
	v.SetDefault("match_floor", constants.MatchFloor)
	v.SetDefault("match_margin", constants.MatchMargin)
	v.SetDefault("hint_boost", constants.HintBoost)
	v.SetDefault("max_ambiguous", constants.MaxAmbiguous)
}
