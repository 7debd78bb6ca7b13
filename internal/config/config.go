// Package config loads pipeline configuration from a config file,
// environment variables and .env files via Viper. Flags bound by the
// CLI layer take precedence over all of them.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sibils/journals/pkg/errors"
	"github.com/sibils/journals/pkg/logging"
)

// Phases toggles individual reference-matching cascade steps.
type Phases struct {
	Abbreviation bool `mapstructure:"abbreviation"`
	NLMID        bool `mapstructure:"nlm_id"`
	Title        bool `mapstructure:"title"`
	AltTitle     bool `mapstructure:"alt_title"`
}

// Config is the full pipeline configuration.
type Config struct {
	// Inputs
	RecordsFile     string `mapstructure:"records"`
	ISSNLTableFile  string `mapstructure:"issn_table"`
	AuthorityFile   string `mapstructure:"authority_file"`
	ReferenceCorpus string `mapstructure:"reference_corpus"`

	// Outputs
	OutputDir string `mapstructure:"output_dir"`

	// Behavior
	ValidateChecksums bool   `mapstructure:"validate_checksums"`
	Provenance        bool   `mapstructure:"provenance"`
	FilterUnmatched   bool   `mapstructure:"filter_unmatched"`
	Phases            Phases `mapstructure:"phases"`
}

// SetDefaults registers every configuration default with Viper.
func SetDefaults() {
	viper.SetDefault("records", "data/records.yaml")
	viper.SetDefault("issn_table", "data/issn_l.tsv")
	viper.SetDefault("authority_file", "")
	viper.SetDefault("reference_corpus", "")
	viper.SetDefault("output_dir", "output")
	viper.SetDefault("validate_checksums", true)
	viper.SetDefault("provenance", true)
	viper.SetDefault("filter_unmatched", true)
	viper.SetDefault("phases.abbreviation", true)
	viper.SetDefault("phases.nlm_id", true)
	viper.SetDefault("phases.title", true)
	viper.SetDefault("phases.alt_title", true)
}

// Init wires Viper to the optional config file, .env files and the
// process environment. Call once before Load.
func Init(configFile string) {
	SetDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".journals")
	}

	loadEnvFiles()

	viper.SetEnvPrefix("JOURNALS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		logging.Debug().Str("file", viper.ConfigFileUsed()).Msg("config file loaded")
	}
}

// Load materializes the current Viper state into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, &errors.ConfigError{Message: fmt.Sprintf("unmarshal configuration: %v", err)}
	}
	return &cfg, nil
}

// loadEnvFiles loads .env.local then .env, never overriding variables
// already present in the environment.
func loadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			logging.Warn().Str("file", name).Err(err).Msg("failed to load env file")
		}
	}
}
