package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config represents the structure of the configuration file
type Config struct {
	Version     string `mapstructure:"version"`
	OutputFile  string `mapstructure:"output_file"`
	Theme       string `mapstructure:"theme"`
	EnableCache bool   `mapstructure:"enable_cache"`
	CacheDir    string `mapstructure:"cache_dir"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:     "1.0.0",
	OutputFile:  "temp.codebase.md",
	Theme:       "dracula",
	EnableCache: false,
	CacheDir:    "",
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		// Look for codemd-config.{yml,yaml,json} in the working directory; missing is fine
		v.SetConfigName("codemd-config")
		v.AddConfigPath(cwd)
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	bindFlags(v, rootCmd)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if config.CacheDir == "" {
		config.CacheDir = filepath.Join(cwd, ".cache")
	}

	return &config, nil
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("output_file", DefaultConfig.OutputFile)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("enable_cache", DefaultConfig.EnableCache)
	v.SetDefault("cache_dir", DefaultConfig.CacheDir)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("output_file", "OUTPUT_FILE")
	_ = v.BindEnv("theme", "THEME")
	_ = v.BindEnv("enable_cache", "ENABLE_CACHE")
	_ = v.BindEnv("cache_dir", "CACHE_DIR")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) {
	_ = v.BindPFlag("output_file", rootCmd.PersistentFlags().Lookup("output"))
	_ = v.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = v.BindPFlag("enable_cache", rootCmd.PersistentFlags().Lookup("enable_cache"))
	_ = v.BindPFlag("cache_dir", rootCmd.PersistentFlags().Lookup("cache_dir"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML).")

	rootCmd.PersistentFlags().StringP("output", "o", DefaultConfig.OutputFile, "Path of the generated markdown file. Overwritten if it exists.")
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Set the highlighting theme used by 'show'. (e.g., 'dracula', 'monokai', 'github')")
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig.EnableCache, "Keep a snapshot of each run to report changed files on the next run")
	rootCmd.PersistentFlags().String("cache_dir", DefaultConfig.CacheDir, "Directory for snapshot cache files (default: .cache in the working directory)")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}
