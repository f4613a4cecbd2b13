package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration. YAML values are
// overridden by CODEGENIUS_* environment variables.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Storage struct {
		DBPath   string `yaml:"db_path"`
		CloneDir string `yaml:"clone_dir"`
		OutDir   string `yaml:"out_dir"`
	} `yaml:"storage"`
	Analysis struct {
		Workers     int      `yaml:"workers"`
		IgnoreGlobs []string `yaml:"ignore_globs"`
	} `yaml:"analysis"`
	AI struct {
		Provider string `yaml:"provider"` // "gemini" or "truncate"
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"ai"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.Storage.DBPath = "codegenius.db"
	cfg.Storage.CloneDir = ""
	cfg.Storage.OutDir = "docs_output"
	cfg.Analysis.Workers = 1
	cfg.AI.Provider = "truncate"
	return &cfg
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	}

	if addr := os.Getenv("CODEGENIUS_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dbPath := os.Getenv("CODEGENIUS_DB_PATH"); dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if cloneDir := os.Getenv("CODEGENIUS_CLONE_DIR"); cloneDir != "" {
		cfg.Storage.CloneDir = cloneDir
	}
	if outDir := os.Getenv("CODEGENIUS_OUT_DIR"); outDir != "" {
		cfg.Storage.OutDir = outDir
	}
	if workers := os.Getenv("CODEGENIUS_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			cfg.Analysis.Workers = n
		}
	}
	if provider := os.Getenv("CODEGENIUS_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if model := os.Getenv("CODEGENIUS_AI_MODEL"); model != "" {
		cfg.AI.Model = model
	}
	if apiKey := os.Getenv("CODEGENIUS_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}

	return cfg, nil
}
