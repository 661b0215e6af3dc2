package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".contentcrawler"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file shape. Every field is optional;
// unset fields leave the corresponding Config value untouched.
type File struct {
	// Model overrides the chat model name.
	Model string `yaml:"model"`

	// MaxContent overrides the accepted-content target.
	MaxContent int `yaml:"max_content"`

	// MaxPages overrides the page budget.
	MaxPages int `yaml:"max_pages"`

	// MaxPerDomain overrides the per-domain ceiling.
	MaxPerDomain int `yaml:"max_per_domain"`

	// SimilarityThreshold overrides the near-duplicate cutoff.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`

	// OpenAIAPIKey sets the generative API key. The environment
	// variable takes precedence.
	OpenAIAPIKey string `yaml:"openai_api_key"`

	// GoogleAPIKey sets the search API key. The environment variable
	// takes precedence.
	GoogleAPIKey string `yaml:"google_api_key"`

	// GoogleCSEID sets the search engine ID. The environment variable
	// takes precedence.
	GoogleCSEID string `yaml:"google_cse_id"`
}

// LoadConfigFile loads crawl settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .contentcrawler in the current directory
// 3. Look for .contentcrawler in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// ApplyFile merges file values into the config. Only set fields override.
func (c *Config) ApplyFile(cf *File) {
	if cf == nil {
		return
	}
	if cf.Model != "" {
		c.LLMModel = cf.Model
	}
	if cf.MaxContent > 0 {
		c.MaxContent = cf.MaxContent
	}
	if cf.MaxPages > 0 {
		c.MaxPages = cf.MaxPages
	}
	if cf.MaxPerDomain > 0 {
		c.MaxPerDomain = cf.MaxPerDomain
	}
	if cf.SimilarityThreshold > 0 {
		c.SimilarityThreshold = cf.SimilarityThreshold
	}
	if cf.OpenAIAPIKey != "" {
		c.OpenAIAPIKey = cf.OpenAIAPIKey
	}
	if cf.GoogleAPIKey != "" {
		c.GoogleAPIKey = cf.GoogleAPIKey
	}
	if cf.GoogleCSEID != "" {
		c.GoogleCSEID = cf.GoogleCSEID
	}
}

// ApplyEnv reads API credentials from the environment. Environment
// variables beat config file values, so this runs after ApplyFile.
func (c *Config) ApplyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.OpenAIAPIKey = key
	}
	if key := os.Getenv("GOOGLE_CSE_API_KEY"); key != "" {
		c.GoogleAPIKey = key
	}
	if id := os.Getenv("GOOGLE_CSE_ID"); id != "" {
		c.GoogleCSEID = id
	}
}
