package provider

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/* Loader manages provider configuration from providers.yaml
 * Provides in-memory lookup for fast access on the request path
 */

// File represents the structure of providers.yaml
type File struct {
	Providers []ConfigEntry `yaml:"providers"`
}

// ConfigEntry represents a single provider in the YAML file
type ConfigEntry struct {
	Name            string `yaml:"name"`
	SigningSecret   string `yaml:"signing_secret"`
	SignatureField  string `yaml:"signature_field"`
	SignatureHeader string `yaml:"signature_header"`
	WebhookURL      string `yaml:"webhook_url"`
}

// Loader holds the loaded provider configurations
type Loader struct {
	configs map[Provider]*Config
}

// NewLoader creates a new provider loader
func NewLoader() *Loader {
	return &Loader{
		configs: make(map[Provider]*Config),
	}
}

// Load reads and parses the providers.yaml file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading providers file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing providers YAML: %w", err)
	}

	for _, entry := range file.Providers {
		p := New(entry.Name)

		// Defaults match what the providers actually send
		signatureField := entry.SignatureField
		if signatureField == "" {
			signatureField = "signature"
		}
		signatureHeader := entry.SignatureHeader
		if signatureHeader == "" && p == LeadPoint {
			signatureHeader = "X-Leadpoint-Signature"
		}

		cfg := &Config{
			Provider:        p,
			SigningSecret:   entry.SigningSecret,
			SignatureField:  signatureField,
			SignatureHeader: signatureHeader,
			WebhookURL:      entry.WebhookURL,
		}

		if err := l.Add(cfg); err != nil {
			return fmt.Errorf("validating provider %q: %w", entry.Name, err)
		}
	}

	return nil
}

// Add registers a single provider configuration after validating it
func (l *Loader) Add(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	l.configs[cfg.Provider] = cfg
	return nil
}

// Get retrieves a provider configuration by provider
func (l *Loader) Get(p Provider) (*Config, error) {
	cfg, exists := l.configs[p]
	if !exists {
		return nil, fmt.Errorf("provider not configured: %s", p)
	}
	return cfg, nil
}

// List returns all loaded provider configurations
func (l *Loader) List() []*Config {
	configs := make([]*Config, 0, len(l.configs))
	for _, cfg := range l.configs {
		configs = append(configs, cfg)
	}
	return configs
}

// Exists checks if a provider has configuration loaded
func (l *Loader) Exists(p Provider) bool {
	_, exists := l.configs[p]
	return exists
}
