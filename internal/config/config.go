// Package config loads quill.yml, the project-level settings for the
// pipeline: which executor backend to call, where the cache lives, and how
// each stage behaves.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/quill/internal/cache"
	"github.com/dusk-indust/quill/internal/executor"
	"github.com/dusk-indust/quill/internal/workflow"
)

// Executor providers.
const (
	ProviderTemplate = "template"
	ProviderOpenAI   = "openai"
	ProviderGenAI    = "genai"
	ProviderA2A      = "a2a"
)

// ProjectConfig holds settings loaded from quill.yml.
type ProjectConfig struct {
	SessionID string         `yaml:"sessionId,omitempty"`
	Verbose   bool           `yaml:"verbose,omitempty"`
	Executor  ExecutorConfig `yaml:"executor,omitempty"`
	Cache     CacheConfig    `yaml:"cache,omitempty"`
	Server    ServerConfig   `yaml:"server,omitempty"`

	// Stages maps a stage label to its overrides.
	Stages map[string]StageConfig `yaml:"stages,omitempty"`
}

// ExecutorConfig selects and configures the stage executor.
type ExecutorConfig struct {
	Provider  string `yaml:"provider,omitempty"`
	Model     string `yaml:"model,omitempty"`
	BaseURL   string `yaml:"baseUrl,omitempty"`
	APIKeyEnv string `yaml:"apiKeyEnv,omitempty"`

	// Endpoint is the default A2A agent for stages without their own.
	Endpoint string `yaml:"endpoint,omitempty"`
}

// CacheConfig selects the result cache backend.
type CacheConfig struct {
	Backend string `yaml:"backend,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// ServerConfig configures `quill serve`.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// StageConfig overrides one stage.
type StageConfig struct {
	Policy  string           `yaml:"policy,omitempty"`
	Persona executor.Persona `yaml:"persona,omitempty"`
}

// Load attempts to read quill.yml or quill.yaml from the given directory.
// Returns a zero-value config (not an error) if no config file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"quill.yml", "quill.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", name, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// Defaults fills every unset field with its built-in value.
func (c *ProjectConfig) Defaults() {
	if c.SessionID == "" {
		c.SessionID = cache.DefaultSessionID
	}
	if c.Executor.Provider == "" {
		c.Executor.Provider = ProviderTemplate
	}
	if c.Executor.APIKeyEnv == "" {
		switch c.Executor.Provider {
		case ProviderOpenAI:
			c.Executor.APIKeyEnv = "OPENAI_API_KEY"
		case ProviderGenAI:
			c.Executor.APIKeyEnv = "GEMINI_API_KEY"
		}
	}
	if c.Executor.Model == "" {
		switch c.Executor.Provider {
		case ProviderOpenAI:
			c.Executor.Model = "gpt-4o"
		case ProviderGenAI:
			c.Executor.Model = "gemini-2.5-flash"
		}
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendMemory
	}
	if c.Cache.Path == "" {
		c.Cache.Path = filepath.Join("tmp", "quill.db")
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// Validate rejects unknown providers, backends, stages and policies, and
// degrade policies on stages that have no fallback.
func (c *ProjectConfig) Validate() error {
	var errs []error
	switch c.Executor.Provider {
	case "", ProviderTemplate, ProviderOpenAI, ProviderGenAI, ProviderA2A:
	default:
		errs = append(errs, fmt.Errorf("config: unknown executor provider %q", c.Executor.Provider))
	}
	switch c.Cache.Backend {
	case "", cache.BackendMemory, cache.BackendSQLite, cache.BackendKuzu:
	default:
		errs = append(errs, fmt.Errorf("config: unknown cache backend %q", c.Cache.Backend))
	}
	for name, sc := range c.Stages {
		stage, err := workflow.ParseStage(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: stages: %w", err))
			continue
		}
		if sc.Policy == "" {
			continue
		}
		p, err := workflow.ParsePolicy(sc.Policy)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: stages.%s: %w", name, err))
			continue
		}
		if p == workflow.PolicyDegrade && !workflow.HasFallback(stage) {
			errs = append(errs, fmt.Errorf("config: stages.%s: stage has no fallback and cannot degrade", name))
		}
	}
	return errors.Join(errs...)
}

// APIKey resolves the executor API key from the configured environment
// variable.
func (c *ProjectConfig) APIKey() string {
	if c.Executor.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Executor.APIKeyEnv)
}

// Policies returns the configured stage policies. Call Validate first.
func (c *ProjectConfig) Policies() map[workflow.Stage]workflow.Policy {
	out := make(map[workflow.Stage]workflow.Policy)
	for name, sc := range c.Stages {
		stage, err := workflow.ParseStage(name)
		if err != nil || sc.Policy == "" {
			continue
		}
		if p, err := workflow.ParsePolicy(sc.Policy); err == nil {
			out[stage] = p
		}
	}
	return out
}

// Personas returns the configured persona overrides.
func (c *ProjectConfig) Personas() map[workflow.Stage]executor.Persona {
	out := make(map[workflow.Stage]executor.Persona)
	for name, sc := range c.Stages {
		if stage, err := workflow.ParseStage(name); err == nil {
			out[stage] = sc.Persona
		}
	}
	return out
}

// CacheOptions returns the options for cache.Open.
func (c *ProjectConfig) CacheOptions() cache.Options {
	return cache.Options{Backend: c.Cache.Backend, Path: c.Cache.Path, SessionID: c.SessionID}
}
