// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/nguvan-tui/internal/persona"
	"github.com/jeranaias/nguvan-tui/internal/util"
)

// Provider names accepted in [provider].name.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderMock       = "mock"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete nguvan configuration.
type Config struct {
	Provider   ProviderConfig   `toml:"provider"`
	Gemini     GeminiConfig     `toml:"gemini"`
	OpenRouter OpenRouterConfig `toml:"openrouter"`
	Ollama     OllamaConfig     `toml:"ollama"`
	Persona    PersonaConfig    `toml:"persona"`
	UI         UIConfig         `toml:"ui"`
	Log        LogConfig        `toml:"log"`
}

// ProviderConfig selects the completion backend.
type ProviderConfig struct {
	// Name is one of: gemini, openrouter, ollama, mock
	Name string `toml:"name"`
	// Model overrides the backend's model; short names from the registry are accepted
	Model string `toml:"model"`
}

// GeminiConfig configures the Gemini API backend.
type GeminiConfig struct {
	// APIKeyEnv names the environment variable holding the key
	APIKeyEnv string `toml:"api_key_env"`
	// FallbackKeyEnv is consulted when APIKeyEnv is unset
	FallbackKeyEnv string `toml:"fallback_key_env"`
	Model          string `toml:"model"`
}

// OpenRouterConfig configures the OpenRouter backend.
type OpenRouterConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKeyEnv string `toml:"api_key_env"`
	Model     string `toml:"model"`
	// SiteURL and SiteName are sent as HTTP-Referer and X-Title
	SiteURL  string `toml:"site_url"`
	SiteName string `toml:"site_name"`
}

// OllamaConfig configures the local Ollama backend.
type OllamaConfig struct {
	URL   string `toml:"url"`
	Model string `toml:"model"`
}

// PersonaConfig overrides individual persona texts. Empty fields keep the
// built-in literature assistant.
type PersonaConfig struct {
	Title             string `toml:"title"`
	Greeting          string `toml:"greeting"`
	Apology           string `toml:"apology"`
	SystemInstruction string `toml:"system_instruction"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// Markdown renders model replies with glamour
	Markdown bool `toml:"markdown"`
	// RenderFPS caps how often a streaming reply is re-rendered as Markdown
	RenderFPS int `toml:"render_fps"`
	// KeepPartialOnError keeps streamed text and appends the apology after it
	KeepPartialOnError bool `toml:"keep_partial_on_error"`
	// WordWrap is the Markdown wrap width; 0 follows the terminal
	WordWrap int `toml:"word_wrap"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is one of: debug, info, warn, error
	Level string `toml:"level"`
	// File receives logs while the TUI owns the terminal; empty discards them
	File string `toml:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name: ProviderGemini,
		},
		Gemini: GeminiConfig{
			APIKeyEnv:      "GEMINI_API_KEY",
			FallbackKeyEnv: "API_KEY",
			Model:          persona.DefaultModel,
		},
		OpenRouter: OpenRouterConfig{
			BaseURL:   "https://openrouter.ai/api/v1",
			APIKeyEnv: "OPENROUTER_API_KEY",
			Model:     "google/gemini-2.5-flash",
			SiteURL:   "https://hoclieuso.id.vn",
			SiteName:  "Học Liệu Số",
		},
		Ollama: OllamaConfig{
			URL:   "http://127.0.0.1:11434",
			Model: "qwen2.5:7b",
		},
		UI: UIConfig{
			Theme:     "auto",
			Markdown:  true,
			RenderFPS: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ActiveModel returns the model ID for the selected provider, with registry
// short names resolved by the caller.
func (c *Config) ActiveModel() string {
	if c.Provider.Model != "" {
		return c.Provider.Model
	}
	switch c.Provider.Name {
	case ProviderOpenRouter:
		return c.OpenRouter.Model
	case ProviderOllama:
		return c.Ollama.Model
	default:
		return c.Gemini.Model
	}
}

// ToPersona returns the built-in persona with configured overrides applied.
func (c *Config) ToPersona() persona.Persona {
	return persona.Default().Merge(persona.Persona{
		Title:             c.Persona.Title,
		Greeting:          c.Persona.Greeting,
		Apology:           c.Persona.Apology,
		SystemInstruction: c.Persona.SystemInstruction,
	})
}

// SlogLevel maps Log.Level to a slog level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the nguvan configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".nguvan"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.nguvan/config.toml if it exists, otherwise the defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}
	return finish(Default())
}

// LoadFromPath loads configuration from a specific TOML file. Keys missing
// from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file on top of cfg. Unknown keys are an error.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to ~/.nguvan/config.toml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	data, err := cfg.EncodeTOML()
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EncodeTOML renders the configuration with a header comment.
func (c *Config) EncodeTOML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# nguvan configuration file\n")
	buf.WriteString("# API keys are read from the environment variables named below, never from this file.\n\n")

	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	switch strings.ToLower(c.Provider.Name) {
	case ProviderGemini, ProviderOpenRouter, ProviderOllama, ProviderMock:
	default:
		errs = append(errs, ValidationError{
			Field:   "provider.name",
			Message: fmt.Sprintf("invalid provider '%s', must be one of: gemini, openrouter, ollama, mock", c.Provider.Name),
		})
	}

	if c.Gemini.APIKeyEnv == "" {
		errs = append(errs, ValidationError{Field: "gemini.api_key_env", Message: "must not be empty"})
	}
	if c.OpenRouter.APIKeyEnv == "" {
		errs = append(errs, ValidationError{Field: "openrouter.api_key_env", Message: "must not be empty"})
	}

	for field, raw := range map[string]string{
		"openrouter.base_url": c.OpenRouter.BaseURL,
		"ollama.url":          c.Ollama.URL,
	} {
		if err := validateHTTPURL(raw); err != nil {
			errs = append(errs, ValidationError{Field: field, Message: err.Error()})
		}
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}
	if c.UI.RenderFPS < 1 || c.UI.RenderFPS > 60 {
		errs = append(errs, ValidationError{
			Field:   "ui.render_fps",
			Message: fmt.Sprintf("must be between 1 and 60, got %d", c.UI.RenderFPS),
		})
	}
	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "must not be negative"})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
		return errs
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL must include a host")
	}
	return nil
}

// SetDefaults fills zero-value fields from Default().
func (c *Config) SetDefaults() {
	d := Default()

	if c.Provider.Name == "" {
		c.Provider.Name = d.Provider.Name
	}
	c.Provider.Name = strings.ToLower(c.Provider.Name)

	if c.Gemini.APIKeyEnv == "" {
		c.Gemini.APIKeyEnv = d.Gemini.APIKeyEnv
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = d.Gemini.Model
	}
	if c.OpenRouter.BaseURL == "" {
		c.OpenRouter.BaseURL = d.OpenRouter.BaseURL
	}
	if c.OpenRouter.APIKeyEnv == "" {
		c.OpenRouter.APIKeyEnv = d.OpenRouter.APIKeyEnv
	}
	if c.OpenRouter.Model == "" {
		c.OpenRouter.Model = d.OpenRouter.Model
	}
	if c.Ollama.URL == "" {
		c.Ollama.URL = d.Ollama.URL
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = d.Ollama.Model
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.RenderFPS == 0 {
		c.UI.RenderFPS = d.UI.RenderFPS
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - NGUVAN_PROVIDER: overrides provider.name
//   - NGUVAN_MODEL: overrides provider.model
//   - NGUVAN_OLLAMA_URL: overrides ollama.url
//   - NGUVAN_OPENROUTER_URL: overrides openrouter.base_url
//   - NGUVAN_LOG_LEVEL: overrides log.level
//   - NGUVAN_LOG_FILE: overrides log.file
//   - NGUVAN_MARKDOWN: "0"/"false" disables Markdown rendering
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("NGUVAN_PROVIDER"); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv("NGUVAN_MODEL"); v != "" {
		c.Provider.Model = v
	}
	if v := os.Getenv("NGUVAN_OLLAMA_URL"); v != "" {
		c.Ollama.URL = v
	}
	if v := os.Getenv("NGUVAN_OPENROUTER_URL"); v != "" {
		c.OpenRouter.BaseURL = v
	}
	if v := os.Getenv("NGUVAN_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("NGUVAN_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("NGUVAN_MARKDOWN"); v != "" {
		c.UI.Markdown = v == "1" || strings.EqualFold(v, "true")
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value by its TOML key, e.g. "ui.render_fps".
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value by its TOML key. String values are converted
// to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) == 0 {
		return reflect.Value{}, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTOMLTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByTOMLTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == strings.ToLower(name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns every settable key in dot notation, sorted.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, section.Tag.Get("toml")+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	sort.Strings(keys)
	return keys
}
