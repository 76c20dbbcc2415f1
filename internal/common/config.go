package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/cardscan/constants"
)

// Config holds all application configuration
type Config struct {
	Input      InputConfig
	OCR        OCRConfig
	LLM        LLMConfig
	Credential CredentialConfig
	Journal    JournalConfig
	Watch      WatchConfig
}

// InputConfig holds the folder to scan and the output destination
type InputConfig struct {
	Dir    string
	Output string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine        string // "tesseract" | "gosseract"
	Tesseract     string
	Lang          string
	TessdataDir   string
	HeicConverter string
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
	Strict    bool
}

// CredentialConfig holds the location of the stored API key
type CredentialConfig struct {
	KeyFile string
}

// JournalConfig holds the result journal connection; empty DSN disables it
type JournalConfig struct {
	Driver string // "sqlite" | "pgx"
	DSN    string
}

// WatchConfig holds folder watcher configuration
type WatchConfig struct {
	Debounce    time.Duration
	InitialScan bool
}

type rawConfig struct {
	Input struct {
		Dir    string `yaml:"dir"`
		Output string `yaml:"output"`
	} `yaml:"input"`
	OCR struct {
		Engine        string `yaml:"engine"`
		Tesseract     string `yaml:"tesseract"`
		Lang          string `yaml:"lang"`
		TessdataDir   string `yaml:"tessdata_dir"`
		HeicConverter string `yaml:"heic_converter"`
	} `yaml:"ocr"`
	LLM struct {
		Model     string `yaml:"model"`
		APIKey    string `yaml:"api_key"`
		BaseURL   string `yaml:"base_url"`
		MaxTokens int    `yaml:"max_tokens"`
		Timeout   string `yaml:"timeout"`
		Strict    *bool  `yaml:"strict"`
	} `yaml:"llm"`
	Credential struct {
		KeyFile string `yaml:"key_file"`
	} `yaml:"credential"`
	Journal struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"journal"`
	Watch struct {
		Debounce    string `yaml:"debounce"`
		InitialScan *bool  `yaml:"initial_scan"`
	} `yaml:"watch"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Output: constants.DefaultOutputFile,
		},
		OCR: OCRConfig{
			Engine:        "tesseract",
			Tesseract:     "tesseract",
			Lang:          "eng",
			HeicConverter: "magick",
		},
		LLM: LLMConfig{
			Model:     constants.DefaultModel,
			BaseURL:   "https://api.openai.com/v1",
			MaxTokens: constants.DefaultMaxTokens,
			Timeout:   45 * time.Second,
		},
		Credential: CredentialConfig{
			KeyFile: defaultKeyFile(),
		},
		Journal: JournalConfig{
			Driver: "sqlite",
		},
		Watch: WatchConfig{
			Debounce:    750 * time.Millisecond,
			InitialScan: true,
		},
	}
}

// LoadConfig loads configuration from defaults, an optional YAML file at path,
// a .env file in the working directory and environment variables, in that order.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, NewAppError(CodeConfig, "load .env", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewAppError(CodeConfig, "read config", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &raw); err != nil {
		return NewAppError(CodeConfig, "parse config", err)
	}

	setString(&c.Input.Dir, raw.Input.Dir)
	setString(&c.Input.Output, raw.Input.Output)
	setString(&c.OCR.Engine, raw.OCR.Engine)
	setString(&c.OCR.Tesseract, raw.OCR.Tesseract)
	setString(&c.OCR.Lang, raw.OCR.Lang)
	setString(&c.OCR.TessdataDir, raw.OCR.TessdataDir)
	setString(&c.OCR.HeicConverter, raw.OCR.HeicConverter)
	setString(&c.LLM.Model, raw.LLM.Model)
	setString(&c.LLM.APIKey, raw.LLM.APIKey)
	setString(&c.LLM.BaseURL, raw.LLM.BaseURL)
	if raw.LLM.MaxTokens != 0 {
		c.LLM.MaxTokens = raw.LLM.MaxTokens
	}
	if raw.LLM.Timeout != "" {
		d, err := time.ParseDuration(raw.LLM.Timeout)
		if err != nil {
			return NewAppError(CodeConfig, fmt.Sprintf("parse llm.timeout %q", raw.LLM.Timeout), err)
		}
		c.LLM.Timeout = d
	}
	if raw.LLM.Strict != nil {
		c.LLM.Strict = *raw.LLM.Strict
	}
	setString(&c.Credential.KeyFile, raw.Credential.KeyFile)
	setString(&c.Journal.Driver, raw.Journal.Driver)
	setString(&c.Journal.DSN, raw.Journal.DSN)
	if raw.Watch.Debounce != "" {
		d, err := time.ParseDuration(raw.Watch.Debounce)
		if err != nil {
			return NewAppError(CodeConfig, fmt.Sprintf("parse watch.debounce %q", raw.Watch.Debounce), err)
		}
		c.Watch.Debounce = d
	}
	if raw.Watch.InitialScan != nil {
		c.Watch.InitialScan = *raw.Watch.InitialScan
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Input.Dir = getEnv("CARDSCAN_DIR", c.Input.Dir)
	c.Input.Output = getEnv("CARDSCAN_OUTPUT", c.Input.Output)
	c.OCR.Engine = getEnv("OCR_ENGINE", c.OCR.Engine)
	c.OCR.Tesseract = getEnv("TESSERACT", c.OCR.Tesseract)
	c.OCR.Lang = getEnv("TESSERACT_LANG", c.OCR.Lang)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.HeicConverter = getEnv("HEIC_CONVERTER", c.OCR.HeicConverter)
	c.LLM.Model = getEnv("OPENAI_MODEL", c.LLM.Model)
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.BaseURL)
	c.LLM.MaxTokens = getEnvAsInt("OPENAI_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.Timeout = getEnvAsDuration("OPENAI_TIMEOUT", c.LLM.Timeout)
	c.LLM.Strict = getEnvAsBool("OPENAI_STRICT", c.LLM.Strict)
	c.Credential.KeyFile = getEnv("CARDSCAN_KEY_FILE", c.Credential.KeyFile)
	c.Journal.Driver = getEnv("CARDSCAN_JOURNAL_DRIVER", c.Journal.Driver)
	c.Journal.DSN = getEnv("CARDSCAN_JOURNAL_DSN", c.Journal.DSN)
	c.Watch.Debounce = getEnvAsDuration("CARDSCAN_WATCH_DEBOUNCE", c.Watch.Debounce)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func defaultKeyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return constants.DefaultKeyFile
	}
	return filepath.Join(home, constants.DefaultKeyFile)
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.OCR.Engine {
	case "tesseract", "gosseract":
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("ocr.engine must be tesseract or gosseract, got %q", c.OCR.Engine), ErrInvalidInput)
	}
	switch c.OCR.HeicConverter {
	case "magick", "heif-convert", "sips":
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("ocr.heic_converter must be one of magick | heif-convert | sips, got %q", c.OCR.HeicConverter), ErrInvalidInput)
	}
	if c.LLM.Model == "" {
		return NewAppError(CodeConfig, "llm.model is required", ErrInvalidInput)
	}
	if c.LLM.MaxTokens <= 0 {
		return NewAppError(CodeConfig, fmt.Sprintf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens), ErrInvalidInput)
	}
	if c.LLM.Timeout <= 0 {
		return NewAppError(CodeConfig, fmt.Sprintf("llm.timeout must be positive, got %v", c.LLM.Timeout), ErrInvalidInput)
	}
	if c.Credential.KeyFile == "" {
		return NewAppError(CodeConfig, "credential.key_file is required", ErrInvalidInput)
	}
	if c.Journal.DSN != "" && c.Journal.Driver != "sqlite" && c.Journal.Driver != "pgx" {
		return NewAppError(CodeConfig, fmt.Sprintf("journal.driver must be sqlite or pgx, got %q", c.Journal.Driver), ErrInvalidInput)
	}
	if c.Input.Output == "" {
		return NewAppError(CodeConfig, "input.output is required", ErrInvalidInput)
	}
	return nil
}
