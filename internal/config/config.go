package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	RunModeHTTP   = "http"
	RunModeLambda = "lambda"

	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

type Config struct {
	Port            string        `yaml:"port" env:"PORT" env-default:"3000"`
	RunMode         string        `yaml:"run_mode" env:"RUN_MODE" env-default:"http"`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	StaticDir       string        `yaml:"static_dir" env:"STATIC_DIR"`
	CORSOrigin      string        `yaml:"cors_origin" env:"CORS_ORIGIN" env-default:"*"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	WordList struct {
		Path     string `yaml:"path" env:"WORDLIST_PATH" env-default:"validation/english.txt"`
		Validate bool   `yaml:"validate" env:"VALIDATE_WORDS" env-default:"true"`
	} `yaml:"wordlist"`

	// RequireCredentials turns a missing image credential into a startup failure instead of a
	// per-request one.
	RequireCredentials bool `yaml:"require_credentials_at_startup" env:"REQUIRE_CREDENTIALS_AT_STARTUP" env-default:"false"`

	Text struct {
		Provider  string `yaml:"provider" env:"TEXT_PROVIDER" env-default:"anthropic"`
		MaxTokens int    `yaml:"max_tokens" env:"MAX_TOKENS" env-default:"1024"`
	} `yaml:"text"`

	Anthropic struct {
		Key      string `yaml:"api_key" env:"ANTHROPIC_API_KEY"`
		KeyParam string `yaml:"api_key_param" env:"ANTHROPIC_API_KEY_PARAM"`
		Model    string `yaml:"model" env:"ANTHROPIC_MODEL" env-default:"claude-opus-4-20250514"`
		BaseURL  string `yaml:"base_url" env:"ANTHROPIC_BASE_URL"`
	} `yaml:"anthropic"`

	Gemini struct {
		Key       string `yaml:"api_key" env:"GEMINI_API_KEY"`
		KeyParam  string `yaml:"api_key_param" env:"GEMINI_API_KEY_PARAM"`
		TextModel string `yaml:"text_model" env:"GEMINI_TEXT_MODEL" env-default:"gemini-2.5-flash"`
		BaseURL   string `yaml:"base_url" env:"GEMINI_BASE_URL"`
	} `yaml:"gemini"`

	Imagen struct {
		Model   string `yaml:"model" env:"IMAGEN_MODEL" env-default:"imagen-3.0-generate-002"`
		BaseURL string `yaml:"base_url" env:"IMAGEN_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta"`
	} `yaml:"imagen"`
}

// Load reads an optional .env file into the process environment, then fills a Config from the
// YAML file at path (when non-empty) and the environment. Environment values win over the file.
func Load(path, dotenv string) (*Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", dotenv, err)
		}
	}

	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(&cfg, nil)
		return nil, fmt.Errorf("config: %w; %s", err, desc)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad(path, dotenv string) *Config {
	cfg, err := Load(path, dotenv)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.RunMode {
	case RunModeHTTP, RunModeLambda:
	default:
		return fmt.Errorf("config: unknown run mode %q", c.RunMode)
	}
	switch c.Text.Provider {
	case ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("config: unknown text provider %q", c.Text.Provider)
	}
	if c.Text.MaxTokens <= 0 {
		return fmt.Errorf("config: max tokens must be positive, got %d", c.Text.MaxTokens)
	}
	if c.WordList.Path == "" {
		return errors.New("config: word list path is empty")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
