package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         int      `yaml:"port"`
		AllowOrigins []string `yaml:"allowOrigins"`
	} `yaml:"server"`

	OCR struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
		MaxUploadBytes int64  `yaml:"maxUploadBytes"`
	} `yaml:"ocr"`

	Gemini struct {
		ApiKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`

	Cognito struct {
		AppClientId     string `yaml:"appClientId"`
		AppClientSecret string `yaml:"appClientSecret"`
		Region          string `yaml:"region"`
	} `yaml:"cognito"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	RateLimit struct {
		MaxUploads    int `yaml:"maxUploads"`
		WindowSeconds int `yaml:"windowSeconds"`
	} `yaml:"rateLimit"`

	JWT struct {
		Secret string `yaml:"secret"`
		Expiry int    `yaml:"expiry"` // Token expiry in minutes
	} `yaml:"jwt"`
}

// LoadConfig reads the configuration file, then applies environment overrides and defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration built only from defaults and the environment.
func Default() (*Config, error) {
	var cfg Config
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("OCR_SERVICE_URL"); v != "" {
		c.OCR.URL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.ApiKey = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.Database.URI = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:5173"}
	}
	if c.OCR.URL == "" {
		c.OCR.URL = "http://127.0.0.1:8000/ocr"
	}
	if c.OCR.TimeoutSeconds <= 0 {
		c.OCR.TimeoutSeconds = 60
	}
	if c.OCR.MaxUploadBytes <= 0 {
		c.OCR.MaxUploadBytes = 10 << 20
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.RateLimit.MaxUploads <= 0 {
		c.RateLimit.MaxUploads = 10
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.JWT.Expiry <= 0 {
		c.JWT.Expiry = 24 * 60
	}
}

// OCRTimeout is the upstream OCR call timeout.
func (c *Config) OCRTimeout() time.Duration {
	return time.Duration(c.OCR.TimeoutSeconds) * time.Second
}

// SessionTTL is how long a login stays valid.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.JWT.Expiry) * time.Minute
}

// RateLimitWindow is the upload counter window.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}
