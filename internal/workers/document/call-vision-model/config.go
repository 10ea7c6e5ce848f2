package callvisionmodel

import "time"

type Config struct {
	Timeout        time.Duration
	BaseURL        string
	APIKey         string
	MaxRetries     int
	RequestTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        120 * time.Second,
		BaseURL:        "https://api.openai.com/v1/",
		MaxRetries:     2,
		RequestTimeout: 90 * time.Second,
	}
}
