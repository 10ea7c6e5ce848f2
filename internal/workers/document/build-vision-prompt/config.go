package buildvisionprompt

import "time"

type Config struct {
	Timeout     time.Duration
	Model       string
	MaxTokens   int
	Temperature float64
	ImageDetail string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     5 * time.Second,
		Model:       "gpt-4o",
		MaxTokens:   4000,
		Temperature: 0.7,
		ImageDetail: "high",
	}
}
