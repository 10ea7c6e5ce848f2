package notifydraftready

import "time"

type Config struct {
	Timeout       time.Duration
	TopicARN      string
	FromEmail     string
	ReviewURLBase string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
