// internal/workers/infrastructure/notify-fabrication/config.go
package notifyfabrication

import "time"

const (
	ChannelNone = "none"
	ChannelSNS  = "sns"
	ChannelSES  = "ses"
)

type Config struct {
	Channel    string
	Region     string
	TopicARN   string
	FromEmail  string
	Recipients []string
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Channel: ChannelNone,
		Region:  "ap-northeast-1",
		Timeout: 3 * time.Second,
	}
}
