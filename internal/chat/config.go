package chat

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

var validate = validator.New()

// Config is read from CHAT_* environment variables; the server entrypoint
// may override individual fields from flags.
type Config struct {
	Addr          string `envconfig:"ADDR" default:":12345" validate:"required"`
	MetricsAddr   string `envconfig:"METRICS_ADDR" default:":9090" validate:"required"`
	HistoryFile   string `envconfig:"HISTORY_FILE" default:"chat_history.txt" validate:"required"`
	QueueCapacity int    `envconfig:"QUEUE_CAPACITY" default:"1000" validate:"gt=0"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("chat", &cfg); err != nil {
		return cfg, fmt.Errorf("read env: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
