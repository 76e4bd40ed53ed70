package config

import (
	"time"

	"github.com/openrpa/botkit/internal/infra/mail"
	redisqueue "github.com/openrpa/botkit/internal/infra/queue/redis"
	"github.com/openrpa/botkit/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig      `yaml:"server"`
	Logging  LoggingConfig     `yaml:"logging"`
	Redis    redisqueue.Config `yaml:"redis"`
	Database postgres.Config   `yaml:"database"`
	Mail     mail.Config       `yaml:"mail"`
	Scratch  ScratchConfig     `yaml:"scratch"`
	Producer ProducerConfig    `yaml:"producer"`
	Consumer ConsumerConfig    `yaml:"consumer"`
	Reporter ReporterConfig    `yaml:"reporter"`

	// TestMode redirects side-effecting actions to a non-delivering path
	// (e-mails are written as drafts instead of sent). Defaults to true:
	// a bot must be explicitly configured to touch the outside world.
	TestMode bool `yaml:"test_mode"`

	// Streams name the work-item streams on the queue.
	Streams StreamsConfig `yaml:"streams"`
}

// ServerConfig holds the metrics endpoint settings. Port 0 disables it.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// StreamsConfig names the queue streams used by the roles.
type StreamsConfig struct {
	Items   string `yaml:"items"`   // producer -> consumer
	Reports string `yaml:"reports"` // consumer -> reporter
}

// ScratchConfig holds the per-run scratch directory settings.
type ScratchConfig struct {
	Dir       string        `yaml:"dir"`
	Retention time.Duration `yaml:"retention"` // 0 = keep forever
}

// ProducerConfig holds settings for the producer role.
type ProducerConfig struct {
	// MaxWorkItems bounds producer output. 0 = unbounded.
	MaxWorkItems int `yaml:"max_work_items"`

	// FromDatabase switches the producer from stub payloads to reading
	// candidate clients from Postgres.
	FromDatabase bool `yaml:"from_database"`
}

// ConsumerConfig holds settings for the consumer role.
type ConsumerConfig struct {
	// TrackBilling increments the client's billing-period counter after
	// each successfully processed item.
	TrackBilling bool `yaml:"track_billing"`
}

// ReporterConfig holds settings for the reporter role.
type ReporterConfig struct {
	Recipients []string `yaml:"recipients"`
	Salutation string   `yaml:"salutation"`
	Contact    string   `yaml:"contact"`

	TemplateDir  string `yaml:"template_dir"`
	TemplateFile string `yaml:"template_file"`

	// Codes maps a business error code to the human-readable message
	// rendered into the report.
	Codes map[string]string `yaml:"codes"`
}
