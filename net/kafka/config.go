package kafka

// Config of the kafka cluster and the topics consumed by the service
type Config struct {
	UseTLS  bool     `mapstructure:"use_tls"`
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
	Topics  Topics   `mapstructure:"topics"`
	Reader  ReaderConfig
}

type Topics struct {
	Payments string `mapstructure:"payments"`
}

// ReaderConfig tunes the consumer. Durations are in milliseconds.
type ReaderConfig struct {
	QueueCapacity  int `mapstructure:"queue_capacity"`
	MaxWait        int `mapstructure:"max_wait"`
	MinBytes       int `mapstructure:"min_bytes"`
	MaxBytes       int `mapstructure:"max_bytes"`
	ReadBackoffMin int `mapstructure:"read_backoff_min"`
	ReadBackoffMax int `mapstructure:"read_backoff_max"`
}
