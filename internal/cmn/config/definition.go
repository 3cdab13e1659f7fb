package config

// Definition holds the raw application configuration as read by viper.
type Definition struct {
	// Debug enables debug logging.
	Debug bool `mapstructure:"debug"`
	// LogFormat is text or json.
	LogFormat string `mapstructure:"log_format"`
	// LogFile additionally writes logs to this file.
	LogFile string `mapstructure:"log_file"`
	// Quiet suppresses console logging.
	Quiet bool `mapstructure:"quiet"`
	// Tasks is the default number of write tasks per job.
	Tasks int `mapstructure:"tasks"`
	// BaseConfig is a job definition merged beneath every job.
	BaseConfig string `mapstructure:"base_config"`
	// DirtyFile is the JSON lines file receiving dirty records.
	DirtyFile string `mapstructure:"dirty_file"`
	// MetricsTextfile receives metrics in the Prometheus text format.
	MetricsTextfile string `mapstructure:"metrics_textfile"`
}
