package config

// Config is the full molcmp configuration.
type Config struct {
	Inputs    InputsConfig    `yaml:"inputs"`
	Features  []string        `yaml:"features"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Histogram HistogramConfig `yaml:"histogram"`
	Output    OutputConfig    `yaml:"output"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// InputsConfig names the two record sources.
type InputsConfig struct {
	A SourceConfig `yaml:"a"`
	B SourceConfig `yaml:"b"`
}

// SourceConfig is one record source.
type SourceConfig struct {
	Path string `yaml:"path"`
	// Format is "smiles" (one record per line) or "sdf" (multi-line
	// records terminated by the $$$$ sentinel).
	Format string `yaml:"format"`
}

// SchedulerConfig controls the worker pool.
type SchedulerConfig struct {
	// Workers is the pool size. Zero means one worker per CPU core.
	Workers int `yaml:"workers"`
}

// HistogramConfig holds histogram defaults.
type HistogramConfig struct {
	// Bins is the default bin count applied when a dataset is built.
	Bins int `yaml:"bins"`
}

// OutputConfig controls dataset persistence.
type OutputConfig struct {
	Path string `yaml:"path"`
	// StripRecords drops raw record strings from the saved dataset;
	// histogram counts stay reconstructible, per-bin samples do not.
	StripRecords bool `yaml:"strip_records"`
}

// ServerConfig holds the optional embedded status server.
type ServerConfig struct {
	Enabled   bool            `yaml:"enabled"`
	Host      string          `yaml:"host"`
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig is the token-bucket limit on status requests.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
