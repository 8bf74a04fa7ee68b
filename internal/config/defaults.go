package config

func Default() *Config {
	return &Config{
		Inputs: InputsConfig{
			A: SourceConfig{Format: "smiles"},
			B: SourceConfig{Format: "smiles"},
		},
		Features: []string{
			"tanimoto",
			"atom_count_diff",
			"bond_count_diff",
			"ring_closure_diff",
			"length_diff",
		},
		Scheduler: SchedulerConfig{
			Workers: 0, // one per CPU core
		},
		Histogram: HistogramConfig{
			Bins: 10,
		},
		Output: OutputConfig{
			Path:         "molcmp_dataset.json",
			StripRecords: false,
		},
		Server: ServerConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8311,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 50,
				Burst:             100,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
