package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		// Port the API listens on
		Port string `env:"SERVER_PORT" envDefault:"5250"`

		// Path to the SQLite database file
		DatabasePath string `env:"DATABASE_PATH" envDefault:"database/compstone.db"`

		// Optional comps CSV to import on startup
		CompsCSV string `env:"COMPS_CSV" envDefault:""`
	}

	// Valuation defaults
	Valuation struct {
		// Annual appreciation rate as a percentage (5 means 5%)
		AppreciationRatePercent float64 `env:"APPRECIATION_RATE" envDefault:"5"`
	}

	// BatchProcessing configuration for the comp ingestion pipeline
	BatchProcessing struct {
		// Maximum number of comps to accumulate before processing
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AppreciationRate returns the configured rate as a decimal.
func (c *Config) AppreciationRate() float64 {
	return c.Valuation.AppreciationRatePercent / 100
}
