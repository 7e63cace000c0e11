package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// PricingDefaultsFile points at a JSON file holding default PricingInputs
	PricingDefaultsFile string `env:"PRICING_DEFAULTS_FILE" envDefault:"config/pricing_defaults.json"`

	Server struct {
		Port        string   `env:"PORT" envDefault:"5250"`
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	}

	Database struct {
		// Driver is either "postgres" or "sqlite"
		Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
		DSN    string `env:"DB_DSN" envDefault:"database/salesdesk.db"`
	}

	Sheets struct {
		SpreadsheetID     string `env:"SHEETS_SPREADSHEET_ID"`
		CredentialsFile   string `env:"SHEETS_CREDENTIALS_FILE"`
		AvailabilityRange string `env:"SHEETS_AVAILABILITY_RANGE" envDefault:"Availability!A:Z"`
		LogRange          string `env:"SHEETS_LOG_RANGE" envDefault:"ProcessLog!A:C"`

		// Endpoint overrides the Sheets API base URL
		Endpoint string `env:"SHEETS_ENDPOINT"`
	}

	Aggregation struct {
		// Timeout for the whole fan-out of upstream reads (in seconds)
		Timeout int `env:"AGGREGATION_TIMEOUT" envDefault:"20"`
	}

	Monitor struct {
		Enabled  bool   `env:"SYNC_MONITOR_ENABLED" envDefault:"true"`
		Schedule string `env:"SYNC_MONITOR_SCHEDULE" envDefault:"@every 15m"`
	}
}

// AggregationTimeout returns the upstream read timeout as a duration.
func (c *Config) AggregationTimeout() time.Duration {
	if c.Aggregation.Timeout <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.Aggregation.Timeout) * time.Second
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
