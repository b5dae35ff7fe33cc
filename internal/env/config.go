package env

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the harness's own configuration, unmarshaled by viper. It
// mirrors the shape of the teacher's pkg/config.Config (nested sections,
// mapstructure tags) scaled down to what cmd/calimero-harness actually
// needs: an inspector address, a health address and a log level, rather than a full node
// config.
type Config struct {
	Harness struct {
		InspectorAddr string `mapstructure:"inspector_addr"`
		HealthAddr    string `mapstructure:"health_addr"`
	} `mapstructure:"harness"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

// Load reads ".env" (if present, via godotenv) into the process environment,
// then builds a Config from environment variables prefixed CALIMERO_,
// falling back to the defaults below when unset.
func Load() (*Config, error) {
	_ = godotenv.Load() // a missing .env file is not an error

	viper.SetEnvPrefix("calimero")
	viper.AutomaticEnv()

	viper.SetDefault("harness.inspector_addr", OrDefault("CALIMERO_INSPECTOR_ADDR", ":8080"))
	viper.SetDefault("harness.health_addr", OrDefault("CALIMERO_HEALTH_ADDR", ":8081"))
	viper.SetDefault("logging.level", OrDefault("CALIMERO_LOG_LEVEL", "info"))

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, Wrap(err, "unmarshal harness config")
	}
	return &cfg, nil
}
