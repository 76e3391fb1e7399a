// Package util holds small shared helpers: configuration loading.
package util

import (
	"fmt"

	"github.com/spf13/viper"
)

// ReadConfig loads the optional server configuration file (data/config.yaml)
// and installs defaults for every key the server reads. A missing file is
// not an error; explicit settings only override the defaults.
func ReadConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.AddConfigPath(".")

	viper.SetDefault("API_PORT", 8080)
	viper.SetDefault("SOLVER_COMMAND", []string{"arc-solver"})
	viper.SetDefault("SOLVER_TIMEOUT", "120s")
	viper.SetDefault("MAX_CONCURRENT", 4)
	viper.SetDefault("CORS_ORIGIN", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
