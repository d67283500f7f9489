package main

import (
	"github.com/spf13/viper"
)

// Config carries the handful of knobs this app has. Values come from
// defaults, then an optional config file, then environment variables,
// strongest last.
type Config struct {
	Port    int
	Env     string
	Pepper  string
	CSRFKey string
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

func DefaultConfig() Config {
	return Config{
		Port:    3000,
		Env:     "dev",
		Pepper:  "secret-random-string",
		CSRFKey: "32-byte-long-auth-key-goes-here!",
	}
}

// LoadConfig loads the config using Viper. A missing config file is fine
// in dev; in prod the defaults for the secrets must not be used, so the
// file (or env vars) is required.
func LoadConfig(prod bool) Config {
	def := DefaultConfig()
	viper.SetDefault("PORT", def.Port)
	viper.SetDefault("ENV", def.Env)
	viper.SetDefault("PEPPER", def.Pepper)
	viper.SetDefault("CSRF_KEY", def.CSRFKey)

	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if prod && err != nil {
		panic("running in prod without a config file: " + err.Error())
	}

	return Config{
		Port:    viper.GetInt("PORT"),
		Env:     viper.GetString("ENV"),
		Pepper:  viper.GetString("PEPPER"),
		CSRFKey: viper.GetString("CSRF_KEY"),
	}
}
