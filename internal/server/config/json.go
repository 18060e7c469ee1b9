package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/companyhub/internal/flagx"
	"github.com/dmitrijs2005/companyhub/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so they can be written as "15m" or as integer nanoseconds.
// Pointer fields distinguish "absent" from the zero value, so a file that only
// sets a few keys does not wipe the defaults.
type JsonConfig struct {
	HTTPAddr                    *string         `json:"http_addr"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  *int            `json:"bcrypt_cost"`
	LogBackend                  *string         `json:"log_backend"`
	LogLevel                    *string         `json:"log_level"`
	LogFormat                   *string         `json:"log_format"`
	Debug                       *bool           `json:"debug"`
	OTLPEndpoint                *string         `json:"otlp_endpoint"`
	OTLPInsecure                *bool           `json:"otlp_insecure"`
	ShutdownTimeout             *timex.Duration `json:"shutdown_timeout"`
	MaxBodyBytes                *int64          `json:"max_body_bytes"`
}

// parseJson loads the file named by -c/-config (if any) into config.
// A missing or malformed file is a startup error and panics.
func parseJson(config *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setIf(&config.HTTPAddr, c.HTTPAddr)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.BcryptCost, c.BcryptCost)
	setIf(&config.LogBackend, c.LogBackend)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.LogFormat, c.LogFormat)
	setIf(&config.Debug, c.Debug)
	setIf(&config.OTLPEndpoint, c.OTLPEndpoint)
	setIf(&config.OTLPInsecure, c.OTLPInsecure)
	setIf(&config.MaxBodyBytes, c.MaxBodyBytes)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
