// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/BurntSushi/toml"
)

// EnvConfigJSON is the environment variable holding a JSON configuration
// overlay applied on top of the TOML file.
const EnvConfigJSON = "REALTOR_HUB_CONFIG_JSON"

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to merge config from env")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings and fill defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Server.Port == 0 {
		return errors.Wrap(ErrServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Server.ShutDownTime == 0 {
		c.Server.ShutDownTime = 5 // seconds
	}

	if c.Session.DefaultTimeoutMinutes == 0 {
		c.Session.DefaultTimeoutMinutes = 480
	}

	if c.Session.DefaultTimeoutMinutes < MinSessionTimeoutMinutes ||
		c.Session.DefaultTimeoutMinutes > MaxSessionTimeoutMinutes {
		return errors.Wrap(ErrSessionTimeoutOutOfRange, invalidErrMessage)
	}

	if c.Audit.RetentionDays == 0 {
		c.Audit.RetentionDays = 90
	}

	if c.Audit.CleanupBatchSize == 0 {
		c.Audit.CleanupBatchSize = 1000
	}

	if c.Audit.OutboxSize == 0 {
		c.Audit.OutboxSize = 1024
	}

	return nil
}
