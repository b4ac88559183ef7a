package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/sillsdev/liftbridge/core/errors"
)

// DefaultPath is read when no path is given and LIFTBRIDGE_CONFIG is unset.
const DefaultPath = "./liftbridge.yaml"

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The file is path, else LIFTBRIDGE_CONFIG, else DefaultPath. A missing
// file is an error only when it was named explicitly.
func Load(path string) (*Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = os.Getenv("LIFTBRIDGE_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
	} else if explicit {
		return nil, errors.Wrapf(err, "config: file %s", path)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: read env")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config: validate")
	}
	return &cfg, nil
}
