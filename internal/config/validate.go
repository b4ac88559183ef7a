package config

import (
	"strings"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/internal/bundle"
	"github.com/sillsdev/liftbridge/internal/merge"
)

// Validate checks the configuration for values no command can use.
func (c *Config) Validate() error {
	if _, err := merge.ParsePolicy(c.Merge.Policy); err != nil {
		return err
	}
	if c.Merge.MaxTextLength < 0 {
		return errors.NewValidation("merge.max_text_length", "must not be negative")
	}
	if c.Merge.MaxAbbrevLength < 0 {
		return errors.NewValidation("merge.max_abbrev_length", "must not be negative")
	}
	if _, err := bundle.ParseCompression(c.Export.Compression); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewValidation("log.level", "unknown level "+c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return errors.NewValidation("log.format", "unknown format "+c.Log.Format)
	}
	return nil
}
