// Package config loads liftbridge settings from a YAML file and the
// environment.
package config

import (
	"github.com/sillsdev/liftbridge/internal/export"
	"github.com/sillsdev/liftbridge/internal/merge"
)

// Config is the root configuration.
type Config struct {
	Merge     MergeConfig     `yaml:"merge"`
	Export    ExportConfig    `yaml:"export"`
	Log       LogConfig       `yaml:"log"`
	ImportLog ImportLogConfig `yaml:"import_log"`
	Progress  ProgressConfig  `yaml:"progress"`
}

// MergeConfig holds the merge defaults.
type MergeConfig struct {
	Policy                string `yaml:"policy"                  env:"LIFTBRIDGE_MERGE_POLICY"             env-default:"keep-old"`
	TrustModTimes         bool   `yaml:"trust_mod_times"         env:"LIFTBRIDGE_MERGE_TRUST_MOD_TIMES"    env-default:"false"`
	CaseInsensitiveLabels bool   `yaml:"case_insensitive_labels" env:"LIFTBRIDGE_MERGE_CASE_INSENSITIVE"   env-default:"true"`
	MaxTextLength         int    `yaml:"max_text_length"         env:"LIFTBRIDGE_MERGE_MAX_TEXT_LENGTH"    env-default:"0"`
	MaxAbbrevLength       int    `yaml:"max_abbrev_length"       env:"LIFTBRIDGE_MERGE_MAX_ABBREV_LENGTH"  env-default:"0"`
	AnalysisLocale        string `yaml:"analysis_locale"         env:"LIFTBRIDGE_MERGE_ANALYSIS_LOCALE"    env-default:"en"`
}

// ExportConfig holds the export defaults.
type ExportConfig struct {
	Producer    string `yaml:"producer"    env:"LIFTBRIDGE_EXPORT_PRODUCER"    env-default:"liftbridge"`
	Locale      string `yaml:"locale"      env:"LIFTBRIDGE_EXPORT_LOCALE"      env-default:"en"`
	CopyMedia   bool   `yaml:"copy_media"  env:"LIFTBRIDGE_EXPORT_COPY_MEDIA"  env-default:"true"`
	Compression string `yaml:"compression" env:"LIFTBRIDGE_EXPORT_COMPRESSION" env-default:"xz"`
	MediaRoot   string `yaml:"media_root"  env:"LIFTBRIDGE_EXPORT_MEDIA_ROOT"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LIFTBRIDGE_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LIFTBRIDGE_LOG_FORMAT" env-default:"text"`
}

// ImportLogConfig locates the import log database. An empty path disables
// the log.
type ImportLogConfig struct {
	Path string `yaml:"path" env:"LIFTBRIDGE_IMPORT_LOG"`
}

// ProgressConfig holds the live progress listener. An empty address
// disables it.
type ProgressConfig struct {
	Addr string `yaml:"addr" env:"LIFTBRIDGE_PROGRESS_ADDR"`
}

// MergeOptions converts the merge section. The policy must have passed
// Validate.
func (c *Config) MergeOptions() merge.Options {
	o := merge.DefaultOptions()
	if p, err := merge.ParsePolicy(c.Merge.Policy); err == nil {
		o.Policy = p
	}
	o.TrustModTimes = c.Merge.TrustModTimes
	o.CaseInsensitiveLabels = c.Merge.CaseInsensitiveLabels
	o.MaxTextLength = c.Merge.MaxTextLength
	o.MaxAbbrevLength = c.Merge.MaxAbbrevLength
	if c.Merge.AnalysisLocale != "" {
		o.AnalysisLocale = c.Merge.AnalysisLocale
	}
	return o
}

// ExportOptions converts the export section.
func (c *Config) ExportOptions() export.Options {
	return export.Options{
		Producer:  c.Export.Producer,
		Locale:    c.Export.Locale,
		CopyMedia: c.Export.CopyMedia,
		MediaRoot: c.Export.MediaRoot,
	}
}
