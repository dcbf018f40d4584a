// Package config provides the settings of the spacemake-config tool itself using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/paths"
	"github.com/J-81/spacemake/pkg/fileutil"
)

// CurrentVersion is the settings file version this build reads and writes.
const CurrentVersion = 1

// EnvPrefix prefixes the environment variables that override settings.
// Nested keys use underscores: SPACEMAKE_S3_REGION sets s3.region.
const EnvPrefix = "SPACEMAKE"

// Setting keys.
const (
	KeyVersion         = "version"
	KeyOverlays        = "overlays"
	KeyArchivePath     = "archive_path"
	KeyMetricsTextfile = "metrics_textfile"
	KeyS3Region        = "s3.region"
	KeyS3Endpoint      = "s3.endpoint"
	KeyS3PathStyle     = "s3.path_style"
	KeyS3AccessKeyID   = "s3.access_key_id"
	KeyS3SecretKey     = "s3.secret_access_key"
)

// ErrUnknownKey indicates a settings key this build does not know.
var ErrUnknownKey = errors.New("unknown settings key")

// Settings is the top-level settings structure.
type Settings struct {
	Version int `mapstructure:"version" yaml:"version"`
	// Overlays are document locations (paths or s3:// URLs) applied after
	// the built-in defaults, in order.
	Overlays        []string   `mapstructure:"overlays" yaml:"overlays"`
	ArchivePath     string     `mapstructure:"archive_path" yaml:"archive_path"`
	MetricsTextfile string     `mapstructure:"metrics_textfile" yaml:"metrics_textfile,omitempty"`
	S3              S3Settings `mapstructure:"s3" yaml:"s3"`
}

// S3Settings configures reads of s3:// document locations.
type S3Settings struct {
	Region          string `mapstructure:"region" yaml:"region,omitempty"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	PathStyle       bool   `mapstructure:"path_style" yaml:"path_style"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`
}

// DocumentConfig converts the settings into the document loader's S3 config.
func (s S3Settings) DocumentConfig() document.S3Config {
	return document.S3Config{
		Region:          s.Region,
		Endpoint:        s.Endpoint,
		AccessKeyID:     s.AccessKeyID,
		SecretAccessKey: s.SecretAccessKey,
		PathStyle:       s.PathStyle,
	}
}

// Keys returns every settings key in sorted order.
func Keys() []string {
	keys := []string{
		KeyVersion, KeyOverlays, KeyArchivePath, KeyMetricsTextfile,
		KeyS3Region, KeyS3Endpoint, KeyS3PathStyle, KeyS3AccessKeyID, KeyS3SecretKey,
	}
	slices.Sort(keys)
	return keys
}

// Init resets Viper and installs defaults, search paths and environment
// bindings. Call this once at application startup before accessing settings.
func Init() {
	viper.Reset()

	viper.SetConfigName(strings.TrimSuffix(paths.SettingsFileName, filepath.Ext(paths.SettingsFileName)))
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Every key needs a default so that AutomaticEnv applies on Unmarshal.
	viper.SetDefault(KeyVersion, CurrentVersion)
	viper.SetDefault(KeyOverlays, []string{})
	viper.SetDefault(KeyArchivePath, paths.ArchivePath())
	viper.SetDefault(KeyMetricsTextfile, "")
	viper.SetDefault(KeyS3Region, "")
	viper.SetDefault(KeyS3Endpoint, "")
	viper.SetDefault(KeyS3PathStyle, false)
	viper.SetDefault(KeyS3AccessKeyID, "")
	viper.SetDefault(KeyS3SecretKey, "")
}

// Load reads the settings file.
// If path is provided, it reads from that specific file and a missing file is an error.
// If path is empty, it searches the default locations and falls back to defaults.
// The result is validated.
func Load(path string) (*Settings, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(errors.ErrNotFound, "settings file not found at %s: %v", path, err)
		}
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading settings file")
		}
	}

	s, err := Current()
	if err != nil {
		return nil, err
	}
	if errs := Validate(s); len(errs) > 0 {
		return nil, fmt.Errorf("validating config: %w", joinErrors(errs))
	}
	return s, nil
}

// Current decodes the settings Viper holds right now.
func Current() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "unmarshaling settings")
	}
	if s.Overlays == nil {
		s.Overlays = []string{}
	}
	return &s, nil
}

// Set parses value for key and stores it in Viper. Lists are comma-separated.
func Set(key, value string) error {
	switch key {
	case KeyVersion:
		v, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "%s must be an integer", key)
		}
		viper.Set(key, v)
	case KeyS3PathStyle:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "%s must be true or false", key)
		}
		viper.Set(key, v)
	case KeyOverlays:
		viper.Set(key, SplitList(value))
	default:
		if !slices.Contains(Keys(), key) {
			return errors.Wrapf(ErrUnknownKey, "%q (known: %s)", key, strings.Join(Keys(), ", "))
		}
		viper.Set(key, value)
	}
	return nil
}

// Save validates the current settings and writes them to path, or to the
// file Viper read from, or to the default settings file.
func Save(path string) (string, error) {
	path = Path(path)

	s, err := Current()
	if err != nil {
		return "", err
	}
	if errs := Validate(s); len(errs) > 0 {
		return "", fmt.Errorf("validating config: %w", joinErrors(errs))
	}

	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return "", errors.Wrap(err, "creating settings directory")
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return "", errors.Wrap(err, "marshaling settings")
	}
	// May hold S3 credentials.
	if err := fileutil.AtomicWriteFile(path, data, 0o600); err != nil {
		return "", errors.Wrap(err, "writing settings file")
	}
	return path, nil
}

// Path returns the settings file in effect: path if given, else the file
// Viper read from, else the default settings file.
func Path(path string) string {
	if path == "" {
		path = viper.ConfigFileUsed()
	}
	if path == "" {
		path = paths.SettingsFile()
	}
	return path
}

// SplitList splits a comma-separated string, dropping blank elements.
func SplitList(s string) []string {
	out := []string{}
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
