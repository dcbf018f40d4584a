package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/J-81/spacemake/internal/archive"
	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/errors"
)

// settingsFilePerm is the mode config.Save writes; the file may hold S3 credentials.
const settingsFilePerm os.FileMode = 0o600

// SettingsFileCheck inspects the settings file on disk.
type SettingsFileCheck struct {
	path    string
	fixable bool
}

var (
	_ Check = (*SettingsFileCheck)(nil)
	_ Fixer = (*SettingsFileCheck)(nil)
)

// NewSettingsFileCheck creates a check of the settings file at path.
func NewSettingsFileCheck(path string) *SettingsFileCheck {
	return &SettingsFileCheck{path: path}
}

// Name returns the unique identifier for this check.
func (c *SettingsFileCheck) Name() string { return "settings-file" }

// Category returns the grouping for this check.
func (c *SettingsFileCheck) Category() string { return "settings" }

// Run checks that the file is readable and private to its owner.
func (c *SettingsFileCheck) Run(context.Context) *CheckResult {
	c.fixable = false
	res := c.result(SeverityPass, "")
	res.Details = map[string]any{"path": c.path}

	info, err := os.Stat(c.path)
	switch {
	case os.IsNotExist(err):
		res.Status = SeverityInfo
		res.Message = "no settings file, built-in settings apply"
		return res
	case err != nil:
		res.Status = SeverityError
		res.Message = fmt.Sprintf("cannot stat settings file: %v", err)
		return res
	case info.IsDir():
		res.Status = SeverityError
		res.Message = "expected file but found directory"
		return res
	}
	res.Details["permissions"] = info.Mode().Perm().String()

	f, err := os.Open(c.path)
	if err != nil {
		res.Status = SeverityError
		res.Message = "settings file is not readable"
		res.FixHint = "chmod 600 " + c.path
		return res
	}
	f.Close()

	// Unix permissions do not apply on Windows.
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o077 != 0 {
		c.fixable = true
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("settings file is accessible by other users (mode %s) and may hold S3 credentials",
			info.Mode().Perm())
		res.Fixable = true
		res.FixHint = "chmod 600 " + c.path
		return res
	}

	res.Message = "settings file is private"
	return res
}

// CanFix reports whether the last run found loose permissions.
func (c *SettingsFileCheck) CanFix() bool { return c.fixable }

// Fix restricts the settings file to its owner.
func (c *SettingsFileCheck) Fix() []FixResult {
	if !c.fixable {
		return nil
	}
	return []FixResult{chmodFix(c.path, settingsFilePerm)}
}

func (c *SettingsFileCheck) result(sev Severity, msg string) *CheckResult {
	return &CheckResult{Name: c.Name(), Category: c.Category(), Status: sev, Message: msg}
}

// SettingsCheck reports the outcome of loading and validating settings.
type SettingsCheck struct {
	err error
}

var _ Check = (*SettingsCheck)(nil)

// NewSettingsCheck wraps the error returned by config.Load, nil on success.
func NewSettingsCheck(err error) *SettingsCheck {
	return &SettingsCheck{err: err}
}

// Name returns the unique identifier for this check.
func (c *SettingsCheck) Name() string { return "settings-valid" }

// Category returns the grouping for this check.
func (c *SettingsCheck) Category() string { return "settings" }

// Run reports the stored load error.
func (c *SettingsCheck) Run(context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category(), Status: SeverityPass, Message: "settings are valid"}
	if c.err != nil {
		res.Status = SeverityError
		res.Message = c.err.Error()
		res.FixHint = "spacemake-config settings set <key> <value>"
	}
	return res
}

// LoadFunc resolves the configuration the way the CLI does.
type LoadFunc func(ctx context.Context) (*configstore.Snapshot, error)

// ConfigurationCheck loads and validates every configured document.
type ConfigurationCheck struct {
	load LoadFunc
}

var _ Check = (*ConfigurationCheck)(nil)

// NewConfigurationCheck creates a check that calls load.
func NewConfigurationCheck(load LoadFunc) *ConfigurationCheck {
	return &ConfigurationCheck{load: load}
}

// Name returns the unique identifier for this check.
func (c *ConfigurationCheck) Name() string { return "configuration" }

// Category returns the grouping for this check.
func (c *ConfigurationCheck) Category() string { return "configuration" }

// Run loads the configuration and summarizes the result.
func (c *ConfigurationCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}

	snap, err := c.load(ctx)
	var loadErr *configstore.LoadError
	switch {
	case errors.As(err, &loadErr):
		msgs := make([]string, len(loadErr.Errors))
		for i, ve := range loadErr.Errors {
			msgs[i] = ve.Error()
		}
		res.Status = SeverityError
		res.Message = fmt.Sprintf("%s stage failed with %d error(s)", loadErr.Stage, len(loadErr.Errors))
		res.Details = map[string]any{"stage": loadErr.Stage.String(), "errors": msgs}
		res.FixHint = "spacemake-config validate"
		return res
	case err != nil:
		res.Status = SeverityError
		res.Message = err.Error()
		return res
	}

	res.Status = SeverityPass
	res.Message = fmt.Sprintf("resolved %d run modes, %d pucks, %d adapters, %d barcode flavors",
		len(snap.Names(configstore.CategoryRunModes)),
		len(snap.Names(configstore.CategoryPucks)),
		len(snap.Names(configstore.CategoryAdapters)),
		len(snap.Names(configstore.CategoryBarcodeFlavors)),
	)
	res.Details = map[string]any{"digest": snap.Digest(), "sources": snap.Sources()}
	return res
}

// ArchiveCheck opens an existing snapshot archive and lists its records.
type ArchiveCheck struct {
	path string
}

var _ Check = (*ArchiveCheck)(nil)

// NewArchiveCheck creates a check of the archive at path.
func NewArchiveCheck(path string) *ArchiveCheck {
	return &ArchiveCheck{path: path}
}

// Name returns the unique identifier for this check.
func (c *ArchiveCheck) Name() string { return "archive" }

// Category returns the grouping for this check.
func (c *ArchiveCheck) Category() string { return "archive" }

// Run never creates the archive; a missing file is informational.
func (c *ArchiveCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{
		Name: c.Name(), Category: c.Category(),
		Details: map[string]any{"path": c.path},
	}

	info, err := os.Stat(c.path)
	switch {
	case os.IsNotExist(err):
		res.Status = SeverityInfo
		res.Message = "no archive yet, it is created by the first archive save"
		return res
	case err != nil:
		res.Status = SeverityError
		res.Message = fmt.Sprintf("cannot stat archive: %v", err)
		return res
	case info.IsDir():
		res.Status = SeverityError
		res.Message = "expected file but found directory"
		return res
	}

	a, err := archive.Open(ctx, c.path)
	if err != nil {
		res.Status = SeverityError
		res.Message = err.Error()
		return res
	}
	defer a.Close()

	recs, err := a.List(ctx)
	if err != nil {
		res.Status = SeverityError
		res.Message = err.Error()
		return res
	}
	res.Status = SeverityPass
	res.Message = fmt.Sprintf("%d snapshot(s) recorded", len(recs))
	return res
}

// MetricsTextfileCheck verifies that the metrics textfile can be written.
type MetricsTextfileCheck struct {
	path string
}

var _ Check = (*MetricsTextfileCheck)(nil)

// NewMetricsTextfileCheck creates a check of the textfile at path. An empty
// path means metrics are disabled.
func NewMetricsTextfileCheck(path string) *MetricsTextfileCheck {
	return &MetricsTextfileCheck{path: path}
}

// Name returns the unique identifier for this check.
func (c *MetricsTextfileCheck) Name() string { return "metrics-textfile" }

// Category returns the grouping for this check.
func (c *MetricsTextfileCheck) Category() string { return "metrics" }

// Run checks that the textfile's directory exists and is writable.
func (c *MetricsTextfileCheck) Run(context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}
	if c.path == "" {
		res.Status = SeverityInfo
		res.Message = "metrics textfile not configured"
		return res
	}

	dir := filepath.Dir(c.path)
	res.Details = map[string]any{"path": c.path}
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("directory %s is not usable: %v", dir, err)
		res.FixHint = "mkdir -p " + dir
		return res
	case !info.IsDir():
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("%s is not a directory", dir)
		return res
	}
	if !isDirectoryWritable(dir) {
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("directory %s is not writable", dir)
		res.FixHint = "chmod u+w " + dir
		return res
	}
	res.Status = SeverityPass
	res.Message = "metrics textfile directory is writable"
	return res
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func isDirectoryWritable(path string) bool {
	f, err := os.CreateTemp(path, ".spacemake-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
