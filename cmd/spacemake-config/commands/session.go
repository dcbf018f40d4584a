package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/logging"
	"github.com/J-81/spacemake/internal/metrics"
	"github.com/J-81/spacemake/internal/paths"
)

// s3Opener replaces the S3 client built from settings. Tests set it.
var s3Opener document.Opener

// errNoDocuments is returned when --no-defaults leaves nothing to load.
var errNoDocuments = errors.New("no configuration documents to load")

// documentLocations lists the documents to load after the defaults:
// settings overlays, then -f flags, then extra.
func documentLocations(extra []string) []string {
	var locs []string
	if settings != nil {
		locs = append(locs, settings.Overlays...)
	}
	return slices.Concat(locs, overlayFlags, extra)
}

func newLoader(logger *slog.Logger) *document.Loader {
	opts := []document.LoaderOption{document.WithLogger(logger)}
	if settings != nil {
		opts = append(opts, document.WithS3Config(settings.S3.DocumentConfig()))
	}
	if s3Opener != nil {
		opts = append(opts, document.WithS3Opener(s3Opener))
	}
	return document.NewLoader(opts...)
}

// loadSnapshot reads every configured document and resolves them. A
// validation failure is returned as the *configstore.LoadError itself.
func loadSnapshot(ctx context.Context, extra []string) (*configstore.Snapshot, error) {
	logger := logging.FromContext(ctx)

	docs, err := newLoader(logger).LoadAll(ctx, documentLocations(extra))
	if err != nil {
		return nil, errors.NewUserError(err, "Check the overlays in the settings file and the -f flags")
	}

	collector := metrics.New()
	store := configstore.NewStore(
		configstore.WithLogger(logger),
		configstore.WithObserver(collector),
	)

	var snap *configstore.Snapshot
	if noDefaults {
		if len(docs) == 0 {
			return nil, errors.NewUserError(errNoDocuments, "Pass documents with -f or drop --no-defaults")
		}
		snap, err = store.Load(docs...)
	} else {
		snap, err = store.LoadDefaults(docs...)
	}

	writeMetrics(collector, logger)
	return snap, err
}

// metricsPath returns the textfile path from the flag or settings. A
// directory, such as a node-exporter collector dir, gets the default file
// name.
func metricsPath() string {
	path := metricsTextfile
	if path == "" && settings != nil {
		path = settings.MetricsTextfile
	}
	if path == "" {
		return ""
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, paths.MetricsFileName)
	}
	return path
}

// writeMetrics writes the textfile if one is configured. Failures are
// logged; they never fail the command.
func writeMetrics(c *metrics.Collector, logger *slog.Logger) {
	path := metricsPath()
	if path == "" {
		return
	}
	if err := c.WriteTextfile(path); err != nil {
		logger.Warn("writing metrics textfile", "path", path, "error", err)
		return
	}
	logger.Debug("wrote metrics textfile", "path", path)
}
