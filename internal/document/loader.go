package document

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/pkg/fileutil"
)

// Opener opens a remote document location.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Loader reads documents from local paths and s3:// locations.
type Loader struct {
	s3Config S3Config
	logger   *slog.Logger

	mu sync.Mutex
	s3 Opener
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithS3Config sets the parameters used when the first s3:// location is read.
func WithS3Config(cfg S3Config) LoaderOption {
	return func(l *Loader) { l.s3Config = cfg }
}

// WithS3Opener replaces the S3 source, e.g. with a client on a fake transport.
func WithS3Opener(o Opener) LoaderOption {
	return func(l *Loader) { l.s3 = o }
}

// WithLogger sets the logger for read events.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and parses one document. The format follows the extension.
func (l *Loader) Load(ctx context.Context, location string) (*Document, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(location, "s3://") {
		data, err = l.readS3(ctx, location)
	} else {
		data, err = fileutil.ReadFileWithLimit(location)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", location)
	}

	doc, err := Parse(location, data, FormatFromName(location))
	if err != nil {
		return nil, err
	}
	l.logger.Debug("read document", "source", location, "bytes", len(data), "duplicates", len(doc.Duplicates))
	return doc, nil
}

// LoadAll reads locations in order, stopping at the first failure.
func (l *Loader) LoadAll(ctx context.Context, locations []string) ([]*Document, error) {
	docs := make([]*Document, 0, len(locations))
	for _, loc := range locations {
		doc, err := l.Load(ctx, loc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (l *Loader) readS3(ctx context.Context, location string) ([]byte, error) {
	src, err := l.s3Source(ctx)
	if err != nil {
		return nil, err
	}
	body, err := src.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return fileutil.ReadAllWithLimit(body)
}

func (l *Loader) s3Source(ctx context.Context) (Opener, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.s3 != nil {
		return l.s3, nil
	}
	src, err := NewS3Source(ctx, l.s3Config)
	if err != nil {
		return nil, err
	}
	l.s3 = src
	return src, nil
}
