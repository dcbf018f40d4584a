package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spacemakeerrors "github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/logging"
)

// fakeS3 serves GetObject for path-style requests from an in-memory map.
type fakeS3 struct{ objects map[string][]byte }

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	path := strings.TrimPrefix(req.URL.Path, "/")
	body, ok := f.objects[path]
	if req.Method != http.MethodGet || !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("<Error><Code>NoSuchKey</Code></Error>")),
			Header:     http.Header{"Content-Type": {"application/xml"}},
			Request:    req,
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header: http.Header{
			"Content-Length": {fmt.Sprintf("%d", len(body))},
			"Content-Type":   {"application/yaml"},
		},
		Request: req,
	}, nil
}

func newFakeS3Source(objects map[string][]byte) *S3Source {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKIA", "SECRET", ""),
		HTTPClient:   &http.Client{Transport: &fakeS3{objects: objects}},
		UsePathStyle: true,
		BaseEndpoint: aws.String("https://mock.s3.local"),
	})
	return NewS3SourceWithClient(client)
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adapters:\n  polyA: AAAAAAAA\n"), 0o600))

	loader := NewLoader(WithLogger(logging.ForTest(t)))
	doc, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)
	assert.Equal(t, "AAAAAAAA", doc.Root["adapters"].(map[string]any)["polyA"])
}

func TestLoader_LoadMissingFile(t *testing.T) {
	loader := NewLoader(WithLogger(logging.NewDiscard()))
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoader_LoadS3(t *testing.T) {
	src := newFakeS3Source(map[string][]byte{
		"runs/overlay.toml": []byte("[adapters]\nsmart = \"AAGCAGTGGTATCAACGCAGAGT\"\n"),
	})
	loader := NewLoader(WithS3Opener(src), WithLogger(logging.ForTest(t)))

	doc, err := loader.Load(context.Background(), "s3://runs/overlay.toml")
	require.NoError(t, err)
	assert.Equal(t, "s3://runs/overlay.toml", doc.Source)
	assert.Equal(t, "AAGCAGTGGTATCAACGCAGAGT", doc.Root["adapters"].(map[string]any)["smart"])

	_, err = loader.Load(context.Background(), "s3://runs/missing.yaml")
	assert.Error(t, err)
}

func TestLoader_LoadAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(a, []byte("pucks: {}\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte(`{"adapters": {"x": "ACGT"}}`), 0o600))

	docs, err := NewLoader(WithLogger(logging.NewDiscard())).LoadAll(context.Background(), []string{a, b})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, b, docs[1].Source)

	_, err = NewLoader(WithLogger(logging.NewDiscard())).LoadAll(context.Background(), []string{a, filepath.Join(dir, "c.yaml")})
	assert.Error(t, err)
}

func TestParseS3Location(t *testing.T) {
	bucket, key, err := ParseS3Location("s3://runs/2026/overlay.yaml")
	require.NoError(t, err)
	assert.Equal(t, "runs", bucket)
	assert.Equal(t, "2026/overlay.yaml", key)

	for _, bad := range []string{"s3://runs", "s3:///key", "http://runs/key"} {
		_, _, err := ParseS3Location(bad)
		assert.True(t, errors.Is(err, spacemakeerrors.ErrInvalidLocation), bad)
	}
}
