// Package media resolves a session recording into a readable local file,
// whether it lives in the blob store, behind a URL, or already on disk.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNoSource is returned when a recording has neither a blob key, a URL,
// nor a local path.
var ErrNoSource = errors.New("no recording source available")

// DefaultTimeout is the HTTP timeout for URL downloads.
const DefaultTimeout = 60 * time.Second

// Error represents a failure fetching a recording.
type Error struct {
	Source  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("media fetch error for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("media fetch error for %s: %s", e.Source, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Source identifies where a recording's bytes live. Fields are checked in
// order: blob key, then URL, then local path.
type Source struct {
	S3Key     string
	URL       string
	LocalPath string
}

// BlobStore is the opaque blob-store capability the resolver fetches keys
// from.
type BlobStore interface {
	FetchBlob(ctx context.Context, key string, dst io.Writer) error
}

// Resolver turns a Source into a local file path plus a cleanup func. The
// cleanup must run on every exit path of the caller; for caller-supplied
// local paths it is a no-op so operator files are never deleted.
type Resolver struct {
	blobs      BlobStore
	httpClient *http.Client
}

// NewResolver creates a resolver. blobs may be nil when no blob store is
// configured; S3-keyed sources then fail with a typed error.
func NewResolver(blobs BlobStore) *Resolver {
	return &Resolver{
		blobs:      blobs,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Resolve fetches the recording into a temporary file when needed.
func (r *Resolver) Resolve(ctx context.Context, src Source) (string, func(), error) {
	noop := func() {}

	switch {
	case src.S3Key != "":
		if r.blobs == nil {
			return "", noop, &Error{Source: src.S3Key, Message: "blob store not configured"}
		}
		return r.fetchToTemp(src.S3Key, func(dst io.Writer) error {
			return r.blobs.FetchBlob(ctx, src.S3Key, dst)
		})

	case src.URL != "":
		return r.fetchToTemp(src.URL, func(dst io.Writer) error {
			return r.download(ctx, src.URL, dst)
		})

	case src.LocalPath != "":
		if _, err := os.Stat(src.LocalPath); err != nil {
			return "", noop, &Error{Source: src.LocalPath, Message: "local recording not readable", Cause: err}
		}
		return src.LocalPath, noop, nil

	default:
		return "", noop, ErrNoSource
	}
}

func (r *Resolver) fetchToTemp(source string, fetch func(io.Writer) error) (string, func(), error) {
	noop := func() {}

	tmp, err := os.CreateTemp("", "recording-*.media")
	if err != nil {
		return "", noop, &Error{Source: source, Message: "failed to create temp file", Cause: err}
	}
	cleanup := func() {
		_ = os.Remove(tmp.Name())
	}

	if err := fetch(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", noop, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", noop, &Error{Source: source, Message: "failed to flush temp file", Cause: err}
	}

	return tmp.Name(), cleanup, nil
}

func (r *Resolver) download(ctx context.Context, urlStr string, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return &Error{Source: urlStr, Message: "failed to create request", Cause: err}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return &Error{Source: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &Error{Source: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return &Error{Source: urlStr, Message: "failed to read response body", Cause: err}
	}
	return nil
}

// S3Store fetches recording blobs from S3. The bucket is fixed at
// construction; keys come from session rows.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds an S3-backed blob store using the default AWS
// credential chain.
func NewS3Store(ctx context.Context, region, bucket string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// FetchBlob streams an object's bytes into dst.
func (s *S3Store) FetchBlob(ctx context.Context, key string, dst io.Writer) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &Error{Source: key, Message: "S3 GetObject failed", Cause: err}
	}
	defer func() { _ = out.Body.Close() }()

	if _, err := io.Copy(dst, out.Body); err != nil {
		return &Error{Source: key, Message: "failed to read S3 object body", Cause: err}
	}
	return nil
}
