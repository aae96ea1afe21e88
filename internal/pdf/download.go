package pdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pageza/recipepdf/internal/types"
)

// Downloader fetches the raw bytes of a document
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPDownloader fetches documents over HTTP(S)
type HTTPDownloader struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPDownloader creates an HTTPDownloader. A maxBytes of zero disables
// the size limit.
func NewHTTPDownloader(timeout time.Duration, maxBytes int64) *HTTPDownloader {
	return &HTTPDownloader{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch implements Downloader
func (d *HTTPDownloader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %q: %w", types.ErrDownload, rawURL, err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", types.ErrDownload, rawURL, resp.StatusCode)
	}

	return readLimited(resp.Body, d.maxBytes)
}

// ObjectGetter is the part of the S3 client used by S3Downloader
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Downloader fetches s3://bucket/key documents
type S3Downloader struct {
	client   ObjectGetter
	maxBytes int64
}

// NewS3Downloader creates an S3Downloader
func NewS3Downloader(client ObjectGetter, maxBytes int64) *S3Downloader {
	return &S3Downloader{client: client, maxBytes: maxBytes}
}

// Fetch implements Downloader
func (d *S3Downloader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrDownload, err)
	}

	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get s3://%s/%s: %w", types.ErrDownload, bucket, key, err)
	}
	defer out.Body.Close()

	return readLimited(out.Body, d.maxBytes)
}

func parseS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || u.Host == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 url %q", rawURL)
	}
	return u.Host, key, nil
}

// SchemeDownloader dispatches to a Downloader by URL scheme
type SchemeDownloader struct {
	byScheme map[string]Downloader
}

// NewSchemeDownloader routes http and https to httpDL and s3 to s3DL. A nil
// s3DL leaves s3 URLs unsupported.
func NewSchemeDownloader(httpDL, s3DL Downloader) *SchemeDownloader {
	d := &SchemeDownloader{byScheme: map[string]Downloader{
		"http":  httpDL,
		"https": httpDL,
	}}
	if s3DL != nil {
		d.byScheme["s3"] = s3DL
	}
	return d
}

// Fetch implements Downloader
func (d *SchemeDownloader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %q: %w", types.ErrDownload, rawURL, err)
	}
	dl, ok := d.byScheme[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported url scheme %q", types.ErrDownload, u.Scheme)
	}
	return dl.Fetch(ctx, rawURL)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", types.ErrDownload, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", types.ErrDownload, maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty response body", types.ErrDownload)
	}
	return data, nil
}
