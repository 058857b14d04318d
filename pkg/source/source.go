// Package source opens dataset documents from local files or S3.
//
// A path ending in ".sz" is treated as a snappy framed stream and decoded on
// the fly. Local files are memory-mapped.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"
)

// SnappySuffix marks snappy-compressed datasets
const SnappySuffix = ".sz"

// ErrEmptyURI is returned when no location is given
var ErrEmptyURI = errors.New("dataset location is empty")

// Options tune S3 access. Zero values use the SDK's default chain.
type Options struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// objectGetter is the part of the S3 client Open needs
type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// newS3Client is replaced in tests
var newS3Client = func(ctx context.Context, opts Options) (objectGetter, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	}), nil
}

// Open opens uri with default options
func Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	return OpenWith(ctx, uri, Options{})
}

// OpenWith opens a local path, a file:// URL or an s3://bucket/key URL
func OpenWith(ctx context.Context, uri string, opts Options) (io.ReadCloser, error) {
	if uri == "" {
		return nil, ErrEmptyURI
	}

	var (
		rc   io.ReadCloser
		name string
		err  error
	)
	switch {
	case strings.HasPrefix(uri, "s3://"):
		rc, name, err = openS3(ctx, uri, opts)
	case strings.HasPrefix(uri, "file://"):
		name = strings.TrimPrefix(uri, "file://")
		rc, err = openLocal(name)
	default:
		name = uri
		rc, err = openLocal(name)
	}
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(name, SnappySuffix) {
		return &snappyReadCloser{r: snappy.NewReader(rc), c: rc}, nil
	}
	return rc, nil
}

func openS3(ctx context.Context, uri string, opts Options) (io.ReadCloser, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", uri, err)
	}
	bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, "", fmt.Errorf("s3 location %q: want s3://bucket/key", uri)
	}

	client, err := newS3Client(ctx, opts)
	if err != nil {
		return nil, "", err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, key, nil
}

// mappedFile reads sequentially from a memory-mapped file
type mappedFile struct {
	*io.SectionReader
	m *mmap.ReaderAt
}

func (f *mappedFile) Close() error {
	return f.m.Close()
}

func openLocal(path string) (io.ReadCloser, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	return &mappedFile{SectionReader: io.NewSectionReader(m, 0, int64(m.Len())), m: m}, nil
}

type snappyReadCloser struct {
	r *snappy.Reader
	c io.Closer
}

func (s *snappyReadCloser) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *snappyReadCloser) Close() error {
	return s.c.Close()
}
