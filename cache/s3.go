package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pithecene-io/webasset/iox"
)

// S3Options configures the shared S3 cache backend.
type S3Options struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. Cloudflare R2, MinIO). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (o *S3Options) Validate() error {
	if o.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// S3Cache is a team-shared content cache on S3-compatible storage. Keys
// use the same slug derivation as the disk cache:
// <prefix>/<slug(directory-of(address))>/<filename-of(address)>.
type S3Cache struct {
	client s3API
	bucket string
	prefix string
}

// s3API is the subset of the S3 client the cache uses. Narrowed for test
// substitution.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Cache creates an S3-backed cache using the AWS SDK default
// credential chain (env vars, shared config, IAM role).
func NewS3Cache(ctx context.Context, opts S3Options) (*S3Cache, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if opts.Endpoint != "" {
		endpoint := opts.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if opts.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Cache{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: opts.Bucket,
		prefix: opts.Prefix,
	}, nil
}

// newS3CacheWithClient wires a custom client. Used by tests.
func newS3CacheWithClient(client s3API, bucket, prefix string) *S3Cache {
	return &S3Cache{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for an address.
func (c *S3Cache) Key(uri string) string {
	dir, file := splitAddress(uri)
	return path.Join(c.prefix, Slugify(dir), file)
}

// TryRead returns the cached object for uri. Missing keys and read
// failures are misses.
func (c *S3Cache) TryRead(ctx context.Context, uri string) ([]byte, bool) {
	key := c.Key(uri)
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &c.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, false
	}
	defer iox.DiscardClose(out.Body)

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false
	}
	return data, true
}

// TryWrite stores bytes for uri. A single PutObject is already atomic on
// S3: readers see either the old object or the new one, never a partial.
func (c *S3Cache) TryWrite(ctx context.Context, uri string, data []byte) error {
	key := c.Key(uri)
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &c.bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		var nsk *s3types.NoSuchBucket
		if errors.As(err, &nsk) {
			return &WriteError{Path: key, Err: fmt.Errorf("bucket %s does not exist: %w", c.bucket, err)}
		}
		return &WriteError{Path: key, Err: err}
	}
	return nil
}

// Verify S3Cache implements Cache.
var _ Cache = (*S3Cache)(nil)
