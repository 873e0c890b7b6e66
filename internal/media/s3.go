package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string
	// Prefix is prepended to every key inside the bucket.
	Prefix string
	// PublicURL is the base URL objects are served from. Defaults to the
	// virtual-hosted bucket URL.
	PublicURL string
}

// S3Backend stores objects in an S3 compatible bucket. Credentials come from
// the default AWS provider chain.
type S3Backend struct {
	cfg      S3Config
	client   s3iface.S3API
	uploader *s3manager.Uploader
}

func NewS3Backend(cfg S3Config) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("media: s3 bucket must not be empty")
	}

	awsCfg := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("media: s3 session: %w", err)
	}

	client := s3.New(sess)
	return newS3Backend(cfg, client), nil
}

func newS3Backend(cfg S3Config, client s3iface.S3API) *S3Backend {
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	if cfg.PublicURL == "" {
		cfg.PublicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	return &S3Backend{
		cfg:      cfg,
		client:   client,
		uploader: s3manager.NewUploaderWithClient(client),
	}
}

func (s *S3Backend) objectKey(key string) string {
	if s.cfg.Prefix == "" {
		return key
	}
	return s.cfg.Prefix + "/" + key
}

func (s *S3Backend) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	input := &s3manager.UploadInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("media: s3 upload %s: %w", key, err)
	}

	return s.cfg.PublicURL + "/" + s.objectKey(key), nil
}

func (s *S3Backend) RemovePrefix(ctx context.Context, prefix string) error {
	if strings.Trim(prefix, "/") == "" {
		return fmt.Errorf("media: refusing to remove bucket root")
	}

	var keys []*s3.ObjectIdentifier
	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(s.objectKey(prefix)),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, &s3.ObjectIdentifier{Key: obj.Key})
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("media: s3 list %s: %w", prefix, err)
	}

	// DeleteObjects accepts at most 1000 keys per call.
	for start := 0; start < len(keys); start += 1000 {
		end := min(start+1000, len(keys))
		_, err := s.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.cfg.Bucket),
			Delete: &s3.Delete{Objects: keys[start:end], Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("media: s3 delete %s: %w", prefix, err)
		}
	}

	return nil
}

var _ Backend = (*S3Backend)(nil)
