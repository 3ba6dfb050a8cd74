package archive

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/neuxs/modbuild/internal/config"
	"github.com/neuxs/modbuild/internal/errors"
)

// JarContentType is the Content-Type of uploaded objects.
const JarContentType = "application/java-archive"

// ObjectPutter is the subset of the S3 client used by Mirror.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// MirrorStats counts upload outcomes.
type MirrorStats struct {
	Uploaded int
	Failed   int
}

// Mirror uploads archive folders to an S3 bucket.
type Mirror struct {
	client ObjectPutter
	bucket string
	prefix string
	root   string
	now    func() time.Time
	logger *slog.Logger
}

// NewS3Client builds an S3 client from the mirror settings. Credentials come
// from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN; the
// region falls back to AWS_REGION.
func NewS3Client(m config.S3MirrorConfig) *s3.Client {
	region := m.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	opts := s3.Options{
		Region:       region,
		UsePathStyle: m.PathStyle,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
					SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
					SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
					Source:          "Environment",
				}, nil
			})),
	}
	if m.Endpoint != "" {
		opts.BaseEndpoint = aws.String(m.Endpoint)
	}
	return s3.New(opts)
}

// NewMirror creates a mirror for the configured bucket. root is the archive
// root the uploaded folders live under.
func NewMirror(client ObjectPutter, m config.S3MirrorConfig, root string, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		client: client,
		bucket: m.Bucket,
		prefix: m.Prefix,
		root:   root,
		now:    time.Now,
		logger: logger.With("component", "mirror"),
	}
}

// Key returns the object key for a file in the archive.
func (m *Mirror) Key(file string) (string, error) {
	rel, err := filepath.Rel(m.root, file)
	if err != nil {
		return "", err
	}
	return path.Join(m.prefix, filepath.ToSlash(rel)), nil
}

// Upload puts every file of every folder in result. Failures are logged
// per file and counted; they never stop the upload.
func (m *Mirror) Upload(ctx context.Context, result *Result) MirrorStats {
	var stats MirrorStats
	if result == nil {
		return stats
	}

	archivedAt := m.now().UTC().Format(time.RFC3339)
	for _, dir := range result.Folders {
		entries, err := os.ReadDir(dir)
		if err != nil {
			stats.Failed++
			m.logger.Error(errors.New("E141").FormatCompact(), "dir", dir, "error", err)
			continue
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			file := filepath.Join(dir, e.Name())
			if err := m.put(ctx, file, result.Info.Full, archivedAt); err != nil {
				stats.Failed++
				m.logger.Error(errors.New("E141").FormatCompact(), "file", file, "error", err)
				continue
			}
			stats.Uploaded++
		}
	}

	m.logger.Debug("mirror upload finished", "bucket", m.bucket, "uploaded", stats.Uploaded, "failed", stats.Failed)
	return stats
}

func (m *Mirror) put(ctx context.Context, file, modVersion, archivedAt string) error {
	key, err := m.Key(file)
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(JarContentType),
		Metadata: map[string]string{
			"mod-version": modVersion,
			"archived-at": archivedAt,
		},
	})
	return err
}
