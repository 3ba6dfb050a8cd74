package archive

import (
	"context"
	stderrors "errors"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/neuxs/modbuild/internal/config"
	"github.com/neuxs/modbuild/internal/version"
)

type putCall struct {
	key         string
	body        string
	contentType string
	metadata    map[string]string
}

type fakePutter struct {
	mu    sync.Mutex
	calls []putCall
	fail  map[string]bool
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if f.fail[key] {
		return nil, stderrors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, putCall{
		key:         key,
		body:        string(body),
		contentType: aws.ToString(in.ContentType),
		metadata:    in.Metadata,
	})
	return &s3.PutObjectOutput{}, nil
}

func TestMirror_Upload(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "1.4.0", "dev_builds", "latest", "a.jar")
	touch(t, root, "1.4.0", "dev_builds", "007", "a.jar")

	result := &Result{
		VersionDir: filepath.Join(root, "1.4.0"),
		Folders: []string{
			filepath.Join(root, "1.4.0", "dev_builds", "latest"),
			filepath.Join(root, "1.4.0", "dev_builds", "007"),
		},
		Info: version.Info{IsDev: true, Base: "1.4.0", DevNumber: 7, Full: "1.4.0-Dev7"},
	}

	putter := &fakePutter{}
	m := NewMirror(putter, config.S3MirrorConfig{Bucket: "mods", Prefix: "builds"}, root, quietLogger())
	m.now = func() time.Time { return fixedTime }

	stats := m.Upload(context.Background(), result)
	if stats.Uploaded != 2 || stats.Failed != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	var keys []string
	for _, c := range putter.calls {
		keys = append(keys, c.key)
		if c.contentType != JarContentType {
			t.Errorf("ContentType = %s", c.contentType)
		}
		if c.metadata["mod-version"] != "1.4.0-Dev7" {
			t.Errorf("mod-version = %s", c.metadata["mod-version"])
		}
		if c.metadata["archived-at"] != "2024-05-17T09:30:15Z" {
			t.Errorf("archived-at = %s", c.metadata["archived-at"])
		}
		if c.body != "x" {
			t.Errorf("body = %q", c.body)
		}
	}
	sort.Strings(keys)
	want := []string{"builds/1.4.0/dev_builds/007/a.jar", "builds/1.4.0/dev_builds/latest/a.jar"}
	for i := range want {
		if i >= len(keys) || keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestMirror_FailuresDoNotStop(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "2.0", "latest", "a.jar")
	touch(t, root, "2.0", "latest", "b.jar")

	result := &Result{Folders: []string{filepath.Join(root, "2.0", "latest")}, Info: version.Info{Full: "2.0"}}
	putter := &fakePutter{fail: map[string]bool{"2.0/latest/a.jar": true}}

	stats := NewMirror(putter, config.S3MirrorConfig{Bucket: "mods"}, root, quietLogger()).
		Upload(context.Background(), result)
	if stats.Uploaded != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 1 uploaded, 1 failed", stats)
	}
}

func TestMirror_MissingFolder(t *testing.T) {
	root := t.TempDir()
	result := &Result{Folders: []string{filepath.Join(root, "gone")}}

	stats := NewMirror(&fakePutter{}, config.S3MirrorConfig{Bucket: "mods"}, root, quietLogger()).
		Upload(context.Background(), result)
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
}

func TestNewS3Client(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")
	client := NewS3Client(config.S3MirrorConfig{Bucket: "mods", Endpoint: "http://localhost:9000", PathStyle: true})

	opts := client.Options()
	if opts.Region != "eu-west-1" {
		t.Errorf("Region = %s", opts.Region)
	}
	if aws.ToString(opts.BaseEndpoint) != "http://localhost:9000" {
		t.Errorf("BaseEndpoint = %s", aws.ToString(opts.BaseEndpoint))
	}
	if !opts.UsePathStyle {
		t.Error("UsePathStyle should be set")
	}
}
