package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeS3 struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.contentType = aws.ToString(in.ContentType)
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

type fakeEncoder struct {
	err   error
	calls int
}

func (f *fakeEncoder) Encode(_ context.Context, payload, destination string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destination, []byte(payload), 0o644)
}

type fakeUploader struct {
	paths []string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, localPath string) (string, error) {
	f.paths = append(f.paths, localPath)
	return Key(localPath), f.err
}

func TestS3Mirror_Upload(t *testing.T) {
	local := filepath.Join(t.TempDir(), "OSW_RG01.png")
	require.NoError(t, os.WriteFile(local, []byte("png-bytes"), 0o644))
	client := &fakeS3{}

	key, err := NewS3MirrorWithClient(client, "passes").Upload(context.Background(), local)

	require.NoError(t, err)
	assert.Equal(t, "qrcodes/OSW_RG01.png", key)
	assert.Equal(t, "passes", client.bucket)
	assert.Equal(t, "qrcodes/OSW_RG01.png", client.key)
	assert.Equal(t, "image/png", client.contentType)
	assert.Equal(t, []byte("png-bytes"), client.body)
}

func TestS3Mirror_UploadErrors(t *testing.T) {
	_, err := NewS3MirrorWithClient(&fakeS3{}, "passes").Upload(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)

	local := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0o644))
	_, err = NewS3MirrorWithClient(&fakeS3{err: errors.New("denied")}, "passes").Upload(context.Background(), local)
	assert.ErrorContains(t, err, "denied")
}

func TestMirroringEncoder(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "OSW_RG01.png")
	next := &fakeEncoder{}
	up := &fakeUploader{}

	err := NewMirroringEncoder(next, up, zap.NewNop()).Encode(context.Background(), "payload", dest)

	require.NoError(t, err)
	assert.Equal(t, []string{dest}, up.paths)
}

func TestMirroringEncoder_UploadFailureIsNotFatal(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "OSW_RG01.png")
	up := &fakeUploader{err: errors.New("bucket gone")}

	err := NewMirroringEncoder(&fakeEncoder{}, up, zap.NewNop()).Encode(context.Background(), "payload", dest)

	assert.NoError(t, err)
	assert.FileExists(t, dest)
}

func TestMirroringEncoder_EncodeFailureSkipsUpload(t *testing.T) {
	up := &fakeUploader{}
	next := &fakeEncoder{err: errors.New("disk full")}

	err := NewMirroringEncoder(next, up, zap.NewNop()).Encode(context.Background(), "payload", "x.png")

	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, up.paths)
}
