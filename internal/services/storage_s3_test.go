package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects  map[string][]byte
	headErr  error
	putTypes map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, putTypes: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.putTypes[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestS3Storage_SaveReadDelete(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	storage := NewS3StorageService(client, "hr-resumes")

	ref, err := storage.SaveFile(ctx, uploadedFile(t, "cv.docx", []byte("docx bytes")))
	require.NoError(t, err)

	key := "hr-resumes/resumes/" + ref
	require.Contains(t, client.objects, key)
	assert.Equal(t, "application/octet-stream", client.putTypes[key])
	assert.True(t, strings.HasSuffix(ref, ".docx"))

	data, err := storage.ReadFile(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("docx bytes"), data)

	require.NoError(t, storage.DeleteFile(ctx, ref))
	_, err = storage.ReadFile(ctx, ref)
	assert.ErrorContains(t, err, "NoSuchKey")
}

func TestS3Storage_EnsureReady(t *testing.T) {
	client := newFakeS3()
	storage := NewS3StorageService(client, "hr-resumes")
	require.NoError(t, storage.EnsureReady(context.Background()))

	client.headErr = errors.New("forbidden")
	err := storage.EnsureReady(context.Background())
	assert.ErrorContains(t, err, "hr-resumes")
	assert.ErrorContains(t, err, "forbidden")
}
