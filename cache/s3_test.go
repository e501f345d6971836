package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3 is an in-memory s3API double.
type fakeS3 struct {
	objects map[string][]byte
	putErr  error
	gets    int
	puts    int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gets++
	data, ok := f.objects[*params.Key]
	if !ok {
		return nil, errors.New("NoSuchKey: the specified key does not exist")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts++
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*params.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Cache_RoundTrip(t *testing.T) {
	fake := newFakeS3()
	c := newS3CacheWithClient(fake, "assets", "shared")

	uri := "https://s3.example.org/dump/favicon.png"
	want := []byte{9, 8, 7}

	if _, ok := c.TryRead(t.Context(), uri); ok {
		t.Fatal("expected miss before write")
	}
	if err := c.TryWrite(t.Context(), uri, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, ok := c.TryRead(t.Context(), uri)
	if !ok {
		t.Fatal("expected hit after write")
	}
	if string(got) != string(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestS3Cache_KeyDerivation(t *testing.T) {
	c := newS3CacheWithClient(newFakeS3(), "assets", "shared")
	key := c.Key("https://s3.example.org/dump/favicon.png")
	if key != "shared/https---s3.example.org-dump/favicon.png" {
		t.Errorf("key = %q", key)
	}
}

func TestS3Cache_WriteErrorWrapped(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("AccessDenied")
	c := newS3CacheWithClient(fake, "assets", "")

	err := c.TryWrite(t.Context(), "https://host/x.png", []byte("abc"))
	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected *WriteError, got %T", err)
	}
}

func TestS3Options_Validate(t *testing.T) {
	o := &S3Options{}
	if err := o.Validate(); err == nil {
		t.Error("expected error for missing bucket")
	}
	o.Bucket = "assets"
	if err := o.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
