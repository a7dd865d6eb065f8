package services

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []*s3.DeleteObjectInput
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, params)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, params)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3MediaHost_UploadDataURI(t *testing.T) {
	client := &fakeS3{}
	host := newS3MediaHost(client, "bucket", "media", "https://cdn.example.com/")

	payload := []byte("fake image bytes")
	url, err := host.Upload(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(payload))
	require.NoError(t, err)

	require.Len(t, client.puts, 1)
	put := client.puts[0]
	assert.Equal(t, "bucket", aws.ToString(put.Bucket))
	assert.Equal(t, "image/png", aws.ToString(put.ContentType))
	assert.Equal(t, payload, client.bodies[0])
	assert.Equal(t, "https://cdn.example.com/"+aws.ToString(put.Key), url)

	// The public id round-trips through the URL
	assert.Equal(t, "media/"+PublicIDFromURL(url), aws.ToString(put.Key))
}

func TestS3MediaHost_UploadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer srv.Close()

	client := &fakeS3{}
	host := newS3MediaHost(client, "bucket", "media", srv.URL)

	_, err := host.Upload(context.Background(), srv.URL+"/media/photo.jpg")
	require.NoError(t, err)
	require.Len(t, client.puts, 1)
	assert.Equal(t, "image/jpeg", aws.ToString(client.puts[0].ContentType))
	assert.Equal(t, []byte("jpeg"), client.bodies[0])
}

func TestS3MediaHost_UploadRejectsForeignURL(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("secret"))
	}))
	defer srv.Close()

	client := &fakeS3{}
	host := newS3MediaHost(client, "bucket", "media", "https://cdn.example.com")

	for _, source := range []string{
		srv.URL + "/latest/meta-data",
		"https://cdn.example.com.attacker.test/media/x.png",
	} {
		_, err := host.Upload(context.Background(), source)
		assert.ErrorIs(t, err, ErrInvalidMedia, source)
	}
	assert.Zero(t, hits)
	assert.Empty(t, client.puts)
}

func TestS3MediaHost_UploadTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(make([]byte, maxMediaBytes+1))
	}))
	defer srv.Close()

	client := &fakeS3{}
	host := newS3MediaHost(client, "bucket", "media", srv.URL)

	_, err := host.Upload(context.Background(), srv.URL+"/media/big.png")
	assert.ErrorIs(t, err, ErrInvalidMedia)

	big := base64.StdEncoding.EncodeToString(make([]byte, maxMediaBytes+1))
	_, err = host.Upload(context.Background(), "data:image/png;base64,"+big)
	assert.ErrorIs(t, err, ErrInvalidMedia)

	assert.Empty(t, client.puts)
}

func TestS3MediaHost_UploadInvalid(t *testing.T) {
	host := newS3MediaHost(&fakeS3{}, "bucket", "media", "https://cdn.example.com")

	_, err := host.Upload(context.Background(), "data:image/png,not-base64")
	assert.ErrorIs(t, err, ErrInvalidMedia)

	_, err = host.Upload(context.Background(), "%%%")
	assert.ErrorIs(t, err, ErrInvalidMedia)

	_, err = host.Upload(context.Background(), "data:image/png;base64,"+strings.Repeat("!", 8))
	assert.ErrorIs(t, err, ErrInvalidMedia)
}

func TestS3MediaHost_Destroy(t *testing.T) {
	client := &fakeS3{}
	host := newS3MediaHost(client, "bucket", "media", "https://cdn.example.com")

	require.NoError(t, host.Destroy(context.Background(), "abc"))
	require.NoError(t, host.Destroy(context.Background(), ""))

	require.Len(t, client.deletes, 1)
	assert.Equal(t, "media/abc", aws.ToString(client.deletes[0].Key))
}

func TestPublicIDFromURL(t *testing.T) {
	tests := map[string]string{
		"https://cdn.example.com/media/abc.png":     "abc",
		"https://cdn.example.com/media/abc":         "abc",
		"https://res.example.com/v1/x/y/photo.jpeg": "photo",
	}
	for url, want := range tests {
		assert.Equal(t, want, PublicIDFromURL(url), url)
	}
}
