package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	appconfig "social-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const maxMediaBytes = 10 << 20

// ErrInvalidMedia marks an image source the host refuses to store.
var ErrInvalidMedia = errors.New("invalid media")

// MediaHost stores user images and hands back their public URLs
type MediaHost interface {
	// Upload accepts a data URI, bare base64 or a URL already served from
	// the host's own public base URL.
	Upload(ctx context.Context, source string) (string, error)
	Destroy(ctx context.Context, publicID string) error
}

// PublicIDFromURL derives the media public id from a hosted URL: the last
// path segment without its extension.
func PublicIDFromURL(rawURL string) string {
	last := path.Base(rawURL)
	if i := strings.LastIndex(last, "."); i > 0 {
		last = last[:i]
	}
	return last
}

// objectPutDeleter is the part of the S3 client used by S3MediaHost.
type objectPutDeleter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3MediaHost implements MediaHost on an S3-compatible bucket
type S3MediaHost struct {
	client     objectPutDeleter
	httpClient *http.Client
	bucket     string
	folder     string
	baseURL    string
}

// NewS3MediaHost creates a media host from configuration
func NewS3MediaHost(ctx context.Context, cfg appconfig.AWSConfig) (*S3MediaHost, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.Region)
	}

	return newS3MediaHost(client, cfg.S3Bucket, cfg.Folder, baseURL), nil
}

func newS3MediaHost(client objectPutDeleter, bucket, folder, baseURL string) *S3MediaHost {
	return &S3MediaHost{
		client:     client,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		bucket:     bucket,
		folder:     strings.Trim(folder, "/"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Upload stores the image and returns its public URL
func (m *S3MediaHost) Upload(ctx context.Context, source string) (string, error) {
	data, contentType, err := m.read(ctx, source)
	if err != nil {
		return "", err
	}

	publicID := uuid.New().String()
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(m.key(publicID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload media: %w", err)
	}

	return m.baseURL + "/" + m.key(publicID), nil
}

// Destroy removes a previously uploaded image
func (m *S3MediaHost) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(m.key(publicID)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete media %s: %w", publicID, err)
	}
	return nil
}

func (m *S3MediaHost) key(publicID string) string {
	if m.folder == "" {
		return publicID
	}
	return m.folder + "/" + publicID
}

func (m *S3MediaHost) read(ctx context.Context, source string) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		// Only our own objects are fetched server side
		if !strings.HasPrefix(source, m.baseURL+"/") {
			return nil, "", fmt.Errorf("%w: url outside %s", ErrInvalidMedia, m.baseURL)
		}
		return m.fetch(ctx, source)
	case strings.HasPrefix(source, "data:"):
		return decodeDataURI(source)
	default:
		return decodeBase64(source)
	}
}

func (m *S3MediaHost) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build media request: %w", err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch media: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read media: %w", err)
	}
	if len(data) > maxMediaBytes {
		return nil, "", fmt.Errorf("%w: larger than %d bytes", ErrInvalidMedia, maxMediaBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// decodeDataURI decodes "data:<mime>;base64,<payload>".
func decodeDataURI(uri string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, "", fmt.Errorf("%w: unsupported data uri", ErrInvalidMedia)
	}
	data, detected, err := decodeBase64(payload)
	if err != nil {
		return nil, "", err
	}

	contentType := strings.TrimSuffix(header, ";base64")
	if contentType == "" {
		contentType = detected
	}
	return data, contentType, nil
}

func decodeBase64(payload string) ([]byte, string, error) {
	if base64.StdEncoding.DecodedLen(len(payload)) > maxMediaBytes+2 {
		return nil, "", fmt.Errorf("%w: larger than %d bytes", ErrInvalidMedia, maxMediaBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidMedia, err)
	}
	if len(data) > maxMediaBytes {
		return nil, "", fmt.Errorf("%w: larger than %d bytes", ErrInvalidMedia, maxMediaBytes)
	}
	return data, http.DetectContentType(data), nil
}
