package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Uploader stores media in an S3-compatible bucket. The endpoint is
// configurable so the same code works against R2/MinIO-style backends.
type S3Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Uploader() (*S3Uploader, error) {
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	bucket := os.Getenv("S3_BUCKET")
	region := os.Getenv("S3_REGION")
	endpoint := strings.TrimRight(os.Getenv("S3_ENDPOINT"), "/")
	publicURL := strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/")

	if accessKey == "" || secretKey == "" || bucket == "" || region == "" || endpoint == "" {
		return nil, fmt.Errorf("media: missing required S3 environment variables")
	}
	if publicURL == "" {
		publicURL = endpoint + "/" + bucket
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("media: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &S3Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
	}, nil
}

// Upload streams the file at localPath into the bucket under a fresh
// uuid-based key and returns its durable URL. MP4 uploads get their
// duration probed from the container header before the upload.
func (u *S3Uploader) Upload(ctx context.Context, localPath string, contentType string) (*UploadResult, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("media: failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	var duration float64
	if isVideoContentType(contentType) {
		if d, err := ProbeDuration(file); err == nil {
			duration = d
		}
		if _, err := file.Seek(0, 0); err != nil {
			return nil, fmt.Errorf("media: failed to rewind %s: %w", localPath, err)
		}
	}

	key := ObjectKey(localPath)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("media: failed to upload %s: %w", key, err)
	}

	return &UploadResult{
		URL:      u.publicURL + "/" + key,
		Duration: duration,
	}, nil
}

// ObjectKey derives a collision-free object key, keeping the original
// file extension so content type stays inferable from the URL.
func ObjectKey(localPath string) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	return uuid.New().String() + ext
}

func isVideoContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "video/")
}
