package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"wescape-backend/internal/apierr"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const coverUploadExpiry = 5 * time.Minute

// CoverService issues presigned S3 PUT URLs for trip cover images. The
// client uploads directly to S3 and then patches the trip's cover_image.
type CoverService struct {
	tripRepo TripOwnershipChecker
	s3Client *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewCoverService creates a new cover-image upload service
func NewCoverService(
	tripRepo TripOwnershipChecker,
	region, bucket, accessKey, secretKey, endpoint string,
) (*CoverService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &CoverService{
		tripRepo: tripRepo,
		s3Client: s3Client,
		bucket:   bucket,
		region:   region,
		endpoint: endpoint,
	}, nil
}

// CoverUploadRequest asks for a presigned upload slot.
type CoverUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// CoverUploadResponse carries the presigned PUT URL and the public object
// URL to store as the trip's cover_image after the upload completes.
type CoverUploadResponse struct {
	UploadURL string `json:"upload_url"`
	CoverURL  string `json:"cover_url"`
	ExpiresIn int    `json:"expires_in"`
}

// PresignCoverUpload verifies trip ownership and returns a presigned PUT URL
// valid for five minutes.
func (s *CoverService) PresignCoverUpload(ctx context.Context, userID, tripID, filename, contentType string) (*CoverUploadResponse, error) {
	owned, err := s.tripRepo.IsOwned(ctx, tripID, userID)
	if err != nil {
		return nil, apierr.BadRequest("Failed to verify trip ownership").Wrap(err)
	}
	if !owned {
		return nil, apierr.Forbidden("Access denied: Trip not found or not owned by user")
	}

	ext := path.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("trips/%s/cover/%s%s", tripID, uuid.New().String(), ext)

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = coverUploadExpiry
	})
	if err != nil {
		return nil, apierr.Internal("Failed to generate upload URL", err)
	}

	return &CoverUploadResponse{
		UploadURL: request.URL,
		CoverURL:  s.objectURL(key),
		ExpiresIn: int(coverUploadExpiry.Seconds()),
	}, nil
}

func (s *CoverService) objectURL(key string) string {
	if s.endpoint != "" {
		return strings.TrimRight(s.endpoint, "/") + "/" + s.bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
