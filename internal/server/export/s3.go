// Package export publishes note snapshots to S3-compatible storage.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/netx"
	sc "github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	contentType   = "application/json"
	presignExpiry = 15 * time.Minute
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	upload = netx.UploadToPresignedURL
)

// Document is the exported JSON layout.
type Document struct {
	UserID     int64         `json:"user_id"`
	ExportedAt time.Time     `json:"exported_at"`
	Notes      []models.Note `json:"notes"`
}

// S3Exporter uploads through a presigned PUT and hands back a presigned GET.
type S3Exporter struct {
	config *sc.Config
	now    func() time.Time
}

func NewS3Exporter(config *sc.Config) *S3Exporter {
	return &S3Exporter{config: config, now: time.Now}
}

// StorageKey returns exports/<uid>/<yyyy>/<mm>/<dd>/<uuid>.json.
func StorageKey(userID int64, t time.Time) string {
	return fmt.Sprintf("exports/%d/%04d/%02d/%02d/%v.json", userID, t.Year(), int(t.Month()), t.Day(), uuid.New())
}

func (e *S3Exporter) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(e.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			e.config.S3RootUser,
			e.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(e.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// Export stores notes as one JSON object and returns a time-limited download URL.
func (e *S3Exporter) Export(ctx context.Context, userID int64, notes []models.Note) (string, error) {
	if notes == nil {
		notes = []models.Note{}
	}
	now := e.now().UTC()

	body, err := json.MarshalIndent(Document{UserID: userID, ExportedAt: now, Notes: notes}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error encoding export: %w", err)
	}

	presignClient, err := e.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("error creating presign client: %w", err)
	}

	bucket := e.config.S3Bucket
	key := StorageKey(userID, now)

	put, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("error presigning upload: %w", err)
	}

	if err := upload(ctx, put.URL, contentType, body); err != nil {
		return "", fmt.Errorf("error uploading export: %w", err)
	}

	get, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("error presigning download: %w", err)
	}

	return get.URL, nil
}
