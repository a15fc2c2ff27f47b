// Package attachments stores manifest documents (scans, signed paper
// manifests) in an S3-compatible backend. The dashboard never proxies file
// bytes: uploads and downloads go through presigned URLs, only the metadata
// row lands in the store.
package attachments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rfaguiar/manifestops/internal/common"
	"github.com/rfaguiar/manifestops/internal/config"
	"github.com/rfaguiar/manifestops/internal/logging"
	"github.com/rfaguiar/manifestops/internal/models"
	"github.com/rfaguiar/manifestops/internal/session"
	"github.com/rfaguiar/manifestops/internal/store/storemanager"
)

const presignValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

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
)

type Service struct {
	db      *sql.DB
	manager storemanager.Manager
	config  *config.Config
	logger  logging.Logger
}

func NewService(db *sql.DB, manager storemanager.Manager, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		db:      db,
		manager: manager,
		config:  cfg,
		logger:  logger.With("module", "attachments"),
	}
}

// StorageKeyFor produces the object key for a new attachment. Keys are
// grouped by manifest so bucket listings stay navigable.
func StorageKeyFor(manifestID string) string {
	return fmt.Sprintf("manifests/%s/%v", manifestID, uuid.New())
}

func (s *Service) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// Attach registers an attachment on an existing manifest and returns the
// stored metadata together with a presigned PUT URL the caller uploads to.
func (s *Service) Attach(ctx context.Context, sess *session.Session, manifestID, fileName string) (*models.Attachment, string, error) {
	if _, err := s.manager.Manifests(s.db).Get(ctx, manifestID); err != nil {
		return nil, "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, "", err
	}

	bucket := s.config.S3Bucket
	key := StorageKeyFor(manifestID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return nil, "", err
	}

	a := &models.Attachment{
		ID:         uuid.NewString(),
		ManifestID: manifestID,
		FileName:   fileName,
		StorageKey: key,
		UploadedBy: sess.Username,
		CreatedAt:  time.Now(),
	}
	if err := s.manager.Attachments(s.db).Insert(ctx, a); err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "attachment registered", "manifest", manifestID, "file", fileName)
	return a, req.URL, nil
}

// DownloadURL presigns a GET for one of the manifest's attachments.
func (s *Service) DownloadURL(ctx context.Context, manifestID, attachmentID string) (string, error) {
	files, err := s.manager.Attachments(s.db).ListByManifest(ctx, manifestID)
	if err != nil {
		return "", err
	}

	var key string
	for _, f := range files {
		if f.ID == attachmentID {
			key = f.StorageKey
			break
		}
	}
	if key == "" {
		return "", fmt.Errorf("attachment %s: %w", attachmentID, common.ErrNotFound)
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
