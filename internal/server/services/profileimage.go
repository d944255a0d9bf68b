package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/logging"
	sc "github.com/dmitrijs2005/hisabkitab/internal/server/config"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) error {
		_, err := c.PutObject(ctx, in, optFns...)
		return err
	}
)

// ProfileImage is an uploaded picture as received from the client.
type ProfileImage struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProfileImageService stores profile pictures in an S3-compatible bucket
// and records their public URL on the user.
type ProfileImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	log         logging.Logger
}

func NewProfileImageService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config, log logging.Logger) *ProfileImageService {
	return &ProfileImageService{
		db:          db,
		repomanager: m,
		config:      config,
		log:         log.With("module", "profile_images"),
	}
}

func StorageKey(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("profile_images", userID, uuid.NewString()+ext)
}

func (s *ProfileImageService) publicURL(key string) string {
	return strings.TrimRight(s.config.S3BaseEndpoint, "/") + "/" + s.config.S3Bucket + "/" + key
}

func (s *ProfileImageService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *ProfileImageService) Upload(ctx context.Context, userID string, img ProfileImage) (string, *models.User, error) {
	if !strings.HasPrefix(img.ContentType, "image/") {
		return "", nil, fmt.Errorf("%w: only image uploads are accepted", common.ErrorValidation)
	}
	if s.config.MaxUploadSize > 0 && img.Size > s.config.MaxUploadSize {
		return "", nil, fmt.Errorf("%w: image exceeds %d bytes", common.ErrorTooLarge, s.config.MaxUploadSize)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("s3 config: %w", err)
	}

	bucket := s.config.S3Bucket
	key := StorageKey(userID, img.Filename)

	err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          img.Body,
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(img.Size),
	})
	if err != nil {
		s.log.Error(ctx, "profile image upload failed", "user_id", userID, "error", err)
		return "", nil, fmt.Errorf("upload image: %w", err)
	}

	url := s.publicURL(key)

	user, err := s.repomanager.Users(s.db).SetProfileImage(ctx, userID, url)
	if err != nil {
		return "", nil, err
	}
	return url, user, nil
}
