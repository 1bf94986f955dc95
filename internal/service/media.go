package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tastebase/backend/config"
)

const mediaKeyPrefix = "recipe-images"

// MediaService stores recipe images in the S3-backed media store. Uploads
// are synchronous; callers treat deletions as best-effort.
type MediaService struct {
	s3  *config.S3Config
	log *logrus.Entry
}

func NewMediaService(s3Config *config.S3Config) *MediaService {
	return &MediaService{
		s3:  s3Config,
		log: logrus.WithField("component", "media"),
	}
}

// Upload stores the file under a fresh object key and returns its public URL.
func (s *MediaService) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("%s/%s%s", mediaKeyPrefix, uuid.New().String(), ext)

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	url := s.s3.PublicURL(key)
	s.log.WithFields(logrus.Fields{"key": key, "size": len(data)}).Info("uploaded recipe image")
	return url, nil
}

// Delete removes the object referenced by a previously returned URL.
func (s *MediaService) Delete(ctx context.Context, url string) error {
	key, err := s.s3.ObjectKeyFromURL(url)
	if err != nil {
		return err
	}

	_, err = s.s3.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}
	return nil
}
