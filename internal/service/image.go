package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/feastly/backend/config"
)

// ImageService stores base64-encoded recipe images in S3 and hands back the
// public URL. Plain URLs pass through untouched.
type ImageService struct {
	s3Config *config.S3Config
}

func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// Store accepts either a `data:image/...;base64,` payload or a plain URL.
// Data URIs are decoded and uploaded; anything else is returned as-is so
// clients can keep referencing already-hosted images.
func (s *ImageService) Store(ctx context.Context, image string) (string, error) {
	if !strings.HasPrefix(image, "data:image") {
		return image, nil
	}
	if s.s3Config == nil {
		return "", fmt.Errorf("image storage is not configured")
	}

	header, encoded, found := strings.Cut(image, ";base64,")
	if !found {
		return "", fmt.Errorf("malformed image data URI")
	}
	ext := strings.TrimPrefix(header, "data:image/")
	if ext == "" || strings.ContainsAny(ext, "/\\") {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode image data: %w", err)
	}

	fileName := fmt.Sprintf("recipe-images/%s.%s", uuid.New().String(), ext)
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/" + ext),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] Uploaded recipe image to %s", publicURL)
	return publicURL, nil
}
