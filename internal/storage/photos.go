// Package storage keeps cat photos in S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"catcare/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the part of the S3 client used for photos.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type PhotoStorage struct {
	client        ObjectAPI
	bucketName    string
	publicBaseURL string
}

// NewPhotoStorage returns a photo store for bucket. Without a public base
// URL the bucket's virtual-hosted S3 address is used.
func NewPhotoStorage(client ObjectAPI, bucketName, publicBaseURL string) *PhotoStorage {
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucketName)
	}

	return &PhotoStorage{
		client:        client,
		bucketName:    bucketName,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Upload stores a photo of the cat and returns its storage key and public
// URL.
func (s *PhotoStorage) Upload(ctx context.Context, catID, filename, contentType string, body io.Reader) (string, string, error) {
	key := PhotoKey(catID, filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload cat photo: %w", err)
	}

	return key, s.PublicURL(key), nil
}

func (s *PhotoStorage) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete cat photo: %w", err)
	}

	return nil
}

func (s *PhotoStorage) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}

// PhotoKey is cats/<cat id>/<random><ext>, keeping the upload's extension.
func PhotoKey(catID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("cats/%s/%s%s", catID, utils.RandomID(16), ext)
}
