package application

import (
	"context"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/pkg/helpers"
)

var allowedMedia = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"application/pdf": true,
}

// UploadFunc writes r to bucket/object and returns its public URL.
type UploadFunc func(ctx context.Context, bucket, object, contentType string, r io.Reader) (string, error)

// MediaService is the file module: product images and data sheets in GCS.
type MediaService struct {
	Bucket string
	Upload UploadFunc
	Logger *logrus.Logger
}

func NewMediaService(gcs *storage.Client, bucket string, logger *logrus.Logger) *MediaService {
	s := &MediaService{Bucket: bucket, Logger: logger}
	if gcs != nil {
		s.Upload = func(ctx context.Context, bucket, object, contentType string, r io.Reader) (string, error) {
			return helpers.UploadObject(ctx, gcs, bucket, object, contentType, r)
		}
	}
	return s
}

// ObjectPath is where an uploaded product file lands: products/<uuid><ext>.
func ObjectPath(filename string) string {
	return path.Join("products", uuid.NewString()+strings.ToLower(path.Ext(filename)))
}

func (s *MediaService) UploadProductFile(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	if s.Upload == nil || s.Bucket == "" {
		return "", ErrUploadNotConfigured
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !allowedMedia[ct] {
		return "", ErrUnsupportedMedia
	}
	object := ObjectPath(filename)
	url, err := s.Upload(ctx, s.Bucket, object, ct, r)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("object", object).Error("upload to gcs failed")
		}
		return "", err
	}
	return url, nil
}
