package application

import (
	"context"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPath(t *testing.T) {
	p := ObjectPath("Datenblatt.PDF")
	assert.Regexp(t, regexp.MustCompile(`^products/[0-9a-f-]{36}\.pdf$`), p)
}

func TestUploadProductFile(t *testing.T) {
	var gotObject, gotType, gotBody string
	svc := &MediaService{
		Bucket: "media",
		Upload: func(_ context.Context, bucket, object, contentType string, r io.Reader) (string, error) {
			b, _ := io.ReadAll(r)
			gotObject, gotType, gotBody = object, contentType, string(b)
			return "https://storage.googleapis.com/" + bucket + "/" + object, nil
		},
	}

	url, err := svc.UploadProductFile(context.Background(), strings.NewReader("png-bytes"), "kit.png", "image/PNG; charset=binary")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotObject, "products/"))
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "png-bytes", gotBody)
	assert.Equal(t, "https://storage.googleapis.com/media/"+gotObject, url)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc := &MediaService{Bucket: "media", Upload: func(context.Context, string, string, string, io.Reader) (string, error) {
		t.Fatal("upload must not be called")
		return "", nil
	}}
	_, err := svc.UploadProductFile(context.Background(), strings.NewReader("x"), "run.sh", "text/x-shellscript")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestUploadNotConfigured(t *testing.T) {
	svc := NewMediaService(nil, "media", nil)
	_, err := svc.UploadProductFile(context.Background(), strings.NewReader("x"), "a.png", "image/png")
	assert.ErrorIs(t, err, ErrUploadNotConfigured)
}
