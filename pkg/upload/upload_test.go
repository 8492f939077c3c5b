package upload_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastabarriere/api/pkg/upload"
)

func TestEncodeImage(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}

	f, err := upload.EncodeImage(bytes.NewReader(payload), "pothole.jpg", "image/jpeg")
	require.NoError(t, err)

	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "pothole.jpg", f.Name)
	assert.Equal(t, "image/jpeg", f.ContentType)
	assert.Equal(t, len(payload), f.Size)
	assert.Equal(t, "data:image/jpeg;base64,/9j/4AEC", f.URL)
}

func TestEncodeImageRejectsNonImage(t *testing.T) {
	_, err := upload.EncodeImage(strings.NewReader("%PDF-1.4"), "doc.pdf", "application/pdf")
	assert.ErrorIs(t, err, upload.ErrNotAnImage)
}

func TestEncodeImageRejectsOversize(t *testing.T) {
	big := bytes.NewReader(make([]byte, upload.MaxImageBytes+1))

	_, err := upload.EncodeImage(big, "huge.png", "image/png")
	assert.ErrorIs(t, err, upload.ErrTooLarge)
}

func TestEncodeImageAcceptsExactLimit(t *testing.T) {
	exact := bytes.NewReader(make([]byte, upload.MaxImageBytes))

	f, err := upload.EncodeImage(exact, "limit.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, upload.MaxImageBytes, f.Size)
}
