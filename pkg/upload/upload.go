// Package upload turns submitted report photos into self-contained data URLs,
// so reports need no blob store alongside Postgres.
package upload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/segmentio/ksuid"
)

// MaxImageBytes caps photo size before base64 expansion.
const MaxImageBytes = 3 << 20

var (
	ErrNotAnImage = errors.New("file is not an image")
	ErrTooLarge   = fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
)

type File struct {
	ID          string `json:"fileId"`
	Name        string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	URL         string `json:"url"`
}

// EncodeImage reads at most MaxImageBytes+1 from r and produces a data URL.
// Only image/* content types are accepted.
func EncodeImage(r io.Reader, name, contentType string) (*File, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotAnImage
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	if len(data) > MaxImageBytes {
		return nil, ErrTooLarge
	}

	return &File{
		ID:          ksuid.New().String(),
		Name:        name,
		ContentType: contentType,
		Size:        len(data),
		URL:         fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)),
	}, nil
}
