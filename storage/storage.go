// Package storage abstracts the object storage media bytes live in
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"bitwise74/studio-api/aws"
	"bitwise74/studio-api/cloudflare"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
)

var (
	ErrInvalidKey = errors.New("invalid object key")
	ErrInvalidURL = errors.New("can't derive an object key from url")
)

// Store is implemented by every object storage backend. Remove must not
// fail for objects that are already gone
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

// New creates the store selected by storage.type
func New() (Store, error) {
	switch t := viper.GetString("storage.type"); t {
	case "local":
		return NewLocal(viper.GetString("storage.local_dir"), viper.GetString("storage.public_url"))
	case "s3":
		return aws.NewS3()
	case "r2":
		return cloudflare.NewR2()
	default:
		return nil, fmt.Errorf("unsupported storage type %q", t)
	}
}

// NewKey generates a collision resistant key inside the user's folder
// keeping the original extension, e.g. "u1/1712345678901-V1StGXR8_Z.mp4".
// The user id has to be a single path segment, otherwise OwnedBy would
// never recognize the key
func NewKey(userID, filename string) (string, error) {
	if userID == "" || strings.ContainsAny(userID, `/\`) || userID == "." || userID == ".." {
		return "", ErrInvalidKey
	}

	suffix, err := gonanoid.New(10)
	if err != nil {
		return "", fmt.Errorf("failed to generate key suffix, %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%d-%s%s", userID, time.Now().UnixMilli(), suffix, ext), nil
}

// KeyFromURL takes the last two path segments of a public URL, which is
// the "<user>/<file>" key the object was stored under
func KeyFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w, %w", ErrInvalidURL, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", ErrInvalidURL
	}

	return path.Join(parts[len(parts)-2:]...), nil
}

// OwnedBy reports whether key lives in the user's folder. Keys that
// would resolve somewhere else are never owned
func OwnedBy(key, userID string) bool {
	if path.Clean(key) != key || strings.Contains(key, "..") {
		return false
	}

	dir, rest, ok := strings.Cut(key, "/")
	return ok && dir == userID && rest != ""
}
