// Package storage uploads listing media to object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// Store puts and removes public objects.
type Store interface {
	// Put uploads body under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL returns the object key behind a public URL this store
	// produced.
	KeyFromURL(url string) (string, bool)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9.\-]`)

// CleanName replaces every character other than letters, digits, dots and
// hyphens with an underscore.
func CleanName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// ObjectKey returns the key for an uploaded property image:
// properties/<propertyID>/<unixMillis>_<cleanName>.
func ObjectKey(propertyID, fileName string, now time.Time) string {
	return fmt.Sprintf("properties/%s/%d_%s", CleanName(propertyID), now.UnixMilli(), CleanName(fileName))
}

// IsImage reports whether a content type names an image.
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
