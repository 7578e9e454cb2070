// Package media stores uploaded article images and resamples them after
// save so stored files never exceed the display width.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

const (
	// MaxImageWidth is the widest an article image is stored at.
	MaxImageWidth = 1200

	// JPEGQuality is the re-encoding quality used when resampling.
	JPEGQuality = 85

	// slugLength caps how much of the title ends up in the filename.
	slugLength = 30
)

// ErrImageTooLarge indicates an upload above the configured size limit.
var ErrImageTooLarge = fmt.Errorf("image exceeds maximum size")

// ErrUnsupportedImageType indicates an upload with a disallowed extension.
var ErrUnsupportedImageType = fmt.Errorf("unsupported image type")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Store writes article images under a media root directory.
type Store struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// NewStore creates a Store rooted at dir, creating it if needed.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, "articles"), 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// UploadPath derives the storage path for an article image from the
// upload timestamp and a sanitized slug of the title.
func UploadPath(title, ext string, now time.Time) string {
	timestamp := now.Format("20060102_150405")
	return filepath.Join("articles", fmt.Sprintf("article_%s_%s%s", timestamp, titleSlug(title), ext))
}

// titleSlug keeps only alphanumerics, dashes and underscores from the
// first 30 characters of the title, lowercased.
func titleSlug(title string) string {
	if len(title) > slugLength {
		title = title[:slugLength]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Save writes the upload to disk and returns its path relative to the
// media root. The declared size is checked against the limit and the
// copy is capped at the same bound in case the declaration lied.
func (s *Store) Save(title, filename string, size int64, r io.Reader) (string, error) {
	if size > s.maxBytes {
		return "", ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedImageType
	}

	relPath := UploadPath(title, ext, s.now())
	absPath := filepath.Join(s.dir, relPath)

	file, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		os.Remove(absPath)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(absPath)
		return "", ErrImageTooLarge
	}

	return relPath, nil
}

// Process resamples the image at relPath so its width does not exceed
// MaxImageWidth, preserving aspect ratio and re-encoding at quality 85.
// Images at or under the limit are left untouched.
func (s *Store) Process(relPath string) error {
	absPath := filepath.Join(s.dir, relPath)

	img, err := imaging.Open(absPath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	if img.Bounds().Dx() <= MaxImageWidth {
		return nil
	}

	resized := imaging.Resize(img, MaxImageWidth, 0, imaging.Lanczos)
	if err := imaging.Save(resized, absPath, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("save resized image: %w", err)
	}

	return nil
}

// Remove deletes a stored image.
func (s *Store) Remove(relPath string) error {
	if err := os.Remove(filepath.Join(s.dir, relPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
