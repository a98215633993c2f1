// Package artwork caches track artwork on disk, keyed by owner track id.
package artwork

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // decoded then re-encoded as JPEG

	"os"
	"path/filepath"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nfnt/resize"
)

const (
	// maxDim bounds stored artwork; the now-playing surface never needs more.
	maxDim = 600

	jpegQuality = 80
	cacheSize   = 32
)

// Store persists artwork bytes under a single directory with an in-memory
// read cache. Tokens returned by Save are file names relative to the
// directory, safe to store in playlist rows.
type Store struct {
	dir   string
	cache *lru.Cache[string, []byte]
}

// NewStore creates the artwork directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artwork dir: %w", err)
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, cache: cache}, nil
}

// Save stores artwork for the given owner and returns its token.
// Oversized images are downscaled and re-encoded as JPEG; bytes that do not
// decode as an image are stored untouched rather than rejected.
func (s *Store) Save(data []byte, owner uuid.UUID) (string, error) {
	if encoded, err := normalize(data); err == nil {
		data = encoded
	}

	token := owner.String() + ".jpg"
	if err := os.WriteFile(filepath.Join(s.dir, token), data, 0o644); err != nil {
		return "", fmt.Errorf("write artwork: %w", err)
	}
	s.cache.Add(token, data)
	return token, nil
}

// Load returns artwork bytes for a token, or nil if the file is gone.
func (s *Store) Load(token string) ([]byte, error) {
	if token == "" {
		return nil, nil
	}
	if data, ok := s.cache.Get(token); ok {
		return data, nil
	}

	data, err := os.ReadFile(filepath.Join(s.dir, token))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read artwork: %w", err)
	}
	s.cache.Add(token, data)
	return data, nil
}

// Delete removes stored artwork. Deleting a missing token is a no-op.
func (s *Store) Delete(token string) error {
	if token == "" {
		return nil
	}
	s.cache.Remove(token)
	err := os.Remove(filepath.Join(s.dir, token))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func normalize(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
