// Package importer brings audio files into the library: the file is copied
// into the library directory, its tags and artwork are extracted, and a
// playlist row is created.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/google/uuid"

	"github.com/llehouerou/pickup/internal/player"
	"github.com/llehouerou/pickup/internal/playlist"
)

// ErrUnsupportedFormat is returned for files the player cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// PlaylistSink receives the imported track's playlist row.
type PlaylistSink interface {
	Add(t playlist.Track) error
}

// ArtworkSaver stores embedded artwork and returns its token.
type ArtworkSaver interface {
	Save(data []byte, owner uuid.UUID) (string, error)
}

// Importer copies files into the library directory and registers them.
type Importer struct {
	libraryDir string
	sink       PlaylistSink
	artwork    ArtworkSaver
}

// New creates an importer. artwork may be nil to skip artwork extraction.
func New(libraryDir string, sink PlaylistSink, artwork ArtworkSaver) *Importer {
	return &Importer{libraryDir: libraryDir, sink: sink, artwork: artwork}
}

// ImportFile copies src into the library and appends it to the playlist.
// Tag metadata is best effort: an untagged file imports under its file
// name, and an unprobeable one imports with zero duration.
func (i *Importer) ImportFile(src string) (playlist.Track, error) {
	if !player.IsAudioFile(src) {
		return playlist.Track{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(src))
	}

	id := uuid.New()
	fileName := id.String() + strings.ToLower(filepath.Ext(src))
	dst := filepath.Join(i.libraryDir, fileName)
	if err := copyFile(src, dst); err != nil {
		return playlist.Track{}, fmt.Errorf("copy into library: %w", err)
	}

	t := playlist.Track{
		ID:       id,
		FileName: fileName,
		Title:    titleFallback(src),
	}

	if meta, err := readTags(dst); err == nil {
		if meta.Title() != "" {
			t.Title = meta.Title()
		}
		if pic := meta.Picture(); pic != nil && i.artwork != nil {
			if token, err := i.artwork.Save(pic.Data, id); err == nil {
				t.ArtworkPath = token
			}
		}
	}

	if dur, err := player.ProbeDuration(dst); err == nil {
		t.Duration = dur
	}

	if err := i.sink.Add(t); err != nil {
		os.Remove(dst)
		return playlist.Track{}, fmt.Errorf("add to playlist: %w", err)
	}
	return t, nil
}

// LibraryPath returns the absolute path for a stored file name.
func (i *Importer) LibraryPath(fileName string) string {
	return filepath.Join(i.libraryDir, fileName)
}

func readTags(path string) (tag.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tag.ReadFrom(f)
}

func titleFallback(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		os.Remove(dst)
		return fmt.Errorf("copy: %w", err)
	}
	return dstFile.Close()
}
