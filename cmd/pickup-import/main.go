// Command pickup-import adds audio files to the pickup library from the
// command line. Directories are imported recursively in name order.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"

	"github.com/llehouerou/pickup/internal/artwork"
	"github.com/llehouerou/pickup/internal/config"
	"github.com/llehouerou/pickup/internal/importer"
	"github.com/llehouerou/pickup/internal/player"
	"github.com/llehouerou/pickup/internal/playlist"
	"github.com/llehouerou/pickup/internal/state"
)

func main() {
	logger := log.New(os.Stderr)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: pickup-import <file-or-dir> [...]")
		os.Exit(2)
	}

	if err := run(logger, os.Args[1:]); err != nil {
		logger.Fatal("import failed", "err", err)
	}
}

func run(logger *log.Logger, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	stateMgr, err := state.Open()
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer stateMgr.Close()

	tracks := playlist.NewStore(stateMgr.DB())

	artStore, err := artwork.NewStore(filepath.Join(xdg.DataHome, "pickup", "artwork"))
	if err != nil {
		return fmt.Errorf("open artwork store: %w", err)
	}

	imp := importer.New(cfg.LibraryDir, tracks, artStore)

	var files []string
	for _, arg := range args {
		found, err := collectAudioFiles(arg)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no audio files found")
	}

	imported := 0
	for _, file := range files {
		t, err := imp.ImportFile(file)
		if err != nil {
			logger.Warn("skipped", "file", filepath.Base(file), "err", err)
			continue
		}
		logger.Info("imported", "title", t.Title, "duration", t.Duration)
		imported++
	}

	logger.Info("done", "imported", imported, "skipped", len(files)-imported)
	return nil
}

// collectAudioFiles expands a path into playable files, sorted by name.
func collectAudioFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && player.IsAudioFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
