package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/audity/constants"
	"github.com/joseph-ayodele/audity/internal/entity"
)

// FSIngestor reads documents from the local filesystem.
type FSIngestor struct {
	logger *slog.Logger
	// MaxBytes rejects larger files when > 0.
	MaxBytes int64
}

func NewFSIngestor(logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{logger: logger}
}

// LoadFile reads one document. The format tag is empty for extensions the
// extractor does not understand; the pipeline reports those.
func (i *FSIngestor) LoadFile(path string) (entity.SourceDocument, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path error", "path", path, "error", err)
		return entity.SourceDocument{}, err
	}
	if i.MaxBytes > 0 {
		info, err := os.Stat(abs)
		if err != nil {
			return entity.SourceDocument{}, err
		}
		if info.Size() > i.MaxBytes {
			return entity.SourceDocument{}, fmt.Errorf("file is %d bytes, limit is %d", info.Size(), i.MaxBytes)
		}
	}
	body, err := os.ReadFile(abs)
	if err != nil {
		i.logger.Error("read error", "path", abs, "error", err)
		return entity.SourceDocument{}, err
	}
	return entity.SourceDocument{
		Filename: filepath.Base(abs),
		Format:   constants.MapExtToFormat(filepath.Ext(abs)),
		Body:     body,
	}, nil
}

// LoadPaths reads the given files in order. Unreadable files are returned as
// FileErrors and do not stop the rest.
func (i *FSIngestor) LoadPaths(paths []string) ([]entity.SourceDocument, []FileError) {
	docs := make([]entity.SourceDocument, 0, len(paths))
	var failed []FileError
	for _, p := range paths {
		doc, err := i.LoadFile(p)
		if err != nil {
			failed = append(failed, FileError{Path: p, Err: err})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, failed
}

// LoadDirectory walks root, skips hidden entries if requested, and loads every
// file with an allowed extension.
func (i *FSIngestor) LoadDirectory(root string, skipHidden bool) ([]entity.SourceDocument, DirStats, []FileError, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, nil, errors.New("root path is required")
	}

	var docs []entity.SourceDocument
	var failed []FileError
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			failed = append(failed, FileError{Path: path, Err: walkErr})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		doc, err := i.LoadFile(path)
		if err != nil {
			failed = append(failed, FileError{Path: path, Err: err})
			stats.Failed++
			return nil
		}
		docs = append(docs, doc)
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return docs, stats, failed, fmt.Errorf("walk: %w", err)
	}
	i.logger.Debug("directory loaded", "root", root, "matched", stats.Matched, "failed", stats.Failed)
	return docs, stats, failed, nil
}
