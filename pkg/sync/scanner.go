package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	gosync "sync"

	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/foldermirror/pkg/digest"
	"github.com/sdejongh/foldermirror/pkg/logging"
	"github.com/sdejongh/foldermirror/pkg/models"
	"github.com/sdejongh/foldermirror/pkg/storage"
)

// Scanner builds the manifest of a tree
type Scanner struct {
	hasher   *digest.Hasher
	workers  int
	excluder *excluder
	logger   logging.Logger
}

// NewScanner creates a scanner hashing up to workers files concurrently
func NewScanner(hasher *digest.Hasher, workers int, exclude []string, logger logging.Logger) *Scanner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Scanner{
		hasher:   hasher,
		workers:  workers,
		excluder: newExcluder(exclude),
		logger:   logger,
	}
}

// Scan walks tree and returns its manifest. A missing or unreadable root, or
// an unreadable directory, yields *models.ScanError; a file that cannot be
// hashed yields *models.HashError. No partial manifest is ever returned.
func (s *Scanner) Scan(ctx context.Context, tree *storage.Tree) (*models.Manifest, error) {
	info, err := tree.Lstat(".")
	if err != nil {
		return nil, &models.ScanError{Root: tree.Root(), Err: err}
	}
	if !info.IsDir() {
		return nil, &models.ScanError{Root: tree.Root(), Err: fmt.Errorf("not a directory")}
	}

	manifest := models.NewManifest()
	var files []string

	err = tree.Walk(ctx, func(rel string, info os.FileInfo) error {
		if s.excluder.match(rel) {
			manifest.AddExcluded(rel)
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case info.IsDir():
			manifest.AddDir(rel)
		case info.Mode().IsRegular():
			files = append(files, rel)
		default:
			s.logger.Debug(ctx, "Skipping non-regular file", logging.Fields{
				"root": tree.Root(),
				"path": rel,
				"mode": info.Mode().String(),
			})
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &models.ScanError{Root: tree.Root(), Err: err}
	}

	if err := s.hashAll(ctx, tree, files, manifest); err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "Scanned tree", logging.Fields{
		"root":  tree.Root(),
		"files": len(manifest.Files),
		"dirs":  len(manifest.Dirs),
	})

	return manifest, nil
}

// hashAll digests files with at most s.workers reads in flight.
// The first failure cancels the remaining work.
func (s *Scanner) hashAll(ctx context.Context, tree *storage.Tree, files []string, manifest *models.Manifest) error {
	var mu gosync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, rel := range files {
		g.Go(func() error {
			d, err := s.hasher.Sum(gctx, tree.FS(), filepath.FromSlash(rel))
			if err != nil {
				var hashErr *models.HashError
				if errors.As(err, &hashErr) {
					hashErr.Path = rel
				}
				return err
			}
			mu.Lock()
			manifest.AddFile(rel, d)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}
