package media

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	// maxSelectAttempts bounds the number of random descents per selection
	maxSelectAttempts = 5

	// maxDescentDepth stops a descent that loops through symlinked directories
	maxDescentDepth = 32
)

// ErrNotFound is returned when no matching file was reached within the attempt budget
var ErrNotFound = errors.New("no valid media found")

// errMiss marks a single failed descent, it never leaves this package
var errMiss = errors.New("random descent missed")

// Selector picks a random file by descending randomly through directory trees.
// It is not safe for concurrent use; the Provider serializes access.
type Selector struct {
	logger  *zap.Logger
	rng     *rand.Rand
	exclude func(path string) bool
}

// NewSelector creates a selector drawing from rng.
// exclude may be nil; excluded files count as misses.
func NewSelector(logger *zap.Logger, rng *rand.Rand, exclude func(path string) bool) *Selector {
	return &Selector{
		logger:  logger,
		rng:     rng,
		exclude: exclude,
	}
}

// Select picks one root uniformly at random and tries up to five random descents from it.
// Extensions are compared case-insensitively and without the leading dot.
func (s *Selector) Select(roots []string, allowed map[string]struct{}) (string, error) {
	if len(roots) == 0 {
		return "", ErrNotFound
	}
	root := roots[s.rng.IntN(len(roots))]

	for attempt := 0; attempt < maxSelectAttempts; attempt++ {
		s.logger.Debug("Trying to get a valid media file",
			zap.Int("attempt", attempt),
			zap.String("root", root))

		entries, err := os.ReadDir(root)
		if err != nil {
			return "", fmt.Errorf("failed to read root %s: %w", root, err)
		}

		path, err := s.descend(root, entries, allowed, 0)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, errMiss) {
			return "", err
		}
	}

	return "", ErrNotFound
}

// descend picks one entry of dir; directories are recursed into, files are matched by extension
func (s *Selector) descend(dir string, entries []os.DirEntry, allowed map[string]struct{}, depth int) (string, error) {
	if len(entries) == 0 {
		return "", errMiss
	}
	if depth >= maxDescentDepth {
		s.logger.Warn("Directory descent too deep, possible symlink cycle", zap.String("dir", dir))
		return "", errMiss
	}

	path := filepath.Join(dir, entries[s.rng.IntN(len(entries))].Name())
	s.logger.Debug("Trying an entry", zap.String("path", path))

	// Stat follows symlinks so linked directories are walked too
	info, err := os.Stat(path)
	if err != nil {
		s.logger.Debug("Entry not accessible", zap.String("path", path), zap.Error(err))
		return "", errMiss
	}

	if info.IsDir() {
		children, err := os.ReadDir(path)
		if err != nil {
			s.logger.Debug("Directory not readable", zap.String("path", path), zap.Error(err))
			return "", errMiss
		}
		return s.descend(path, children, allowed, depth+1)
	}

	if _, ok := allowed[Extension(path)]; !ok {
		s.logger.Debug("Invalid extension", zap.String("path", path))
		return "", errMiss
	}
	if s.exclude != nil && s.exclude(path) {
		s.logger.Debug("Skipping previously failed file", zap.String("path", path))
		return "", errMiss
	}
	return path, nil
}

// Extension returns the lower-case extension of path without the dot
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ExtensionSet builds a lookup set from a list of extensions, tolerating dots and case
func ExtensionSet(exts ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range exts {
		for _, e := range list {
			set[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
		}
	}
	return set
}
