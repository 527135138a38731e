package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/swarmakit/layoutd/internal/manifest"
)

// SeedConfig describes one seeding pass over a manifest directory.
type SeedConfig struct {
	// Dir is the directory the patterns are matched under.
	Dir string
	// Patterns are doublestar globs relative to Dir.
	Patterns []string
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Seed loads every manifest matching cfg into s and returns how many were
// stored. Files that fail to decode are skipped with a warning so one bad
// document cannot block the rest of the directory.
func Seed(s *Store, cfg SeedConfig) (int, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve manifest dir %q: %w", cfg.Dir, err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Warn("manifest dir missing, store left empty", zap.String("dir", dir))
		return 0, nil
	}

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range cfg.Patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
		if err != nil {
			return 0, fmt.Errorf("bad manifest pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
	}
	sort.Strings(files)

	stored := 0
	for _, file := range files {
		m, err := decodeFile(file)
		if err != nil {
			logger.Warn("skipping unreadable manifest", zap.String("file", file), zap.Error(err))
			continue
		}
		id := manifestID(m, file)
		if err := s.Put(id, m); err != nil {
			return stored, fmt.Errorf("failed to store manifest %q: %w", id, err)
		}
		logger.Debug("manifest seeded", zap.String("id", id), zap.String("file", file))
		stored++
	}

	logger.Info("manifest store seeded", zap.Int("manifests", stored), zap.String("dir", dir))
	return stored, nil
}

func decodeFile(path string) (*manifest.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return manifest.DecodeYAML(data)
	default:
		return manifest.DecodeJSON(data)
	}
}

// manifestID prefers an explicit meta id over the file stem.
func manifestID(m *manifest.Manifest, path string) string {
	if m.Meta != nil {
		if id, ok := m.Meta["id"].(string); ok && id != "" {
			return id
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
