package services

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/logger"
)

// SplitPatterns splits a pattern list separated by ';', ',' or whitespace.
func SplitPatterns(list string) []string {
	return strings.FieldsFunc(list, func(r rune) bool {
		return r == ';' || r == ',' || unicode.IsSpace(r)
	})
}

// DiscoverFiles returns the regular files under folder whose base name
// matches any pattern. Matching ignores case. Paths are de-duplicated
// case-insensitively and returned sorted.
func DiscoverFiles(folder string, patterns []string, recursive bool) ([]string, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("%w: folder %s: %w", domain.ErrInvalidInput, folder, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, folder)
	}

	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %w", domain.ErrInvalidInput, p, err)
		}
		lowered = append(lowered, p)
	}

	seen := make(map[string]struct{})
	var files []string
	walkErr := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("discover: %s: %v", path, err)
			if d != nil && d.IsDir() && path != folder {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != folder && !recursive {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !matchesAny(strings.ToLower(d.Name()), lowered) {
			return nil
		}
		key := strings.ToLower(path)
		if _, dup := seen[key]; dup {
			return nil
		}
		seen[key] = struct{}{}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("discover %s: %w", folder, walkErr)
	}

	sort.Strings(files)
	return files, nil
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
