package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/polmat77/classreviewmaster/internal/acquire"
)

// discoverDocumentFiles finds all supported document files among the
// given paths, which may be files or directories.
func discoverDocumentFiles(args []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var documents []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			files, err := discoverInDirectory(arg, recursive, includePatterns, excludePatterns)
			if err != nil {
				return nil, err
			}
			documents = append(documents, files...)
		} else if shouldIncludeFile(arg, includePatterns, excludePatterns) {
			documents = append(documents, arg)
		}
	}

	return documents, nil
}

func discoverInDirectory(dir string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if hasSupportedExtension(path) && shouldIncludeFile(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}

		return nil
	}

	return files, filepath.Walk(dir, walkFn)
}

func hasSupportedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range acquire.SupportedExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// shouldIncludeFile applies exclude patterns first, then include
// patterns; an empty include list includes everything not excluded.
func shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	if matchesAnyPattern(path, excludePatterns) {
		return false
	}
	if len(includePatterns) == 0 {
		return true
	}
	return matchesAnyPattern(path, includePatterns)
}

func matchesAnyPattern(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
