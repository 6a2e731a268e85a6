package service

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// FileReaderImpl implements the FileReader interface
type FileReaderImpl struct{}

// NewFileReader creates a new file reader service
func NewFileReader() *FileReaderImpl {
	return &FileReaderImpl{}
}

// skipDirs never contain project sources
var skipDirs = []string{
	"__pycache__",
	"node_modules",
	"venv",
	"env",
	"build",
	"dist",
	"*.egg-info",
}

// CollectPythonFiles finds the Python files under paths. Patterns use
// doublestar syntax and match the slash-separated path relative to the
// walked root. The result is sorted and free of duplicates so that runs
// over the same tree see the same order.
func (f *FileReaderImpl) CollectPythonFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	if err := f.validatePatterns(includePatterns, "include"); err != nil {
		return nil, err
	}
	if err := f.validatePatterns(excludePatterns, "exclude"); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}

		if !info.IsDir() {
			rel := filepath.ToSlash(filepath.Clean(path))
			if f.IsValidPythonFile(path) && f.shouldIncludeFile(rel, includePatterns, excludePatterns) {
				add(filepath.Clean(path))
			}
			continue
		}

		dirFiles, err := f.collectFromDirectory(path, recursive, includePatterns, excludePatterns)
		if err != nil {
			return nil, err
		}
		for _, file := range dirFiles {
			add(file)
		}
	}

	slices.Sort(files)
	return files, nil
}

// ReadFile reads the content of a file
func (f *FileReaderImpl) ReadFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	return content, nil
}

// IsValidPythonFile checks if a file is a valid Python file
func (f *FileReaderImpl) IsValidPythonFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".py" || ext == ".pyi"
}

func (f *FileReaderImpl) collectFromDirectory(root string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped; the rest of the tree is still walked
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || strings.HasPrefix(d.Name(), ".") || f.shouldSkipDirectory(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || !f.IsValidPythonFile(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		if f.shouldIncludeFile(filepath.ToSlash(rel), includePatterns, excludePatterns) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}

	return files, nil
}

// shouldIncludeFile applies exclude patterns first, then include patterns.
// An empty include list includes everything.
func (f *FileReaderImpl) shouldIncludeFile(relPath string, includePatterns, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if f.matchesPattern(pattern, relPath) {
			return false
		}
	}

	if len(includePatterns) == 0 {
		return true
	}

	for _, pattern := range includePatterns {
		if f.matchesPattern(pattern, relPath) {
			return true
		}
	}
	return false
}

// matchesPattern matches the whole relative path, and the base name for
// patterns without a separator.
func (f *FileReaderImpl) matchesPattern(pattern, relPath string) bool {
	if matched, _ := doublestar.Match(pattern, relPath); matched {
		return true
	}
	if !strings.Contains(pattern, "/") {
		matched, _ := doublestar.Match(pattern, pathBase(relPath))
		return matched
	}
	return false
}

func pathBase(slashPath string) string {
	if i := strings.LastIndexByte(slashPath, '/'); i >= 0 {
		return slashPath[i+1:]
	}
	return slashPath
}

func (f *FileReaderImpl) shouldSkipDirectory(dirName string) bool {
	dirLower := strings.ToLower(dirName)
	for _, skip := range skipDirs {
		if matched, _ := doublestar.Match(skip, dirLower); matched {
			return true
		}
	}
	return false
}

func (f *FileReaderImpl) validatePatterns(patterns []string, patternType string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return domain.NewConfigError(fmt.Sprintf("invalid %s pattern %q", patternType, pattern), nil)
		}
	}
	return nil
}

var _ domain.FileReader = (*FileReaderImpl)(nil)
