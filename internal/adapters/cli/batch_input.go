package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ParseInputFile reads a file containing media paths, one per line.
// Blank lines and lines starting with # are ignored. Relative paths are
// resolved against the list file's directory.
func ParseInputFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	baseDir := filepath.Dir(path)

	var paths []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(baseDir, line)
		}
		paths = append(paths, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return paths, nil
}

// CollectInputs combines CLI arguments and file input, deduplicating on the
// cleaned path. Args come first, then file entries, in order of first
// appearance.
func CollectInputs(args []string, filePath string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			add(arg)
		}
	}

	if filePath != "" {
		filePaths, err := ParseInputFile(filePath)
		if err != nil {
			return nil, err
		}
		for _, p := range filePaths {
			add(p)
		}
	}

	return paths, nil
}
