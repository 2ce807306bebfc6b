package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceExt is the extension of joop source files.
const SourceExt = ".joop"

// Discover returns the source files under dir, sorted. With rootOnly set,
// subdirectories are not searched.
func Discover(dir string, rootOnly bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	if rootOnly {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() && isSource(e.Name()) {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	} else {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isSource(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("cannot walk %s: %w", dir, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func isSource(name string) bool {
	return strings.EqualFold(filepath.Ext(name), SourceExt)
}

// Inputs returns every source file selected by the build section, in
// order of the configured sources and without duplicates.
func (m *Manifest) Inputs() ([]string, error) {
	seen := map[string]bool{}
	var inputs []string
	for _, src := range m.SourcePaths() {
		info, err := os.Stat(src)
		if err != nil {
			return nil, fmt.Errorf("cannot read source %s: %w", src, err)
		}

		files := []string{src}
		if info.IsDir() {
			if files, err = Discover(src, m.Build.RootOnly); err != nil {
				return nil, err
			}
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				inputs = append(inputs, f)
			}
		}
	}
	return inputs, nil
}

// AutoName returns the output path for input: same directory, same base
// name, .js extension.
func AutoName(input string) (string, error) {
	out := strings.TrimSuffix(input, filepath.Ext(input)) + ".js"
	if out == input {
		return "", fmt.Errorf("the input file %q is invalid as it would have the same auto-name", input)
	}
	return out, nil
}
