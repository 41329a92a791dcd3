package processor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// XMLExtension is the only extension the directory scan selects. The match
// is case-sensitive: "b.XML" is not selected.
const XMLExtension = ".xml"

// ErrNotDirectory is returned when the scan root is not a directory
var ErrNotDirectory = errors.New("not a directory")

// ScanDir walks root recursively and returns every non-directory entry with
// the .xml extension, in lexical walk order. Entries below root that cannot
// be read are skipped.
func ScanDir(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: %w", root, ErrNotDirectory)
	}

	files := []string{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && HasXMLExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	return files, nil
}

// HasXMLExtension reports whether the file name ends in ".xml" after a
// non-empty stem. A dotfile named ".xml" has no extension.
func HasXMLExtension(path string) bool {
	base := filepath.Base(path)
	return filepath.Ext(base) == XMLExtension && strings.TrimSuffix(base, XMLExtension) != ""
}

// CollectPaths expands command-line arguments into an ordered path list.
// An existing path is taken literally, even when its name contains glob
// metacharacters. Otherwise the argument is expanded as a glob pattern, and
// one that matches nothing is kept as given, so a missing file surfaces as
// an open error in the batch. Directories are scanned.
func CollectPaths(args []string) ([]string, error) {
	var paths []string

	for _, arg := range args {
		matches := []string{arg}
		if _, err := os.Stat(arg); err != nil {
			globbed, err := filepath.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
			}
			if len(globbed) > 0 {
				matches = globbed
			}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.IsDir() {
				paths = append(paths, match)
				continue
			}
			found, err := ScanDir(match)
			if err != nil {
				return nil, err
			}
			paths = append(paths, found...)
		}
	}

	return paths, nil
}
