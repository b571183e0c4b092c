// Package modsource provides a uniform view over a mod's files, whether
// they live in a directory tree or inside a ZIP archive: metadata
// (README.txt, VERSION.txt) and an iterable of mod-root-relative file
// entries, each readable as a byte stream.
package modsource

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mrkline/modman/internal/domain"
)

const (
	readmeName  = "README.txt"
	versionName = "VERSION.txt"
)

// Entry is one file under the mod root, addressable by a forward-slash,
// mod-root-relative path.
type Entry struct {
	Path string
	Open func() (io.ReadCloser, error)
}

// Source is a uniform view over a mod's metadata and file entries.
type Source interface {
	ReadReadme() (string, error)
	ReadVersion() (string, error)
	Entries() ([]Entry, error)
	Close() error
}

// New constructs a Source from a filesystem path: a directory, or a file
// whose name ends in .zip.
func New(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &domain.IOError{Path: path, Err: err}
	}

	if info.IsDir() {
		return newDirSource(path)
	}

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return newZipSource(path)
	}

	return nil, &domain.ModMalformedError{Source: path, Reason: "not a directory or .zip file"}
}

// resolveRoot picks the mod root out of a set of top-level entry names,
// given each name's is-directory status (README.txt/VERSION.txt already
// excluded). It enforces that exactly one top-level directory holds the
// mod root.
func resolveRoot(source string, topDirs map[string]bool) (string, error) {
	var names []string
	for name, isDir := range topDirs {
		if !isDir {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	switch len(names) {
	case 0:
		return "", &domain.ModMalformedError{Source: source, Reason: "no top-level mod root directory found"}
	case 1:
		return names[0], nil
	default:
		return "", &domain.ModMalformedError{Source: source, Reason: "more than one top-level directory found: " + strings.Join(names, ", ")}
	}
}

// toModPath normalizes a path for use as a mod-root-relative key: forward
// slashes; a leading slash, . or .. components, and drive letters are
// rejected.
func toModPath(source, p string) (string, error) {
	clean := filepath.ToSlash(p)
	clean = strings.TrimSuffix(clean, "/")
	if clean == "" {
		return "", &domain.ModMalformedError{Source: source, Reason: "empty entry path"}
	}
	for _, part := range strings.Split(clean, "/") {
		switch part {
		case "", ".", "..":
			return "", &domain.ModMalformedError{Source: source, Reason: "forbidden path component in " + p}
		}
	}
	if filepath.IsAbs(clean) || strings.Contains(clean, ":") {
		return "", &domain.ModMalformedError{Source: source, Reason: "absolute or drive-qualified path: " + p}
	}
	return clean, nil
}
