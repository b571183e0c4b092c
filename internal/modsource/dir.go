package modsource

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mrkline/modman/internal/domain"
)

type dirSource struct {
	root    string // the source directory itself
	modRoot string // absolute path to the single top-level mod-root directory
}

func newDirSource(root string) (Source, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &domain.IOError{Path: root, Err: err}
	}

	topDirs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		if name == readmeName || name == versionName {
			continue
		}
		topDirs[name] = e.IsDir()
	}

	modRootName, err := resolveRoot(root, topDirs)
	if err != nil {
		return nil, err
	}

	return &dirSource{root: root, modRoot: filepath.Join(root, modRootName)}, nil
}

func (d *dirSource) readTopLevelFile(name string) (string, error) {
	path := filepath.Join(d.root, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &domain.ModMalformedError{Source: d.root, Reason: "missing " + name}
		}
		return "", &domain.IOError{Path: path, Err: err}
	}
	return string(data), nil
}

func (d *dirSource) ReadReadme() (string, error)  { return d.readTopLevelFile(readmeName) }
func (d *dirSource) ReadVersion() (string, error) { return d.readTopLevelFile(versionName) }

func (d *dirSource) Entries() ([]Entry, error) {
	var entries []Entry
	seen := map[string]bool{}

	err := filepath.WalkDir(d.modRoot, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		if de.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(d.modRoot, path)
		if err != nil {
			return err
		}
		modPath, err := toModPath(d.root, rel)
		if err != nil {
			return err
		}
		if seen[modPath] {
			return &domain.ModMalformedError{Source: d.root, Reason: "duplicate path: " + modPath}
		}
		seen[modPath] = true

		p := path
		entries = append(entries, Entry{
			Path: modPath,
			Open: func() (io.ReadCloser, error) {
				f, err := os.Open(p)
				if err != nil {
					return nil, &domain.IOError{Path: p, Err: err}
				}
				return f, nil
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (d *dirSource) Close() error { return nil }
