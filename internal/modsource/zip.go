package modsource

import (
	"archive/zip"
	"io"
	"strings"

	"github.com/mrkline/modman/internal/domain"
)

type zipSource struct {
	path    string
	r       *zip.ReadCloser
	modRoot string // mod-root-relative prefix, e.g. "MyMod/"
}

func newZipSource(path string) (Source, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, &domain.IOError{Path: path, Err: err}
	}

	topDirs := map[string]bool{}
	for _, f := range r.File {
		name := strings.TrimSuffix(f.Name, "/")
		first, rest, hasSlash := strings.Cut(name, "/")
		if first == readmeName || first == versionName {
			continue
		}
		if hasSlash || (!hasSlash && f.FileInfo().IsDir()) {
			// Either a path with a directory component (first is a dir,
			// whether or not a literal directory entry exists for it in
			// the archive) or an explicit empty directory entry.
			_ = rest
			topDirs[first] = true
		} else {
			if _, ok := topDirs[first]; !ok {
				topDirs[first] = false
			}
		}
	}

	modRootName, err := resolveRoot(path, topDirs)
	if err != nil {
		r.Close()
		return nil, err
	}

	return &zipSource{path: path, r: r, modRoot: modRootName + "/"}, nil
}

func (z *zipSource) findTopLevel(name string) (*zip.File, error) {
	for _, f := range z.r.File {
		if strings.TrimSuffix(f.Name, "/") == name {
			return f, nil
		}
	}
	return nil, &domain.ModMalformedError{Source: z.path, Reason: "missing " + name}
}

func (z *zipSource) readTopLevelFile(name string) (string, error) {
	f, err := z.findTopLevel(name)
	if err != nil {
		return "", err
	}
	rc, err := f.Open()
	if err != nil {
		return "", &domain.IOError{Path: z.path, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", &domain.IOError{Path: z.path, Err: err}
	}
	return string(data), nil
}

func (z *zipSource) ReadReadme() (string, error)  { return z.readTopLevelFile(readmeName) }
func (z *zipSource) ReadVersion() (string, error) { return z.readTopLevelFile(versionName) }

func (z *zipSource) Entries() ([]Entry, error) {
	var entries []Entry
	seen := map[string]bool{}

	for _, f := range z.r.File {
		name := f.Name
		if !strings.HasPrefix(name, z.modRoot) {
			continue
		}
		if f.FileInfo().IsDir() {
			continue
		}

		rel := strings.TrimPrefix(name, z.modRoot)
		modPath, err := toModPath(z.path, rel)
		if err != nil {
			return nil, err
		}
		if seen[modPath] {
			return nil, &domain.ModMalformedError{Source: z.path, Reason: "duplicate path: " + modPath}
		}
		seen[modPath] = true

		entry := f
		entries = append(entries, Entry{
			Path: modPath,
			Open: func() (io.ReadCloser, error) {
				rc, err := entry.Open()
				if err != nil {
					return nil, &domain.IOError{Path: z.path, Err: err}
				}
				return rc, nil
			},
		})
	}

	return entries, nil
}

func (z *zipSource) Close() error {
	return z.r.Close()
}
