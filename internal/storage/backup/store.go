// Package backup manages modman-backup/: the store of pre-activation file
// copies keyed by mod-root-relative path (originals/) and the staging area used while
// an activation, update, or repair is in flight (temp/). Backups land via
// temp-then-rename so a promotion is atomic on the backup store's volume.
package backup

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mrkline/modman/internal/digest"
	"github.com/mrkline/modman/internal/domain"
)

const (
	dirName      = "modman-backup"
	originalsDir = "originals"
	tempDir      = "temp"
)

// Store wraps the modman-backup/ directory that sits next to modman.profile.
type Store struct {
	base string // absolute path to modman-backup/
}

// Open returns a Store rooted at modman-backup/ inside cwd. It does not
// require the directory to already exist.
func Open(cwd string) *Store {
	return &Store{base: filepath.Join(cwd, dirName)}
}

// Dir returns the modman-backup/ path itself, for existence checks.
func (s *Store) Dir() string { return s.base }

// Exists reports whether modman-backup/ is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.base)
	return err == nil
}

// Init creates an empty originals/ and temp/ under modman-backup/.
func (s *Store) Init() error {
	for _, d := range []string{s.originalsPath(""), s.tempPath("")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return &domain.IOError{Path: d, Kind: "mkdir", Err: err}
		}
	}
	return nil
}

func (s *Store) originalsPath(p string) string {
	return filepath.Join(s.base, originalsDir, filepath.FromSlash(p))
}

func (s *Store) tempPath(p string) string {
	return filepath.Join(s.base, tempDir, filepath.FromSlash(p))
}

// JournalPath returns the path to the activation journal file.
func (s *Store) JournalPath() string {
	return filepath.Join(s.base, tempDir, journalName)
}

// HasOriginal reports whether originals/P exists.
func (s *Store) HasOriginal(p string) bool {
	_, err := os.Stat(s.originalsPath(p))
	return err == nil
}

// HasTemp reports whether temp/P exists.
func (s *Store) HasTemp(p string) bool {
	_, err := os.Stat(s.tempPath(p))
	return err == nil
}

// StageBackup streams r into temp/P, hashing as it writes, creating parent
// directories and truncating any pre-existing temp file at P.
func (s *Store) StageBackup(p string, r io.Reader) (digest.Digest, error) {
	dst := s.tempPath(p)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return digest.Digest{}, &domain.IOError{Path: dst, Kind: "mkdir", Err: err}
	}

	f, err := os.Create(dst)
	if err != nil {
		return digest.Digest{}, &domain.IOError{Path: dst, Kind: "create", Err: err}
	}
	defer f.Close()

	tee := digest.NewTeeHasher(f)
	if _, err := io.Copy(tee, r); err != nil {
		return digest.Digest{}, &domain.IOError{Path: dst, Kind: "write", Err: err}
	}
	return tee.Sum(), nil
}

// PromoteBackup renames temp/P to originals/P, creating parent directories.
// Caller must ensure modman-backup/ lives on the same volume as the target
// so the rename is atomic.
func (s *Store) PromoteBackup(p string) error {
	src := s.tempPath(p)
	dst := s.originalsPath(p)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return &domain.IOError{Path: dst, Kind: "mkdir", Err: err}
	}
	if err := os.Rename(src, dst); err != nil {
		return &domain.IOError{Path: dst, Kind: "rename", Err: err}
	}
	return nil
}

// ReadBackupHash streams originals/P to obtain its current digest.
func (s *Store) ReadBackupHash(p string) (digest.Digest, error) {
	d, err := digest.HashFile(s.originalsPath(p))
	if err != nil {
		return digest.Digest{}, &domain.IOError{Path: s.originalsPath(p), Kind: "hash", Err: err}
	}
	return d, nil
}

// Restore renames originals/P back to root/P, creating parent directories
// under root. Because it is a rename, originals/P no longer exists
// afterward.
func (s *Store) Restore(p string, rootDir string) error {
	src := s.originalsPath(p)
	dst := filepath.Join(rootDir, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return &domain.IOError{Path: dst, Kind: "mkdir", Err: err}
	}
	if err := os.Rename(src, dst); err != nil {
		return &domain.IOError{Path: dst, Kind: "rename", Err: err}
	}
	return nil
}

// RemoveOriginal deletes originals/P without restoring it anywhere, used by
// `remove` when the target has drifted and the backup is simply discarded.
func (s *Store) RemoveOriginal(p string) error {
	path := s.originalsPath(p)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &domain.IOError{Path: path, Kind: "remove", Err: err}
	}
	return nil
}

// RemoveTemp deletes temp/P, ignoring a missing file.
func (s *Store) RemoveTemp(p string) error {
	path := s.tempPath(p)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &domain.IOError{Path: path, Kind: "remove", Err: err}
	}
	return nil
}

// ClearTemp recursively removes temp/ and recreates it empty.
func (s *Store) ClearTemp() error {
	dir := s.tempPath("")
	if err := os.RemoveAll(dir); err != nil {
		return &domain.IOError{Path: dir, Kind: "remove", Err: err}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.IOError{Path: dir, Kind: "mkdir", Err: err}
	}
	return nil
}
