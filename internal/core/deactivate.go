package core

import (
	"os"
	"path/filepath"

	"github.com/mrkline/modman/internal/digest"
	"github.com/mrkline/modman/internal/domain"
	"github.com/mrkline/modman/internal/storage/profilestore"
)

// Remove reverses activation for sourceID. For each FileRecord: if the
// target still matches mod_hash, it is restored from backup (or deleted,
// if no backup exists); otherwise the drifted file is left untouched.
// Backups and the manifest are dropped in all cases.
func (s *Service) Remove(sourceID string) error {
	profile, err := s.loadReady()
	if err != nil {
		return err
	}

	manifest, ok := profile.Get(sourceID)
	if !ok {
		return domain.ErrModNotFound
	}

	for path, record := range manifest.Files {
		if err := s.removeOne(profile.RootDirectory, path, record); err != nil {
			return err
		}
	}

	profile.Remove(sourceID)
	return profilestore.Save(s.cwd, profile)
}

func (s *Service) removeOne(rootDir, path string, record domain.FileRecord) error {
	target := filepath.Join(rootDir, filepath.FromSlash(path))

	currentHash, err := digest.HashFile(target)
	drifted := err != nil || !currentHash.Equal(record.ModHash)

	switch {
	case !drifted && record.HasOriginal:
		// Restore renames originals/P back to root/P, so the backup is
		// already gone afterward.
		return s.Store.Restore(path, rootDir)
	case !drifted && !record.HasOriginal:
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return &domain.IOError{Path: target, Kind: "remove", Err: err}
		}
		return nil
	case drifted && record.HasOriginal:
		return s.Store.RemoveOriginal(path)
	default:
		return nil
	}
}
