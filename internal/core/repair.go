package core

import (
	"os"
	"path/filepath"

	"github.com/mrkline/modman/internal/domain"
	"github.com/mrkline/modman/internal/storage/backup"
	"github.com/mrkline/modman/internal/storage/profilestore"
)

// Repair reverses a partially completed activation found via a stale
// journal. The profile is never touched, since the activation that
// produced the journal never committed.
func (s *Service) Repair() (bool, error) {
	journal := backup.NewJournal(s.Store)
	if !journal.Exists() {
		return false, nil
	}

	profile, err := profilestore.Load(s.cwd)
	if err != nil {
		return false, err
	}

	lines, err := journal.Lines()
	if err != nil {
		return false, err
	}

	for _, entry := range lines {
		switch entry.Op {
		case backup.Replace:
			if err := s.repairReplace(profile.RootDirectory, entry.Path); err != nil {
				return false, err
			}
		case backup.Add:
			target := filepath.Join(profile.RootDirectory, filepath.FromSlash(entry.Path))
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return false, &domain.IOError{Path: target, Kind: "remove", Err: err}
			}
		}
		if err := removeStrayTemp(profile.RootDirectory, entry.Path); err != nil {
			return false, err
		}
	}

	if err := s.Store.ClearTemp(); err != nil {
		return false, err
	}
	if err := journal.Delete(); err != nil {
		return false, err
	}

	return true, nil
}

// repairReplace resolves one "Replace P" directive. If both originals/P and
// temp/P exist (a belt-and-suspenders crash), originals/P wins: temp/P is
// discarded and root/P is restored from originals/P, per the documented
// Open Question resolution favoring the already-committed backup.
func (s *Service) repairReplace(rootDir, path string) error {
	hasOriginal := s.Store.HasOriginal(path)
	hasTemp := s.Store.HasTemp(path)

	if hasTemp {
		if err := s.Store.RemoveTemp(path); err != nil {
			return err
		}
	}

	if hasOriginal {
		if err := s.Store.Restore(path, rootDir); err != nil {
			return err
		}
		return nil
	}

	// temp/P existed but originals/P never got promoted: the conservative
	// policy is to leave root/P as whatever it currently is and just drop
	// the stray temp backup (already done above).
	return nil
}

// removeStrayTemp removes root/P.modman-tmp, the per-file staging sibling
// writeTargetAtomic creates next to its target. A crash between that file's
// creation and its rename leaves it behind; it lives in the target tree
// rather than under modman-backup/temp/, so ClearTemp never touches it.
func removeStrayTemp(rootDir, path string) error {
	tmp := filepath.Join(rootDir, filepath.FromSlash(path)) + ".modman-tmp"
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return &domain.IOError{Path: tmp, Kind: "remove", Err: err}
	}
	return nil
}
