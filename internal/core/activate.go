package core

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mrkline/modman/internal/digest"
	"github.com/mrkline/modman/internal/domain"
	"github.com/mrkline/modman/internal/modsource"
	"github.com/mrkline/modman/internal/storage/backup"
	"github.com/mrkline/modman/internal/storage/profilestore"
	"golang.org/x/sync/errgroup"
)

// Add runs the activation engine for a mod source identified by sourceID.
// Precondition checks fail fast without touching the filesystem; per-file
// work then fans out across a worker pool bounded by logical CPU count.
func (s *Service) Add(sourceID string, src modsource.Source) error {
	profile, err := s.loadReady()
	if err != nil {
		return err
	}

	if profile.IsActive(sourceID) {
		return &domain.AlreadyActivatedError{SourceID: sourceID}
	}

	entries, err := src.Entries()
	if err != nil {
		return err
	}

	for _, e := range entries {
		if owner, ok := profile.Owner(e.Path); ok {
			return &domain.ConflictError{Path: e.Path, NewSource: sourceID, ExistingSource: owner}
		}
	}

	version, err := src.ReadVersion()
	if err != nil {
		return err
	}
	readme, err := src.ReadReadme()
	if err != nil {
		return err
	}

	journal := backup.NewJournal(s.Store)
	if err := journal.Open(); err != nil {
		return err
	}
	defer journal.Close()

	records := make([]domain.FileRecord, len(entries))

	var firstErr firstError
	eg := new(errgroup.Group)
	eg.SetLimit(workers())

	for i, e := range entries {
		i, e := i, e
		eg.Go(func() error {
			if firstErr.Load() != nil {
				return nil
			}
			record, err := s.activateOne(profile.RootDirectory, e, journal)
			if err != nil {
				firstErr.Store(err)
				return nil
			}
			records[i] = record
			return nil
		})
	}
	_ = eg.Wait()

	if err := firstErr.Load(); err != nil {
		// Leave journal, backups, and partial target in place for repair.
		return err
	}

	manifest := domain.ModManifest{
		SourceID: sourceID,
		Version:  version,
		Readme:   readme,
		Files:    make(map[string]domain.FileRecord, len(entries)),
	}
	for i, e := range entries {
		manifest.Files[e.Path] = records[i]
	}

	profile.Add(manifest)
	if err := profilestore.Save(s.cwd, profile); err != nil {
		return err
	}

	return journal.Delete()
}

// activateOne performs the backup -> journal -> target-write sequence for
// one mod-root-relative path.
func (s *Service) activateOne(rootDir string, e modsource.Entry, journal *backup.Journal) (domain.FileRecord, error) {
	target := filepath.Join(rootDir, filepath.FromSlash(e.Path))

	record := domain.FileRecord{}

	if _, err := os.Stat(target); err == nil {
		f, err := os.Open(target)
		if err != nil {
			return record, &domain.IOError{Path: target, Kind: "open", Err: err}
		}
		originalHash, stageErr := s.Store.StageBackup(e.Path, f)
		f.Close()
		if stageErr != nil {
			return record, stageErr
		}

		if err := journal.Append(backup.Replace, e.Path); err != nil {
			return record, err
		}
		if err := s.Store.PromoteBackup(e.Path); err != nil {
			return record, err
		}

		record.OriginalHash = originalHash
		record.HasOriginal = true
	} else if os.IsNotExist(err) {
		if err := journal.Append(backup.Add, e.Path); err != nil {
			return record, err
		}
	} else {
		return record, &domain.IOError{Path: target, Kind: "stat", Err: err}
	}

	modHash, err := writeTargetAtomic(target, e)
	if err != nil {
		return record, err
	}
	record.ModHash = modHash

	return record, nil
}

// writeTargetAtomic streams src into a temp sibling of target, hashing
// concurrently, then renames it into place.
func writeTargetAtomic(target string, e modsource.Entry) (digest.Digest, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return digest.Digest{}, &domain.IOError{Path: target, Kind: "mkdir", Err: err}
	}

	rc, err := e.Open()
	if err != nil {
		return digest.Digest{}, err
	}
	defer rc.Close()

	tmp := target + ".modman-tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return digest.Digest{}, &domain.IOError{Path: tmp, Kind: "create", Err: err}
	}

	tee := digest.NewTeeHasher(f)
	if _, err := io.Copy(tee, rc); err != nil {
		f.Close()
		os.Remove(tmp)
		return digest.Digest{}, &domain.IOError{Path: tmp, Kind: "write", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return digest.Digest{}, &domain.IOError{Path: tmp, Kind: "close", Err: err}
	}

	if err := os.Rename(tmp, target); err != nil {
		return digest.Digest{}, &domain.IOError{Path: target, Kind: "rename", Err: err}
	}

	return tee.Sum(), nil
}
