package core

import (
	"os"
	"path/filepath"

	"github.com/mrkline/modman/internal/digest"
	"github.com/mrkline/modman/internal/domain"
	"github.com/mrkline/modman/internal/modsource"
	"github.com/mrkline/modman/internal/storage/profilestore"
	"golang.org/x/sync/errgroup"
)

// SourceResolver locates a mod source by the identifier recorded in the
// profile at activation time. The CLI layer supplies this (sourceID is
// ordinarily a path relative to the current working directory), keeping
// core ignorant of how source identifiers map to the filesystem.
type SourceResolver func(sourceID string) (modsource.Source, error)

// Update re-validates every active mod's VERSION.txt against its recorded
// version, failing before any mutation on the first mismatch. It then
// rebases drifted target files against their source, in place.
func (s *Service) Update(resolve SourceResolver) error {
	profile, err := s.loadReady()
	if err != nil {
		return err
	}

	sources := make(map[string]modsource.Source, len(profile.Mods))
	defer func() {
		for _, src := range sources {
			src.Close()
		}
	}()

	for _, m := range profile.Mods {
		src, err := resolve(m.SourceID)
		if err != nil {
			return &domain.SourceUnavailableError{SourceID: m.SourceID, Err: err}
		}
		sources[m.SourceID] = src

		observed, err := src.ReadVersion()
		if err != nil {
			return err
		}
		if observed != m.Version {
			return &domain.VersionMismatchError{SourceID: m.SourceID, Recorded: m.Version, Observed: observed}
		}
	}

	var changed bool
	for i, m := range profile.Mods {
		src := sources[m.SourceID]
		entries, err := src.Entries()
		if err != nil {
			return err
		}
		byPath := make(map[string]modsource.Entry, len(entries))
		for _, e := range entries {
			byPath[e.Path] = e
		}

		updatedManifest, mutated, err := s.updateOneMod(profile.RootDirectory, m, byPath)
		if err != nil {
			return err
		}
		if mutated {
			profile.Mods[i] = updatedManifest
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return profilestore.Save(s.cwd, profile)
}

func (s *Service) updateOneMod(rootDir string, m domain.ModManifest, byPath map[string]modsource.Entry) (domain.ModManifest, bool, error) {
	paths := m.SortedPaths()
	newFiles := make([]domain.FileRecord, len(paths))
	for i := range paths {
		newFiles[i] = m.Files[paths[i]]
	}

	var firstErr firstError

	eg := new(errgroup.Group)
	eg.SetLimit(workers())
	for i, p := range paths {
		i, p := i, p
		entry, ok := byPath[p]
		if !ok {
			return m, false, &domain.ModMalformedError{Source: m.SourceID, Reason: "source no longer provides " + p}
		}
		eg.Go(func() error {
			if firstErr.Load() != nil {
				return nil
			}
			record, mutated, err := s.updateOneFile(rootDir, p, m.Files[p], entry)
			if err != nil {
				firstErr.Store(err)
				return nil
			}
			if mutated {
				newFiles[i] = record
			}
			return nil
		})
	}
	_ = eg.Wait()

	if err := firstErr.Load(); err != nil {
		return m, false, err
	}

	var mutatedAny bool
	for i, p := range paths {
		if newFiles[i] != m.Files[p] {
			mutatedAny = true
			break
		}
	}
	if !mutatedAny {
		return m, false, nil
	}

	updated := m
	updated.Files = make(map[string]domain.FileRecord, len(paths))
	for i, p := range paths {
		updated.Files[p] = newFiles[i]
	}
	return updated, true, nil
}

// updateOneFile rebases one file if its target content has drifted from
// the recorded mod_hash: the current target becomes the new backup, and
// the mod's file is re-materialized from source.
func (s *Service) updateOneFile(rootDir, path string, record domain.FileRecord, entry modsource.Entry) (domain.FileRecord, bool, error) {
	target := filepath.Join(rootDir, filepath.FromSlash(path))

	currentHash, err := digest.HashFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return record, false, &domain.IOError{Path: target, Kind: "stat", Err: err}
		}
		return record, false, &domain.IOError{Path: target, Kind: "hash", Err: err}
	}

	if currentHash.Equal(record.ModHash) {
		return record, false, nil
	}

	f, err := os.Open(target)
	if err != nil {
		return record, false, &domain.IOError{Path: target, Kind: "open", Err: err}
	}
	newOriginalHash, err := s.Store.StageBackup(path, f)
	f.Close()
	if err != nil {
		return record, false, err
	}
	if err := s.Store.PromoteBackup(path); err != nil {
		return record, false, err
	}

	modHash, err := writeTargetAtomic(target, entry)
	if err != nil {
		return record, false, err
	}

	return domain.FileRecord{
		ModHash:      modHash,
		OriginalHash: newOriginalHash,
		HasOriginal:  true,
	}, true, nil
}
