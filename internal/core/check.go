package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mrkline/modman/internal/digest"
	"github.com/mrkline/modman/internal/domain"
	"github.com/mrkline/modman/internal/storage/backup"
	"github.com/mrkline/modman/internal/storage/profilestore"
	"golang.org/x/sync/errgroup"
)

// DeviationKind classifies one check finding.
type DeviationKind int

const (
	MissingTarget DeviationKind = iota
	TargetModified
	MissingBackup
	BackupModified
	UnexpectedBackup
	StaleJournal
	TargetUnreadable
)

func (k DeviationKind) String() string {
	switch k {
	case MissingTarget:
		return "missing target"
	case TargetModified:
		return "target modified"
	case MissingBackup:
		return "missing backup"
	case BackupModified:
		return "backup modified"
	case UnexpectedBackup:
		return "unexpected backup"
	case StaleJournal:
		return "stale journal"
	case TargetUnreadable:
		return "target unreadable"
	default:
		return "unknown"
	}
}

// Deviation is one integrity-check finding.
type Deviation struct {
	Kind     DeviationKind
	SourceID string
	Path     string
	Expected digest.Digest
	Actual   digest.Digest
	Err      error // set for TargetUnreadable; the underlying I/O failure
}

// IntegrityDeviationError reports a nonempty check result. Check itself
// returns the list directly so callers can render it; CLI callers that
// need a single error to propagate (mapping an empty list to success,
// nonempty to failure)
// wrap the result in this type.
type IntegrityDeviationError struct {
	Deviations []Deviation
}

func (e *IntegrityDeviationError) Error() string {
	return fmt.Sprintf("%d integrity deviation(s) found", len(e.Deviations))
}

// Check runs the integrity check engine: every recorded digest is compared
// against the live target and backup files. It does not mutate anything.
// Profile load does not require journal absence, since a stale journal is
// itself a finding rather than a blocking precondition.
func (s *Service) Check() ([]Deviation, error) {
	profile, err := profilestore.Load(s.cwd)
	if err != nil {
		return nil, err
	}

	type unit struct {
		sourceID string
		path     string
		record   domain.FileRecord
	}
	var units []unit
	for _, m := range profile.Mods {
		for p, r := range m.Files {
			units = append(units, unit{sourceID: m.SourceID, path: p, record: r})
		}
	}

	results := make([][]Deviation, len(units))

	eg := new(errgroup.Group)
	eg.SetLimit(workers())
	for i, u := range units {
		i, u := i, u
		eg.Go(func() error {
			results[i] = s.checkOne(profile.RootDirectory, u.sourceID, u.path, u.record)
			return nil
		})
	}
	_ = eg.Wait()

	var deviations []Deviation
	for _, r := range results {
		deviations = append(deviations, r...)
	}

	journal := backup.NewJournal(s.Store)
	if journal.Exists() {
		deviations = append(deviations, Deviation{Kind: StaleJournal})
	}

	sort.SliceStable(deviations, func(i, j int) bool {
		a, b := deviations[i], deviations[j]
		if a.Kind == StaleJournal || b.Kind == StaleJournal {
			return a.Kind == StaleJournal && b.Kind != StaleJournal
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		return a.Path < b.Path
	})

	return deviations, nil
}

func (s *Service) checkOne(rootDir, sourceID, path string, record domain.FileRecord) []Deviation {
	var found []Deviation

	target := filepath.Join(rootDir, filepath.FromSlash(path))
	targetHash, err := digest.HashFile(target)
	switch {
	case os.IsNotExist(err):
		found = append(found, Deviation{Kind: MissingTarget, SourceID: sourceID, Path: path})
	case err != nil:
		found = append(found, Deviation{Kind: TargetUnreadable, SourceID: sourceID, Path: path, Err: err})
	case !targetHash.Equal(record.ModHash):
		found = append(found, Deviation{
			Kind: TargetModified, SourceID: sourceID, Path: path,
			Expected: record.ModHash, Actual: targetHash,
		})
	}

	backupHash, backupErr := s.Store.ReadBackupHash(path)
	backupExists := backupErr == nil

	if record.HasOriginal {
		switch {
		case !backupExists:
			found = append(found, Deviation{Kind: MissingBackup, SourceID: sourceID, Path: path})
		case !backupHash.Equal(record.OriginalHash):
			found = append(found, Deviation{
				Kind: BackupModified, SourceID: sourceID, Path: path,
				Expected: record.OriginalHash, Actual: backupHash,
			})
		}
	} else if backupExists {
		found = append(found, Deviation{Kind: UnexpectedBackup, SourceID: sourceID, Path: path})
	}

	return found
}
