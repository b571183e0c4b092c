// Package core implements the activation, integrity-check, update, repair,
// and deactivation engines: the transactional filesystem overlay at the
// heart of modman. Per-file work within one mod fans out across a bounded
// errgroup.Group, with a shared first-error slot and a mutex-serialized
// journal as the only points of contention.
package core

import (
	"runtime"

	"github.com/mrkline/modman/internal/domain"
	"github.com/mrkline/modman/internal/storage/backup"
	"github.com/mrkline/modman/internal/storage/profilestore"
)

// Service ties the profile and backup stores together for one target tree,
// rooted at cwd (the directory containing modman.profile).
type Service struct {
	cwd   string
	Store *backup.Store
}

// NewService returns a Service rooted at cwd.
func NewService(cwd string) *Service {
	return &Service{cwd: cwd, Store: backup.Open(cwd)}
}

// workers returns the worker pool size: one per logical CPU.
func workers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// Init creates an empty profile and modman-backup/ rooted at root. It fails
// if either already exists.
func (s *Service) Init(root string) error {
	if profilestore.Exists(s.cwd) {
		return domain.ErrProfileExists
	}
	if s.Store.Exists() {
		return domain.ErrBackupDirExists
	}

	if err := s.Store.Init(); err != nil {
		return err
	}

	p := &domain.Profile{RootDirectory: root}
	if err := profilestore.Save(s.cwd, p); err != nil {
		return err
	}
	return nil
}

// loadReady loads the profile and verifies no journal is outstanding, the
// shared precondition for add/update/remove.
func (s *Service) loadReady() (*domain.Profile, error) {
	p, err := profilestore.Load(s.cwd)
	if err != nil {
		return nil, err
	}
	j := backup.NewJournal(s.Store)
	if j.Exists() {
		return nil, domain.ErrJournalPresent
	}
	return p, nil
}
