package core

import (
	"github.com/mrkline/modman/internal/domain"
	"github.com/mrkline/modman/internal/storage/profilestore"
)

// List returns the current profile for the `list` command to render. It
// does not require the journal to be absent: listing what's recorded is
// informational and never mutates state.
func (s *Service) List() (*domain.Profile, error) {
	return profilestore.Load(s.cwd)
}
